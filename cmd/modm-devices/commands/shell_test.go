package commands

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func newTestShell(t *testing.T) (*Shell, *bytes.Buffer) {
	t.Helper()
	dir := writeDocs(t)

	stderr := &bytes.Buffer{}
	e, err := openEnv(context.Background(), commonOptions{}, []string{dir}, &bytes.Buffer{}, stderr)
	if err != nil {
		t.Fatalf("openEnv: %v (stderr: %s)", err, stderr)
	}
	t.Cleanup(e.Close)

	out := &bytes.Buffer{}
	return newShell(e, out), out
}

func TestShell_Use(t *testing.T) {
	s, out := newTestShell(t)

	if got := s.Prompt(); got != "modm> " {
		t.Errorf("initial prompt = %q", got)
	}

	s.Execute("use stm32f407v")
	if !strings.Contains(out.String(), "Using stm32f407v") {
		t.Errorf("expected confirmation, got: %s", out)
	}
	if got := s.Prompt(); got != "modm:stm32f407v> " {
		t.Errorf("prompt = %q", got)
	}

	out.Reset()
	s.Execute("use stm32f40")
	if !strings.Contains(out.String(), "did you mean") {
		t.Errorf("expected suggestions, got: %s", out)
	}
	if s.current.Partname() != "stm32f407v" {
		t.Errorf("failed use changed the selection to %s", s.current.Partname())
	}
}

func TestShell_Get(t *testing.T) {
	s, out := newTestShell(t)

	tests := []struct {
		line string
		want string
	}{
		{"get", "No device selected"},
		{"use stm32f407v", "Using"},
		{"get driver/uart/type", "stm32\n"},
		{"get driver/uart/instance/2", "name: 2"},
		{"get driver/can", "not found"},
		{"get stm32f103c:driver/gpio/gpio/#0/port", "a\n"},
		{"ls driver", "core\nuart\neth\n"},
		{"ls driver/core/name", ""},
	}

	for _, tt := range tests {
		out.Reset()
		if s.Execute(tt.line) {
			t.Fatalf("%q ended the shell", tt.line)
		}
		if tt.want == "" {
			if out.Len() != 0 {
				t.Errorf("%q: expected no output, got %q", tt.line, out)
			}
			continue
		}
		if !strings.Contains(out.String(), tt.want) {
			t.Errorf("%q: expected %q, got %q", tt.line, tt.want, out)
		}
	}
}

func TestShell_Commands(t *testing.T) {
	s, out := newTestShell(t)

	s.Execute("devices stm32f1*")
	if !strings.Contains(out.String(), "stm32f105r") || !strings.Contains(out.String(), "(3 device(s))") {
		t.Errorf("unexpected devices output: %s", out)
	}

	out.Reset()
	s.Execute("drivers")
	if !strings.Contains(out.String(), "No device selected") {
		t.Errorf("expected selection hint, got: %s", out)
	}

	s.Execute("use stm32f405v")
	out.Reset()
	s.Execute("info")
	for _, want := range []string{"Partname: stm32f405v", "family = f4", "Schema:   {platform}{family}{name}{pin}"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in info, got: %s", want, out)
		}
	}

	out.Reset()
	s.Execute("drivers u*")
	if !strings.Contains(out.String(), "uart:stm32 [fifo]") || strings.Contains(out.String(), "core") {
		t.Errorf("unexpected drivers output: %s", out)
	}

	out.Reset()
	s.Execute("keys stm32f4*")
	if !strings.Contains(out.String(), "include: family=f4") {
		t.Errorf("unexpected keys output: %s", out)
	}

	out.Reset()
	s.Execute("frobnicate")
	if !strings.Contains(out.String(), "Unknown command: frobnicate") {
		t.Errorf("expected unknown command, got: %s", out)
	}
}

func TestShell_Quit(t *testing.T) {
	s, _ := newTestShell(t)

	if s.Execute("   ") {
		t.Error("blank line ended the shell")
	}
	for _, cmd := range []string{"quit", "exit", "q", "QUIT"} {
		if !s.Execute(cmd) {
			t.Errorf("%q did not end the shell", cmd)
		}
	}
}
