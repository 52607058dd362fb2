package rules

import (
	"reflect"
	"strings"
	"testing"

	"github.com/modm-io/modm-devices-go/pkg/lint"
)

func TestGPIO001_PinWithoutPort(t *testing.T) {
	rule := NewGPIO001()

	dev := testDevice(gpioDriver(
		el("gpio", a("port", "a"), a("pin", "0")),
		el("gpio", a("pin", "1")),
		el("gpio"),
	))
	violations := rule.Check(dev)
	if len(violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d: %v", len(violations), violations)
	}
	if !strings.Contains(violations[0].Message, "missing port") {
		t.Errorf("Message = %q", violations[0].Message)
	}
	if !strings.Contains(violations[1].Message, "missing port and pin") {
		t.Errorf("Message = %q", violations[1].Message)
	}
	if violations[1].Paths[0] != "driver/#0/gpio/#2" {
		t.Errorf("Paths = %v", violations[1].Paths)
	}
}

func TestGPIO002_SignalWithoutNameOrDriver(t *testing.T) {
	rule := NewGPIO002()

	dev := testDevice(gpioDriver(
		el("gpio", a("port", "a"), a("pin", "2")).Append(
			signal("uart", "2", "tx"),
			el("signal", a("driver", "tim"), a("instance", "5")),
			el("signal", a("name", "ch3")),
		),
	))
	violations := rule.Check(dev)
	if len(violations) != 2 {
		t.Fatalf("Expected 2 violations, got %d: %v", len(violations), violations)
	}
	if !strings.Contains(violations[0].Message, "pa2: signal 1 is missing name") {
		t.Errorf("Message = %q", violations[0].Message)
	}
	if violations[1].Paths[0] != "driver/#0/gpio/#0/signal/#2" {
		t.Errorf("Paths = %v", violations[1].Paths)
	}
}

func TestGPIO003_DuplicateSignal(t *testing.T) {
	rule := NewGPIO003()

	dev := testDevice(gpioDriver(
		el("gpio", a("port", "a"), a("pin", "9")).Append(
			signal("uart", "1", "tx"),
			signal("uart", "2", "tx"),
			signal("tim", "1", "ch2"),
		),
	))
	if violations := rule.Check(dev); len(violations) > 0 {
		t.Errorf("Expected no violation, got: %v", violations)
	}

	dev = testDevice(gpioDriver(
		el("gpio", a("port", "a"), a("pin", "9")).Append(
			signal("uart", "1", "tx"),
			signal("tim", "1", "ch2"),
			signal("uart", "1", "tx"),
		),
	))
	violations := rule.Check(dev)
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	want := []string{"driver/#0/gpio/#0/signal/#0", "driver/#0/gpio/#0/signal/#2"}
	if !reflect.DeepEqual(violations[0].Paths, want) {
		t.Errorf("Paths = %v, want %v", violations[0].Paths, want)
	}
	if !strings.Contains(violations[0].Message, "uart1.tx") {
		t.Errorf("Message = %q", violations[0].Message)
	}
}

func TestGPIO004_DuplicatePin(t *testing.T) {
	rule := NewGPIO004()

	dev := testDevice(gpioDriver(
		el("gpio", a("port", "a"), a("pin", "0")),
		el("gpio", a("port", "b"), a("pin", "0")),
		el("gpio", a("port", "a"), a("pin", "0")),
	))
	violations := rule.Check(dev)
	if len(violations) != 1 {
		t.Fatalf("Expected 1 violation, got %d", len(violations))
	}
	if !strings.Contains(violations[0].Message, "pa0") {
		t.Errorf("Message = %q", violations[0].Message)
	}
}

func TestGPIORulesIgnoreOtherDrivers(t *testing.T) {
	dev := testDevice(el("driver", a("name", "uart")).Append(
		el("gpio", a("pin", "1")),
	))
	reg := lint.NewRegistry()
	RegisterGPIORules(reg)

	if violations := reg.Run(dev); len(violations) > 0 {
		t.Errorf("Expected no violation, got: %v", ruleIDs(violations))
	}
}

func TestDefaultRegistryOnCleanDevice(t *testing.T) {
	dev := testDevice(
		el("driver", a("name", "core"), a("type", "cortex-m4")),
		el("driver", a("name", "uart"), a("type", "stm32")).Append(
			el("instance", a("name", "1")),
			el("instance", a("name", "2")),
		),
		gpioDriver(
			el("gpio", a("port", "a"), a("pin", "9")).Append(signal("uart", "1", "tx")),
			el("gpio", a("port", "a"), a("pin", "10")).Append(signal("uart", "1", "rx")),
		),
	)

	result := lint.NewValidator(NewDefaultRegistry()).Validate(dev)
	if len(result.Violations) > 0 {
		t.Errorf("Expected no violation, got: %v", result.Violations)
	}
}
