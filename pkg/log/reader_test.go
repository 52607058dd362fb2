package log

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeEvents(t *testing.T, events ...Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.mdlog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return path
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, SessionID: "a", Stage: StageLoad, Document: "f1.xml", Load: &LoadEvent{Format: "xml", Devices: 2}},
		{Timestamp: base.Add(time.Second), SessionID: "a", Stage: StageResolve, Document: "f1.xml", Partname: "stm32f103c8"},
		{Timestamp: base.Add(2 * time.Second), SessionID: "a", Stage: StageResolve, Outcome: OutcomeFailed, Document: "f1.xml", Partname: "stm32f103rb",
			Error: &ErrorEventData{Stage: StageResolve, Message: "attribute collides with child group"}},
		{Timestamp: base.Add(3 * time.Second), SessionID: "b", Stage: StageIndex, Index: &IndexEvent{Store: "sqlite", Entries: 2}},
	}
}

func TestReaderReadsAll(t *testing.T) {
	path := writeEvents(t, sampleEvents(time.Now())...)

	r, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer r.Close()

	count := 0
	for {
		_, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		count++
	}
	if count != 4 {
		t.Errorf("read %d events, want 4", count)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	path := writeEvents(t, sampleEvents(base)...)

	resolve := StageResolve
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"session", Filter{SessionID: "a"}, 3},
		{"stage", Filter{Stage: &resolve}, 2},
		{"failed only", Filter{FailedOnly: true}, 1},
		{"document", Filter{Document: "f1.xml"}, 3},
		{"partname", Filter{Partname: "stm32f103c8"}, 1},
		{"time window", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"no match", Filter{SessionID: "c"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ReadAll(path, tt.filter)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "missing.mdlog")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestReaderCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.mdlog")
	if err := os.WriteFile(path, []byte{0xa1, 0x01}, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadAll(path, Filter{}); err == nil {
		t.Error("expected error for truncated event")
	}
}
