package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsResolveEvent(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		SessionID: "run-1",
		Stage:     StageResolve,
		Document:  "stm32f4.xml",
		Partname:  "stm32f407vg",
		Duration:  time.Millisecond,
		Resolve:   &ResolveEvent{Drivers: 30, Keys: 1},
	})

	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
	if entry["msg"] != "resolution" {
		t.Errorf("msg: got %v", entry["msg"])
	}
	if entry["stage"] != "RESOLVE" {
		t.Errorf("stage: got %v", entry["stage"])
	}
	if entry["device"] != "stm32f407vg" {
		t.Errorf("device: got %v", entry["device"])
	}
	if entry["drivers"] != float64(30) {
		t.Errorf("drivers: got %v, want 30", entry["drivers"])
	}
}

func TestSlogAdapterLogsFailureAtWarn(t *testing.T) {
	entry := logOne(t, Event{
		SessionID: "run-1",
		Stage:     StageLoad,
		Outcome:   OutcomeFailed,
		Document:  "broken.xml",
		Error:     &ErrorEventData{Stage: StageLoad, Message: "unexpected EOF", Context: "broken.xml"},
	})

	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["outcome"] != "FAILED" {
		t.Errorf("outcome: got %v", entry["outcome"])
	}
	if entry["error"] != "unexpected EOF" {
		t.Errorf("error: got %v", entry["error"])
	}
	if _, ok := entry["device"]; ok {
		t.Error("device attribute should be omitted for document events")
	}
}

func TestSlogAdapterLogsPayloads(t *testing.T) {
	tests := []struct {
		name  string
		event Event
		key   string
		want  any
	}{
		{"load", Event{Load: &LoadEvent{Format: "yaml", Devices: 3}}, "format", "yaml"},
		{"lint", Event{Stage: StageLint, Lint: &LintEvent{Errors: 2}}, "errors", float64(2)},
		{"index", Event{Stage: StageIndex, Index: &IndexEvent{Store: "json", Entries: 9}}, "entries", float64(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := logOne(t, tt.event)
			if entry[tt.key] != tt.want {
				t.Errorf("%s: got %v, want %v", tt.key, entry[tt.key], tt.want)
			}
		})
	}
}
