package log

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event represents one device-resolution event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the run the event belongs to (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Stage of the pipeline that produced the event.
	Stage Stage `cbor:"3,keyasint"`

	// Outcome of the step.
	Outcome Outcome `cbor:"4,keyasint"`

	// Document is the path of the conditional document.
	Document string `cbor:"5,keyasint,omitempty"`

	// Partname is the device name (empty for document-level events).
	Partname string `cbor:"6,keyasint,omitempty"`

	// Duration of the step. Stored as nanoseconds.
	Duration time.Duration `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (at most one of these will be set).
	Load    *LoadEvent      `cbor:"8,keyasint,omitempty"`
	Resolve *ResolveEvent   `cbor:"9,keyasint,omitempty"`
	Lint    *LintEvent      `cbor:"10,keyasint,omitempty"`
	Index   *IndexEvent     `cbor:"11,keyasint,omitempty"`
	Error   *ErrorEventData `cbor:"12,keyasint,omitempty"`
}

// NewSessionID returns a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// Stage indicates which pipeline step produced the event.
type Stage uint8

const (
	// StageLoad is parsing a document.
	StageLoad Stage = 0
	// StageExpand is expanding a document into its device population.
	StageExpand Stage = 1
	// StageResolve is canonicalizing one device.
	StageResolve Stage = 2
	// StageLint is checking one device tree.
	StageLint Stage = 3
	// StageIndex is writing the partname index.
	StageIndex Stage = 4
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "LOAD"
	case StageExpand:
		return "EXPAND"
	case StageResolve:
		return "RESOLVE"
	case StageLint:
		return "LINT"
	case StageIndex:
		return "INDEX"
	default:
		return "UNKNOWN"
	}
}

// ParseStage parses a stage name as printed by String, case-insensitively.
func ParseStage(s string) (Stage, bool) {
	for st := StageLoad; st <= StageIndex; st++ {
		if strings.EqualFold(st.String(), s) {
			return st, true
		}
	}
	return 0, false
}

// Outcome indicates whether the step succeeded.
type Outcome uint8

const (
	// OutcomeOK indicates success.
	OutcomeOK Outcome = 0
	// OutcomeFailed indicates an error; Error carries the details.
	OutcomeFailed Outcome = 1
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "OK"
	case OutcomeFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// LoadEvent captures a parsed document.
type LoadEvent struct {
	// Format is the document encoding ("xml" or "yaml").
	Format string `cbor:"1,keyasint"`

	// Devices is the number of devices the document expands to.
	Devices int `cbor:"2,keyasint,omitempty"`
}

// ResolveEvent captures one canonicalized device.
type ResolveEvent struct {
	// Drivers is the number of driver entries in the device tree.
	Drivers int `cbor:"1,keyasint"`

	// Keys is the number of top-level keys in the device tree.
	Keys int `cbor:"2,keyasint,omitempty"`
}

// LintEvent captures the result of checking one device.
type LintEvent struct {
	Errors   int `cbor:"1,keyasint"`
	Warnings int `cbor:"2,keyasint,omitempty"`
	Infos    int `cbor:"3,keyasint,omitempty"`
}

// IndexEvent captures a written partname index.
type IndexEvent struct {
	// Store is the index backend ("json" or "sqlite").
	Store string `cbor:"1,keyasint"`

	// Entries is the number of devices written.
	Entries int `cbor:"2,keyasint"`
}

// ErrorEventData captures a failed step.
type ErrorEventData struct {
	// Stage where the error occurred.
	Stage Stage `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what was being processed.
	Context string `cbor:"3,keyasint,omitempty"`
}
