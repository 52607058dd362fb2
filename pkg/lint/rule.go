package lint

import (
	"fmt"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/device"
)

// Severity represents the severity level of a lint issue.
type Severity int

const (
	// SeverityError indicates the device data is wrong.
	SeverityError Severity = iota
	// SeverityWarning indicates suspicious data that should be checked.
	SeverityWarning
	// SeverityInfo indicates an informational note.
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity parses a severity name as printed by String.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	default:
		return 0, fmt.Errorf("unknown severity %q", s)
	}
}

// Rule is a check applied to one resolved device.
type Rule interface {
	// ID returns the unique identifier for this rule (e.g., "GPIO-001").
	ID() string
	// Name returns a human-readable name for the rule.
	Name() string
	// Category returns the rule category (e.g., "driver", "gpio").
	Category() string
	// DefaultSeverity returns the default severity level.
	DefaultSeverity() Severity
	// Check applies the rule to a device whose properties resolve.
	Check(dev *device.Device) []Violation
}

// Violation represents a single rule violation.
type Violation struct {
	// RuleID is the ID of the rule that was violated.
	RuleID string `json:"rule"`
	// Severity is the severity level of this violation.
	Severity Severity `json:"severity"`
	// Partname is the device the violation was found in.
	Partname string `json:"device"`
	// Message describes what went wrong.
	Message string `json:"message"`
	// Paths lists the inspect paths involved.
	Paths []string `json:"paths,omitempty"`
	// Suggestion provides a suggested fix (if applicable).
	Suggestion string `json:"suggestion,omitempty"`
}

// String returns a formatted string representation of the violation.
func (v Violation) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] %s: ", v.RuleID, v.Severity))
	if v.Partname != "" {
		sb.WriteString(v.Partname + ": ")
	}
	sb.WriteString(v.Message)

	if len(v.Paths) > 0 {
		sb.WriteString(fmt.Sprintf(" (at %s)", strings.Join(v.Paths, ", ")))
	}

	if v.Suggestion != "" {
		sb.WriteString(fmt.Sprintf(" -> %s", v.Suggestion))
	}

	return sb.String()
}

// HasErrors returns true if any violation has severity Error.
func HasErrors(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}

// FilterBySeverity returns violations at or above the given severity level.
func FilterBySeverity(violations []Violation, minSeverity Severity) []Violation {
	var filtered []Violation
	for _, v := range violations {
		if v.Severity <= minSeverity {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// BaseRule provides the metadata methods of Rule.
type BaseRule struct {
	id              string
	name            string
	category        string
	defaultSeverity Severity
}

// ID returns the rule ID.
func (r *BaseRule) ID() string { return r.id }

// Name returns the rule name.
func (r *BaseRule) Name() string { return r.name }

// Category returns the rule category.
func (r *BaseRule) Category() string { return r.category }

// DefaultSeverity returns the default severity.
func (r *BaseRule) DefaultSeverity() Severity { return r.defaultSeverity }

// Violation creates a violation of this rule for dev.
func (r *BaseRule) Violation(dev *device.Device, message string, paths ...string) Violation {
	return Violation{
		RuleID:   r.id,
		Severity: r.defaultSeverity,
		Partname: dev.Partname(),
		Message:  message,
		Paths:    paths,
	}
}

// NewBaseRule creates a new BaseRule with the given properties.
func NewBaseRule(id, name, category string, severity Severity) *BaseRule {
	return &BaseRule{
		id:              id,
		name:            name,
		category:        category,
		defaultSeverity: severity,
	}
}
