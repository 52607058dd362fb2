package lint

import (
	"github.com/modm-io/modm-devices-go/pkg/device"
)

// ResolveRuleID marks the violation reported for a device whose property
// tree cannot be computed. Rules do not run on such a device.
const ResolveRuleID = "RESOLVE"

// Result contains the lint outcome of one device.
type Result struct {
	Partname string `json:"device"`
	Document string `json:"document"`

	// Violations at or above the validator's minimum severity, in rule
	// registration order.
	Violations []Violation `json:"violations"`
}

// HasErrors reports whether any violation is an error.
func (r *Result) HasErrors() bool {
	return HasErrors(r.Violations)
}

// Count returns the number of violations per severity.
func (r *Result) Count() (errors, warnings, infos int) {
	for _, v := range r.Violations {
		switch v.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		default:
			infos++
		}
	}
	return errors, warnings, infos
}

// Validator runs a registry's rules over devices.
type Validator struct {
	registry *Registry

	// MinSeverity drops violations below this level.
	MinSeverity Severity
}

// NewValidator creates a validator reporting every severity.
func NewValidator(registry *Registry) *Validator {
	return &Validator{
		registry:    registry,
		MinSeverity: SeverityInfo,
	}
}

// Validate lints one device.
func (v *Validator) Validate(dev *device.Device) *Result {
	result := &Result{
		Partname: dev.Partname(),
		Document: dev.File().Path(),
	}

	if _, err := dev.Properties(); err != nil {
		result.Violations = []Violation{{
			RuleID:   ResolveRuleID,
			Severity: SeverityError,
			Partname: dev.Partname(),
			Message:  err.Error(),
		}}
		return result
	}

	result.Violations = FilterBySeverity(v.registry.Run(dev), v.MinSeverity)
	return result
}

// ValidateAll lints devices in order.
func (v *Validator) ValidateAll(devices []*device.Device) []*Result {
	results := make([]*Result, 0, len(devices))
	for _, dev := range devices {
		results = append(results, v.Validate(dev))
	}
	return results
}
