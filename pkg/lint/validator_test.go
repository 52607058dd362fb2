package lint

import (
	"testing"

	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/devicefile"
)

func TestValidate(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newDriverCountRule("E-001", "e", SeverityError))
	reg.Register(newDriverCountRule("W-001", "w", SeverityWarning))
	reg.Register(newDriverCountRule("I-001", "i", SeverityInfo))

	dev := testDevice(devicefile.NewElement("driver", a("name", "core")))

	result := NewValidator(reg).Validate(dev)
	if result.Partname != "avrmega328" || result.Document != "avr.xml" {
		t.Errorf("result header = %q/%q", result.Partname, result.Document)
	}
	if !result.HasErrors() {
		t.Error("HasErrors should be true")
	}
	errs, warns, infos := result.Count()
	if errs != 1 || warns != 1 || infos != 1 {
		t.Errorf("Count = %d/%d/%d, want 1/1/1", errs, warns, infos)
	}

	v := NewValidator(reg)
	v.MinSeverity = SeverityWarning
	result = v.Validate(dev)
	if len(result.Violations) != 2 {
		t.Errorf("MinSeverity warning kept %d violations, want 2", len(result.Violations))
	}
}

func TestValidateUnresolvableDevice(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newDriverCountRule("E-001", "e", SeverityError))

	dev := testDevice(
		devicefile.NewElement("attribute-core", a("value", "avr8")),
		devicefile.NewElement("attribute-core", a("value", "avr8l")),
	)

	result := NewValidator(reg).Validate(dev)
	if len(result.Violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(result.Violations))
	}
	if result.Violations[0].RuleID != ResolveRuleID || result.Violations[0].Severity != SeverityError {
		t.Errorf("violation = %+v", result.Violations[0])
	}
}

func TestValidateAll(t *testing.T) {
	reg := NewRegistry()
	reg.Register(newDriverCountRule("E-001", "e", SeverityError))

	clean := testDevice()
	dirty := testDevice(devicefile.NewElement("driver", a("name", "core")))

	results := NewValidator(reg).ValidateAll([]*device.Device{clean, dirty})
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].HasErrors() || !results[1].HasErrors() {
		t.Errorf("HasErrors = %v/%v, want false/true", results[0].HasErrors(), results[1].HasErrors())
	}
}
