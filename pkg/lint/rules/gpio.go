package rules

import (
	"fmt"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/lint"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

// RegisterGPIORules registers the pin and signal rules.
func RegisterGPIORules(registry *lint.Registry) {
	registry.Register(NewGPIO001())
	registry.Register(NewGPIO002())
	registry.Register(NewGPIO003())
	registry.Register(NewGPIO004())
}

// pin is one gpio entry of a gpio driver.
type pin struct {
	path string
	m    *view.Map
}

func (p pin) String() string {
	port, _ := p.m.Scalar("port")
	number, _ := p.m.Scalar("pin")
	return "p" + port + number
}

func (p pin) signals() []indexed[*view.Map] {
	list, ok := p.m.List("signal")
	if !ok {
		return nil
	}
	var out []indexed[*view.Map]
	for i, v := range list.All() {
		if m, ok := v.Map(); ok {
			out = append(out, indexed[*view.Map]{index: i, item: m})
		}
	}
	return out
}

func (p pin) signalPath(i int) string {
	return fmt.Sprintf("%s/signal/#%d", p.path, i)
}

// pins collects the gpio entries of every driver named gpio.
func pins(dev *device.Device) []pin {
	var out []pin
	for _, d := range drivers(dev) {
		if d.item.Name() != "gpio" {
			continue
		}
		list, ok := d.item.Properties().List("gpio")
		if !ok {
			continue
		}
		for j, v := range list.All() {
			if m, ok := v.Map(); ok {
				out = append(out, pin{path: fmt.Sprintf("%s/gpio/#%d", driverPath(d.index), j), m: m})
			}
		}
	}
	return out
}

// GPIO001 checks that every pin names its port and number.
type GPIO001 struct {
	*lint.BaseRule
}

func NewGPIO001() *GPIO001 {
	return &GPIO001{
		BaseRule: lint.NewBaseRule("GPIO-001", "pin has port and number", "gpio", lint.SeverityError),
	}
}

func (r *GPIO001) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	for _, p := range pins(dev) {
		var missing []string
		for _, key := range []string{"port", "pin"} {
			if _, ok := p.m.Scalar(key); !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			violations = append(violations, r.Violation(dev,
				"pin is missing "+strings.Join(missing, " and "), p.path))
		}
	}
	return violations
}

// GPIO002 checks that every signal names its driver and signal.
type GPIO002 struct {
	*lint.BaseRule
}

func NewGPIO002() *GPIO002 {
	return &GPIO002{
		BaseRule: lint.NewBaseRule("GPIO-002", "signal has driver and name", "gpio", lint.SeverityError),
	}
}

func (r *GPIO002) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	for _, p := range pins(dev) {
		for _, sig := range p.signals() {
			var missing []string
			for _, key := range []string{"driver", "name"} {
				if _, ok := sig.item.Scalar(key); !ok {
					missing = append(missing, key)
				}
			}
			if len(missing) == 0 {
				continue
			}
			v := r.Violation(dev,
				fmt.Sprintf("%s: signal %d is missing %s", p, sig.index, strings.Join(missing, " and ")),
				p.signalPath(sig.index))
			v.Suggestion = "Signals need a driver and a name to be routable"
			violations = append(violations, v)
		}
	}
	return violations
}

// GPIO003 checks that a pin lists each signal once.
type GPIO003 struct {
	*lint.BaseRule
}

func NewGPIO003() *GPIO003 {
	return &GPIO003{
		BaseRule: lint.NewBaseRule("GPIO-003", "signals are unique per pin", "gpio", lint.SeverityWarning),
	}
}

func (r *GPIO003) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	for _, p := range pins(dev) {
		seen := make(map[string]int)
		for _, sig := range p.signals() {
			key := signalKey(sig.item)
			prev, dup := seen[key]
			if !dup {
				seen[key] = sig.index
				continue
			}
			violations = append(violations, r.Violation(dev,
				fmt.Sprintf("%s: signal %s is listed more than once", p, key),
				p.signalPath(prev), p.signalPath(sig.index)))
		}
	}
	return violations
}

// signalKey renders a signal as driver[instance].name[af].
func signalKey(sig *view.Map) string {
	drv, _ := sig.Scalar("driver")
	inst, _ := sig.Scalar("instance")
	name, _ := sig.Scalar("name")
	key := drv + inst + "." + name
	if af, ok := sig.Scalar("af"); ok {
		key += "(af" + af + ")"
	}
	return key
}

// GPIO004 checks that no pin is declared twice.
type GPIO004 struct {
	*lint.BaseRule
}

func NewGPIO004() *GPIO004 {
	return &GPIO004{
		BaseRule: lint.NewBaseRule("GPIO-004", "pins are unique", "gpio", lint.SeverityError),
	}
}

func (r *GPIO004) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	first := make(map[string]string)
	for _, p := range pins(dev) {
		if _, ok := p.m.Scalar("port"); !ok {
			continue
		}
		name := p.String()
		prev, dup := first[name]
		if !dup {
			first[name] = p.path
			continue
		}
		violations = append(violations, r.Violation(dev,
			fmt.Sprintf("pin %s is declared more than once", name), prev, p.path))
	}
	return violations
}
