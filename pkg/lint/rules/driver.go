package rules

import (
	"fmt"

	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/lint"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

// RegisterDriverRules registers the driver and instance rules.
func RegisterDriverRules(registry *lint.Registry) {
	registry.Register(NewDRV001())
	registry.Register(NewDRV002())
	registry.Register(NewINST001())
	registry.Register(NewINST002())
}

// indexed is a driver or instance with its position in the tree list.
type indexed[T any] struct {
	index int
	item  T
}

// drivers returns the drivers of a device already known to resolve.
func drivers(dev *device.Device) []indexed[*device.Driver] {
	all, _ := dev.Drivers()
	props, _ := dev.Properties()
	return pair(all, mapIndices(props, "driver"))
}

func instances(drv *device.Driver) []indexed[*device.Instance] {
	return pair(drv.Instances(), mapIndices(drv.Properties(), "instance"))
}

// mapIndices returns the list positions of the map elements under key.
// Scalar elements are skipped by the device views, so view order and list
// position differ when a list mixes both.
func mapIndices(m *view.Map, key string) []int {
	list, ok := m.List(key)
	if !ok {
		return nil
	}
	var out []int
	for i, v := range list.All() {
		if _, ok := v.Map(); ok {
			out = append(out, i)
		}
	}
	return out
}

func pair[T any](items []T, indices []int) []indexed[T] {
	out := make([]indexed[T], len(items))
	for i, item := range items {
		out[i] = indexed[T]{index: indices[i], item: item}
	}
	return out
}

func driverPath(i int) string {
	return fmt.Sprintf("driver/#%d", i)
}

// DRV001 checks that every driver has a name.
type DRV001 struct {
	*lint.BaseRule
}

func NewDRV001() *DRV001 {
	return &DRV001{
		BaseRule: lint.NewBaseRule("DRV-001", "driver has a name", "driver", lint.SeverityError),
	}
}

func (r *DRV001) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	for _, d := range drivers(dev) {
		if d.item.Name() != "" {
			continue
		}
		v := r.Violation(dev, fmt.Sprintf("driver %d has no name", d.index), driverPath(d.index))
		v.Suggestion = "Add a name attribute to the driver"
		violations = append(violations, v)
	}
	return violations
}

// DRV002 checks that no two drivers share name and type.
type DRV002 struct {
	*lint.BaseRule
}

func NewDRV002() *DRV002 {
	return &DRV002{
		BaseRule: lint.NewBaseRule("DRV-002", "driver name and type are unique", "driver", lint.SeverityError),
	}
}

func (r *DRV002) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	first := make(map[string]int)
	for _, d := range drivers(dev) {
		if d.item.Name() == "" {
			continue
		}
		key := d.item.Name() + ":" + d.item.Type()
		prev, seen := first[key]
		if !seen {
			first[key] = d.index
			continue
		}
		violations = append(violations, r.Violation(dev,
			fmt.Sprintf("driver %s is declared more than once", key),
			driverPath(prev), driverPath(d.index)))
	}
	return violations
}

// INST001 checks that every driver instance has a name.
type INST001 struct {
	*lint.BaseRule
}

func NewINST001() *INST001 {
	return &INST001{
		BaseRule: lint.NewBaseRule("INST-001", "instance has a name", "instance", lint.SeverityError),
	}
}

func (r *INST001) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	for _, d := range drivers(dev) {
		for _, inst := range instances(d.item) {
			if inst.item.Name() != "" {
				continue
			}
			violations = append(violations, r.Violation(dev,
				fmt.Sprintf("driver %s: instance %d has no name", d.item.Name(), inst.index),
				fmt.Sprintf("%s/instance/#%d", driverPath(d.index), inst.index)))
		}
	}
	return violations
}

// INST002 checks that instance names are unique within a driver.
type INST002 struct {
	*lint.BaseRule
}

func NewINST002() *INST002 {
	return &INST002{
		BaseRule: lint.NewBaseRule("INST-002", "instance names are unique per driver", "instance", lint.SeverityWarning),
	}
}

func (r *INST002) Check(dev *device.Device) []lint.Violation {
	var violations []lint.Violation
	for _, d := range drivers(dev) {
		seen := make(map[string]bool)
		for _, inst := range instances(d.item) {
			name := inst.item.Name()
			if name == "" {
				continue
			}
			if seen[name] {
				violations = append(violations, r.Violation(dev,
					fmt.Sprintf("driver %s: instance %s is declared more than once", d.item.Name(), name),
					fmt.Sprintf("%s/instance/#%d", driverPath(d.index), inst.index)))
				continue
			}
			seen[name] = true
		}
	}
	return violations
}
