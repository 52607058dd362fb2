package device

import (
	"strconv"

	"github.com/modm-io/modm-devices-go/pkg/view"
)

// Driver is a view of one driver entry of a device.
type Driver struct {
	device *Device
	m      *view.Map
}

// Device returns the owning device.
func (d *Driver) Device() *Device {
	return d.device
}

// Name returns the driver name.
func (d *Driver) Name() string {
	name, _ := d.m.Scalar("name")
	return name
}

// Type returns the driver type, or "" when the driver has none.
func (d *Driver) Type() string {
	typ, _ := d.m.Scalar("type")
	return typ
}

// Properties returns the driver's canonical map.
func (d *Driver) Properties() *view.Map {
	return d.m
}

// Instances returns the driver instances in document order.
func (d *Driver) Instances() []*Instance {
	list, ok := d.m.List("instance")
	if !ok {
		return nil
	}
	var out []*Instance
	for m := range list.Maps() {
		out = append(out, &Instance{driver: d, m: m})
	}
	return out
}

// Features returns the driver's scalar feature values.
func (d *Driver) Features() []string {
	return features(d.m)
}

func (d *Driver) String() string {
	return d.Name()
}

// Instance is a view of one driver instance.
type Instance struct {
	driver *Driver
	m      *view.Map
}

// Driver returns the owning driver.
func (i *Instance) Driver() *Driver {
	return i.driver
}

// Name returns the instance name.
func (i *Instance) Name() string {
	name, _ := i.m.Scalar("name")
	return name
}

// Number returns the instance name, parsed as an integer when it consists
// of digits only.
func (i *Instance) Number() InstanceNumber {
	return ParseInstanceNumber(i.Name())
}

// Properties returns the instance's canonical map.
func (i *Instance) Properties() *view.Map {
	return i.m
}

// Features returns the driver features followed by the instance's own.
func (i *Instance) Features() []string {
	return append(i.driver.Features(), features(i.m)...)
}

func (i *Instance) String() string {
	return i.Name()
}

// InstanceNumber is a numeric or symbolic instance name.
type InstanceNumber struct {
	name    string
	n       int
	numeric bool
}

// ParseInstanceNumber parses name. Only names made of ASCII digits are
// numeric; "+1" and "-1" stay symbolic.
func ParseInstanceNumber(name string) InstanceNumber {
	num := InstanceNumber{name: name}
	if name == "" {
		return num
	}
	for _, c := range name {
		if c < '0' || c > '9' {
			return num
		}
	}
	if n, err := strconv.Atoi(name); err == nil {
		num.n = n
		num.numeric = true
	}
	return num
}

// Int returns the numeric value and whether the name is numeric.
func (n InstanceNumber) Int() (int, bool) {
	return n.n, n.numeric
}

// IsNumeric reports whether the name is numeric.
func (n InstanceNumber) IsNumeric() bool {
	return n.numeric
}

// String returns the number in decimal, or the symbolic name.
func (n InstanceNumber) String() string {
	if n.numeric {
		return strconv.Itoa(n.n)
	}
	return n.name
}

func features(m *view.Map) []string {
	list, ok := m.List("feature")
	if !ok {
		return nil
	}
	var out []string
	for _, v := range list.All() {
		if s, ok := v.Scalar(); ok {
			out = append(out, s)
		}
	}
	return out
}
