package inspect

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/device"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

// Inspector errors.
var (
	ErrKeyNotFound     = errors.New("key not found")
	ErrElementNotFound = errors.New("list element not found")
	ErrNotContainer    = errors.New("value has no children")
)

// Inspector resolves paths against a device property tree.
type Inspector struct {
	root view.Value
}

// NewInspector creates an Inspector over the given property tree.
func NewInspector(props *view.Map) *Inspector {
	return &Inspector{root: view.MapValue(props)}
}

// ForDevice creates an Inspector over a device's property tree.
func ForDevice(dev *device.Device) (*Inspector, error) {
	props, err := dev.Properties()
	if err != nil {
		return nil, err
	}
	return NewInspector(props), nil
}

// Root returns the whole tree.
func (i *Inspector) Root() view.Value {
	return i.root
}

// Get resolves p. The Partname of p is ignored.
func (i *Inspector) Get(p *Path) (view.Value, error) {
	cur := i.root
	for n, seg := range p.Segments {
		next, err := step(cur, seg)
		if err != nil {
			return view.Value{}, fmt.Errorf("%s: %w", joinUpTo(p.Segments, n), err)
		}
		cur = next
	}
	return cur, nil
}

// Lookup parses and resolves a path string.
func (i *Inspector) Lookup(path string) (view.Value, error) {
	p, err := ParsePath(path)
	if err != nil {
		return view.Value{}, err
	}
	return i.Get(p)
}

// Children lists the segments that can follow p: the keys of a map, or
// for a list the element names where present and the indices otherwise.
func (i *Inspector) Children(p *Path) ([]string, error) {
	v, err := i.Get(p)
	if err != nil {
		return nil, err
	}
	if m, ok := v.Map(); ok {
		return m.Keys(), nil
	}
	list, ok := v.List()
	if !ok {
		return nil, nil
	}
	var out []string
	for idx, item := range list.All() {
		if m, ok := item.Map(); ok {
			if name, ok := m.Scalar("name"); ok {
				out = append(out, name)
				continue
			}
		}
		out = append(out, strconv.Itoa(idx))
	}
	return out, nil
}

func step(cur view.Value, seg string) (view.Value, error) {
	if m, ok := cur.Map(); ok {
		v, ok := m.Get(seg)
		if !ok {
			return view.Value{}, fmt.Errorf("%w: %q", ErrKeyNotFound, seg)
		}
		return v, nil
	}

	if list, ok := cur.List(); ok {
		if rest, explicit := strings.CutPrefix(seg, "#"); explicit {
			idx, err := strconv.Atoi(rest)
			if err != nil {
				return view.Value{}, fmt.Errorf("%w: %q", ErrInvalidPath, seg)
			}
			return at(list, idx)
		}
		for m := range list.Maps() {
			if name, ok := m.Scalar("name"); ok && name == seg {
				return view.MapValue(m), nil
			}
		}
		if idx, err := strconv.Atoi(seg); err == nil {
			return at(list, idx)
		}
		return view.Value{}, fmt.Errorf("%w: %q", ErrElementNotFound, seg)
	}

	return view.Value{}, fmt.Errorf("%w: %q", ErrNotContainer, seg)
}

func at(list *view.List, idx int) (view.Value, error) {
	if idx < 0 || idx >= list.Len() {
		return view.Value{}, fmt.Errorf("%w: index %d of %d", ErrElementNotFound, idx, list.Len())
	}
	return list.At(idx), nil
}

func joinUpTo(segments []string, n int) string {
	return (&Path{Segments: segments[:n+1]}).String()
}

// DeviceSummary is the driver overview of one device.
type DeviceSummary struct {
	Partname string       `json:"device"`
	Document string       `json:"document"`
	Drivers  []DriverInfo `json:"drivers"`
}

// DriverInfo summarizes one driver.
type DriverInfo struct {
	Name      string         `json:"name"`
	Type      string         `json:"type,omitempty"`
	Features  []string       `json:"features,omitempty"`
	Instances []InstanceInfo `json:"instances,omitempty"`
}

// InstanceInfo summarizes one driver instance.
type InstanceInfo struct {
	Name     string   `json:"name"`
	Features []string `json:"features,omitempty"`
}

// Summarize collects the drivers of dev. With patterns only the matching
// drivers are included (see device.FindDrivers).
func Summarize(dev *device.Device, patterns ...string) (*DeviceSummary, error) {
	var (
		drivers []*device.Driver
		err     error
	)
	if len(patterns) > 0 {
		drivers, err = dev.FindDrivers(patterns...)
	} else {
		drivers, err = dev.Drivers()
	}
	if err != nil {
		return nil, err
	}

	s := &DeviceSummary{
		Partname: dev.Partname(),
		Document: dev.File().Path(),
	}
	for _, drv := range drivers {
		info := DriverInfo{
			Name:     drv.Name(),
			Type:     drv.Type(),
			Features: drv.Features(),
		}
		for _, inst := range drv.Instances() {
			info.Instances = append(info.Instances, InstanceInfo{
				Name:     inst.Number().String(),
				Features: inst.Features(),
			})
		}
		s.Drivers = append(s.Drivers, info)
	}
	return s, nil
}
