package devicefile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/view"
)

func stm32(family, name string) *identifier.DeviceIdentifier {
	id := identifier.NewWithSchema("{platform}{family}{name}")
	id.Set("platform", "stm32")
	id.Set("family", family)
	id.Set("name", name)
	return id
}

// gpioDocument has one gpio driver per family.
func gpioDocument() *DeviceFile {
	dev := NewElement("device", A("device-platform", "stm32")).Append(
		NewElement("naming-schema").WithText("{platform}{name}"),
		NewElement("driver", A("name", "gpio"), A("device-family", "f1")).Append(
			NewElement("gpio", A("port", "a"), A("pin", "0")),
		),
		NewElement("driver", A("name", "gpio"), A("device-family", "f4")).Append(
			NewElement("gpio", A("port", "b"), A("pin", "1")),
		),
	)
	return New("gpio.xml", NewElement("modm").Append(dev))
}

func toJSON(t *testing.T, m *view.Map) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

func TestPropertiesEndToEnd(t *testing.T) {
	f := gpioDocument()
	id := identifier.NewWithSchema("{platform}{name}")
	id.Set("platform", "stm32")
	id.Set("family", "f1")
	id.Set("name", "303")

	props, err := f.Properties(id)
	require.NoError(t, err)

	drivers, ok := props.List("driver")
	require.True(t, ok)
	require.Equal(t, 1, drivers.Len())

	driver, ok := drivers.At(0).Map()
	require.True(t, ok)
	name, _ := driver.Scalar("name")
	assert.Equal(t, "gpio", name)

	gpios, ok := driver.List("gpio")
	require.True(t, ok)
	require.Equal(t, 1, gpios.Len())
	gpio, _ := gpios.At(0).Map()
	port, _ := gpio.Scalar("port")
	assert.Equal(t, "a", port)

	assert.Equal(t, `{"driver":[{"name":"gpio","gpio":[{"port":"a","pin":"0"}]}]}`, toJSON(t, props))
}

func TestPropertiesDeterministic(t *testing.T) {
	f := gpioDocument()
	id := stm32("f4", "07")

	a, err := f.Properties(id)
	require.NoError(t, err)
	b, err := f.Properties(id.Copy())
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
}

func TestRootMetadataAndIdentifierKeysDropped(t *testing.T) {
	dev := NewElement("device",
		A("platform", "stm32"), A("family", "f1"), A("name", "03|05"), A("vendor", "st"),
	).Append(
		NewElement("naming-schema").WithText("{platform}{family}{name}"),
		NewElement("valid-device").WithText("stm32f103"),
		NewElement("invalid-device").WithText("stm32f105"),
		NewElement("driver", A("name", "core")),
	)
	f := New("f1.xml", dev)

	props, err := f.Properties(stm32("f1", "03"))
	require.NoError(t, err)

	assert.Equal(t, []string{"vendor", "driver"}, props.Keys())
}

func TestMetadataTagsKeptBelowRoot(t *testing.T) {
	dev := NewElement("device").Append(
		NewElement("driver", A("name", "flash")).Append(
			NewElement("naming-schema", A("value", "x")),
		),
	)

	props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	require.NoError(t, err)
	assert.Equal(t, `{"driver":[{"name":"flash","naming-schema":["x"]}]}`, toJSON(t, props))
}

func TestSingleChildStaysList(t *testing.T) {
	dev := NewElement("device").Append(
		NewElement("driver", A("name", "core")).Append(
			NewElement("signal", A("name", "a")),
		),
	)

	props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	require.NoError(t, err)

	drivers, _ := props.List("driver")
	driver, _ := drivers.At(0).Map()
	signals, ok := driver.List("signal")
	require.True(t, ok)
	assert.Equal(t, 1, signals.Len())
}

func TestTwoChildrenBecomeList(t *testing.T) {
	dev := NewElement("device").Append(
		NewElement("signal", A("name", "a")),
		NewElement("signal", A("name", "a")),
	)

	props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	require.NoError(t, err)
	assert.Equal(t, `{"signal":[{"name":"a"},{"name":"a"}]}`, toJSON(t, props))
}

func TestValueCollapsesToScalar(t *testing.T) {
	dev := NewElement("device").Append(
		NewElement("size", A("value", "5")),
		NewElement("size", A("value", "7"), A("device-name", "05")),
		NewElement("flash", A("value", "64"), A("unit", "k")),
	)

	props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	require.NoError(t, err)
	assert.Equal(t, `{"size":["5"],"flash":[{"value":"64","unit":"k"}]}`, toJSON(t, props))
}

func TestAttributeDemotion(t *testing.T) {
	dev := NewElement("device").Append(
		NewElement("driver", A("name", "core")).Append(
			NewElement("attribute-core", A("value", "cortex-m3")),
			NewElement("attribute-core", A("value", "cortex-m4"), A("device-family", "f4")),
		),
	)
	f := New("x.xml", dev)

	props, err := f.Properties(stm32("f1", "03"))
	require.NoError(t, err)
	assert.Equal(t, `{"driver":[{"name":"core","core":"cortex-m3"}]}`, toJSON(t, props))

	_, err = f.Properties(stm32("f4", "07"))
	assert.ErrorIs(t, err, ErrAttributeListConflict)
}

func TestAttributeChildCollision(t *testing.T) {
	tests := []struct {
		name string
		node *Node
	}{
		{
			name: "attribute and child group",
			node: NewElement("driver", A("name", "core"), A("memory", "x")).Append(
				NewElement("memory", A("size", "8")),
			),
		},
		{
			name: "attribute and demoted child",
			node: NewElement("driver", A("name", "core")).Append(
				NewElement("attribute-name", A("value", "other")),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := NewElement("device").Append(tt.node)

			props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
			assert.ErrorIs(t, err, ErrAttributeChildCollision)
			assert.Nil(t, props)
		})
	}
}

func TestErrorBelowCollapsedNode(t *testing.T) {
	dev := NewElement("device").Append(
		NewElement("size", A("value", "5")).Append(
			NewElement("attribute-x", A("value", "1")),
			NewElement("attribute-x", A("value", "2")),
		),
	)

	_, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	assert.ErrorIs(t, err, ErrAttributeListConflict)
}

func TestCommentsDropped(t *testing.T) {
	dev := NewElement("device").Append(
		NewComment(" vendor data "),
		NewElement("driver", A("name", "core")).Append(NewComment("x")),
	)

	props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	require.NoError(t, err)
	assert.Equal(t, `{"driver":[{"name":"core"}]}`, toJSON(t, props))
}

func TestEmptyNodeIsEmptyMap(t *testing.T) {
	dev := NewElement("device").Append(NewElement("driver"))

	props, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	require.NoError(t, err)
	assert.Equal(t, `{"driver":[{}]}`, toJSON(t, props))
}

func TestRootMustBeMap(t *testing.T) {
	dev := NewElement("device", A("value", "x"))

	_, err := New("x.xml", dev).Properties(stm32("f1", "03"))
	assert.ErrorIs(t, err, ErrRootNotMap)
}

func TestNoDeviceNode(t *testing.T) {
	f := New("x.xml", NewElement("modm"))

	_, err := f.Properties(stm32("f1", "03"))
	assert.ErrorIs(t, err, ErrNoDeviceNode)

	_, err = f.Identifiers()
	assert.ErrorIs(t, err, ErrNoDeviceNode)

	_, err = New("nil.xml", nil).Properties(stm32("f1", "03"))
	assert.ErrorIs(t, err, ErrNoDeviceNode)
}

func TestIsValid(t *testing.T) {
	id := stm32("f1", "03")

	tests := []struct {
		name  string
		attrs []Attr
		want  bool
	}{
		{"no selectors", []Attr{A("name", "gpio")}, true},
		{"single match", []Attr{A("device-family", "f1")}, true},
		{"alternatives", []Attr{A("device-family", "f0|f1|f4")}, true},
		{"no match", []Attr{A("device-family", "f4")}, false},
		{"all selectors must match", []Attr{A("device-family", "f1"), A("device-name", "05")}, false},
		{"unknown key", []Attr{A("device-pin", "c")}, false},
		{"substring is no match", []Attr{A("device-name", "030")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(NewElement("driver", tt.attrs...), id))
		})
	}
}

func TestIdentifiers(t *testing.T) {
	dev := NewElement("device", A("platform", "stm32"), A("family", "f1"), A("name", "00|01|03")).Append(
		NewElement("naming-schema").WithText("\n  {platform}{family}{name}\n"),
		NewElement("invalid-device").WithText("stm32f101"),
	)
	f := New("f1.xml", dev)

	ids, err := f.Identifiers()
	require.NoError(t, err)
	assert.Equal(t, []string{"stm32f100", "stm32f103"}, ids.Attribute("@string"))

	dev.Append(NewElement("valid-device").WithText("stm32f103"))
	ids, err = f.Identifiers()
	require.NoError(t, err)
	assert.Equal(t, []string{"stm32f103"}, ids.Attribute("@string"))
}

func TestIdentifiersFromSelectorAttributes(t *testing.T) {
	dev := NewElement("device", A("device-platform", "stm32"), A("name", "303|405")).Append(
		NewElement("naming-schema").WithText("{platform}{name}"),
	)

	ids, err := New("x.xml", dev).Identifiers()
	require.NoError(t, err)
	assert.Equal(t, []string{"stm32303", "stm32405"}, ids.Attribute("@string"))
}

func TestNamingSchemaMissing(t *testing.T) {
	f := New("x.xml", NewElement("device"))

	_, err := f.Identifiers()
	assert.ErrorIs(t, err, ErrNamingSchemaMissing)
}

func TestNodeHelpers(t *testing.T) {
	n := NewElement("driver", A("name", "gpio")).Append(
		NewComment("gpio"),
		NewElement("gpio", A("port", "a")),
		NewElement("gpio", A("port", "b")),
	)

	v, ok := n.Attr("name")
	assert.True(t, ok)
	assert.Equal(t, "gpio", v)
	_, ok = n.Attr("type")
	assert.False(t, ok)

	first := n.Child("gpio")
	require.NotNil(t, first)
	port, _ := first.Attr("port")
	assert.Equal(t, "a", port)
	assert.Len(t, n.ChildrenByTag("gpio"), 2)
	assert.Nil(t, n.Child("missing"))
}
