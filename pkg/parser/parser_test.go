package parser

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modm-io/modm-devices-go/pkg/devicefile"
	"github.com/modm-io/modm-devices-go/pkg/identifier"
	"github.com/modm-io/modm-devices-go/pkg/version"
)

const f1XML = `<?xml version='1.0' encoding='UTF-8'?>
<modm version="0.4.0">
  <!-- WARNING: This file is generated! -->
  <device platform="stm32" family="f1" name="03|05" pin="c|r">
    <naming-schema>{platform}{family}{name}{pin}</naming-schema>
    <invalid-device>stm32f105c</invalid-device>
    <driver name="core" type="cortex-m3"/>
    <driver name="gpio" type="stm32-f1">
      <gpio port="a" pin="0"/>
      <gpio device-pin="r" port="c" pin="13"/>
    </driver>
  </device>
</modm>
`

const f1YAML = `tag: modm
children:
  - tag: device
    attributes:
      platform: stm32
      family: f1
      name: 03|05
      pin: c|r
    children:
      - tag: naming-schema
        text: "{platform}{family}{name}{pin}"
      - tag: invalid-device
        text: stm32f105c
      - comment: WARNING
      - tag: driver
        attributes: {name: core, type: cortex-m3}
      - tag: driver
        attributes: {name: gpio, type: stm32-f1}
        children:
          - tag: gpio
            attributes: {port: a, pin: 0}
          - tag: gpio
            attributes: {device-pin: r, port: c, pin: 13}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func device(family, name, pin string) *identifier.DeviceIdentifier {
	id := identifier.NewWithSchema("{platform}{family}{name}{pin}")
	id.Set("platform", "stm32")
	id.Set("family", family)
	id.Set("name", name)
	id.Set("pin", pin)
	return id
}

func propertiesJSON(t *testing.T, f *devicefile.DeviceFile, id *identifier.DeviceIdentifier) string {
	t.Helper()
	props, err := f.Properties(id)
	require.NoError(t, err)
	data, err := json.Marshal(props)
	require.NoError(t, err)
	return string(data)
}

func TestLoadXML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stm32f1.xml", f1XML)

	f, err := NewParser().Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, f.Path())

	dev := f.DeviceNode()
	require.NotNil(t, dev)
	require.NotEmpty(t, f.Root().Children)
	assert.Equal(t, devicefile.CommentNode, f.Root().Children[0].Kind)
	assert.Equal(t, " WARNING: This file is generated! ", f.Root().Children[0].Text)

	schema, err := f.NamingSchema()
	require.NoError(t, err)
	assert.Equal(t, "{platform}{family}{name}{pin}", schema)

	ids, err := f.Identifiers()
	require.NoError(t, err)
	assert.Equal(t, []string{"stm32f103c", "stm32f103r", "stm32f105r"}, ids.Attribute("@string"))

	assert.Equal(t,
		`{"driver":[{"name":"core","type":"cortex-m3"},{"name":"gpio","type":"stm32-f1","gpio":[{"port":"a","pin":"0"},{"port":"c","pin":"13"}]}]}`,
		propertiesJSON(t, f, device("f1", "03", "r")))
}

func TestYAMLMatchesXML(t *testing.T) {
	dir := t.TempDir()
	xf, err := LoadFile(writeFile(t, dir, "f1.xml", f1XML))
	require.NoError(t, err)
	yf, err := LoadFile(writeFile(t, dir, "f1.yaml", f1YAML))
	require.NoError(t, err)

	for _, id := range []*identifier.DeviceIdentifier{device("f1", "03", "c"), device("f1", "05", "r")} {
		assert.Equal(t, propertiesJSON(t, xf, id), propertiesJSON(t, yf, id), id.String())
	}

	xids, err := xf.Identifiers()
	require.NoError(t, err)
	yids, err := yf.Identifiers()
	require.NoError(t, err)
	assert.True(t, xids.Equal(yids))
}

func TestXInclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "common/core.xml", `<driver name="core" type="cortex-m3"/>`)
	path := writeFile(t, dir, "device.xml", `<modm xmlns:xi="http://www.w3.org/2001/XInclude">
  <device platform="stm32" name="03">
    <naming-schema>{platform}{name}</naming-schema>
    <xi:include href="common/core.xml"/>
  </device>
</modm>`)

	f, err := LoadFile(path)
	require.NoError(t, err)

	id := identifier.NewWithSchema("{platform}{name}")
	id.Set("platform", "stm32")
	id.Set("name", "03")
	props, err := f.Properties(id)
	require.NoError(t, err)
	data, err := json.Marshal(props)
	require.NoError(t, err)
	assert.Equal(t, `{"driver":[{"name":"core","type":"cortex-m3"}]}`, string(data))
}

func TestXIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "loop.xml", `<device xmlns:xi="http://www.w3.org/2001/XInclude"><xi:include href="loop.xml"/></device>`)

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrIncludeDepth)
}

func TestXIncludeMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "device.xml", `<device xmlns:xi="http://www.w3.org/2001/XInclude"><xi:include href="gone.xml"/></device>`)

	_, err := LoadFile(path)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, filepath.Join(dir, "gone.xml"), pe.Path)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		wantErr error
	}{
		{"malformed xml", "bad.xml", `<device><driver></device>`, nil},
		{"empty xml", "empty.xml", `<?xml version="1.0"?>`, ErrEmptyDocument},
		{"empty yaml", "empty.yaml", "", ErrEmptyDocument},
		{"yaml attribute list", "attrs.yaml", "tag: device\nattributes: [a, b]\n", ErrInvalidYAMLNode},
		{"yaml nested attribute", "nested.yaml", "tag: device\nattributes:\n  name: {a: b}\n", ErrInvalidYAMLNode},
		{"yaml child without tag", "child.yaml", "tag: device\nchildren:\n  - text: x\n", ErrInvalidYAMLNode},
		{"unknown format", "blank.txt", "   ", ErrUnknownFormat},
		{"old format version", "old.xml", `<modm version="0.3.0"><device/></modm>`, version.ErrUnsupported},
		{"bad format version", "bad-version.yaml", "tag: modm\nattributes: {version: next}\n", version.ErrUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)

			f, err := LoadFile(path)
			require.Error(t, err)
			assert.Nil(t, f)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, path, pe.Path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.xml"))

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestYAMLNullAttributes(t *testing.T) {
	path := writeFile(t, t.TempDir(), "null.yaml", "tag: device\nattributes:\n")

	f, err := LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, f.DeviceNode().Attrs)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		data string
		want Format
	}{
		{"a.xml", "", FormatXML},
		{"a.YAML", "", FormatYAML},
		{"a.yml", "", FormatYAML},
		{"a", "  <device/>", FormatXML},
		{"a", "tag: device", FormatYAML},
		{"a", "\n\t", FormatUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DetectFormat(tt.path, []byte(tt.data)), tt.path+tt.data)
	}
	assert.Equal(t, "xml", FormatXML.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
}

func TestExpandAndLoadDir(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "stm32/b.yaml", f1YAML)
	a := writeFile(t, dir, "stm32/a.xml", f1XML)
	writeFile(t, dir, "stm32/README.md", "# docs")

	paths, err := Expand(dir, a)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, paths)

	files, err := LoadDir(NewParser(), dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, a, files[0].Path())

	_, err = Expand(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
