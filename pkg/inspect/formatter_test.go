package inspect

import (
	"strings"
	"testing"

	"github.com/modm-io/modm-devices-go/pkg/view"
)

func TestFormatValue(t *testing.T) {
	core := view.NewMapBuilder()
	core.Set("name", view.NewScalar("core"))
	core.Set("type", view.NewScalar("m4"))

	root := view.NewMapBuilder()
	root.Set("name", view.NewScalar("x"))
	root.Set("driver", view.ListValue(view.NewList(view.MapValue(core.Build()), view.NewScalar("raw"))))
	root.Set("empty", view.MapValue(view.NewMapBuilder().Build()))

	want := strings.Join([]string{
		"name: x",
		"driver[0]:",
		"  name: core",
		"  type: m4",
		"driver[1]: raw",
		"empty: {}",
		"",
	}, "\n")

	got := NewFormatter().FormatValue(view.MapValue(root.Build()))
	if got != want {
		t.Errorf("FormatValue() =\n%s\nwant\n%s", got, want)
	}
}

func TestFormatValueScalarAndList(t *testing.T) {
	f := NewFormatter()

	if got := f.FormatValue(view.NewScalar("fifo")); got != "fifo\n" {
		t.Errorf("scalar = %q", got)
	}

	list := view.ListValue(view.NewList(view.NewScalar("a"), view.NewScalar("b")))
	if got := f.FormatValue(list); got != "-[0]: a\n-[1]: b\n" {
		t.Errorf("list = %q", got)
	}
}

func TestFormatSummary(t *testing.T) {
	s := &DeviceSummary{
		Partname: "stm32f407",
		Document: "stm32f4.xml",
		Drivers: []DriverInfo{
			{Name: "core", Type: "cortex-m4"},
			{Name: "uart", Type: "stm32", Features: []string{"fifo"}, Instances: []InstanceInfo{
				{Name: "1", Features: []string{"fifo", "wakeup"}},
			}},
		},
	}

	want := strings.Join([]string{
		"stm32f407 (stm32f4.xml)",
		"  core:cortex-m4",
		"  uart:stm32 [fifo]",
		"    instance 1 [fifo, wakeup]",
		"",
	}, "\n")

	if got := NewFormatter().FormatSummary(s); got != want {
		t.Errorf("FormatSummary() =\n%s\nwant\n%s", got, want)
	}

	f := &Formatter{}
	got := f.FormatSummary(&DeviceSummary{Partname: "avr", Document: "avr.xml"})
	if got != "avr\n  (no drivers)\n" {
		t.Errorf("FormatSummary() without drivers = %q", got)
	}
}

func TestFormatterIndent(t *testing.T) {
	f := &Formatter{}

	got := f.Indent(2, "hello")
	if !strings.HasPrefix(got, "    ") {
		t.Errorf("Indent should add 4 spaces at depth 2, got %q", got)
	}
	if !strings.HasSuffix(got, "hello") {
		t.Errorf("Indent should preserve content, got %q", got)
	}
}
