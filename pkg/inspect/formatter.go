package inspect

import (
	"fmt"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/view"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowDocument includes the document path in summaries.
	ShowDocument bool

	// IndentWidth is the number of spaces per indent level.
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowDocument: true,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a tree as indented "key: value" lines. List
// elements are labelled key[index].
func (f *Formatter) FormatValue(v view.Value) string {
	var sb strings.Builder
	f.writeValue(&sb, 0, "", v)
	return sb.String()
}

func (f *Formatter) writeValue(sb *strings.Builder, depth int, label string, v view.Value) {
	if s, ok := v.Scalar(); ok {
		if label != "" {
			s = label + ": " + s
		}
		sb.WriteString(f.Indent(depth, s) + "\n")
		return
	}

	if list, ok := v.List(); ok {
		if label == "" {
			label = "-"
		}
		for idx, val := range list.All() {
			f.writeValue(sb, depth, fmt.Sprintf("%s[%d]", label, idx), val)
		}
		return
	}

	m, _ := v.Map()
	if label != "" {
		if m.Len() == 0 {
			sb.WriteString(f.Indent(depth, label+": {}") + "\n")
			return
		}
		sb.WriteString(f.Indent(depth, label+":") + "\n")
		depth++
	}
	for key, val := range m.All() {
		f.writeValue(sb, depth, key, val)
	}
}

// FormatSummary formats the driver overview of a device.
func (f *Formatter) FormatSummary(s *DeviceSummary) string {
	var sb strings.Builder

	header := s.Partname
	if f.ShowDocument && s.Document != "" {
		header += " (" + s.Document + ")"
	}
	sb.WriteString(header + "\n")

	if len(s.Drivers) == 0 {
		sb.WriteString(f.Indent(1, "(no drivers)") + "\n")
		return sb.String()
	}

	for _, drv := range s.Drivers {
		line := drv.Name
		if drv.Type != "" {
			line += ":" + drv.Type
		}
		line += formatFeatures(drv.Features)
		sb.WriteString(f.Indent(1, line) + "\n")

		for _, inst := range drv.Instances {
			sb.WriteString(f.Indent(2, "instance "+inst.Name+formatFeatures(inst.Features)) + "\n")
		}
	}
	return sb.String()
}

func formatFeatures(features []string) string {
	if len(features) == 0 {
		return ""
	}
	return " [" + strings.Join(features, ", ") + "]"
}
