// Package inspect queries and formats canonical device trees.
//
// The inspect package offers:
//   - Parsing path expressions (e.g., "driver/uart/instance/1")
//   - Resolving paths against a device property tree
//   - Summarizing drivers, instances and features
//   - Formatting output for display
package inspect

import (
	"errors"
	"fmt"
	"strings"
)

// Path errors.
var (
	ErrEmptyPath   = errors.New("empty path")
	ErrInvalidPath = errors.New("invalid path format")
)

// Path represents a parsed inspection path.
// Format: [partname:]segment/segment/...
type Path struct {
	// Partname selects the device (empty for the current device).
	Partname string

	// Segments are the steps from the root map. At a map a segment is a
	// key. At a list "#N" is the element at index N; any other segment
	// selects the element whose "name" equals it, or else an index.
	Segments []string

	// Raw stores the original input string.
	Raw string
}

// ParsePath parses a path string into a Path.
//
// Supported formats:
//   - "driver" - a top-level key
//   - "driver/uart/instance/1" - nested lookup, lists by name or index
//   - "driver/0" - list element by index when no element is named "0"
//   - "driver/#1/instance/#0" - list elements by index only
//   - "stm32f407vg:driver/uart" - path within a named device
func ParsePath(input string) (*Path, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmptyPath
	}

	p := &Path{Raw: input}

	rest := input
	if partname, after, ok := strings.Cut(input, ":"); ok {
		if partname == "" {
			return nil, fmt.Errorf("%w: empty device name", ErrInvalidPath)
		}
		p.Partname = partname
		rest = after
	}

	if rest == "" {
		return p, nil
	}
	if strings.HasPrefix(rest, "/") || strings.HasSuffix(rest, "/") || strings.Contains(rest, "//") {
		return nil, ErrInvalidPath
	}

	p.Segments = strings.Split(rest, "/")
	return p, nil
}

// IsRoot reports whether the path selects the whole tree.
func (p *Path) IsRoot() bool {
	return len(p.Segments) == 0
}

// String returns the path in the form ParsePath accepts.
func (p *Path) String() string {
	var sb strings.Builder

	if p.Partname != "" {
		sb.WriteString(p.Partname)
		sb.WriteString(":")
	}
	sb.WriteString(strings.Join(p.Segments, "/"))

	return sb.String()
}

// IsValidPath checks if a string is a valid path.
func IsValidPath(input string) bool {
	_, err := ParsePath(input)
	return err == nil
}
