package parser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/devicefile"
	"github.com/modm-io/modm-devices-go/pkg/version"
)

// DefaultMaxIncludeDepth bounds nested XInclude resolution.
const DefaultMaxIncludeDepth = 8

// Parser errors.
var (
	ErrEmptyDocument   = errors.New("document has no root element")
	ErrUnknownFormat   = errors.New("unknown document format")
	ErrIncludeDepth    = errors.New("include depth exceeded")
	ErrInvalidYAMLNode = errors.New("invalid YAML document node")
)

// Loader loads one conditional document.
type Loader interface {
	Load(path string) (*devicefile.DeviceFile, error)
}

// ParseError reports a document that could not be loaded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Format is a document encoding.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatXML
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension, falling back to
// the first non-blank byte of data.
func DetectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FormatXML
	case ".yaml", ".yml":
		return FormatYAML
	}
	trimmed := strings.TrimSpace(string(data))
	switch {
	case trimmed == "":
		return FormatUnknown
	case trimmed[0] == '<':
		return FormatXML
	default:
		return FormatYAML
	}
}

// Parser loads XML and YAML conditional documents. It implements Loader.
type Parser struct {
	// MaxIncludeDepth bounds nested XInclude resolution.
	MaxIncludeDepth int
}

// NewParser creates a parser with default settings.
func NewParser() *Parser {
	return &Parser{MaxIncludeDepth: DefaultMaxIncludeDepth}
}

// Load reads and parses the document at path.
func (p *Parser) Load(path string) (*devicefile.DeviceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return p.ParseBytes(data, path)
}

// ParseBytes parses a document. path names the document in errors and
// anchors relative includes. A modm root declaring an incompatible format
// version is rejected.
func (p *Parser) ParseBytes(data []byte, path string) (*devicefile.DeviceFile, error) {
	var (
		root *devicefile.Node
		err  error
	)
	switch DetectFormat(path, data) {
	case FormatXML:
		root, err = p.parseXML(data, path, 0)
	case FormatYAML:
		root, err = parseYAML(data)
	default:
		err = ErrUnknownFormat
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	if v, ok := root.Attr("version"); ok && root.Tag == "modm" {
		if err := version.Check(v); err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
	}
	return devicefile.New(path, root), nil
}

// LoadFile loads a document with a default parser.
func LoadFile(path string) (*devicefile.DeviceFile, error) {
	return NewParser().Load(path)
}

// IsDocument reports whether path has a document extension.
func IsDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".yaml", ".yml":
		return true
	}
	return false
}

// Expand turns a mix of files and directories into a sorted list of
// document paths. Directories are walked recursively.
func Expand(paths ...string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsDocument(path) {
				out = append(out, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(out)
	return slices.Compact(out), nil
}

// LoadDir loads every document below dir in path order.
func LoadDir(l Loader, dir string) ([]*devicefile.DeviceFile, error) {
	paths, err := Expand(dir)
	if err != nil {
		return nil, err
	}
	files := make([]*devicefile.DeviceFile, 0, len(paths))
	for _, path := range paths {
		f, err := l.Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
