package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/modm-io/modm-devices-go/pkg/devicefile"
)

const xincludeNamespace = "http://www.w3.org/2001/XInclude"

// parseXML builds a node tree from XML tokens. Comments become comment
// nodes; xi:include elements are replaced by the included document's root.
func (p *Parser) parseXML(data []byte, path string, depth int) (*devicefile.Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		root  *devicefile.Node
		stack []*devicefile.Node
		text  []*strings.Builder
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := devicefile.NewElement(t.Name.Local)
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" || a.Name.Local == "xmlns" {
					continue
				}
				n.Attrs = append(n.Attrs, devicefile.A(a.Name.Local, a.Value))
			}
			if t.Name.Space == xincludeNamespace && t.Name.Local == "include" {
				href, _ := n.Attr("href")
				included, err := p.include(path, href, depth)
				if err != nil {
					return nil, err
				}
				n = included
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				if len(stack) == 0 {
					root = n
				} else {
					parent := stack[len(stack)-1]
					parent.Children = append(parent.Children, n)
				}
				continue
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			}
			stack = append(stack, n)
			text = append(text, &strings.Builder{})

		case xml.EndElement:
			n := stack[len(stack)-1]
			n.Text = strings.TrimSpace(text[len(text)-1].String())
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
			if len(stack) == 0 {
				root = n
			}

		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}

		case xml.Comment:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, devicefile.NewComment(string(t)))
			}
		}
	}

	if root == nil {
		return nil, ErrEmptyDocument
	}
	return root, nil
}

func (p *Parser) include(from, href string, depth int) (*devicefile.Node, error) {
	if href == "" {
		return nil, errors.New("include without href")
	}
	limit := p.MaxIncludeDepth
	if limit <= 0 {
		limit = DefaultMaxIncludeDepth
	}
	if depth >= limit {
		return nil, fmt.Errorf("%s: %w", href, ErrIncludeDepth)
	}

	path := href
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(from), href)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	root, err := p.parseXML(data, path, depth+1)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ParseError{Path: path, Err: err}
	}
	return root, nil
}
