package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ooxmlPackage is an opened Office Open XML container.
type ooxmlPackage struct {
	files map[string]*zip.File
}

func openPackage(data []byte) (*ooxmlPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening package: %w", err)
	}

	pkg := &ooxmlPackage{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		pkg.files[strings.TrimPrefix(f.Name, "/")] = f
	}
	return pkg, nil
}

func (p *ooxmlPackage) has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// parse loads one part as an XML tree.
func (p *ooxmlPackage) parse(name string) (*xmlquery.Node, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("missing part %s", name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening part %s: %w", name, err)
	}
	defer rc.Close()

	doc, err := xmlquery.Parse(io.LimitReader(rc, maxPartSize))
	if err != nil {
		return nil, fmt.Errorf("parsing part %s: %w", name, err)
	}
	return doc, nil
}

// maxPartSize bounds a single decompressed XML part.
const maxPartSize = 256 << 20

// Element helpers match on local names so documents written with unusual
// namespace prefixes are still read.

func isElement(n *xmlquery.Node, local string) bool {
	return n != nil && n.Type == xmlquery.ElementNode && n.Data == local
}

func childElements(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	if n == nil {
		return out
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, local) {
			out = append(out, c)
		}
	}
	return out
}

func firstChild(n *xmlquery.Node, local string) *xmlquery.Node {
	if n == nil {
		return nil
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, local) {
			return c
		}
	}
	return nil
}

// findPath follows a chain of local element names from n.
func findPath(n *xmlquery.Node, path ...string) *xmlquery.Node {
	for _, local := range path {
		n = firstChild(n, local)
		if n == nil {
			return nil
		}
	}
	return n
}

// attr returns an attribute value by local name. When prefix is set the
// attribute must carry that prefix or the given namespace URI.
func attr(n *xmlquery.Node, prefix, namespace, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local != local {
			continue
		}
		if prefix == "" && a.Name.Space == "" {
			return a.Value
		}
		if prefix != "" && (a.Name.Space == prefix || a.Name.Space == namespace) {
			return a.Value
		}
	}
	return ""
}

// runText collects the text of a paragraph element in document order.
// Text nodes come from the given text element; tab and break elements become
// whitespace. Subtrees named in skip are not descended into.
func runText(p *xmlquery.Node, textElem string, tabs, breaks, skip map[string]bool) string {
	var sb strings.Builder
	var walk func(n *xmlquery.Node)
	walk = func(n *xmlquery.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != xmlquery.ElementNode {
				continue
			}
			switch {
			case skip[c.Data]:
				continue
			case c.Data == textElem:
				sb.WriteString(c.InnerText())
			case tabs[c.Data]:
				sb.WriteString("\t")
			case breaks[c.Data]:
				sb.WriteString("\n")
			default:
				walk(c)
			}
		}
	}
	walk(p)
	return sb.String()
}
