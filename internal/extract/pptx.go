package extract

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/unibrain/backend/internal/models"
)

const (
	pptxPresentationPart = "ppt/presentation.xml"
	pptxPresentationRels = "ppt/_rels/presentation.xml.rels"
	relationshipsNS      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

var (
	slidePartRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
	pptxBreaks  = map[string]bool{"br": true}
	pptxSkip    = map[string]bool{"pPr": true, "rPr": true, "endParaRPr": true}
)

// PPTXExtractor reads the text of slide shapes in presentation order.
type PPTXExtractor struct{}

// NewPPTXExtractor creates a PPTX extractor.
func NewPPTXExtractor() *PPTXExtractor {
	return &PPTXExtractor{}
}

func (e *PPTXExtractor) Name() string          { return "pptx" }
func (e *PPTXExtractor) Format() models.Format { return models.FormatPPTX }

// Extract walks slides in order, then the top-level shapes of each slide in
// stored order. Every shape with a text body contributes its paragraphs
// joined by newlines, followed by a newline.
func (e *PPTXExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	pkg, err := openPackage(data)
	if err != nil {
		return "", err
	}
	if !pkg.has(pptxPresentationPart) {
		return "", fmt.Errorf("not a slide deck: missing %s", pptxPresentationPart)
	}

	slides, err := slideOrder(pkg)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, name := range slides {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		doc, err := pkg.parse(name)
		if err != nil {
			return "", err
		}

		tree := findPath(firstChild(doc, "sld"), "cSld", "spTree")
		for _, sp := range childElements(tree, "sp") {
			body := firstChild(sp, "txBody")
			if body == nil {
				continue
			}
			paragraphs := childElements(body, "p")
			lines := make([]string, 0, len(paragraphs))
			for _, p := range paragraphs {
				lines = append(lines, runText(p, "t", nil, pptxBreaks, pptxSkip))
			}
			sb.WriteString(strings.Join(lines, "\n"))
			sb.WriteString("\n")
		}
	}
	return sb.String(), nil
}

// slideOrder resolves the presentation's slide id list to part names. Decks
// without usable relationships fall back to numeric file order.
func slideOrder(pkg *ooxmlPackage) ([]string, error) {
	pres, err := pkg.parse(pptxPresentationPart)
	if err != nil {
		return nil, err
	}

	targets := map[string]string{}
	if pkg.has(pptxPresentationRels) {
		rels, err := pkg.parse(pptxPresentationRels)
		if err != nil {
			return nil, err
		}
		for _, rel := range childElements(firstChild(rels, "Relationships"), "Relationship") {
			id := attr(rel, "", "", "Id")
			target := attr(rel, "", "", "Target")
			if id == "" || target == "" {
				continue
			}
			if strings.HasPrefix(target, "/") {
				target = strings.TrimPrefix(target, "/")
			} else {
				target = path.Clean(path.Join("ppt", target))
			}
			targets[id] = target
		}
	}

	var ordered []string
	list := findPath(firstChild(pres, "presentation"), "sldIdLst")
	for _, sld := range childElements(list, "sldId") {
		rid := attr(sld, "r", relationshipsNS, "id")
		if target, ok := targets[rid]; ok && pkg.has(target) {
			ordered = append(ordered, target)
		}
	}
	if len(ordered) > 0 {
		return ordered, nil
	}

	type numbered struct {
		name string
		n    int
	}
	var found []numbered
	for name := range pkg.files {
		if m := slidePartRe.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			found = append(found, numbered{name: name, n: n})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })
	for _, f := range found {
		ordered = append(ordered, f.name)
	}
	return ordered, nil
}
