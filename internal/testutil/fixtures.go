package testutil

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
)

// BuildPDF returns a PDF with one page per entry. Each page draws its lines
// with the standard Helvetica font; an empty slice gives a blank page.
func BuildPDF(pages ...[]string) []byte {
	var objects []string
	add := func(body string) int {
		objects = append(objects, body)
		return len(objects)
	}

	catalog := add("") // filled in below
	pagesObj := add("")
	font := add("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	var kids []string
	for _, lines := range pages {
		var content strings.Builder
		if len(lines) > 0 {
			content.WriteString("BT\n/F1 12 Tf\n14 TL\n72 712 Td\n")
			for i, line := range lines {
				if i > 0 {
					content.WriteString("T*\n")
				}
				fmt.Fprintf(&content, "(%s) Tj\n", escapePDFString(line))
			}
			content.WriteString("ET")
		}
		stream := content.String()
		contents := add(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
		page := add(fmt.Sprintf("<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesObj, font, contents))
		kids = append(kids, fmt.Sprintf("%d 0 R", page))
	}

	objects[catalog-1] = fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj)
	objects[pagesObj-1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(kids))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root %d 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, catalog, xref)

	return buf.Bytes()
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}

const (
	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsP = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsA = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

func xmlEscape(s string) string {
	var b bytes.Buffer
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func zipParts(parts [][2]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p[0])
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(p[1])); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// BuildDOCX returns a word document with one body paragraph per entry. A tab
// character inside an entry becomes a w:tab element.
func BuildDOCX(paragraphs ...string) []byte {
	var body strings.Builder
	for _, p := range paragraphs {
		body.WriteString("<w:p><w:pPr><w:pStyle w:val=\"Normal\"/></w:pPr>")
		for i, seg := range strings.Split(p, "\t") {
			if i > 0 {
				body.WriteString("<w:r><w:tab/></w:r>")
			}
			if seg != "" {
				fmt.Fprintf(&body, `<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`, xmlEscape(seg))
			}
		}
		body.WriteString("</w:p>")
	}
	// a table between paragraphs is not body paragraph text
	if len(paragraphs) > 0 {
		body.WriteString(`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	}

	document := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="` + nsW + `" xmlns:r="` + nsR + `"><w:body>` +
		body.String() +
		`<w:sectPr/></w:body></w:document>`

	return zipParts([][2]string{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`},
		{"word/document.xml", document},
	})
}

// Slide describes one slide of a generated deck. Each Shapes entry becomes a
// text shape whose lines become paragraphs; Pictures adds shapes without a
// text body.
type Slide struct {
	Shapes   []string
	Pictures int
}

// BuildPPTX returns a slide deck whose presentation order equals the
// argument order.
func BuildPPTX(slides ...Slide) []byte {
	order := make([]int, len(slides))
	for i := range order {
		order[i] = i
	}
	return BuildPPTXWithOrder(slides, order)
}

// BuildPPTXWithOrder stores slides[i] as ppt/slides/slide<i+1>.xml and lists
// them in the presentation in the given index order.
func BuildPPTXWithOrder(slides []Slide, order []int) []byte {
	parts := [][2]string{
		{"[Content_Types].xml", `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="xml" ContentType="application/xml"/></Types>`},
	}

	var ids, rels strings.Builder
	for n, idx := range order {
		fmt.Fprintf(&ids, `<p:sldId id="%d" r:id="rId%d"/>`, 256+n, idx+10)
	}
	for i := range slides {
		fmt.Fprintf(&rels, `<Relationship Id="rId%d" Type="%s/slide" Target="slides/slide%d.xml"/>`, i+10, nsR, i+1)
	}

	parts = append(parts,
		[2]string{"ppt/presentation.xml", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<p:presentation xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
			`<p:sldIdLst>` + ids.String() + `</p:sldIdLst><p:sldSz cx="9144000" cy="6858000"/></p:presentation>`},
		[2]string{"ppt/_rels/presentation.xml.rels", `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + rels.String() + `</Relationships>`},
	)

	for i, s := range slides {
		var tree strings.Builder
		tree.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
		shapeID := 2
		for _, text := range s.Shapes {
			fmt.Fprintf(&tree, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="TextBox %d"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`, shapeID, shapeID)
			for _, line := range strings.Split(text, "\n") {
				if line == "" {
					tree.WriteString(`<a:p><a:endParaRPr lang="en-US"/></a:p>`)
					continue
				}
				fmt.Fprintf(&tree, `<a:p><a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r></a:p>`, xmlEscape(line))
			}
			tree.WriteString(`</p:txBody></p:sp>`)
			shapeID++
		}
		for j := 0; j < s.Pictures; j++ {
			fmt.Fprintf(&tree, `<p:pic><p:nvPicPr><p:cNvPr id="%d" name="Picture %d"/><p:cNvPicPr/><p:nvPr/></p:nvPicPr><p:blipFill/><p:spPr/></p:pic>`, shapeID, shapeID)
			shapeID++
		}

		parts = append(parts, [2]string{
			fmt.Sprintf("ppt/slides/slide%d.xml", i+1),
			`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
				`<p:sld xmlns:a="` + nsA + `" xmlns:r="` + nsR + `" xmlns:p="` + nsP + `">` +
				`<p:cSld><p:spTree>` + tree.String() + `</p:spTree></p:cSld></p:sld>`,
		})
	}

	return zipParts(parts)
}

// BuildPNG returns a small solid PNG image.
func BuildPNG(width, height int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(width, height)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// BuildPNGHeader returns a PNG holding only a signature, an IHDR chunk that
// declares width x height 8-bit RGBA pixels, and IEND. No pixel data follows.
func BuildPNGHeader(width, height uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(typ string, data []byte) {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(data)))
		buf.Write(n[:])
		body := append([]byte(typ), data...)
		buf.Write(body)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(body))
		buf.Write(n[:])
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // truecolor with alpha
	chunk("IHDR", ihdr)
	chunk("IEND", nil)
	return buf.Bytes()
}

// BuildJPEG returns a small solid JPEG image.
func BuildJPEG(width, height int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solid(width, height), nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func solid(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}
