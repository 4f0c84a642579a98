package slidegen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testSlide describes one slide of an in-memory test deck: plain text
// paragraphs (each a list of run texts) and an optional table given as rows
// of cell texts.
type testSlide struct {
	paras [][]string
	table [][]string
}

// textSlide builds a slide with a single paragraph holding the given runs.
func textSlide(runs ...string) testSlide {
	return testSlide{paras: [][]string{runs}}
}

// tableSlide builds a slide with a heading paragraph and a table.
func tableSlide(heading string, rows ...[]string) testSlide {
	return testSlide{paras: [][]string{{heading}}, table: rows}
}

var xmlTextEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func runsXML(runs []string) string {
	var sb strings.Builder
	for _, r := range runs {
		fmt.Fprintf(&sb, `<a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r>`, xmlTextEscaper.Replace(r))
	}
	return sb.String()
}

func slideXML(s testSlide) string {
	var body strings.Builder
	for _, para := range s.paras {
		fmt.Fprintf(&body,
			`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Text"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:p>%s</a:p></p:txBody></p:sp>`,
			runsXML(para))
	}
	if len(s.table) > 0 {
		body.WriteString(`<p:graphicFrame><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/table"><a:tbl>`)
		for _, row := range s.table {
			body.WriteString("<a:tr>")
			for _, cell := range row {
				fmt.Fprintf(&body, `<a:tc><a:txBody><a:bodyPr/><a:p>%s</a:p></a:txBody></a:tc>`, runsXML([]string{cell}))
			}
			body.WriteString("</a:tr>")
		}
		body.WriteString(`</a:tbl></a:graphicData></a:graphic></p:graphicFrame>`)
	}
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
		`<p:cSld><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>` +
		body.String() +
		`</p:spTree></p:cSld></p:sld>`
}

// deckBytes assembles a minimal but well-formed PPTX deck from the given
// slides. Every slide references the single slide layout "Standard".
func deckBytes(t *testing.T, slides ...testSlide) []byte {
	t.Helper()

	var contentTypes strings.Builder
	contentTypes.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>` +
		`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	for i := range slides {
		fmt.Fprintf(&contentTypes,
			`<Override PartName="/ppt/slides/slide%d.xml" ContentType="%s"/>`, i+1, slideContentType)
	}
	contentTypes.WriteString(`</Types>`)

	var sldIDs, presRels strings.Builder
	for i := range slides {
		fmt.Fprintf(&sldIDs, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, i+1)
		fmt.Fprintf(&presRels,
			`<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, i+1, relTypeSlide, i+1)
	}

	parts := map[string]string{
		contentTypesPart: contentTypes.String(),
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="` + nsPackageRels + `">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>` +
			`</Relationships>`,
		presentationPart: `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<p:presentation xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
			`<p:sldMasterIdLst/><p:sldIdLst>` + sldIDs.String() + `</p:sldIdLst></p:presentation>`,
		"ppt/_rels/presentation.xml.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="` + nsPackageRels + `">` + presRels.String() + `</Relationships>`,
		"ppt/slideLayouts/slideLayout1.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<p:sldLayout xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
			`<p:cSld name="Standard"><p:spTree><p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/></p:spTree></p:cSld></p:sldLayout>`,
	}
	for i, s := range slides {
		parts[fmt.Sprintf("ppt/slides/slide%d.xml", i+1)] = slideXML(s)
		parts[fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", i+1)] = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="` + nsPackageRels + `">` +
			`<Relationship Id="rId1" Type="` + relTypeSlideLayout + `" Target="../slideLayouts/slideLayout1.xml"/>` +
			`</Relationships>`
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create zip part %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("failed to write zip part %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return buf.Bytes()
}

// writeDeck writes a test deck to a file under dir and returns its path.
func writeDeck(t *testing.T, dir, name string, slides ...testSlide) string {
	t.Helper()
	pathName := filepath.Join(dir, name)
	if err := os.WriteFile(pathName, deckBytes(t, slides...), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", pathName, err)
	}
	return pathName
}

// writeCSV writes a CSV file under dir and returns its path.
func writeCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	pathName := filepath.Join(dir, name)
	if err := os.WriteFile(pathName, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", pathName, err)
	}
	return pathName
}
