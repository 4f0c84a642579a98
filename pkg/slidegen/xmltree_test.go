package slidegen

import (
	"strings"
	"testing"
)

const sampleSlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
	`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">` +
	`<p:cSld><p:spTree>` +
	`<p:pic><p:blipFill><a:blip r:embed="rId2"/></p:blipFill></p:pic>` +
	`<p:sp><p:txBody><a:p><a:r><a:t>Hello &amp; goodbye</a:t></a:r></a:p></p:txBody></p:sp>` +
	`</p:spTree></p:cSld></p:sld>`

func TestParseXMLBytesResolvesNamespaces(t *testing.T) {
	root, err := ParseXMLBytes([]byte(sampleSlideXML))
	if err != nil {
		t.Fatalf("ParseXMLBytes failed: %v", err)
	}
	if !root.Is(nsPresentation, "sld") {
		t.Errorf("expected root p:sld, got {%s}%s", root.Space, root.Local)
	}

	blips := root.FindAll(nsDrawing, "blip")
	if len(blips) != 1 {
		t.Fatalf("expected 1 a:blip, got %d", len(blips))
	}
	if got := blips[0].Attr(nsRelationships, "embed"); got != "rId2" {
		t.Errorf("expected r:embed=rId2, got %q", got)
	}

	texts := root.FindAll(nsDrawing, "t")
	if len(texts) != 1 || texts[0].Text != "Hello & goodbye" {
		t.Errorf("unexpected text nodes: %+v", texts)
	}
}

func TestMarshalKeepsPrefixes(t *testing.T) {
	root, err := ParseXMLBytes([]byte(sampleSlideXML))
	if err != nil {
		t.Fatalf("ParseXMLBytes failed: %v", err)
	}
	out, err := root.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	for _, fragment := range []string{"<p:sld ", "<a:blip ", `r:embed="rId2"`, "<a:t>Hello &amp; goodbye</a:t>"} {
		if !strings.Contains(string(out), fragment) {
			t.Errorf("marshaled output missing %q:\n%s", fragment, out)
		}
	}

	// The output must parse back to the same structure.
	again, err := ParseXMLBytes(out)
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if got := len(again.FindAll(nsDrawing, "blip")); got != 1 {
		t.Errorf("expected 1 a:blip after round trip, got %d", got)
	}
}

func TestParseXMLBytesRejectsMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unbalanced", "<a><b></a>"},
		{"empty", ""},
		{"two roots", "<a/><b/>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseXMLBytes([]byte(tt.input)); err == nil {
				t.Error("expected parse error")
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	root, err := ParseXMLBytes([]byte(sampleSlideXML))
	if err != nil {
		t.Fatalf("ParseXMLBytes failed: %v", err)
	}
	clone, err := root.Clone()
	if err != nil {
		t.Fatalf("Clone failed: %v", err)
	}

	clone.FindAll(nsDrawing, "t")[0].Text = "changed"
	clone.FindAll(nsDrawing, "blip")[0].SetAttr(nsRelationships, "embed", "rId99")

	if got := root.FindAll(nsDrawing, "t")[0].Text; got != "Hello & goodbye" {
		t.Errorf("original text mutated through clone: %q", got)
	}
	if got := root.FindAll(nsDrawing, "blip")[0].Attr(nsRelationships, "embed"); got != "rId2" {
		t.Errorf("original attribute mutated through clone: %q", got)
	}
}

func TestSetAttr(t *testing.T) {
	root, err := ParseXMLBytes([]byte(sampleSlideXML))
	if err != nil {
		t.Fatalf("ParseXMLBytes failed: %v", err)
	}
	blip := root.FindAll(nsDrawing, "blip")[0]

	if !blip.SetAttr(nsRelationships, "embed", "rId7") {
		t.Fatal("SetAttr did not find existing attribute")
	}
	if got := blip.Attr(nsRelationships, "embed"); got != "rId7" {
		t.Errorf("expected rId7, got %q", got)
	}
}

func TestNodeLookupHelpers(t *testing.T) {
	root, err := ParseXMLBytes([]byte(sampleSlideXML))
	if err != nil {
		t.Fatalf("ParseXMLBytes failed: %v", err)
	}

	cSld := root.ChildNamed(nsPresentation, "cSld")
	if cSld == nil {
		t.Fatal("ChildNamed failed to find p:cSld")
	}
	if root.ChildNamed(nsPresentation, "missing") != nil {
		t.Error("ChildNamed found a nonexistent child")
	}

	var count int
	root.Walk(func(*Node) { count++ })
	if count < 10 {
		t.Errorf("Walk visited too few nodes: %d", count)
	}
}
