package slidegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOpenPresentation(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeDeck(t, dir, "deck.pptx",
		textSlide("first slide"),
		textSlide("second slide"))

	pres, err := OpenPresentation(deckPath)
	if err != nil {
		t.Fatalf("OpenPresentation failed: %v", err)
	}
	if got := pres.SlideCount(); got != 2 {
		t.Fatalf("expected 2 slides, got %d", got)
	}

	text, err := pres.SlideText(1)
	if err != nil {
		t.Fatalf("SlideText failed: %v", err)
	}
	if !strings.Contains(text, "second slide") {
		t.Errorf("unexpected slide text: %q", text)
	}
}

func TestOpenPresentationNotAPptx(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.pptx")
	if err := os.WriteFile(bogus, []byte("not a zip"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := OpenPresentation(bogus)
	if !IsDocumentError(err) {
		t.Errorf("expected DocumentError, got %v", err)
	}
}

func TestSetSlideTreeRoundTrip(t *testing.T) {
	pres, err := NewPresentation(deckBytes(t, textSlide("before")))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}

	tree, err := pres.SlideTree(0)
	if err != nil {
		t.Fatalf("SlideTree failed: %v", err)
	}
	tree.FindAll(nsDrawing, "t")[0].Text = "after"
	if err := pres.SetSlideTree(0, tree); err != nil {
		t.Fatalf("SetSlideTree failed: %v", err)
	}

	data, err := pres.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	reopened, err := NewPresentation(data)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	text, err := reopened.SlideText(0)
	if err != nil {
		t.Fatalf("SlideText failed: %v", err)
	}
	if text != "after" {
		t.Errorf("expected text %q, got %q", "after", text)
	}
}

func TestSplitTemplate(t *testing.T) {
	dir := t.TempDir()
	deckPath := writeDeck(t, dir, "template.pptx",
		textSlide("one"),
		textSlide("two"),
		textSlide("three"))

	outDir := t.TempDir()
	splitFiles, err := SplitTemplate(deckPath, outDir)
	if err != nil {
		t.Fatalf("SplitTemplate failed: %v", err)
	}
	if len(splitFiles) != 3 {
		t.Fatalf("expected 3 split files, got %d", len(splitFiles))
	}

	for i, want := range []string{"one", "two", "three"} {
		wantName := fmt.Sprintf("_split_template_%d.pptx", i)
		if filepath.Base(splitFiles[i]) != wantName {
			t.Errorf("split file %d: expected name %s, got %s", i, wantName, filepath.Base(splitFiles[i]))
		}
		single, err := OpenPresentation(splitFiles[i])
		if err != nil {
			t.Fatalf("failed to open split file %d: %v", i, err)
		}
		if got := single.SlideCount(); got != 1 {
			t.Errorf("split file %d: expected 1 slide, got %d", i, got)
		}
		text, err := single.SlideText(0)
		if err != nil {
			t.Fatalf("SlideText failed: %v", err)
		}
		if text != want {
			t.Errorf("split file %d: expected text %q, got %q", i, want, text)
		}
	}
}

func TestAppendSlides(t *testing.T) {
	base, err := NewPresentation(deckBytes(t, textSlide("base slide")))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}
	other, err := NewPresentation(deckBytes(t, textSlide("extra one"), textSlide("extra two")))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}

	if err := base.AppendSlides(other); err != nil {
		t.Fatalf("AppendSlides failed: %v", err)
	}
	if got := base.SlideCount(); got != 3 {
		t.Fatalf("expected 3 slides after merge, got %d", got)
	}

	// The merged deck must survive a save/reopen cycle with all texts intact.
	data, err := base.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	merged, err := NewPresentation(data)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	for i, want := range []string{"base slide", "extra one", "extra two"} {
		text, err := merged.SlideText(i)
		if err != nil {
			t.Fatalf("SlideText(%d) failed: %v", i, err)
		}
		if text != want {
			t.Errorf("slide %d: expected %q, got %q", i, want, text)
		}
	}

	// Both decks use a layout named "Standard"; the merge must reuse the
	// base deck's layout instead of importing a second copy.
	var layouts int
	for _, name := range merged.pkg.PartNames() {
		if layoutPartPattern.MatchString(name) {
			layouts++
		}
	}
	if layouts != 1 {
		t.Errorf("expected 1 layout part after merge, got %d", layouts)
	}

	// Slide IDs must stay unique and at or above the OOXML minimum.
	seen := make(map[string]bool)
	for _, entry := range merged.slideEntries() {
		id := entry.Attr("", "id")
		if seen[id] {
			t.Errorf("duplicate slide id %s", id)
		}
		seen[id] = true
	}
}

func TestAppendSlidesCarriesPartContentTypes(t *testing.T) {
	const notesPart = "ppt/notesSlides/notesSlide1.xml"
	const notesType = "application/vnd.openxmlformats-officedocument.presentationml.notesSlide+xml"
	const notesRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"

	src, err := NewPresentation(deckBytes(t, textSlide("with notes")))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}
	src.pkg.SetPart(notesPart, []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+
		`<p:notes xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">`+
		`<p:cSld><p:spTree/></p:cSld></p:notes>`))
	if err := src.pkg.EnsureContentType(notesPart, notesType); err != nil {
		t.Fatalf("EnsureContentType failed: %v", err)
	}
	slidePart, err := src.SlidePartName(0)
	if err != nil {
		t.Fatal(err)
	}
	rels, err := src.pkg.PartRelationships(slidePart)
	if err != nil {
		t.Fatal(err)
	}
	rels = append(rels, Relationship{
		ID:     nextRelID(rels),
		Type:   notesRelType,
		Target: "../notesSlides/notesSlide1.xml",
	})
	if err := src.pkg.SetPartRelationships(slidePart, rels); err != nil {
		t.Fatal(err)
	}

	base, err := NewPresentation(deckBytes(t, textSlide("base")))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}
	if err := base.AppendSlides(src); err != nil {
		t.Fatalf("AppendSlides failed: %v", err)
	}

	if !base.pkg.HasPart(notesPart) {
		t.Fatal("notes part was not imported")
	}
	if got := base.pkg.PartContentType(notesPart); got != notesType {
		t.Errorf("imported part has content type %q, want %q", got, notesType)
	}
}

func TestAppendSlidesRemapsRelationshipIDs(t *testing.T) {
	tree, err := ParseXMLBytes([]byte(sampleSlideXML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	rewriteRelationshipIDs(tree, map[string]string{"rId2": "rId9"})
	if got := tree.FindAll(nsDrawing, "blip")[0].Attr(nsRelationships, "embed"); got != "rId9" {
		t.Errorf("expected r:embed remapped to rId9, got %q", got)
	}

	// IDs absent from the map are left alone.
	rewriteRelationshipIDs(tree, map[string]string{"rId404": "rId1"})
	if got := tree.FindAll(nsDrawing, "blip")[0].Attr(nsRelationships, "embed"); got != "rId9" {
		t.Errorf("unmapped id must stay, got %q", got)
	}
}

func TestKeepOnlySlide(t *testing.T) {
	pres, err := NewPresentation(deckBytes(t, textSlide("one"), textSlide("two"), textSlide("three")))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}
	if err := pres.KeepOnlySlide(1); err != nil {
		t.Fatalf("KeepOnlySlide failed: %v", err)
	}
	if got := pres.SlideCount(); got != 1 {
		t.Fatalf("expected 1 slide, got %d", got)
	}
	text, err := pres.SlideText(0)
	if err != nil {
		t.Fatalf("SlideText failed: %v", err)
	}
	if text != "two" {
		t.Errorf("expected slide text %q, got %q", "two", text)
	}
}

func TestSlideTextConcatenatesRuns(t *testing.T) {
	pres, err := NewPresentation(deckBytes(t, testSlide{
		paras: [][]string{{"Hello ", "wor", "ld"}},
	}))
	if err != nil {
		t.Fatalf("NewPresentation failed: %v", err)
	}
	text, err := pres.SlideText(0)
	if err != nil {
		t.Fatalf("SlideText failed: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("expected concatenated runs, got %q", text)
	}
}
