package slidegen

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

const (
	presentationPart = "ppt/presentation.xml"
	slideContentType = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
)

// imageContentTypes maps media file extensions to their content types, for
// registering Default entries when media parts are imported during a merge.
var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"tif":  "image/tiff",
	"svg":  "image/svg+xml",
	"webp": "image/webp",
	"emf":  "image/x-emf",
	"wmf":  "image/x-wmf",
}

// Presentation is an open slide deck: the underlying package plus the parsed
// presentation part and its relationships. Mutations accumulate in memory and
// are flushed into the package on Save or Bytes.
type Presentation struct {
	pkg  *Package
	root *Node
	rels []Relationship
}

// OpenPresentation opens a deck from a file path.
func OpenPresentation(pathName string) (*Presentation, error) {
	pkg, err := OpenPackage(pathName)
	if err != nil {
		return nil, NewDocumentError("open", pathName, err)
	}
	return newPresentation(pkg, pathName)
}

// NewPresentation opens a deck held in memory.
func NewPresentation(data []byte) (*Presentation, error) {
	pkg, err := NewPackage(data)
	if err != nil {
		return nil, NewDocumentError("open", "", err)
	}
	return newPresentation(pkg, "")
}

func newPresentation(pkg *Package, pathName string) (*Presentation, error) {
	content, err := pkg.Part(presentationPart)
	if err != nil {
		return nil, NewDocumentError("parse", pathName, err)
	}
	root, err := ParseXMLBytes(content)
	if err != nil {
		return nil, NewDocumentError("parse", pathName, err)
	}
	rels, err := pkg.PartRelationships(presentationPart)
	if err != nil {
		return nil, NewDocumentError("parse", pathName, err)
	}
	return &Presentation{pkg: pkg, root: root, rels: rels}, nil
}

// flush writes the in-memory presentation part and relationships back into
// the package.
func (p *Presentation) flush() error {
	content, err := p.root.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal presentation part: %w", err)
	}
	p.pkg.SetPart(presentationPart, content)
	return p.pkg.SetPartRelationships(presentationPart, p.rels)
}

// Bytes serializes the deck to PPTX bytes.
func (p *Presentation) Bytes() ([]byte, error) {
	if err := p.flush(); err != nil {
		return nil, err
	}
	return p.pkg.Bytes()
}

// Save writes the deck to a file.
func (p *Presentation) Save(pathName string) error {
	if err := p.flush(); err != nil {
		return NewDocumentError("save", pathName, err)
	}
	return p.pkg.Save(pathName)
}

// slideIDList returns the p:sldIdLst element, or nil when the deck has none.
func (p *Presentation) slideIDList() *Node {
	return p.root.ChildNamed(nsPresentation, "sldIdLst")
}

// ensureSlideIDList returns the p:sldIdLst element, creating it when absent.
// A new list is placed right after the master list so the part stays valid.
func (p *Presentation) ensureSlideIDList() *Node {
	if list := p.slideIDList(); list != nil {
		return list
	}
	list := &Node{Space: nsPresentation, Local: "sldIdLst"}
	pos := 0
	for i, c := range p.root.Children {
		if c.Is(nsPresentation, "sldMasterIdLst") {
			pos = i + 1
			break
		}
	}
	children := make([]*Node, 0, len(p.root.Children)+1)
	children = append(children, p.root.Children[:pos]...)
	children = append(children, list)
	children = append(children, p.root.Children[pos:]...)
	p.root.Children = children
	return list
}

func (p *Presentation) slideEntries() []*Node {
	list := p.slideIDList()
	if list == nil {
		return nil
	}
	return list.ChildrenNamed(nsPresentation, "sldId")
}

// SlideCount returns the number of slides in the deck.
func (p *Presentation) SlideCount() int {
	return len(p.slideEntries())
}

// SlidePartName resolves the package part name of the i-th slide.
func (p *Presentation) SlidePartName(i int) (string, error) {
	entries := p.slideEntries()
	if i < 0 || i >= len(entries) {
		return "", fmt.Errorf("slide index %d out of range (%d slides)", i, len(entries))
	}
	relID := entries[i].Attr(nsRelationships, "id")
	for _, rel := range p.rels {
		if rel.ID == relID {
			return resolveTarget(presentationPart, rel), nil
		}
	}
	return "", fmt.Errorf("slide %d references unknown relationship %s", i, relID)
}

// SlideTree parses the i-th slide's markup.
func (p *Presentation) SlideTree(i int) (*Node, error) {
	partName, err := p.SlidePartName(i)
	if err != nil {
		return nil, err
	}
	content, err := p.pkg.Part(partName)
	if err != nil {
		return nil, err
	}
	return ParseXMLBytes(content)
}

// SetSlideTree writes an updated markup tree back to the i-th slide part.
func (p *Presentation) SetSlideTree(i int, tree *Node) error {
	partName, err := p.SlidePartName(i)
	if err != nil {
		return err
	}
	content, err := tree.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal slide %d: %w", i, err)
	}
	p.pkg.SetPart(partName, content)
	return nil
}

// SlideText returns the concatenated text content of the i-th slide, covering
// both text frames and table cells.
func (p *Presentation) SlideText(i int) (string, error) {
	tree, err := p.SlideTree(i)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, t := range tree.FindAll(nsDrawing, "t") {
		b.WriteString(t.Text)
	}
	return b.String(), nil
}

// KeepOnlySlide removes every slide except the i-th from the slide list. The
// slide parts themselves stay in the package, as does the full layout and
// master dictionary, so the remaining slide keeps all its references.
func (p *Presentation) KeepOnlySlide(i int) error {
	entries := p.slideEntries()
	if i < 0 || i >= len(entries) {
		return fmt.Errorf("slide index %d out of range (%d slides)", i, len(entries))
	}
	keep := entries[i]
	p.slideIDList().RemoveChildren(func(c *Node) bool {
		return c.Is(nsPresentation, "sldId") && c != keep
	})
	return nil
}

var slidePartPattern = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)
var layoutPartPattern = regexp.MustCompile(`^ppt/slideLayouts/slideLayout(\d+)\.xml$`)

// nextSlideNumber returns the lowest slide part number not yet in use.
func (p *Presentation) nextSlideNumber() int {
	max := 0
	for _, name := range p.pkg.PartNames() {
		if m := slidePartPattern.FindStringSubmatch(name); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > max {
				max = n
			}
		}
	}
	return max + 1
}

// layoutPartNames returns the deck's layout parts in numeric order.
func (p *Presentation) layoutPartNames() []string {
	type numbered struct {
		name string
		n    int
	}
	var layouts []numbered
	for _, name := range p.pkg.PartNames() {
		if m := layoutPartPattern.FindStringSubmatch(name); m != nil {
			n, _ := strconv.Atoi(m[1])
			layouts = append(layouts, numbered{name, n})
		}
	}
	for i := 1; i < len(layouts); i++ {
		for j := i; j > 0 && layouts[j].n < layouts[j-1].n; j-- {
			layouts[j], layouts[j-1] = layouts[j-1], layouts[j]
		}
	}
	names := make([]string, len(layouts))
	for i, l := range layouts {
		names[i] = l.name
	}
	return names
}

// layoutName reads the display name of a layout part, or "" when unreadable.
func (p *Presentation) layoutName(partName string) string {
	content, err := p.pkg.Part(partName)
	if err != nil {
		return ""
	}
	root, err := ParseXMLBytes(content)
	if err != nil {
		return ""
	}
	cSld := root.ChildNamed(nsPresentation, "cSld")
	if cSld == nil {
		return ""
	}
	return cSld.Attr("", "name")
}

// slideLayoutPart resolves the layout part a slide is based on, or "".
func (p *Presentation) slideLayoutPart(slidePart string) string {
	rels, err := p.pkg.PartRelationships(slidePart)
	if err != nil {
		return ""
	}
	for _, rel := range rels {
		if rel.Type == relTypeSlideLayout {
			return resolveTarget(slidePart, rel)
		}
	}
	return ""
}

// matchLayout picks the destination layout for a source layout name: same
// name if the destination has one, otherwise the first layout.
func (p *Presentation) matchLayout(name string) string {
	layouts := p.layoutPartNames()
	if len(layouts) == 0 {
		return ""
	}
	if name != "" {
		for _, l := range layouts {
			if p.layoutName(l) == name {
				return l
			}
		}
	}
	return layouts[0]
}

// AppendSlides appends every slide of the source deck to p, replicating each
// slide's external relationships and rewriting relationship-id references in
// the copied markup. Relationships that cannot be replicated are skipped; the
// corresponding references in the copied markup are left unmapped.
func (p *Presentation) AppendSlides(src *Presentation) error {
	for i := 0; i < src.SlideCount(); i++ {
		if err := p.appendSlide(src, i); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presentation) appendSlide(src *Presentation, i int) error {
	srcPart, err := src.SlidePartName(i)
	if err != nil {
		return NewDocumentError("merge", srcPart, err)
	}
	srcTree, err := src.SlideTree(i)
	if err != nil {
		return NewDocumentError("merge", srcPart, err)
	}
	srcRels, err := src.pkg.PartRelationships(srcPart)
	if err != nil {
		return NewDocumentError("merge", srcPart, err)
	}

	newPart := fmt.Sprintf("ppt/slides/slide%d.xml", p.nextSlideNumber())

	var newRels []Relationship
	layout := p.matchLayout(src.layoutName(src.slideLayoutPart(srcPart)))
	if layout != "" {
		newRels = append(newRels, Relationship{
			ID:     nextRelID(newRels),
			Type:   relTypeSlideLayout,
			Target: relativeTarget(newPart, layout),
		})
	} else {
		GetLogger().Warn("destination deck has no layouts; slide %s copied without one", srcPart)
	}

	// Replicate source relationships, building the old-to-new id map. Layout
	// relationships are excluded; anything that cannot be replicated is
	// skipped and its references stay unmapped.
	idMap := make(map[string]string, len(srcRels))
	for _, rel := range srcRels {
		if rel.Type == relTypeSlideLayout {
			continue
		}
		newRel := Relationship{Type: rel.Type, TargetMode: rel.TargetMode}
		if strings.EqualFold(rel.TargetMode, "External") {
			newRel.Target = rel.Target
		} else {
			target := resolveTarget(srcPart, rel)
			data, err := src.pkg.Part(target)
			if err != nil {
				GetLogger().Debug("skipping relationship %s of %s: %v", rel.ID, srcPart, err)
				continue
			}
			imported := p.importPart(src.pkg, target, data)
			newRel.Target = relativeTarget(newPart, imported)
		}
		newRel.ID = nextRelID(newRels)
		newRels = append(newRels, newRel)
		idMap[rel.ID] = newRel.ID
	}

	newTree, err := srcTree.Clone()
	if err != nil {
		return NewDocumentError("merge", srcPart, err)
	}
	rewriteRelationshipIDs(newTree, idMap)

	content, err := newTree.Marshal()
	if err != nil {
		return NewDocumentError("merge", srcPart, err)
	}
	p.pkg.SetPart(newPart, content)
	if err := p.pkg.SetPartRelationships(newPart, newRels); err != nil {
		return NewDocumentError("merge", newPart, err)
	}
	if err := p.pkg.EnsureContentType(newPart, slideContentType); err != nil {
		return NewDocumentError("merge", newPart, err)
	}

	presRelID := nextRelID(p.rels)
	p.rels = append(p.rels, Relationship{
		ID:     presRelID,
		Type:   relTypeSlide,
		Target: relativeTarget(presentationPart, newPart),
	})

	list := p.ensureSlideIDList()
	list.Children = append(list.Children, &Node{
		Space: nsPresentation,
		Local: "sldId",
		Attrs: []Attr{
			{Local: "id", Value: strconv.Itoa(p.nextSlideID())},
			{Space: nsRelationships, Local: "id", Value: presRelID},
		},
	})
	return nil
}

// nextSlideID returns an unused slide id. Slide ids start at 256.
func (p *Presentation) nextSlideID() int {
	max := 255
	for _, entry := range p.slideEntries() {
		if n, err := strconv.Atoi(entry.Attr("", "id")); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// importPart brings a part of the source package into the destination. An
// existing part with identical content is reused; a name collision with
// different content allocates a fresh numbered name in the same directory.
// The part's content type declaration is carried over: media extensions get a
// Default entry, everything else the source's own declaration as an Override.
func (p *Presentation) importPart(src *Package, name string, data []byte) string {
	srcName := name
	if existing, err := p.pkg.Part(name); err == nil {
		if string(existing) == string(data) {
			return name
		}
		name = p.freePartName(name)
	}
	p.pkg.SetPart(name, data)

	ext := strings.ToLower(strings.TrimPrefix(path.Ext(name), "."))
	if ct, ok := imageContentTypes[ext]; ok {
		if err := p.pkg.EnsureDefaultContentType(ext, ct); err != nil {
			GetLogger().Warn("could not register content type for %s: %v", name, err)
		}
	} else if ct := src.PartContentType(srcName); ct != "" {
		if err := p.pkg.EnsureContentType(name, ct); err != nil {
			GetLogger().Warn("could not register content type for %s: %v", name, err)
		}
	}
	return name
}

// freePartName finds an unused variant of a colliding part name by bumping a
// numeric suffix on the file stem.
func (p *Presentation) freePartName(name string) string {
	dir := path.Dir(name)
	ext := path.Ext(name)
	stem := strings.TrimSuffix(path.Base(name), ext)
	stem = strings.TrimRightFunc(stem, func(r rune) bool { return r >= '0' && r <= '9' })
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s/%s%d%s", dir, stem, i, ext)
		if !p.pkg.HasPart(candidate) {
			return candidate
		}
	}
}

// rewriteRelationshipIDs walks a copied markup tree and rewrites every
// relationship-reference attribute found in the id map, leaving all other
// attributes untouched.
func rewriteRelationshipIDs(tree *Node, idMap map[string]string) {
	if len(idMap) == 0 {
		return
	}
	tree.Walk(func(n *Node) {
		for idx, a := range n.Attrs {
			if a.Space != nsRelationships {
				continue
			}
			if newID, ok := idMap[a.Value]; ok {
				n.Attrs[idx].Value = newID
			}
		}
	})
}

// SplitTemplate decomposes a template deck into one single-slide document per
// slide, written to dir. The returned paths are in template slide order.
func SplitTemplate(templatePath, dir string) ([]string, error) {
	source, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, NewDocumentError("read", templatePath, err)
	}

	template, err := NewPresentation(source)
	if err != nil {
		return nil, err
	}
	total := template.SlideCount()

	var splitFiles []string
	for i := 0; i < total; i++ {
		single, err := NewPresentation(source)
		if err != nil {
			return nil, err
		}
		if err := single.KeepOnlySlide(i); err != nil {
			return nil, err
		}
		outPath := filepath.Join(dir, fmt.Sprintf("_split_template_%d.pptx", i))
		if err := single.Save(outPath); err != nil {
			return nil, err
		}
		splitFiles = append(splitFiles, outPath)
	}
	return splitFiles, nil
}
