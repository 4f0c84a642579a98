package slidegen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"strings"
)

// Package is an open PPTX package: the set of zip parts, mutable in memory.
// Part order from the source archive is preserved on save, with new parts
// appended at the end.
type Package struct {
	parts map[string][]byte
	order []string
}

// Relationship represents a relationship in the PPTX package
type Relationship struct {
	ID         string `xml:"Id,attr"`
	Type       string `xml:"Type,attr"`
	Target     string `xml:"Target,attr"`
	TargetMode string `xml:"TargetMode,attr,omitempty"`
}

// Relationships represents the collection of relationships for one part
type Relationships struct {
	XMLName      xml.Name       `xml:"Relationships"`
	Namespace    string         `xml:"xmlns,attr"`
	Relationship []Relationship `xml:"Relationship"`
}

// Relationship types used by the merger.
const (
	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
)

// NewPackage parses a PPTX package held in memory.
func NewPackage(data []byte) (*Package, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read zip file: %w", err)
	}

	p := &Package{parts: make(map[string][]byte, len(zipReader.File))}
	for _, file := range zipReader.File {
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open part %s: %w", file.Name, err)
		}
		var buf bytes.Buffer
		_, err = buf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read part %s: %w", file.Name, err)
		}
		p.setPart(file.Name, buf.Bytes())
	}

	if !p.HasPart("ppt/presentation.xml") {
		return nil, fmt.Errorf("not a valid PPTX file: missing ppt/presentation.xml")
	}
	return p, nil
}

// OpenPackage reads a PPTX package from a file path.
func OpenPackage(pathName string) (*Package, error) {
	content, err := os.ReadFile(pathName)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return NewPackage(content)
}

// Part retrieves the content of a specific part
func (p *Package) Part(name string) ([]byte, error) {
	content, ok := p.parts[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	return content, nil
}

// HasPart reports whether the named part exists.
func (p *Package) HasPart(name string) bool {
	_, ok := p.parts[name]
	return ok
}

// SetPart adds or replaces a part.
func (p *Package) SetPart(name string, content []byte) {
	p.setPart(name, content)
}

func (p *Package) setPart(name string, content []byte) {
	if _, ok := p.parts[name]; !ok {
		p.order = append(p.order, name)
	}
	p.parts[name] = content
}

// PartNames returns all part names in archive order.
func (p *Package) PartNames() []string {
	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// Bytes serializes the package back to a zip archive.
func (p *Package) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range p.order {
		fw, err := w.Create(name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", name, err)
		}
		if _, err := fw.Write(p.parts[name]); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close zip writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the package to a file.
func (p *Package) Save(pathName string) error {
	data, err := p.Bytes()
	if err != nil {
		return NewDocumentError("save", pathName, err)
	}
	if err := os.WriteFile(pathName, data, 0644); err != nil {
		return NewDocumentError("save", pathName, err)
	}
	return nil
}

// relsPathFor converts a part name to its relationships part name,
// e.g. "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels".
func relsPathFor(partName string) string {
	dir := path.Dir(partName)
	base := path.Base(partName)
	if dir == "." {
		return "_rels/" + base + ".rels"
	}
	return dir + "/_rels/" + base + ".rels"
}

// PartRelationships returns the relationships of the given part. A missing
// relationships part is not an error, just empty.
func (p *Package) PartRelationships(partName string) ([]Relationship, error) {
	content, ok := p.parts[relsPathFor(partName)]
	if !ok {
		return []Relationship{}, nil
	}

	var rels Relationships
	if err := xml.Unmarshal(content, &rels); err != nil {
		return nil, fmt.Errorf("failed to parse relationships of %s: %w", partName, err)
	}
	return rels.Relationship, nil
}

// SetPartRelationships writes the relationships part for the given part.
func (p *Package) SetPartRelationships(partName string, rels []Relationship) error {
	output, err := xml.Marshal(&Relationships{
		Namespace:    nsPackageRels,
		Relationship: rels,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal relationships of %s: %w", partName, err)
	}

	content := append([]byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`+"\r\n"), output...)
	p.setPart(relsPathFor(partName), content)
	return nil
}

// resolveTarget resolves a relationship target against the part that holds the
// relationship. External targets are returned unchanged.
func resolveTarget(partName string, rel Relationship) string {
	if strings.EqualFold(rel.TargetMode, "External") {
		return rel.Target
	}
	if strings.HasPrefix(rel.Target, "/") {
		return strings.TrimPrefix(rel.Target, "/")
	}
	return path.Clean(path.Join(path.Dir(partName), rel.Target))
}

// relativeTarget turns an absolute part name into a target relative to the
// part that will hold the relationship.
func relativeTarget(fromPart, toPart string) string {
	fromDir := path.Dir(fromPart)
	prefix := fromDir + "/"
	if strings.HasPrefix(toPart, prefix) {
		return strings.TrimPrefix(toPart, prefix)
	}
	// Walk up until the target is reachable.
	up := ""
	dir := fromDir
	for dir != "." && dir != "/" {
		dir = path.Dir(dir)
		up += "../"
		base := ""
		if dir != "." {
			base = dir + "/"
		}
		if strings.HasPrefix(toPart, base) {
			return up + strings.TrimPrefix(toPart, base)
		}
	}
	return toPart
}

// nextRelID returns an unused rId for the given relationship set.
func nextRelID(rels []Relationship) string {
	used := make(map[string]bool, len(rels))
	for _, r := range rels {
		used[r.ID] = true
	}
	for i := 1; ; i++ {
		id := fmt.Sprintf("rId%d", i)
		if !used[id] {
			return id
		}
	}
}

// contentTypesPart is the fixed name of the package content types part.
const contentTypesPart = "[Content_Types].xml"

const nsContentTypes = "http://schemas.openxmlformats.org/package/2006/content-types"

// EnsureContentType registers an Override content type for a part, if the
// package does not already declare one.
func (p *Package) EnsureContentType(partName, contentType string) error {
	return p.editContentTypes(func(root *Node) {
		want := "/" + partName
		for _, o := range root.ChildrenNamed(nsContentTypes, "Override") {
			if o.Attr("", "PartName") == want {
				return
			}
		}
		root.Children = append(root.Children, &Node{
			Space: nsContentTypes,
			Local: "Override",
			Attrs: []Attr{
				{Local: "PartName", Value: want},
				{Local: "ContentType", Value: contentType},
			},
		})
	})
}

// EnsureDefaultContentType registers a Default content type for a file
// extension, if absent.
func (p *Package) EnsureDefaultContentType(extension, contentType string) error {
	return p.editContentTypes(func(root *Node) {
		for _, d := range root.ChildrenNamed(nsContentTypes, "Default") {
			if strings.EqualFold(d.Attr("", "Extension"), extension) {
				return
			}
		}
		root.Children = append(root.Children, &Node{
			Space: nsContentTypes,
			Local: "Default",
			Attrs: []Attr{
				{Local: "Extension", Value: extension},
				{Local: "ContentType", Value: contentType},
			},
		})
	})
}

// PartContentType resolves the declared content type of a part: an Override
// wins, then the Default for the part's extension, then "".
func (p *Package) PartContentType(partName string) string {
	content, err := p.Part(contentTypesPart)
	if err != nil {
		return ""
	}
	root, err := ParseXMLBytes(content)
	if err != nil {
		return ""
	}
	want := "/" + partName
	for _, o := range root.ChildrenNamed(nsContentTypes, "Override") {
		if o.Attr("", "PartName") == want {
			return o.Attr("", "ContentType")
		}
	}
	ext := strings.TrimPrefix(path.Ext(partName), ".")
	for _, d := range root.ChildrenNamed(nsContentTypes, "Default") {
		if strings.EqualFold(d.Attr("", "Extension"), ext) {
			return d.Attr("", "ContentType")
		}
	}
	return ""
}

func (p *Package) editContentTypes(edit func(root *Node)) error {
	content, err := p.Part(contentTypesPart)
	if err != nil {
		return err
	}
	root, err := ParseXMLBytes(content)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", contentTypesPart, err)
	}
	edit(root)
	updated, err := root.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", contentTypesPart, err)
	}
	p.setPart(contentTypesPart, updated)
	return nil
}
