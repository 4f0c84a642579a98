package slidegen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/tiendc/go-deepcopy"
)

// OOXML namespace URIs used throughout the package.
const (
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Attr is one attribute of a Node. Space is the resolved namespace URI, or
// "xmlns" for a prefixed namespace declaration.
type Attr struct {
	Space string
	Local string
	Value string
}

// Node is one element of a parsed XML part. The tree preserves everything the
// decoder saw: element order, attributes, character data and every namespace
// declaration, so that untouched markup survives a parse/serialize round trip.
type Node struct {
	Space    string
	Local    string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// ParseXMLTree parses an XML document into a Node tree rooted at the document
// element. Comments, processing instructions and directives are dropped.
func ParseXMLTree(r io.Reader) (*Node, error) {
	decoder := xml.NewDecoder(r)

	var root *Node
	var stack []*Node

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			node := &Node{Space: t.Name.Space, Local: t.Name.Local}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Space: a.Name.Space, Local: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("failed to parse XML: multiple document elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("failed to parse XML: unbalanced end element")
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("failed to parse XML: no document element")
	}
	if len(stack) != 0 {
		return nil, fmt.Errorf("failed to parse XML: unclosed element")
	}
	return root, nil
}

// ParseXMLBytes parses an XML document held in memory.
func ParseXMLBytes(data []byte) (*Node, error) {
	return ParseXMLTree(bytes.NewReader(data))
}

// Marshal serializes the tree back to a standalone XML document. Namespace
// prefixes are reconstructed from the declarations carried in the tree itself.
func (n *Node) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n")
	if err := writeNode(&buf, n, map[string]string{"http://www.w3.org/XML/1998/namespace": "xml"}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeNode serializes one element. scope maps namespace URI to the prefix in
// force at this depth ("" meaning the default namespace).
func writeNode(buf *bytes.Buffer, n *Node, scope map[string]string) error {
	// Namespace declarations on this element open a new scope.
	declares := false
	for _, a := range n.Attrs {
		if a.Space == "xmlns" || (a.Space == "" && a.Local == "xmlns") {
			declares = true
			break
		}
	}
	if declares {
		inner := make(map[string]string, len(scope)+2)
		for k, v := range scope {
			inner[k] = v
		}
		for _, a := range n.Attrs {
			if a.Space == "xmlns" {
				inner[a.Value] = a.Local
			} else if a.Space == "" && a.Local == "xmlns" {
				inner[a.Value] = ""
			}
		}
		scope = inner
	}

	name, err := qualifiedName(n.Space, n.Local, scope, true)
	if err != nil {
		return err
	}

	buf.WriteByte('<')
	buf.WriteString(name)
	for _, a := range n.Attrs {
		var attrName string
		switch {
		case a.Space == "xmlns":
			attrName = "xmlns:" + a.Local
		case a.Space == "":
			attrName = a.Local
		default:
			attrName, err = qualifiedName(a.Space, a.Local, scope, false)
			if err != nil {
				return err
			}
		}
		buf.WriteByte(' ')
		buf.WriteString(attrName)
		buf.WriteString(`="`)
		buf.WriteString(escapeAttr(a.Value))
		buf.WriteByte('"')
	}

	if n.Text == "" && len(n.Children) == 0 {
		buf.WriteString("/>")
		return nil
	}
	buf.WriteByte('>')

	if n.Text != "" {
		if err := xml.EscapeText(buf, []byte(n.Text)); err != nil {
			return err
		}
	}
	for _, child := range n.Children {
		if err := writeNode(buf, child, scope); err != nil {
			return err
		}
	}

	buf.WriteString("</")
	buf.WriteString(name)
	buf.WriteByte('>')
	return nil
}

// qualifiedName resolves a (URI, local) pair back to prefix:local form.
// Attributes never pick up the default namespace, so an element-only match on
// the empty prefix is rejected for them.
func qualifiedName(space, local string, scope map[string]string, element bool) (string, error) {
	if space == "" {
		return local, nil
	}
	prefix, ok := scope[space]
	if !ok {
		return "", fmt.Errorf("no namespace declaration in scope for %s", space)
	}
	if prefix == "" {
		if element {
			return local, nil
		}
		return "", fmt.Errorf("attribute %s requires a prefixed declaration for %s", local, space)
	}
	return prefix + ":" + local, nil
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// Clone deep-copies the subtree rooted at n.
func (n *Node) Clone() (*Node, error) {
	c := &Node{}
	if err := deepcopy.Copy(c, n); err != nil {
		return nil, fmt.Errorf("failed to copy element tree: %w", err)
	}
	return c, nil
}

// Is reports whether the node has the given resolved name.
func (n *Node) Is(space, local string) bool {
	return n.Space == space && n.Local == local
}

// Attr returns the value of the named attribute, or "" when absent.
func (n *Node) Attr(space, local string) string {
	for _, a := range n.Attrs {
		if a.Space == space && a.Local == local {
			return a.Value
		}
	}
	return ""
}

// SetAttr replaces the value of the named attribute if present.
func (n *Node) SetAttr(space, local, value string) bool {
	for i, a := range n.Attrs {
		if a.Space == space && a.Local == local {
			n.Attrs[i].Value = value
			return true
		}
	}
	return false
}

// ChildNamed returns the first direct child with the given name, or nil.
func (n *Node) ChildNamed(space, local string) *Node {
	for _, c := range n.Children {
		if c.Is(space, local) {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns all direct children with the given name.
func (n *Node) ChildrenNamed(space, local string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Is(space, local) {
			out = append(out, c)
		}
	}
	return out
}

// FindAll returns every node in the subtree with the given name, in document
// order, including n itself.
func (n *Node) FindAll(space, local string) []*Node {
	var out []*Node
	n.Walk(func(node *Node) {
		if node.Is(space, local) {
			out = append(out, node)
		}
	})
	return out
}

// Walk visits the subtree in document order.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// RemoveChildren drops every direct child for which remove returns true.
func (n *Node) RemoveChildren(remove func(*Node) bool) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if !remove(c) {
			kept = append(kept, c)
		}
	}
	n.Children = kept
}
