// Package fritzing models the output side of a conversion: the .fzp module
// tree and the SVG view fragments it points at.
package fritzing

import (
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Tag kinds of the .fzp tree.
const (
	KindModule     = "module"
	KindConnectors = "connectors"
	KindConnector  = "connector"
	KindViews      = "views"
	KindLayers     = "layers"
	KindLayer      = "layer"
	KindProperties = "properties"
	KindProperty   = "property"
	KindBuses      = "buses"
	KindBus        = "bus"
	KindNodeMember = "nodeMember"
	KindP          = "p"
)

type View string

const (
	Breadboard View = "breadboard"
	Schematic  View = "schematic"
	PCB        View = "pcb"
	Icon       View = "icon"
)

// Views lists the views that get their own SVG file, in emission order.
var Views = []View{Breadboard, Schematic, PCB}

// ViewTag is the .fzp element naming a view, e.g. breadboardView.
func (v View) ViewTag() string { return string(v) + "View" }

func ViewFromTag(tag string) (View, bool) {
	for _, v := range append(Views, Icon) {
		if v.ViewTag() == tag {
			return v, true
		}
	}
	return "", false
}

type Attr struct {
	Name  string
	Value string
}

// Element is a node of an output tree. Attributes keep insertion order so
// serialized output is stable.
type Element struct {
	Kind     string
	Attrs    []Attr
	Text     string
	Children []*Element

	// Fragment is set on a view's layers element and names the SVG it
	// draws from.
	Fragment *Fragment
}

func NewElement(kind string, attrs ...string) *Element {
	el := &Element{Kind: kind}
	for i := 0; i+1 < len(attrs); i += 2 {
		el.Set(attrs[i], attrs[i+1])
	}
	return el
}

// Set replaces an attribute in place or appends it.
func (e *Element) Set(name, value string) *Element {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return e
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Add appends children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// AddNew creates a child, appends it and returns the child.
func (e *Element) AddNew(kind string, attrs ...string) *Element {
	child := NewElement(kind, attrs...)
	e.Children = append(e.Children, child)
	return child
}

func (e *Element) WithText(text string) *Element {
	e.Text = text
	return e
}

func (e *Element) Child(kind string) *Element {
	for _, c := range e.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

func (e *Element) ChildrenOf(kind string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// ChildText returns the text of the first child of the given kind.
func (e *Element) ChildText(kind string) string {
	if c := e.Child(kind); c != nil {
		return c.Text
	}
	return ""
}

// Clone deep copies the tree. Fragments are shared: they are never mutated
// after construction.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{
		Kind:     e.Kind,
		Attrs:    append([]Attr(nil), e.Attrs...),
		Text:     e.Text,
		Fragment: e.Fragment,
	}
	for _, c := range e.Children {
		out.Children = append(out.Children, c.Clone())
	}
	return out
}

func (e *Element) toEtree() *etree.Element {
	out := etree.NewElement(e.Kind)
	for _, a := range e.Attrs {
		out.CreateAttr(a.Name, a.Value)
	}
	if e.Text != "" {
		out.SetText(e.Text)
	}
	for _, c := range e.Children {
		out.AddChild(c.toEtree())
	}
	return out
}

// FromEtree converts a parsed element back into an output tree.
func FromEtree(src *etree.Element) *Element {
	el := &Element{Kind: src.FullTag()}
	for _, a := range src.Attr {
		el.Attrs = append(el.Attrs, Attr{Name: a.FullKey(), Value: a.Value})
	}
	if text := src.Text(); strings.TrimSpace(text) != "" {
		el.Text = text
	}
	for _, c := range src.ChildElements() {
		el.Children = append(el.Children, FromEtree(c))
	}
	return el
}

// WriteXML serializes root as an indented XML document.
func WriteXML(w io.Writer, root *Element) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.SetRoot(root.toEtree())
	doc.Indent(2)
	_, err := doc.WriteTo(w)
	return err
}

// ReadXML parses a document written by WriteXML.
func ReadXML(r io.Reader) (*Element, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, err
	}
	if doc.Root() == nil {
		return nil, io.ErrUnexpectedEOF
	}
	return FromEtree(doc.Root()), nil
}

// FormatFloat renders coordinates without exponent or trailing zeros.
func FormatFloat(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
