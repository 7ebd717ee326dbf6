package eagle

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Tag kinds the conversion engine interprets. Any other tag is kept in the
// tree untouched.
const (
	KindEagle       = "eagle"
	KindDrawing     = "drawing"
	KindLibrary     = "library"
	KindPackage     = "package"
	KindSymbol      = "symbol"
	KindDeviceSet   = "deviceset"
	KindGate        = "gate"
	KindDevice      = "device"
	KindConnect     = "connect"
	KindTechnology  = "technology"
	KindAttribute   = "attribute"
	KindPad         = "pad"
	KindSMD         = "smd"
	KindPin         = "pin"
	KindWire        = "wire"
	KindVertex      = "vertex"
	KindPolygon     = "polygon"
	KindCircle      = "circle"
	KindRectangle   = "rectangle"
	KindText        = "text"
	KindLayer       = "layer"
	KindDescription = "description"
)

type Attr struct {
	Name  string
	Value string
}

// Element is one node of a loaded EAGLE document. Attributes keep document
// order.
type Element struct {
	Kind     string
	Attrs    []Attr
	Text     string
	Children []*Element
	Parent   *Element
}

func fromEtree(src *etree.Element, parent *Element) *Element {
	el := &Element{
		Kind:   src.Tag,
		Attrs:  make([]Attr, 0, len(src.Attr)),
		Text:   strings.TrimSpace(src.Text()),
		Parent: parent,
	}

	for _, a := range src.Attr {
		el.Attrs = append(el.Attrs, Attr{Name: a.FullKey(), Value: a.Value})
	}

	for _, child := range src.ChildElements() {
		el.Children = append(el.Children, fromEtree(child, el))
	}

	return el
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

func (e *Element) Name() string {
	return e.AttrOr("name", "")
}

// Float parses a numeric attribute. Missing attributes are an error.
func (e *Element) Float(name string) (float64, error) {
	v, ok := e.Attr(name)
	if !ok {
		return 0, fmt.Errorf("%s: missing attribute %q", e.Path(), name)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: attribute %q: %w", e.Path(), name, err)
	}
	return f, nil
}

// FloatOr parses a numeric attribute, falling back to def when the attribute
// is missing or not a number.
func (e *Element) FloatOr(name string, def float64) float64 {
	f, err := e.Float(name)
	if err != nil {
		return def
	}
	return f
}

func (e *Element) Int(name string) (int, error) {
	v, ok := e.Attr(name)
	if !ok {
		return 0, fmt.Errorf("%s: missing attribute %q", e.Path(), name)
	}
	return strconv.Atoi(strings.TrimSpace(v))
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

// Find walks a slash separated tag path relative to e and returns every
// element at its end, in document order.
func (e *Element) Find(path string) []*Element {
	current := []*Element{e}
	for _, step := range strings.Split(strings.Trim(path, "/"), "/") {
		var next []*Element
		for _, el := range current {
			next = append(next, el.ChildrenOf(step)...)
		}
		current = next
	}
	return current
}

// FindOne returns the first match of Find, or nil.
func (e *Element) FindOne(path string) *Element {
	if found := e.Find(path); len(found) > 0 {
		return found[0]
	}
	return nil
}

// Named returns the child of the given kind whose name attribute matches.
func (e *Element) Named(kind, name string) *Element {
	for _, c := range e.Children {
		if c.Kind == kind && c.Name() == name {
			return c
		}
	}
	return nil
}

// Walk visits e and all descendants depth first, parents before children.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// Path renders a readable location like "library/packages/package[DIP8]/pad[1]".
func (e *Element) Path() string {
	var parts []string
	for el := e; el != nil; el = el.Parent {
		if el.Kind == KindEagle || el.Kind == KindDrawing {
			break
		}
		part := el.Kind
		if n := el.Name(); n != "" {
			part += "[" + n + "]"
		}
		parts = append(parts, part)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Ancestor returns the nearest enclosing element of the given kind.
func (e *Element) Ancestor(kind string) *Element {
	for el := e.Parent; el != nil; el = el.Parent {
		if el.Kind == kind {
			return el
		}
	}
	return nil
}
