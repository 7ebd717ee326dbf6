package fritzing

import (
	"fmt"
	"io"

	"github.com/xoviat/eagle2fritzing/lib/geometry"
)

const svgNamespace = "http://www.w3.org/2000/svg"

// Fragment is the SVG drawn for one view of a part.
type Fragment struct {
	View View
	File string
	Root *Element
}

// NewSVG starts an SVG document whose user space is the canvas bounds.
// unitScale is the number of user units per millimetre; it sets the physical
// width and height Fritzing sizes the part by.
func NewSVG(bounds geometry.Rect, unitScale float64) *Element {
	w, h := bounds.Width(), bounds.Height()
	return NewElement("svg",
		"xmlns", svgNamespace,
		"version", "1.1",
		"width", inches(w, unitScale),
		"height", inches(h, unitScale),
		"viewBox", fmt.Sprintf("%s %s %s %s",
			FormatFloat(bounds.Min.X), FormatFloat(bounds.Min.Y), FormatFloat(w), FormatFloat(h)),
	)
}

func inches(v, unitScale float64) string {
	return FormatFloat(geometry.Round(v/unitScale/25.4, 4)) + "in"
}

// Image is the path a .fzp layers element uses to point at the fragment.
func (f *Fragment) Image() string {
	return string(f.View) + "/" + f.File
}

// IDs returns the set of id attributes in the fragment.
func (f *Fragment) IDs() map[string]bool {
	ids := make(map[string]bool)
	if f == nil || f.Root == nil {
		return ids
	}
	f.Root.Walk(func(el *Element) {
		if id, ok := el.Attr("id"); ok {
			ids[id] = true
		}
	})
	return ids
}

// HasID reports whether any element in the fragment carries id.
func (f *Fragment) HasID(id string) bool {
	return f.IDs()[id]
}

func (f *Fragment) WriteTo(w io.Writer) error {
	return WriteXML(w, f.Root)
}

// Layer returns the group element with the given id, creating it under the
// SVG root when missing.
func (f *Fragment) Layer(id string) *Element {
	for _, c := range f.Root.ChildrenOf("g") {
		if v, _ := c.Attr("id"); v == id {
			return c
		}
	}
	return f.Root.AddNew("g", "id", id)
}

// Clone deep copies the fragment.
func (f *Fragment) Clone() *Fragment {
	if f == nil {
		return nil
	}
	return &Fragment{View: f.View, File: f.File, Root: f.Root.Clone()}
}
