// Package bundle writes mapped parts to disk as Fritzing part bundles and
// reads them back.
package bundle

import (
	"bytes"
	"path"
	"path/filepath"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

// PartBundle is one emitted part: its .fzp tree, one fragment per view and
// the diagnostics collected while producing it.
type PartBundle struct {
	ModuleID    string
	Dir         string
	Module      *fritzing.Element
	Fragments   []*fritzing.Fragment
	Connectors  []mapper.ConnectorMapping
	Diagnostics diag.List
}

// FromPart wraps a mapped part that has not been written yet.
func FromPart(part *mapper.Part) *PartBundle {
	return &PartBundle{
		ModuleID:    part.ModuleID,
		Module:      part.Module,
		Fragments:   part.Fragments,
		Connectors:  part.Connectors,
		Diagnostics: append(diag.List(nil), part.Diagnostics...),
	}
}

func (b *PartBundle) FzpName() string { return b.ModuleID + ".fzp" }

func (b *PartBundle) FzpPath() string { return filepath.Join(b.Dir, b.FzpName()) }

// Fragment returns the fragment for view, or nil.
func (b *PartBundle) Fragment(view fritzing.View) *fritzing.Fragment {
	for _, f := range b.Fragments {
		if f.View == view {
			return f
		}
	}
	return nil
}

// FragmentByImage resolves a layers image attribute such as
// "pcb/<id>_pcb.svg".
func (b *PartBundle) FragmentByImage(image string) *fritzing.Fragment {
	dir, file := path.Split(image)
	view := fritzing.View(path.Clean(dir))
	for _, f := range b.Fragments {
		if f.File == file && (dir == "" || f.View == view) {
			return f
		}
	}
	return nil
}

// Title is the module title, empty when missing.
func (b *PartBundle) Title() string {
	if b.Module == nil {
		return ""
	}
	return b.Module.ChildText("title")
}

// file is one serialized member of a bundle.
type file struct {
	name string
	data []byte
}

// files serializes the bundle in a fixed order: the .fzp, then the views.
func (b *PartBundle) files() ([]file, error) {
	var out []file

	var buf bytes.Buffer
	if err := fritzing.WriteXML(&buf, b.Module); err != nil {
		return nil, err
	}
	out = append(out, file{name: b.FzpName(), data: append([]byte(nil), buf.Bytes()...)})

	for _, f := range b.Fragments {
		buf.Reset()
		if err := f.WriteTo(&buf); err != nil {
			return nil, err
		}
		out = append(out, file{name: f.File, data: append([]byte(nil), buf.Bytes()...)})
	}

	return out, nil
}
