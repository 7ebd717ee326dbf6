// Package validate audits part bundles. It only reads; findings are returned
// as diagnostics and the bundle is never changed.
package validate

import (
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/bundle"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
)

// Bundle checks that every connector is drawn in every view, that connector
// ids are unique, that every view has its image and that the required
// metadata is present.
func Bundle(b *bundle.PartBundle) []diag.Diagnostic {
	var out diag.List
	if b.Module == nil {
		out.Add(diag.Errorf(diag.CodeMissingView, b.Dir, "bundle has no module"))
		return out
	}

	metadata(b.Module, &out)
	ids := views(b, &out)
	connectors(b.Module, ids, &out)

	return out
}

func metadata(module *fritzing.Element, out *diag.List) {
	fields := []struct {
		name  string
		value string
	}{
		{"author", module.ChildText("author")},
		{"title", module.ChildText("title")},
		{"family", property(module, "family")},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			out.Warn(diag.CodeMissingMetadata, f.name, "%s is empty", f.name)
		}
	}
}

func property(module *fritzing.Element, name string) string {
	props := module.Child(fritzing.KindProperties)
	if props == nil {
		return ""
	}
	for _, p := range props.ChildrenOf(fritzing.KindProperty) {
		if strings.EqualFold(p.AttrOr("name", ""), name) {
			return p.Text
		}
	}
	return ""
}

// views resolves each declared view to its fragment and returns the ids
// drawn in each resolved view, keyed by view tag.
func views(b *bundle.PartBundle, out *diag.List) map[string]map[string]bool {
	ids := make(map[string]map[string]bool)
	declared := make(map[fritzing.View]bool)

	if v := b.Module.Child(fritzing.KindViews); v != nil {
		for _, view := range v.Children {
			kind, ok := fritzing.ViewFromTag(view.Kind)
			if !ok {
				continue
			}
			declared[kind] = true

			layers := view.Child(fritzing.KindLayers)
			image := ""
			if layers != nil {
				image = layers.AttrOr("image", "")
			}

			f := b.FragmentByImage(image)
			if image == "" || f == nil {
				out.Add(diag.Errorf(diag.CodeMissingView, view.Kind, "no svg for image %q", image))
				continue
			}
			ids[view.Kind] = f.IDs()
		}
	}

	for _, view := range fritzing.Views {
		if !declared[view] {
			out.Add(diag.Errorf(diag.CodeMissingView, view.ViewTag(), "view is not declared"))
		}
	}

	return ids
}

func connectors(module *fritzing.Element, ids map[string]map[string]bool, out *diag.List) {
	list := module.Child(fritzing.KindConnectors)
	if list == nil {
		return
	}

	seen := make(map[string]bool)
	for _, c := range list.ChildrenOf(fritzing.KindConnector) {
		id := c.AttrOr("id", "")
		if seen[id] {
			out.Add(diag.Errorf(diag.CodeDuplicateID, id, "connector id used more than once"))
		}
		seen[id] = true

		drawn := make(map[string]bool)
		if v := c.Child(fritzing.KindViews); v != nil {
			for _, view := range v.Children {
				present, ok := ids[view.Kind]
				if !ok {
					continue
				}
				drawn[view.Kind] = true

				for _, p := range view.ChildrenOf(fritzing.KindP) {
					for _, attr := range []string{"svgId", "terminalId"} {
						ref, ok := p.Attr(attr)
						if !ok {
							continue
						}
						if !present[ref] {
							out.Add(diag.Errorf(diag.CodeMissingElement, id+" "+view.Kind,
								"%s %q not found in svg", attr, ref))
						}
					}
				}
			}
		}

		for _, view := range fritzing.Views {
			tag := view.ViewTag()
			if _, ok := ids[tag]; ok && !drawn[tag] {
				out.Add(diag.Errorf(diag.CodeMissingElement, id+" "+tag, "connector has no element in this view"))
			}
		}
	}
}
