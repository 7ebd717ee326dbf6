package mapper

import (
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
)

/*
	template is everything a device contributes to its parts: resolved
	connectors and the drawn views. It is built once per device and cloned
	for every technology, so no geometry is recomputed per variant.
*/
type template struct {
	library   string
	deviceset *eagle.Element
	device    *eagle.Element
	pkg       string
	prefix    string

	connectors   []ConnectorMapping
	connectorsEl *fritzing.Element
	busesEl      *fritzing.Element
	fragments    []*fritzing.Fragment
	diagnostics  diag.List
}

// variantName applies EAGLE's naming rule: a '*' in the deviceset name is
// replaced by the technology and a '?' by the device name, otherwise each is
// appended.
func variantName(deviceset, technology, device string) string {
	name := deviceset
	if strings.Contains(name, "*") {
		name = strings.ReplaceAll(name, "*", technology)
	} else {
		name += technology
	}
	if strings.Contains(name, "?") {
		name = strings.ReplaceAll(name, "?", device)
	} else {
		name += device
	}
	return name
}

// specialize clones the template into one part for tech. tech may be nil
// for devices without a technologies list.
func (t *template) specialize(tech *eagle.Element, opts Options) *Part {
	techName := ""
	if tech != nil {
		techName = tech.Name()
	}
	variant := variantName(t.deviceset.Name(), techName, t.device.Name())
	id := fritzing.ModuleID(t.library, t.deviceset.Name(), variant)

	part := &Part{
		ModuleID:   id,
		Library:    t.library,
		DeviceSet:  t.deviceset.Name(),
		Device:     t.device.Name(),
		Technology: techName,
		Variant:    variant,
		Connectors: append([]ConnectorMapping(nil), t.connectors...),
	}
	part.Diagnostics = append(part.Diagnostics, t.diagnostics...)

	attrs := technologyAttributes(tech)
	context := "deviceset " + t.deviceset.Name() + ", variant " + variant

	value := attrs.get("VALUE")
	if value == "" {
		value = variant
	}

	for _, f := range t.fragments {
		clone := f.Clone()
		clone.File = id + "_" + string(f.View) + ".svg"
		clone.Root.Walk(func(el *fritzing.Element) {
			if el.AttrOr("class", "") == valueClass {
				el.Text = value
			}
		})
		part.Fragments = append(part.Fragments, clone)
	}

	author := opts.Author
	if author == "" {
		author = DefaultAuthor
		part.Diagnostics.Warn(diag.CodeDefaultMetadata, context, "no author configured; using %q", author)
	}

	family := attrs.get("FAMILY")
	if family == "" {
		family = t.library
		part.Diagnostics.Warn(diag.CodeDefaultMetadata, context, "no FAMILY attribute; using library name %q", family)
	}

	module := fritzing.NewElement(fritzing.KindModule,
		"fritzingVersion", opts.FritzingVersion,
		"moduleId", id,
	)
	module.AddNew("version").WithText("1")
	module.AddNew("author").WithText(author)
	module.AddNew("title").WithText(variant)
	module.AddNew("label").WithText(t.prefix)

	tags := module.AddNew("tags")
	tags.AddNew("tag").WithText(t.library)
	tags.AddNew("tag").WithText(t.deviceset.Name())

	props := module.AddNew(fritzing.KindProperties)
	props.AddNew(fritzing.KindProperty, "name", "family").WithText(family)
	props.AddNew(fritzing.KindProperty, "name", "package").WithText(t.pkg)
	props.AddNew(fritzing.KindProperty, "name", "variant").WithText(variant)
	for _, a := range attrs {
		if a.Name == "FAMILY" {
			continue
		}
		props.AddNew(fritzing.KindProperty, "name", strings.ToLower(a.Name)).WithText(a.Value)
	}

	description := ""
	if d := t.deviceset.Child(eagle.KindDescription); d != nil {
		description = d.Text
	}
	module.AddNew("description").WithText(description)

	module.Add(viewsElement(part.Fragments))
	module.Add(t.connectorsEl.Clone())
	if t.busesEl != nil {
		module.Add(t.busesEl.Clone())
	}

	part.Module = module
	return part
}

type attribute struct {
	Name, Value string
}

type attributes []attribute

func (a attributes) get(name string) string {
	for _, attr := range a {
		if strings.EqualFold(attr.Name, name) {
			return attr.Value
		}
	}
	return ""
}

func technologyAttributes(tech *eagle.Element) attributes {
	if tech == nil {
		return nil
	}
	var out attributes
	for _, a := range tech.ChildrenOf(eagle.KindAttribute) {
		out = append(out, attribute{Name: strings.ToUpper(a.Name()), Value: a.AttrOr("value", "")})
	}
	return out
}

// viewsElement lists the fragments in the .fzp. The icon reuses the
// breadboard image. Each view names the non-empty layers of its fragment.
func viewsElement(fragments []*fritzing.Fragment) *fritzing.Element {
	views := fritzing.NewElement(fritzing.KindViews)

	byView := make(map[fritzing.View]*fritzing.Fragment)
	for _, f := range fragments {
		byView[f.View] = f
	}

	if bb, ok := byView[fritzing.Breadboard]; ok {
		icon := views.AddNew(fritzing.Icon.ViewTag())
		layers := icon.AddNew(fritzing.KindLayers, "image", bb.Image())
		layers.Fragment = bb
		layers.AddNew(fritzing.KindLayer, "layerId", fritzing.LayerIcon)
	}

	for _, view := range fritzing.Views {
		f, ok := byView[view]
		if !ok {
			continue
		}
		layers := views.AddNew(view.ViewTag()).AddNew(fritzing.KindLayers, "image", f.Image())
		layers.Fragment = f
		for _, g := range f.Root.ChildrenOf("g") {
			if len(g.Children) == 0 {
				continue
			}
			layers.AddNew(fritzing.KindLayer, "layerId", g.AttrOr("id", ""))
		}
	}

	return views
}
