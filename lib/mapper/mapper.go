// Package mapper joins EAGLE's deviceset, gate and package triad into
// flattened Fritzing modules that key every view off one connector id.
package mapper

import (
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
)

const (
	DefaultAuthor          = "eagle2fritzing"
	DefaultFritzingVersion = "0.9.3b"
)

type Options struct {
	Layers          fritzing.LayerTable
	Author          string
	FritzingVersion string
}

func DefaultOptions() Options {
	return Options{
		Layers:          fritzing.DefaultLayers(),
		FritzingVersion: DefaultFritzingVersion,
	}
}

// ConnectorMapping is one resolved pin and pad pair.
type ConnectorMapping struct {
	ID   string `msgpack:"id"`
	Name string `msgpack:"name"`
	Gate string `msgpack:"gate"`
	Pin  string `msgpack:"pin"`
	Pad  string `msgpack:"pad"`
}

// Part is one technology variant of one device, ready to emit.
type Part struct {
	ModuleID   string
	Library    string
	DeviceSet  string
	Device     string
	Technology string
	Variant    string

	Module      *fritzing.Element
	Fragments   []*fritzing.Fragment
	Connectors  []ConnectorMapping
	Diagnostics diag.List
}

// Result holds every part of a document. Diagnostics are the document level
// findings; each part carries its own.
type Result struct {
	Parts       []*Part
	Diagnostics diag.List
}

// Map converts every device of every library in doc. Unresolved connections
// are reported on the affected parts and never stop the mapping; a document
// that yields no part at all is a schema error.
func Map(doc *eagle.Document, ann *geometry.Annotations, opts Options) (*Result, error) {
	if opts.Layers == nil {
		opts.Layers = fritzing.DefaultLayers()
	}
	if opts.FritzingVersion == "" {
		opts.FritzingVersion = DefaultFritzingVersion
	}

	res := &Result{}
	res.Diagnostics = append(res.Diagnostics, ann.Diagnostics...)

	for _, lib := range doc.Libraries {
		libName := doc.LibraryName(lib)

		for _, ds := range eagle.DeviceSets(lib) {
			devices := ds.Find("devices/device")
			if len(devices) == 0 {
				res.Diagnostics.Warn(diag.CodeEmptyDeviceSet, ds.Path(), "deviceset has no devices")
				continue
			}

			for _, dev := range devices {
				t, ok := build(lib, libName, ds, dev, ann, opts, &res.Diagnostics)
				if !ok {
					continue
				}

				techs := dev.Find("technologies/technology")
				if len(techs) == 0 {
					res.Parts = append(res.Parts, t.specialize(nil, opts))
					continue
				}
				for _, tech := range techs {
					res.Parts = append(res.Parts, t.specialize(tech, opts))
				}
			}
		}
	}

	if len(res.Parts) == 0 {
		return res, &diag.SchemaError{
			Path:    doc.Path,
			Subtree: "library/devicesets/deviceset/devices/device",
			Reason:  "no device with a package to convert",
		}
	}
	return res, nil
}

// build resolves a device's connectors and draws its views.
func build(lib *eagle.Element, libName string, ds, dev *eagle.Element, ann *geometry.Annotations, opts Options, docDiags *diag.List) (*template, bool) {
	pkgName := dev.AttrOr("package", "")
	if pkgName == "" {
		docDiags.Warn(diag.CodeMissingPackage, dev.Path(), "device has no package; skipped")
		return nil, false
	}
	pkg := eagle.Package(lib, pkgName)
	if pkg == nil {
		docDiags.Warn(diag.CodeMissingPackage, dev.Path(), "unknown package %q; skipped", pkgName)
		return nil, false
	}

	t := &template{
		library:   libName,
		deviceset: ds,
		device:    dev,
		pkg:       pkgName,
		prefix:    ds.AttrOr("prefix", ""),
	}
	if t.prefix == "" {
		t.prefix = "U"
	}

	var gates []gateSymbol
	symbols := make(map[string]*eagle.Element)
	for _, gate := range ds.Find("gates/gate") {
		symbol := eagle.Symbol(lib, gate.AttrOr("symbol", ""))
		if symbol == nil {
			continue
		}
		gates = append(gates, gateSymbol{name: gate.Name(), symbol: symbol})
		symbols[gate.Name()] = symbol
	}

	var pads []*eagle.Element
	padNames := make(map[string]bool)
	for _, child := range pkg.Children {
		if child.Kind == eagle.KindPad || child.Kind == eagle.KindSMD {
			pads = append(pads, child)
			padNames[child.Name()] = true
		}
	}

	ix := NewConnectIndex(ds, dev, symbols, padNames)
	reported := make(map[PinRef]bool)
	for _, p := range ix.Problems {
		t.diagnostics.Unresolved(p)
		reported[PinRef{Gate: p.Gate, Pin: p.Pin}] = true
	}

	names := pinNames(gates)
	pinConnectors := make(map[PinRef][]string)
	padConnectors := make(map[string]string)
	padNodes := make(map[string]*eagle.Element)
	for _, pad := range pads {
		padNodes[pad.Name()] = pad
	}

	for _, g := range gates {
		for _, pin := range g.symbol.ChildrenOf(eagle.KindPin) {
			ref := PinRef{Gate: g.name, Pin: pin.Name()}
			matched := ix.Pads(g.name, pin.Name())
			if len(matched) == 0 {
				if !reported[ref] {
					t.diagnostics.Unresolved(&diag.UnresolvedConnectionError{
						DeviceSet: ds.Name(),
						Device:    dev.Name(),
						Gate:      g.name,
						Pin:       pin.Name(),
						Reason:    "pin is not connected to a pad",
					})
				}
				continue
			}

			for _, pad := range matched {
				id := fritzing.ConnectorID(len(t.connectors))
				t.connectors = append(t.connectors, ConnectorMapping{
					ID:   id,
					Name: names[ref],
					Gate: g.name,
					Pin:  pin.Name(),
					Pad:  pad,
				})
				pinConnectors[ref] = append(pinConnectors[ref], id)
				padConnectors[pad] = id
			}
		}
	}

	for _, pad := range pads {
		if _, ok := ix.Pin(pad.Name()); !ok {
			t.diagnostics.Unresolved(&diag.UnresolvedConnectionError{
				DeviceSet: ds.Name(),
				Device:    dev.Name(),
				Pad:       pad.Name(),
				Reason:    "pad is not connected to a pin",
			})
		}
	}

	p := &painter{
		opts:    ann.Options,
		layers:  opts.Layers,
		diags:   &t.diagnostics,
		context: pkg.Path(),
		warned:  make(map[int]bool),
	}

	text := func(s string) (string, bool) {
		switch s {
		case ">NAME":
			return t.prefix, false
		case ">VALUE":
			return ds.Name(), true
		}
		return s, false
	}

	frame := ann.Package(pkg)
	pcb := p.drawPCB(pkg, frame, padConnectors, text)
	breadboard := p.drawBreadboard(pkg, frame, padConnectors)

	p.context = ds.Path()
	p.warned = make(map[int]bool)
	schematic := p.drawSchematic(gates, ann.Schematic(ds), pinConnectors, text)

	t.fragments = []*fritzing.Fragment{breadboard, schematic, pcb}
	t.connectorsEl = connectorsElement(t.connectors, padNodes, frame)
	t.busesEl = busesElement(gates, pinConnectors, names)

	return t, true
}

// pinNames returns the connector name of every pin. Pin names shared by
// several gates are qualified with the gate name.
func pinNames(gates []gateSymbol) map[PinRef]string {
	count := make(map[string]int)
	for _, g := range gates {
		for _, pin := range g.symbol.ChildrenOf(eagle.KindPin) {
			count[pin.Name()]++
		}
	}

	names := make(map[PinRef]string)
	for _, g := range gates {
		for _, pin := range g.symbol.ChildrenOf(eagle.KindPin) {
			ref := PinRef{Gate: g.name, Pin: pin.Name()}
			if count[pin.Name()] > 1 {
				names[ref] = g.name + "." + pin.Name()
			} else {
				names[ref] = pin.Name()
			}
		}
	}
	return names
}

func connectorsElement(mappings []ConnectorMapping, pads map[string]*eagle.Element, frame *geometry.Frame) *fritzing.Element {
	connectors := fritzing.NewElement(fritzing.KindConnectors)

	for _, m := range mappings {
		pad := pads[m.Pad]
		kind := "male"
		if pad.Kind == eagle.KindSMD {
			kind = "pad"
		}

		c := connectors.AddNew(fritzing.KindConnector, "id", m.ID, "name", m.Name, "type", kind)
		c.AddNew("description").WithText("pin " + m.Pin + ", pad " + m.Pad)

		views := c.AddNew(fritzing.KindViews)
		views.AddNew(fritzing.Breadboard.ViewTag()).AddNew(fritzing.KindP,
			"layer", fritzing.LayerBreadboard,
			"svgId", fritzing.PinID(m.ID),
		)
		views.AddNew(fritzing.Schematic.ViewTag()).AddNew(fritzing.KindP,
			"layer", fritzing.LayerSchematic,
			"svgId", fritzing.PinID(m.ID),
			"terminalId", fritzing.TerminalID(m.ID),
		)

		pcb := views.AddNew(fritzing.PCB.ViewTag())
		layers := []string{fritzing.LayerCopper0, fritzing.LayerCopper1}
		if n := frame.Node(pad); n != nil {
			layers = padLayers(n)
		}
		for _, layer := range layers {
			pcb.AddNew(fritzing.KindP, "layer", layer, "svgId", fritzing.PadID(m.ID))
		}
	}

	return connectors
}

// busesElement joins the connectors of pins that land on several pads.
func busesElement(gates []gateSymbol, pinConnectors map[PinRef][]string, names map[PinRef]string) *fritzing.Element {
	var buses *fritzing.Element
	for _, g := range gates {
		for _, pin := range g.symbol.ChildrenOf(eagle.KindPin) {
			ref := PinRef{Gate: g.name, Pin: pin.Name()}
			ids := pinConnectors[ref]
			if len(ids) < 2 {
				continue
			}
			if buses == nil {
				buses = fritzing.NewElement(fritzing.KindBuses)
			}
			bus := buses.AddNew(fritzing.KindBus, "id", names[ref])
			for _, id := range ids {
				bus.AddNew(fritzing.KindNodeMember, "connectorId", id)
			}
		}
	}
	return buses
}
