package mapper

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
)

func mapFile(t *testing.T, path string) *Result {
	doc, err := eagle.Load(path)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Author = "tester"
	res, err := Map(doc, geometry.Transform(doc, geometry.DefaultOptions()), opts)
	require.NoError(t, err)
	return res
}

const template3 = `<?xml version="1.0" encoding="utf-8"?>
<eagle version="9.6.2"><drawing><library name="t">
<packages><package name="P">
<pad name="1" x="-2.54" y="0" drill="0.8"/>
<pad name="2" x="0" y="0" drill="0.8"/>
<pad name="3" x="2.54" y="0" drill="0.8"/>
</package></packages>
<symbols><symbol name="S">
<pin name="GND" x="-5.08" y="0" length="short"/>
<pin name="OUT" x="5.08" y="0" length="short" rot="R180"/>
</symbol></symbols>
<devicesets><deviceset name="D" prefix="J">
<gates><gate name="G" symbol="S" x="0" y="0"/></gates>
<devices><device name="" package="P"><connects>%s</connects></device></devices>
</deviceset></devicesets>
</library></drawing></eagle>`

func mapConnects(t *testing.T, connects string) *Part {
	doc, err := eagle.Read(strings.NewReader(fmt.Sprintf(template3, connects)), "t.lbr")
	require.NoError(t, err)

	res, err := Map(doc, geometry.Transform(doc, geometry.DefaultOptions()), Options{Author: "tester"})
	require.NoError(t, err)
	require.Len(t, res.Parts, 1)
	return res.Parts[0]
}

func TestMapTechnologyVariants(t *testing.T) {
	res := mapFile(t, "../../testdata/resistor.lbr")
	require.Len(t, res.Parts, 3)

	var variants []string
	for _, p := range res.Parts {
		variants = append(variants, p.Variant)
	}
	assert.Equal(t, []string{"RESISTOR-10K0805", "RESISTOR-1K0805", "RESISTORAXIAL"}, variants)

	tenK, oneK := res.Parts[0], res.Parts[1]
	assert.Equal(t, fritzing.ModuleID("resistor", "RESISTOR", "RESISTOR-10K0805"), tenK.ModuleID)
	assert.NotEqual(t, tenK.ModuleID, oneK.ModuleID)

	assert.Equal(t, []ConnectorMapping{
		{ID: "connector0", Name: "1", Gate: "G$1", Pin: "1", Pad: "1"},
		{ID: "connector1", Name: "2", Gate: "G$1", Pin: "2", Pad: "2"},
	}, tenK.Connectors)
	assert.Zero(t, tenK.Diagnostics.Count(diag.CodeUnresolved))

	// variants share the footprint but not the tree
	require.Len(t, tenK.Fragments, 3)
	assert.Equal(t, tenK.Fragments[2].Root, oneK.Fragments[2].Root)
	assert.NotSame(t, tenK.Fragments[2].Root, oneK.Fragments[2].Root)
	assert.Equal(t, tenK.ModuleID+"_pcb.svg", tenK.Fragments[2].File)

	assert.Equal(t, "RESISTOR-10K0805", tenK.Module.ChildText("title"))
	assert.Equal(t, "R", tenK.Module.ChildText("label"))
	assert.Equal(t, "Resistor", tenK.Module.ChildText("description"))
	assert.Equal(t, "10k", property(tenK.Module, "value"))
	assert.Equal(t, "1k", property(oneK.Module, "value"))
	assert.Equal(t, "resistor", property(tenK.Module, "family"))
	assert.Equal(t, "0805", property(tenK.Module, "package"))

	// tDocu and tNames have no fritzing layer
	assert.Equal(t, 2, tenK.Diagnostics.Count(diag.CodeUnmappedLayer))
	// family falls back to the library name
	assert.Equal(t, 1, tenK.Diagnostics.Count(diag.CodeDefaultMetadata))
}

func property(module *fritzing.Element, name string) string {
	for _, p := range module.Child(fritzing.KindProperties).ChildrenOf(fritzing.KindProperty) {
		if p.AttrOr("name", "") == name {
			return p.Text
		}
	}
	return ""
}

func TestMapFragmentsCarryConnectorIDs(t *testing.T) {
	res := mapFile(t, "../../testdata/resistor.lbr")
	axial := res.Parts[2]

	views := make(map[fritzing.View]*fritzing.Fragment)
	for _, f := range axial.Fragments {
		views[f.View] = f
	}

	for _, c := range axial.Connectors {
		assert.True(t, views[fritzing.Breadboard].HasID(fritzing.PinID(c.ID)), c.ID)
		assert.True(t, views[fritzing.Schematic].HasID(fritzing.PinID(c.ID)), c.ID)
		assert.True(t, views[fritzing.Schematic].HasID(fritzing.TerminalID(c.ID)), c.ID)
		assert.True(t, views[fritzing.PCB].HasID(fritzing.PadID(c.ID)), c.ID)
	}

	// through hole pads sit on both copper layers
	connector := axial.Module.Child(fritzing.KindConnectors).Children[0]
	pcb := connector.Child(fritzing.KindViews).Child(fritzing.PCB.ViewTag())
	require.Len(t, pcb.Children, 2)
	assert.Equal(t, fritzing.LayerCopper0, pcb.Children[0].AttrOr("layer", ""))
	assert.Equal(t, fritzing.LayerCopper1, pcb.Children[1].AttrOr("layer", ""))
	assert.Equal(t, "male", connector.AttrOr("type", ""))
}

func TestMapGapsKeepsGoing(t *testing.T) {
	res := mapFile(t, "../../testdata/gaps.lbr")
	require.Len(t, res.Parts, 1)

	part := res.Parts[0]
	assert.Len(t, part.Connectors, 8)
	assert.Equal(t, 2, part.Diagnostics.Count(diag.CodeUnresolved))

	ids := make(map[string]bool)
	pairs := make(map[string]bool)
	for _, c := range part.Connectors {
		assert.False(t, ids[c.ID], "duplicate id %s", c.ID)
		ids[c.ID] = true

		pair := c.Gate + "/" + c.Pin + "-" + c.Pad
		assert.False(t, pairs[pair], "duplicate pair %s", pair)
		pairs[pair] = true
	}

	for _, d := range part.Diagnostics {
		if d.Code == diag.CodeUnresolved {
			assert.Equal(t, diag.Error, d.Severity)
			assert.Contains(t, d.Context, "deviceset MCU10")
		}
	}
}

func TestMapMultiPadPinBuildsBus(t *testing.T) {
	part := mapConnects(t, `
<connect gate="G" pin="GND" pad="1 2"/>
<connect gate="G" pin="OUT" pad="3"/>`)

	assert.Equal(t, []ConnectorMapping{
		{ID: "connector0", Name: "GND", Gate: "G", Pin: "GND", Pad: "1"},
		{ID: "connector1", Name: "GND", Gate: "G", Pin: "GND", Pad: "2"},
		{ID: "connector2", Name: "OUT", Gate: "G", Pin: "OUT", Pad: "3"},
	}, part.Connectors)
	assert.Zero(t, part.Diagnostics.Count(diag.CodeUnresolved))

	buses := part.Module.Child(fritzing.KindBuses)
	require.NotNil(t, buses)
	require.Len(t, buses.Children, 1)

	bus := buses.Children[0]
	assert.Equal(t, "GND", bus.AttrOr("id", ""))
	require.Len(t, bus.Children, 2)
	assert.Equal(t, "connector0", bus.Children[0].AttrOr("connectorId", ""))
	assert.Equal(t, "connector1", bus.Children[1].AttrOr("connectorId", ""))

	assert.Equal(t, "D", part.Variant)
	assert.Equal(t, "J", part.Module.ChildText("label"))
}

func TestMapReportsBadConnects(t *testing.T) {
	part := mapConnects(t, `
<connect gate="G" pin="GND" pad="1"/>
<connect gate="G" pin="OUT" pad="1"/>
<connect gate="X" pin="GND" pad="2"/>
<connect gate="G" pin="NOPE" pad="3"/>`)

	require.Len(t, part.Connectors, 1)
	assert.Equal(t, "1", part.Connectors[0].Pad)

	var messages []string
	for _, d := range part.Diagnostics {
		if d.Code == diag.CodeUnresolved {
			messages = append(messages, d.Message)
		}
	}
	// three bad rows, then pads 2 and 3 without a pin
	require.Len(t, messages, 5)
	assert.Contains(t, messages[0], "already connected to G/GND")
	assert.Contains(t, messages[1], "unknown gate")
	assert.Contains(t, messages[2], "unknown pin")
	assert.Equal(t, "pad 2: pad is not connected to a pin", messages[3])
	assert.Equal(t, "pad 3: pad is not connected to a pin", messages[4])
}

func TestMapWithoutDevicesIsSchemaError(t *testing.T) {
	input := `<eagle version="9.6.2"><drawing><library>
<packages><package name="P"><smd name="1" x="0" y="0" dx="1" dy="1" layer="1"/></package></packages>
</library></drawing></eagle>`

	doc, err := eagle.Read(strings.NewReader(input), "footprints.lbr")
	require.NoError(t, err)

	_, err = Map(doc, geometry.Transform(doc, geometry.DefaultOptions()), DefaultOptions())
	var serr *diag.SchemaError
	assert.True(t, errors.As(err, &serr))
}

func TestMapSkipsDeviceWithoutPackage(t *testing.T) {
	input := strings.Replace(template3, `package="P"`, `package="MISSING"`, 1)
	doc, err := eagle.Read(strings.NewReader(fmt.Sprintf(input, "")), "t.lbr")
	require.NoError(t, err)

	res, err := Map(doc, geometry.Transform(doc, geometry.DefaultOptions()), DefaultOptions())
	assert.Error(t, err)
	assert.Equal(t, 1, res.Diagnostics.Count(diag.CodeMissingPackage))
}

func TestVariantName(t *testing.T) {
	tests := []struct {
		deviceset, technology, device string
		want                          string
	}{
		{"RESISTOR", "-10K", "0805", "RESISTOR-10K0805"},
		{"74*00", "LS", "N", "74LS00N"},
		{"R-US_", "", "0204/5", "R-US_0204/5"},
		{"CAP-?-*", "X7R", "0603", "CAP-0603-X7R"},
		{"LED", "", "", "LED"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, variantName(tt.deviceset, tt.technology, tt.device))
		})
	}
}

func TestConnectIndex(t *testing.T) {
	doc, err := eagle.Read(strings.NewReader(fmt.Sprintf(template3,
		`<connect gate="G" pin="GND" pad="1 2"/>`)), "t.lbr")
	require.NoError(t, err)

	lib := doc.Libraries[0]
	ds := eagle.DeviceSets(lib)[0]
	dev := ds.FindOne("devices/device")

	ix := NewConnectIndex(ds, dev,
		map[string]*eagle.Element{"G": eagle.Symbol(lib, "S")},
		map[string]bool{"1": true, "2": true, "3": true})

	assert.Empty(t, ix.Problems)
	assert.Equal(t, []string{"1", "2"}, ix.Pads("G", "GND"))
	assert.Nil(t, ix.Pads("G", "OUT"))

	ref, ok := ix.Pin("2")
	require.True(t, ok)
	assert.Equal(t, PinRef{Gate: "G", Pin: "GND"}, ref)

	_, ok = ix.Pin("3")
	assert.False(t, ok)
}

func TestArcSweep(t *testing.T) {
	p := &painter{opts: geometry.DefaultOptions()}
	wire := &eagle.Element{Kind: eagle.KindWire}

	half := p.arc(&geometry.Node{Element: wire, Points: []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, Curve: 180, Stroke: 1}, inkColor)
	assert.Equal(t, "M0,0 A5,5 0 0 0 10,0", half.AttrOr("d", ""))

	quarter := p.arc(&geometry.Node{Element: wire, Points: []geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}, Curve: -90, Stroke: 1}, inkColor)
	assert.Equal(t, "M0,0 A7.0711,7.0711 0 0 1 10,0", quarter.AttrOr("d", ""))
}
