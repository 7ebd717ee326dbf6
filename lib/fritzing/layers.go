package fritzing

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Fritzing layer ids.
const (
	LayerCopper0       = "copper0"
	LayerCopper1       = "copper1"
	LayerSilkscreen    = "silkscreen"
	LayerSilkscreen0   = "silkscreen0"
	LayerSchematic     = "schematic"
	LayerSchematicText = "schematicText"
	LayerBreadboard    = "breadboard"
	LayerIcon          = "icon"
)

// LayerView returns the view a Fritzing layer is drawn in.
func LayerView(layer string) (View, bool) {
	switch layer {
	case LayerCopper0, LayerCopper1, LayerSilkscreen, LayerSilkscreen0:
		return PCB, true
	case LayerSchematic, LayerSchematicText:
		return Schematic, true
	case LayerBreadboard:
		return Breadboard, true
	case LayerIcon:
		return Icon, true
	}
	return "", false
}

// LayerTable maps EAGLE layer numbers to Fritzing layer ids.
type LayerTable map[int]string

// DefaultLayers covers the EAGLE layers a part library normally draws on:
// Top, Bottom, tPlace, bPlace, Symbols, Names and Values.
func DefaultLayers() LayerTable {
	return LayerTable{
		1:  LayerCopper1,
		16: LayerCopper0,
		21: LayerSilkscreen,
		22: LayerSilkscreen0,
		94: LayerSchematic,
		95: LayerSchematicText,
		96: LayerSchematicText,
	}
}

// Lookup returns the Fritzing layer for an EAGLE layer number.
func (t LayerTable) Lookup(eagleLayer int) (string, bool) {
	l, ok := t[eagleLayer]
	return l, ok
}

// Numbers returns the mapped EAGLE layers in ascending order.
func (t LayerTable) Numbers() []int {
	var out []int
	for n := range t {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

type layerFile struct {
	Extend bool           `yaml:"extend"`
	Layers map[int]string `yaml:"layers"`
}

// LoadLayers reads a layer table from YAML:
//
//	extend: true
//	layers:
//	  51: silkscreen
//
// With extend set the entries are merged over the defaults, otherwise they
// replace them.
func LoadLayers(path string) (LayerTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseLayers(data)
}

func ParseLayers(data []byte) (LayerTable, error) {
	var f layerFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("layer table: %w", err)
	}

	table := LayerTable{}
	if f.Extend {
		table = DefaultLayers()
	}
	for n, layer := range f.Layers {
		if _, ok := LayerView(layer); !ok {
			return nil, fmt.Errorf("layer table: eagle layer %d: unknown fritzing layer %q", n, layer)
		}
		table[n] = layer
	}
	return table, nil
}
