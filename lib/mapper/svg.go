package mapper

import (
	"fmt"
	"math"
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
)

const (
	copperColor     = "#F7BD13"
	legColor        = "#8C8C8C"
	bodyColor       = "#D9D9D9"
	inkColor        = "#000000"
	schematicStroke = 0.1524 // mm
	valueClass      = "value"
)

// painter draws annotated nodes into view fragments.
type painter struct {
	opts    geometry.Options
	layers  fritzing.LayerTable
	diags   *diag.List
	context string
	warned  map[int]bool
}

func (p *painter) num(v float64) string {
	return fritzing.FormatFloat(geometry.Round(v, p.opts.Precision))
}

func (p *painter) points(pts []geometry.Point) string {
	parts := make([]string, 0, len(pts))
	for _, pt := range pts {
		parts = append(parts, p.num(pt.X)+","+p.num(pt.Y))
	}
	return strings.Join(parts, " ")
}

// layerFor maps a node's EAGLE layer. Unmapped layers are reported once per
// frame.
func (p *painter) layerFor(n *geometry.Node) (string, bool) {
	layer, ok := p.layers.Lookup(n.Layer)
	if ok {
		return layer, true
	}
	if !p.warned[n.Layer] {
		p.warned[n.Layer] = true
		p.diags.Warn(diag.CodeUnmappedLayer, p.context,
			"eagle layer %d has no fritzing layer; graphics skipped", n.Layer)
	}
	return "", false
}

func (p *painter) newFragment(view fritzing.View, frame *geometry.Frame) *fritzing.Fragment {
	return &fritzing.Fragment{
		View: view,
		Root: fritzing.NewSVG(frame.Bounds, p.opts.UnitScale),
	}
}

// graphic renders a non-connector node. It returns nil for kinds that are
// not drawn on their own.
func (p *painter) graphic(n *geometry.Node, color string, text func(string) (string, bool)) *fritzing.Element {
	pts := n.Points
	switch n.Element.Kind {
	case eagle.KindWire:
		if len(pts) != 2 {
			return nil
		}
		if n.Curve != 0 {
			return p.arc(n, color)
		}
		return fritzing.NewElement("line",
			"x1", p.num(pts[0].X), "y1", p.num(pts[0].Y),
			"x2", p.num(pts[1].X), "y2", p.num(pts[1].Y),
			"stroke", color,
			"stroke-width", p.num(n.Stroke),
			"stroke-linecap", "round",
		)

	case eagle.KindCircle:
		el := fritzing.NewElement("circle",
			"cx", p.num(pts[0].X), "cy", p.num(pts[0].Y),
			"r", p.num(n.Size.X/2),
		)
		if n.Stroke == 0 {
			return el.Set("fill", color)
		}
		return el.Set("fill", "none").Set("stroke", color).Set("stroke-width", p.num(n.Stroke))

	case eagle.KindRectangle:
		return fritzing.NewElement("polygon", "points", p.points(pts), "fill", color)

	case eagle.KindPolygon:
		if len(pts) < 3 {
			return nil
		}
		return fritzing.NewElement("polygon",
			"points", p.points(pts),
			"fill", color,
			"stroke", color,
			"stroke-width", p.num(n.Stroke),
			"stroke-linejoin", "round",
		)

	case eagle.KindText:
		content, isValue := text(strings.TrimSpace(n.Element.Text))
		el := fritzing.NewElement("text")
		if isValue {
			el.Set("class", valueClass)
		}
		el.Set("x", p.num(pts[0].X)).Set("y", p.num(pts[0].Y))
		el.Set("font-family", "OCRA").Set("font-size", p.num(n.Size.Y)).Set("fill", color)
		if n.Orientation != 0 {
			el.Set("transform", p.rotate(n.Orientation, pts[0]))
		}
		return el.WithText(content)
	}
	return nil
}

// arc draws a curved wire. EAGLE curves are counter-clockwise for positive
// angles in a y-up system, which is the negative sweep direction on the
// canvas.
func (p *painter) arc(n *geometry.Node, color string) *fritzing.Element {
	a, b := n.Points[0], n.Points[1]
	chord := math.Hypot(b.X-a.X, b.Y-a.Y)
	r := chord / (2 * math.Sin(math.Abs(n.Curve)*math.Pi/360))

	large, sweep := 0, 0
	if math.Abs(n.Curve) > 180 {
		large = 1
	}
	if n.Curve < 0 {
		sweep = 1
	}

	d := fmt.Sprintf("M%s,%s A%s,%s 0 %d %d %s,%s",
		p.num(a.X), p.num(a.Y), p.num(r), p.num(r), large, sweep, p.num(b.X), p.num(b.Y))
	return fritzing.NewElement("path",
		"d", d,
		"fill", "none",
		"stroke", color,
		"stroke-width", p.num(n.Stroke),
		"stroke-linecap", "round",
	)
}

// rotate converts an EAGLE counter-clockwise angle into an SVG transform on
// the y-down canvas.
func (p *painter) rotate(deg float64, c geometry.Point) string {
	return fmt.Sprintf("rotate(%s %s %s)", p.num(-deg), p.num(c.X), p.num(c.Y))
}

// pad draws a pad or smd. id may be empty for pads without a pin.
func (p *painter) pad(n *geometry.Node, id, color string) *fritzing.Element {
	c := n.Points[0]
	w, h := n.Size.X, n.Size.Y

	var el *fritzing.Element
	switch {
	case n.Element.Kind == eagle.KindSMD || n.Shape == "square":
		el = p.rect(c, w, h)
		el.Set("fill", color)
	case n.Shape == "long" || n.Shape == "offset":
		el = p.rect(c, w, h)
		el.Set("rx", p.num(h/2)).Set("fill", color)
	case n.Drill > 0:
		// copper ring: the stroke covers the annular ring around the hole
		el = fritzing.NewElement("circle",
			"cx", p.num(c.X), "cy", p.num(c.Y),
			"r", p.num((w+n.Drill)/4),
			"fill", "none",
			"stroke", color,
			"stroke-width", p.num((w-n.Drill)/2),
		)
	default:
		el = fritzing.NewElement("circle",
			"cx", p.num(c.X), "cy", p.num(c.Y),
			"r", p.num(w/2),
			"fill", color,
		)
	}

	if n.Orientation != 0 && el.Kind == "rect" {
		el.Set("transform", p.rotate(n.Orientation, c))
	}
	if id != "" {
		el.Attrs = append([]fritzing.Attr{{Name: "id", Value: id}}, el.Attrs...)
	}
	return el
}

func (p *painter) rect(c geometry.Point, w, h float64) *fritzing.Element {
	return fritzing.NewElement("rect",
		"x", p.num(c.X-w/2), "y", p.num(c.Y-h/2),
		"width", p.num(w), "height", p.num(h),
	)
}

// padLayers returns the copper layers a pad is drawn on.
func padLayers(n *geometry.Node) []string {
	if n.Element.Kind == eagle.KindSMD {
		if n.Layer == 16 {
			return []string{fritzing.LayerCopper0}
		}
		return []string{fritzing.LayerCopper1}
	}
	return []string{fritzing.LayerCopper0, fritzing.LayerCopper1}
}

// drawPCB renders a package footprint. connectors maps pad names to
// connector ids.
func (p *painter) drawPCB(pkg *eagle.Element, frame *geometry.Frame, connectors map[string]string, text func(string) (string, bool)) *fritzing.Fragment {
	f := p.newFragment(fritzing.PCB, frame)
	f.Layer(fritzing.LayerCopper0)
	f.Layer(fritzing.LayerCopper1)
	f.Layer(fritzing.LayerSilkscreen)

	for _, child := range pkg.Children {
		n := frame.Node(child)
		if n == nil {
			continue
		}

		if child.Kind == eagle.KindPad || child.Kind == eagle.KindSMD {
			id := ""
			if c, ok := connectors[child.Name()]; ok {
				id = fritzing.PadID(c)
			}
			for _, layer := range padLayers(n) {
				f.Layer(layer).Add(p.pad(n, id, copperColor))
			}
			continue
		}

		layer, ok := p.layerFor(n)
		if !ok {
			continue
		}
		if view, _ := fritzing.LayerView(layer); view != fritzing.PCB {
			continue
		}
		if el := p.graphic(n, inkColor, text); el != nil {
			f.Layer(layer).Add(el)
		}
	}

	return f
}

// drawBreadboard renders a top view of the package: a body the size of the
// footprint, the top silkscreen and one leg per pad.
func (p *painter) drawBreadboard(pkg *eagle.Element, frame *geometry.Frame, connectors map[string]string) *fritzing.Fragment {
	f := p.newFragment(fritzing.Breadboard, frame)
	g := f.Layer(fritzing.LayerBreadboard)

	if !frame.Bounds.Empty() {
		b := frame.Bounds
		g.AddNew("rect",
			"x", p.num(b.Min.X), "y", p.num(b.Min.Y),
			"width", p.num(b.Width()), "height", p.num(b.Height()),
			"fill", bodyColor,
		)
	}

	noText := func(string) (string, bool) { return "", false }
	for _, child := range pkg.Children {
		n := frame.Node(child)
		if n == nil {
			continue
		}

		switch child.Kind {
		case eagle.KindPad, eagle.KindSMD:
			id := ""
			if c, ok := connectors[child.Name()]; ok {
				id = fritzing.PinID(c)
			}
			g.Add(p.pad(n, id, legColor))
		case eagle.KindText:
		default:
			if layer, ok := p.layers.Lookup(n.Layer); ok && layer == fritzing.LayerSilkscreen {
				if el := p.graphic(n, inkColor, noText); el != nil {
					g.Add(el)
				}
			}
		}
	}

	return f
}

type gateSymbol struct {
	name   string
	symbol *eagle.Element
}

// drawSchematic renders every gate of a deviceset. connectors maps each pin
// to the connector ids it carries; pins without connectors are drawn without
// an id.
func (p *painter) drawSchematic(gates []gateSymbol, frame *geometry.Frame, connectors map[PinRef][]string, text func(string) (string, bool)) *fritzing.Fragment {
	f := p.newFragment(fritzing.Schematic, frame)
	g := f.Layer(fritzing.LayerSchematic)
	stroke := geometry.Round(schematicStroke*p.opts.UnitScale, p.opts.Precision)

	for _, gate := range gates {
		for _, child := range gate.symbol.Children {
			n := frame.GateNode(gate.name, child)
			if n == nil {
				continue
			}

			if child.Kind == eagle.KindPin {
				ids := connectors[PinRef{Gate: gate.name, Pin: child.Name()}]
				if len(ids) == 0 {
					g.Add(p.pin(n, "", stroke))
				}
				for _, id := range ids {
					g.Add(p.pin(n, id, stroke))
					g.Add(p.terminal(n, id, stroke))
				}
				continue
			}

			layer, ok := p.layerFor(n)
			if !ok {
				continue
			}
			if view, _ := fritzing.LayerView(layer); view != fritzing.Schematic {
				continue
			}
			if el := p.graphic(n, inkColor, text); el != nil {
				f.Layer(layer).Add(el)
			}
		}
	}

	return f
}

func (p *painter) pin(n *geometry.Node, connector string, stroke float64) *fritzing.Element {
	el := fritzing.NewElement("line")
	if connector != "" {
		el.Set("id", fritzing.PinID(connector))
	}
	a, b := n.Points[0], n.Points[1]
	return el.Set("x1", p.num(a.X)).Set("y1", p.num(a.Y)).
		Set("x2", p.num(b.X)).Set("y2", p.num(b.Y)).
		Set("stroke", inkColor).Set("stroke-width", p.num(stroke)).
		Set("stroke-linecap", "round")
}

// terminal marks the pin's connection point, which in EAGLE is the pin
// origin.
func (p *painter) terminal(n *geometry.Node, connector string, size float64) *fritzing.Element {
	c := n.Points[0]
	el := p.rect(c, size, size)
	el.Attrs = append([]fritzing.Attr{{Name: "id", Value: fritzing.TerminalID(connector)}}, el.Attrs...)
	return el.Set("fill", "none")
}
