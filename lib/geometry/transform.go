package geometry

import (
	"math"
	"unicode/utf8"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
)

// Pin lengths in millimetres.
var pinLengths = map[string]float64{
	"point":  0,
	"short":  2.54,
	"middle": 5.08,
	"long":   7.62,
}

// Node is the annotation attached to one geometry-bearing element.
type Node struct {
	Element *eagle.Element
	Unit    Unit

	// Orientation is the element's own rotation composed with its frame's,
	// counter-clockwise in EAGLE's y-up sense, in [0,360).
	Orientation float64
	Layer       int

	// Points are canvas coordinates: pad/smd/circle/text centers, pin
	// origin then pin end, wire end points, rectangle or polygon corners.
	Points []Point

	// Size is the scaled, unrotated extent: smd dx/dy, pad diameter, circle
	// diameter, text height.
	Size   Point
	Stroke float64
	Drill  float64
	Shape  string

	// Curve is a wire's arc angle in degrees, sign adjusted for a mirrored
	// frame. Zero for straight wires.
	Curve float64
}

type nodeKey struct {
	scope string
	el    *eagle.Element
}

// Frame is one coordinate system: a package footprint or the gate layout of
// a deviceset.
type Frame struct {
	Name   string
	Unit   Unit
	Bounds Rect
	nodes  map[nodeKey]*Node
	order  []*Node
}

func (f *Frame) Node(el *eagle.Element) *Node {
	return f.nodes[nodeKey{el: el}]
}

// GateNode returns the annotation of a symbol element as placed by gate.
func (f *Frame) GateNode(gate string, el *eagle.Element) *Node {
	return f.nodes[nodeKey{scope: gate, el: el}]
}

// Nodes returns every node in document order.
func (f *Frame) Nodes() []*Node { return f.order }

func (f *Frame) Width() float64  { return f.Bounds.Width() }
func (f *Frame) Height() float64 { return f.Bounds.Height() }

// Annotations is the transformed view of a document.
type Annotations struct {
	Options     Options
	Diagnostics diag.List

	packages   map[*eagle.Element]*Frame
	schematics map[*eagle.Element]*Frame
}

func (a *Annotations) Package(pkg *eagle.Element) *Frame { return a.packages[pkg] }

// Schematic returns the frame holding every gate of a deviceset.
func (a *Annotations) Schematic(ds *eagle.Element) *Frame { return a.schematics[ds] }

// Transform annotates every package and deviceset of every library in doc.
func Transform(doc *eagle.Document, opts Options) *Annotations {
	if opts.UnitScale <= 0 {
		opts.UnitScale = MMToMil
	}
	if opts.Origin == "" {
		opts.Origin = OriginTopLeft
	}

	a := &Annotations{
		Options:    opts,
		packages:   make(map[*eagle.Element]*Frame),
		schematics: make(map[*eagle.Element]*Frame),
	}

	for _, lib := range doc.Libraries {
		for _, pkg := range eagle.Packages(lib) {
			rot, err := pkg.Rotation()
			if err != nil {
				a.Diagnostics.Warn(diag.CodeBadNumber, pkg.Path(), "%v", err)
			}

			items := []item{}
			for _, child := range pkg.Children {
				items = append(items, item{el: child})
			}
			a.packages[pkg] = a.buildFrame(pkg.Name(), rot, items)
		}

		for _, ds := range eagle.DeviceSets(lib) {
			items := []item{}
			for _, gate := range ds.Find("gates/gate") {
				symbol := eagle.Symbol(lib, gate.AttrOr("symbol", ""))
				if symbol == nil {
					a.Diagnostics.Warn(diag.CodeMissingSymbol, gate.Path(),
						"gate references unknown symbol %q", gate.AttrOr("symbol", ""))
					continue
				}

				offset := Point{gate.FloatOr("x", 0), gate.FloatOr("y", 0)}
				for _, child := range symbol.Children {
					items = append(items, item{scope: gate.Name(), el: child, offset: offset})
				}
			}
			a.schematics[ds] = a.buildFrame(ds.Name(), eagle.Rotation{}, items)
		}
	}

	return a
}

type item struct {
	scope  string
	el     *eagle.Element
	offset Point
}

// shape is the local (untransformed, millimetre) geometry of one element.
type shape struct {
	points []Point
	hull   []Point
	radius float64
	size   Point
	stroke float64
	drill  float64
	own    eagle.Rotation
	curve  float64
}

func (a *Annotations) buildFrame(name string, rot eagle.Rotation, items []item) *Frame {
	opts := a.Options
	base := FromRotation(rot, opts.UnitScale)

	type pending struct {
		item
		shape shape
	}

	var all []pending
	bbox := EmptyRect()

	for _, it := range items {
		if it.el.Kind == eagle.KindPolygon {
			// vertices are annotated on their own; the polygon gets the
			// ring of its vertices
			for _, v := range it.el.ChildrenOf(eagle.KindVertex) {
				if c := v.FloatOr("curve", 0); c != 0 {
					a.Diagnostics.Warn(diag.CodeUnsupportedCurve, v.Path(),
						"curved polygon edge drawn straight")
					break
				}
			}
		}

		elements := []*eagle.Element{it.el}
		if it.el.Kind == eagle.KindPolygon {
			elements = append(elements, it.el.ChildrenOf(eagle.KindVertex)...)
		}

		for _, el := range elements {
			s, ok, err := localShape(el)
			if err != nil {
				a.Diagnostics.Warn(diag.CodeBadNumber, el.Path(), "%v", err)
				continue
			}
			if !ok {
				continue
			}

			if el.Kind == eagle.KindPin {
				if o := s.own.Normalized(); math.Mod(o, 90) != 0 {
					a.Diagnostics.Warn(diag.CodePinRotation, el.Path(),
						"pin rotation %g is not a multiple of 90", o)
				}
			}

			for _, h := range s.hull {
				bbox.ExpandBy(base.Apply(h.Add(it.offset)), s.radius*opts.UnitScale)
			}

			all = append(all, pending{item: item{scope: it.scope, el: el, offset: it.offset}, shape: s})
		}
	}

	var anchor Point
	if !bbox.Empty() {
		switch opts.Origin {
		case OriginCenter:
			anchor = bbox.Center()
		default:
			anchor = Point{bbox.Min.X, bbox.Max.Y}
		}
	}

	unit := base.Translated(-anchor.X, -anchor.Y)
	frame := &Frame{
		Name:  name,
		Unit:  unit,
		nodes: make(map[nodeKey]*Node),
	}

	if !bbox.Empty() {
		frame.Bounds = Rect{
			Min: RoundPoint(Point{bbox.Min.X - anchor.X, -(bbox.Max.Y - anchor.Y)}, opts.Precision),
			Max: RoundPoint(Point{bbox.Max.X - anchor.X, -(bbox.Min.Y - anchor.Y)}, opts.Precision),
		}
	}

	for _, p := range all {
		off := base.Apply(p.offset)
		nodeUnit := unit.Translated(off.X, off.Y)

		orientation := p.shape.own.Normalized()
		curve := p.shape.curve
		if rot.Mirror {
			orientation = -orientation
			curve = -curve
		}

		node := &Node{
			Element:     p.el,
			Unit:        nodeUnit,
			Orientation: eagle.NormalizeAngle(orientation + rot.Normalized()),
			Layer:       layerOf(p.el),
			Size: Point{
				Round(p.shape.size.X*opts.UnitScale, opts.Precision),
				Round(p.shape.size.Y*opts.UnitScale, opts.Precision),
			},
			Stroke: Round(p.shape.stroke*opts.UnitScale, opts.Precision),
			Drill:  Round(p.shape.drill*opts.UnitScale, opts.Precision),
			Shape:  p.el.AttrOr("shape", ""),
			Curve:  curve,
		}

		for _, pt := range p.shape.points {
			node.Points = append(node.Points, canvas(nodeUnit.Apply(pt), opts.Precision))
		}

		frame.nodes[nodeKey{scope: p.scope, el: p.el}] = node
		frame.order = append(frame.order, node)
	}

	return frame
}

// canvas flips EAGLE's y-up axis into SVG's y-down axis.
func canvas(p Point, precision int) Point {
	return RoundPoint(Point{p.X, -p.Y}, precision)
}

func layerOf(el *eagle.Element) int {
	if n, err := el.Int("layer"); err == nil {
		return n
	}
	if poly := el.Ancestor(eagle.KindPolygon); poly != nil {
		return layerOf(poly)
	}
	return 0
}

// rotatedRect returns the corners of a w x h rectangle centred on c and
// rotated by deg.
func rotatedRect(c Point, w, h, deg float64) []Point {
	u := Unit{Rotation: eagle.NormalizeAngle(deg), Scale: 1, TranslateX: c.X, TranslateY: c.Y}
	return []Point{
		u.Apply(Point{-w / 2, -h / 2}),
		u.Apply(Point{w / 2, -h / 2}),
		u.Apply(Point{w / 2, h / 2}),
		u.Apply(Point{-w / 2, h / 2}),
	}
}

// textAspect approximates EAGLE's vector font: glyph advance over size.
const textAspect = 0.8

// textBox approximates the extent of a text label. EAGLE anchors text at its
// bottom-left corner and turns it about that point.
func textBox(anchor Point, text string, size float64, own eagle.Rotation) []Point {
	w := float64(utf8.RuneCountInString(text)) * size * textAspect
	u := Unit{Rotation: own.Normalized(), Mirror: own.Mirror, Scale: 1, TranslateX: anchor.X, TranslateY: anchor.Y}
	return []Point{
		u.Apply(Point{0, 0}),
		u.Apply(Point{w, 0}),
		u.Apply(Point{w, size}),
		u.Apply(Point{0, size}),
	}
}

// autoDiameter follows EAGLE's default restring: a quarter of the drill,
// at least 0.254mm.
func autoDiameter(drill float64) float64 {
	return drill + 2*math.Max(drill/4, 0.254)
}

func localShape(el *eagle.Element) (shape, bool, error) {
	var s shape
	var err error

	if el.Kind != eagle.KindVertex {
		if s.own, err = el.Rotation(); err != nil {
			return s, false, err
		}
	}

	switch el.Kind {
	case eagle.KindPad:
		c, err := point(el, "x", "y")
		if err != nil {
			return s, false, err
		}
		s.drill = el.FloatOr("drill", 0)
		d := el.FloatOr("diameter", 0)
		if d <= 0 {
			d = autoDiameter(s.drill)
		}
		s.size = Point{d, d}
		if shp := el.AttrOr("shape", ""); shp == "long" || shp == "offset" {
			s.size.X = 2 * d
		}
		s.points = []Point{c}
		s.hull = rotatedRect(c, s.size.X, s.size.Y, s.own.Angle)

	case eagle.KindSMD:
		c, err := point(el, "x", "y")
		if err != nil {
			return s, false, err
		}
		dx, err := el.Float("dx")
		if err != nil {
			return s, false, err
		}
		dy, err := el.Float("dy")
		if err != nil {
			return s, false, err
		}
		s.size = Point{dx, dy}
		s.points = []Point{c}
		s.hull = rotatedRect(c, dx, dy, s.own.Angle)

	case eagle.KindPin:
		origin, err := point(el, "x", "y")
		if err != nil {
			return s, false, err
		}
		length, ok := pinLengths[el.AttrOr("length", "long")]
		if !ok {
			length = pinLengths["long"]
		}
		sin, cos := sincos(s.own.Angle)
		end := Point{origin.X + length*cos, origin.Y + length*sin}
		s.points = []Point{origin, end}
		s.hull = s.points

	case eagle.KindWire:
		p1, err := point(el, "x1", "y1")
		if err != nil {
			return s, false, err
		}
		p2, err := point(el, "x2", "y2")
		if err != nil {
			return s, false, err
		}
		s.points = []Point{p1, p2}
		s.hull = s.points
		s.stroke = el.FloatOr("width", 0)
		s.radius = s.stroke / 2
		s.curve = el.FloatOr("curve", 0)

	case eagle.KindVertex:
		p, err := point(el, "x", "y")
		if err != nil {
			return s, false, err
		}
		s.points = []Point{p}
		s.hull = s.points

	case eagle.KindPolygon:
		for _, v := range el.ChildrenOf(eagle.KindVertex) {
			p, err := point(v, "x", "y")
			if err != nil {
				return s, false, err
			}
			s.points = append(s.points, p)
		}
		s.stroke = el.FloatOr("width", 0)

	case eagle.KindCircle:
		c, err := point(el, "x", "y")
		if err != nil {
			return s, false, err
		}
		r, err := el.Float("radius")
		if err != nil {
			return s, false, err
		}
		s.points = []Point{c}
		s.hull = s.points
		s.size = Point{2 * r, 2 * r}
		s.stroke = el.FloatOr("width", 0)
		s.radius = r + s.stroke/2

	case eagle.KindRectangle:
		p1, err := point(el, "x1", "y1")
		if err != nil {
			return s, false, err
		}
		p2, err := point(el, "x2", "y2")
		if err != nil {
			return s, false, err
		}
		c := Point{(p1.X + p2.X) / 2, (p1.Y + p2.Y) / 2}
		s.points = rotatedRect(c, math.Abs(p2.X-p1.X), math.Abs(p2.Y-p1.Y), s.own.Angle)
		s.hull = s.points

	case eagle.KindText:
		p, err := point(el, "x", "y")
		if err != nil {
			return s, false, err
		}
		s.points = []Point{p}
		s.size = Point{0, el.FloatOr("size", 1.778)}
		s.hull = textBox(p, el.Text, s.size.Y, s.own)

	default:
		return s, false, nil
	}

	return s, true, nil
}

func point(el *eagle.Element, xattr, yattr string) (Point, error) {
	x, err := el.Float(xattr)
	if err != nil {
		return Point{}, err
	}
	y, err := el.Float(yattr)
	if err != nil {
		return Point{}, err
	}
	return Point{x, y}, nil
}
