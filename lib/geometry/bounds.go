package geometry

import "math"

// Rect is an axis aligned bounding box. An empty Rect has Min > Max.
type Rect struct {
	Min, Max Point
}

func EmptyRect() Rect {
	return Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

func (r Rect) Empty() bool {
	return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y
}

func (r *Rect) Expand(p Point) {
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
}

// ExpandBy grows the box to cover a square of half-size d around p.
func (r *Rect) ExpandBy(p Point, d float64) {
	r.Expand(Point{p.X - d, p.Y - d})
	r.Expand(Point{p.X + d, p.Y + d})
}

func (r Rect) Width() float64 {
	if r.Empty() {
		return 0
	}
	return r.Max.X - r.Min.X
}

func (r Rect) Height() float64 {
	if r.Empty() {
		return 0
	}
	return r.Max.Y - r.Min.Y
}

func (r Rect) Center() Point {
	if r.Empty() {
		return Point{}
	}
	return Point{(r.Min.X + r.Max.X) / 2, (r.Min.Y + r.Max.Y) / 2}
}
