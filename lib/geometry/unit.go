// Package geometry converts EAGLE coordinates (millimetres, y up, per
// package origin) into Fritzing canvas coordinates (y down, anchored at the
// frame's top-left corner or center).
package geometry

import (
	"fmt"
	"math"
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/eagle"
)

// MMToMil scales EAGLE millimetres to the mil based SVG user unit Fritzing
// parts are usually drawn in.
const MMToMil = 1000 / 25.4

type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

type Origin string

const (
	OriginTopLeft Origin = "top-left"
	OriginCenter  Origin = "center"
)

func ParseOrigin(s string) (Origin, error) {
	switch Origin(strings.ToLower(strings.TrimSpace(s))) {
	case OriginTopLeft, "topleft", "":
		return OriginTopLeft, nil
	case OriginCenter, "centre":
		return OriginCenter, nil
	}
	return "", fmt.Errorf("unknown origin %q: want top-left or center", s)
}

// Options are passed per invocation; the transformer keeps no global state.
type Options struct {
	UnitScale float64
	Origin    Origin
	Precision int
}

func DefaultOptions() Options {
	return Options{
		UnitScale: MMToMil,
		Origin:    OriginTopLeft,
		Precision: 4,
	}
}

/*
	Unit is the transform applied to a geometry-bearing element. Points are
	mirrored about the y axis first, then rotated counter-clockwise, then
	scaled and finally translated. Mirror and rotation do not commute; EAGLE
	renders mirrored parts in this order.
*/
type Unit struct {
	TranslateX float64
	TranslateY float64
	Rotation   float64
	Mirror     bool
	Scale      float64
}

// FromRotation builds a unit from an EAGLE rot value and a scale.
func FromRotation(rot eagle.Rotation, scale float64) Unit {
	return Unit{
		Rotation: rot.Normalized(),
		Mirror:   rot.Mirror,
		Scale:    scale,
	}
}

func (u Unit) Apply(p Point) Point {
	x, y := p.X, p.Y

	if u.Mirror {
		x = -x
	}

	if u.Rotation != 0 {
		sin, cos := sincos(u.Rotation)
		x, y = x*cos-y*sin, x*sin+y*cos
	}

	x *= u.Scale
	y *= u.Scale

	return Point{X: x + u.TranslateX, Y: y + u.TranslateY}
}

// Translated returns a copy of u with an extra translation.
func (u Unit) Translated(dx, dy float64) Unit {
	u.TranslateX += dx
	u.TranslateY += dy
	return u
}

// sincos is exact for multiples of 90 degrees so right-angle rotations do
// not pick up 1e-17 noise.
func sincos(deg float64) (float64, float64) {
	switch eagle.NormalizeAngle(deg) {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	rad := deg * math.Pi / 180
	return math.Sin(rad), math.Cos(rad)
}

// Round fixes v to the given number of decimals and never returns -0.
func Round(v float64, precision int) float64 {
	scale := math.Pow(10, float64(precision))
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0
	}
	return r
}

func RoundPoint(p Point, precision int) Point {
	return Point{X: Round(p.X, precision), Y: Round(p.Y, precision)}
}
