// Package breadboard draws a breadboard image of a whole EAGLE board: the
// outline from the board's plain wires and one pre-drawn subpart per placed
// element.
package breadboard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
)

// outlineStroke is the outline width in canvas units.
const outlineStroke = 10

type Options struct {
	// Subparts holds one <package>.svg per package, drawn in canvas units
	// around the package origin.
	Subparts  string
	UnitScale float64
	Precision int
}

func DefaultOptions() Options {
	return Options{
		Subparts:  filepath.Join("subparts", "breadboard"),
		UnitScale: geometry.MMToMil,
		Precision: 4,
	}
}

type image struct {
	opts   Options
	bounds geometry.Rect
	diags  diag.List
}

// canvas maps a board coordinate to the image: shifted so the outline
// starts at the origin, scaled and flipped about the outline's top edge.
func (im *image) canvas(x, y float64) geometry.Point {
	return geometry.RoundPoint(geometry.Point{
		X: (x - im.bounds.Min.X) * im.opts.UnitScale,
		Y: (im.bounds.Max.Y - y) * im.opts.UnitScale,
	}, im.opts.Precision)
}

func (im *image) num(v float64) string {
	return fritzing.FormatFloat(geometry.Round(v, im.opts.Precision))
}

// Build draws board. Elements whose package has no subpart are skipped with
// a warning.
func Build(board *eagle.Board, opts Options) (*fritzing.Element, diag.List, error) {
	if opts.UnitScale <= 0 {
		opts.UnitScale = geometry.MMToMil
	}
	im := &image{opts: opts, bounds: geometry.EmptyRect()}

	outline := board.Outline()
	for _, p := range outline {
		im.bounds.Expand(geometry.Point{X: p[0], Y: p[1]})
	}
	if len(outline) == 0 {
		im.diags.Warn(diag.CodeMissingOutline, "board/plain", "board has no outline; sizing to the placed elements")
		for _, el := range board.Elements {
			im.bounds.Expand(geometry.Point{X: el.X, Y: el.Y})
		}
	}
	if im.bounds.Empty() {
		return nil, im.diags, &diag.SchemaError{Subtree: "drawing/board/elements", Reason: "board has neither outline nor elements"}
	}

	size := geometry.Rect{Max: geometry.Point{
		X: geometry.Round(im.bounds.Width()*opts.UnitScale, opts.Precision),
		Y: geometry.Round(im.bounds.Height()*opts.UnitScale, opts.Precision),
	}}
	root := fritzing.NewSVG(size, opts.UnitScale)
	g := root.AddNew("g", "id", fritzing.LayerBreadboard)

	for _, w := range board.Plain {
		a, b := im.canvas(w.X1, w.Y1), im.canvas(w.X2, w.Y2)
		g.AddNew("line",
			"x1", im.num(a.X), "y1", im.num(a.Y),
			"x2", im.num(b.X), "y2", im.num(b.Y),
			"style", fmt.Sprintf("stroke:#000000;stroke-width:%d", outlineStroke),
		)
	}

	subparts := make(map[string]*fritzing.Element)
	for _, el := range board.Elements {
		if el.Name == "" || el.Package == "" {
			continue
		}
		context := "element " + el.Name

		sub, ok := subparts[el.Package]
		if !ok {
			var err error
			sub, err = im.subpart(el.Package)
			switch {
			case os.IsNotExist(err):
				im.diags.Warn(diag.CodeMissingSubpart, context, "no subpart svg for package %q", el.Package)
			case err != nil:
				im.diags.Warn(diag.CodeMissingSubpart, context, "subpart for package %q: %v", el.Package, err)
			}
			subparts[el.Package] = sub
		}
		if sub == nil {
			continue
		}

		rot, err := eagle.ParseRotation(el.Rot)
		if err != nil {
			im.diags.Warn(diag.CodeBadNumber, context, "%v; placed unrotated", err)
		}

		placed := g.AddNew("g", "id", el.Name, "transform", im.transform(el, rot))
		for _, c := range sub.Children {
			placed.Add(c.Clone())
		}
	}

	return root, im.diags, nil
}

// transform places a subpart: translate to the element origin, mirror, then
// rotate. The canvas is y-down so EAGLE's counter-clockwise angle turns
// into a negative SVG rotation.
func (im *image) transform(el *eagle.BoardElement, rot eagle.Rotation) string {
	at := im.canvas(el.X, el.Y)
	parts := []string{fmt.Sprintf("translate(%s,%s)", im.num(at.X), im.num(at.Y))}
	if rot.Mirror {
		parts = append(parts, "scale(-1,1)")
	}
	if a := rot.Normalized(); a != 0 {
		parts = append(parts, fmt.Sprintf("rotate(%s)", im.num(-a)))
	}
	return strings.Join(parts, " ")
}

func (im *image) subpart(pkg string) (*fritzing.Element, error) {
	fh, err := os.Open(filepath.Join(im.opts.Subparts, pkg+".svg"))
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	root, err := fritzing.ReadXML(fh)
	if err != nil {
		return nil, err
	}
	if root.Kind != "svg" {
		return nil, fmt.Errorf("root element is <%s>, not <svg>", root.Kind)
	}
	return root, nil
}

// OutputPath is where the image for a board file is written:
// <dir>/<name>-breadboard.svg.
func OutputPath(dir, boardPath string) string {
	base := filepath.Base(boardPath)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"-breadboard.svg")
}

// Write saves root to dest through a temporary file in the same directory.
func Write(dest string, root *fritzing.Element) (err error) {
	fh, err := os.CreateTemp(filepath.Dir(dest), "."+filepath.Base(dest)+"-*")
	if err != nil {
		return &diag.IOError{Op: "create", Path: dest, Err: err}
	}
	defer func() {
		if err != nil {
			fh.Close()
			os.Remove(fh.Name())
		}
	}()

	if err := fritzing.WriteXML(fh, root); err != nil {
		return &diag.IOError{Op: "write", Path: fh.Name(), Err: err}
	}
	if err := fh.Close(); err != nil {
		return &diag.IOError{Op: "close", Path: fh.Name(), Err: err}
	}
	if err := os.Rename(fh.Name(), dest); err != nil {
		return &diag.IOError{Op: "rename", Path: dest, Err: err}
	}
	return nil
}
