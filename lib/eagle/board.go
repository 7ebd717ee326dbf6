package eagle

import (
	"encoding/xml"
	"errors"
	"io"
	"os"

	"github.com/xoviat/eagle2fritzing/lib/diag"
)

/*
	Board is the part of an EAGLE .brd file needed to draw a breadboard
	image: the outline drawn in <plain> and the placed elements.
*/
type Board struct {
	XMLName  xml.Name        `xml:"eagle"`
	Version  string          `xml:"version,attr"`
	Plain    []*BoardWire    `xml:"drawing>board>plain>wire"`
	Elements []*BoardElement `xml:"drawing>board>elements>element"`
}

type BoardWire struct {
	X1    float64 `xml:"x1,attr"`
	Y1    float64 `xml:"y1,attr"`
	X2    float64 `xml:"x2,attr"`
	Y2    float64 `xml:"y2,attr"`
	Width float64 `xml:"width,attr"`
	Layer string  `xml:"layer,attr"`
}

type BoardElement struct {
	Name    string  `xml:"name,attr"`
	Library string  `xml:"library,attr"`
	Package string  `xml:"package,attr"`
	Value   string  `xml:"value,attr"`
	X       float64 `xml:"x,attr"`
	Y       float64 `xml:"y,attr"`
	Rot     string  `xml:"rot,attr"`
}

// LoadBoard decodes a .brd file into its typed board view.
func LoadBoard(path string) (*Board, error) {
	fp, err := os.Open(path)
	if err != nil {
		return nil, &diag.ParseError{Path: path, Err: err}
	}
	defer fp.Close()

	return DecodeBoard(fp, path)
}

func DecodeBoard(r io.Reader, name string) (*Board, error) {
	board := Board{}
	if err := xml.NewDecoder(r).Decode(&board); err != nil {
		var unexpected xml.UnmarshalError
		if errors.As(err, &unexpected) {
			return nil, &diag.SchemaError{Path: name, Subtree: KindEagle, Reason: string(unexpected)}
		}
		return nil, &diag.ParseError{Path: name, Err: err}
	}

	return &board, nil
}

// Outline returns the distinct end points of the board's plain wires in
// first-seen order.
func (b *Board) Outline() [][2]float64 {
	seen := make(map[[2]float64]bool)
	points := [][2]float64{}
	for _, w := range b.Plain {
		for _, p := range [][2]float64{{w.X1, w.Y1}, {w.X2, w.Y2}} {
			if seen[p] {
				continue
			}
			seen[p] = true
			points = append(points, p)
		}
	}
	return points
}
