package eagle

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Rotation is a parsed EAGLE rot attribute such as "R90", "MR180" or "SMR45".
type Rotation struct {
	Spin   bool    `parser:"@\"S\"?"`
	Mirror bool    `parser:"@\"M\"?"`
	Angle  float64 `parser:"\"R\" @Number"`
}

var rotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Flag", Pattern: `[SMR]`},
	{Name: "Number", Pattern: `[-+]?(\d+(\.\d*)?|\.\d+)`},
})

var (
	rotationParser     *participle.Parser[Rotation]
	rotationParserErr  error
	rotationParserOnce sync.Once
)

func buildRotationParser() (*participle.Parser[Rotation], error) {
	rotationParserOnce.Do(func() {
		rotationParser, rotationParserErr = participle.Build[Rotation](
			participle.Lexer(rotationLexer),
			participle.Elide("Whitespace"),
		)
	})
	return rotationParser, rotationParserErr
}

// ParseRotation parses a rot attribute. An empty string is R0.
func ParseRotation(s string) (Rotation, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Rotation{}, nil
	}

	p, err := buildRotationParser()
	if err != nil {
		return Rotation{}, fmt.Errorf("failed to build rotation parser: %w", err)
	}

	rot, err := p.ParseString("", strings.ToUpper(s))
	if err != nil {
		return Rotation{}, fmt.Errorf("invalid rotation %q: %w", s, err)
	}
	return *rot, nil
}

// Rotation returns the element's parsed rot attribute, R0 when absent.
func (e *Element) Rotation() (Rotation, error) {
	return ParseRotation(e.AttrOr("rot", ""))
}

// Normalized returns the angle folded into [0,360).
func (r Rotation) Normalized() float64 {
	return NormalizeAngle(r.Angle)
}

func (r Rotation) String() string {
	var b strings.Builder
	if r.Spin {
		b.WriteString("S")
	}
	if r.Mirror {
		b.WriteString("M")
	}
	fmt.Fprintf(&b, "R%g", r.Normalized())
	return b.String()
}

func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a == 360 || a == 0 {
		return 0
	}
	return a
}
