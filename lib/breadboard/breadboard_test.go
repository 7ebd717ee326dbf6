package breadboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
)

func options() Options {
	opts := DefaultOptions()
	opts.Subparts = "../../testdata/subparts"
	return opts
}

func TestBuildBoard(t *testing.T) {
	board, err := eagle.LoadBoard("../../testdata/board.brd")
	require.NoError(t, err)

	root, diags, err := Build(board, options())
	require.NoError(t, err)

	assert.Equal(t, "1.9685in", root.AttrOr("width", ""))
	assert.Equal(t, "1.1811in", root.AttrOr("height", ""))
	assert.Equal(t, "0 0 1968.5039 1181.1024", root.AttrOr("viewBox", ""))

	// U1 has no subpart
	require.Len(t, diags, 1)
	assert.Equal(t, diag.CodeMissingSubpart, diags[0].Code)
	assert.Equal(t, "element U1", diags[0].Context)

	g := root.Child("g")
	require.NotNil(t, g)
	assert.Equal(t, fritzing.LayerBreadboard, g.AttrOr("id", ""))

	lines := g.ChildrenOf("line")
	require.Len(t, lines, 4)
	// y is flipped against the outline's top edge
	assert.Equal(t, "0", lines[0].AttrOr("x1", ""))
	assert.Equal(t, "1181.1024", lines[0].AttrOr("y1", ""))
	assert.Equal(t, "1968.5039", lines[0].AttrOr("x2", ""))

	parts := g.ChildrenOf("g")
	require.Len(t, parts, 2)
	assert.Equal(t, "R1", parts[0].AttrOr("id", ""))
	assert.Equal(t, "translate(393.7008,787.4016)", parts[0].AttrOr("transform", ""))
	assert.Len(t, parts[0].Children, 3)

	assert.Equal(t, "R2", parts[1].AttrOr("id", ""))
	assert.Equal(t, "translate(1181.1024,393.7008) scale(-1,1) rotate(-90)", parts[1].AttrOr("transform", ""))

	// placements do not share nodes
	assert.NotSame(t, parts[0].Children[0], parts[1].Children[0])
}

func TestBuildWithoutOutline(t *testing.T) {
	input := `<eagle version="9.6.2"><drawing><board><elements>
<element name="R1" package="AXIAL-0.3" x="10" y="10"/>
<element name="R2" package="AXIAL-0.3" x="20" y="15"/>
</elements></board></drawing></eagle>`

	board, err := eagle.DecodeBoard(strings.NewReader(input), "x.brd")
	require.NoError(t, err)

	root, diags, err := Build(board, options())
	require.NoError(t, err)
	assert.Equal(t, 1, diags.Count(diag.CodeMissingOutline))
	assert.Equal(t, "0 0 393.7008 196.8504", root.AttrOr("viewBox", ""))
}

func TestBuildEmptyBoard(t *testing.T) {
	board, err := eagle.DecodeBoard(strings.NewReader(`<eagle><drawing><board/></drawing></eagle>`), "x.brd")
	require.NoError(t, err)

	_, _, err = Build(board, options())
	assert.Error(t, err)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	dest := OutputPath(dir, "boards/demo.brd")
	assert.Equal(t, filepath.Join(dir, "demo-breadboard.svg"), dest)

	board, err := eagle.LoadBoard("../../testdata/board.brd")
	require.NoError(t, err)
	root, _, err := Build(board, options())
	require.NoError(t, err)

	require.NoError(t, Write(dest, root))

	fh, err := os.Open(dest)
	require.NoError(t, err)
	defer fh.Close()

	back, err := fritzing.ReadXML(fh)
	require.NoError(t, err)
	assert.Equal(t, root.AttrOr("viewBox", ""), back.AttrOr("viewBox", ""))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
