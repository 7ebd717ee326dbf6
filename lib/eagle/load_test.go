package eagle

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/eagle2fritzing/lib/diag"
)

func TestLoadLibrary(t *testing.T) {
	doc, err := Load("../../testdata/resistor.lbr")
	require.NoError(t, err)

	assert.Equal(t, FileLibrary, doc.Kind)
	assert.Equal(t, "9.6.2", doc.Version)
	require.Len(t, doc.Libraries, 1)

	lib := doc.Libraries[0]
	assert.Equal(t, "resistor", doc.LibraryName(lib))
	assert.Len(t, Packages(lib), 2)
	assert.Len(t, Symbols(lib), 1)
	assert.Len(t, DeviceSets(lib), 1)

	pkg := Package(lib, "0805")
	require.NotNil(t, pkg)
	smds := pkg.ChildrenOf(KindSMD)
	require.Len(t, smds, 2)

	x, err := smds[0].Float("x")
	require.NoError(t, err)
	assert.Equal(t, -0.95, x)
	assert.Equal(t, "library/packages/package[0805]/smd[1]", smds[0].Path())

	// attribute order follows the document
	assert.Equal(t, []string{"name", "x", "y", "dx", "dy", "layer"}, attrNames(smds[0]))

	text := pkg.Child(KindText)
	require.NotNil(t, text)
	assert.Equal(t, ">NAME", text.Text)
}

func attrNames(el *Element) []string {
	var names []string
	for _, a := range el.Attrs {
		names = append(names, a.Name)
	}
	return names
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load("../../testdata/malformed.lbr")
	require.Error(t, err)

	var perr *diag.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("../../testdata/does-not-exist.lbr")

	var perr *diag.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestReadSchemaErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		subtree string
	}{
		{
			name:    "wrong root",
			input:   `<kicad><drawing/></kicad>`,
			subtree: "kicad",
		},
		{
			name:    "no drawing",
			input:   `<eagle version="9.0"><other/></eagle>`,
			subtree: "drawing",
		},
		{
			name:    "no library",
			input:   `<eagle version="9.0"><drawing><layers/></drawing></eagle>`,
			subtree: "drawing/library",
		},
		{
			name:    "old version",
			input:   `<eagle version="5.11"><drawing><library><packages/></library></drawing></eagle>`,
			subtree: "eagle@version",
		},
		{
			name:    "unnamed package",
			input:   `<eagle><drawing><library><packages><package/></packages></library></drawing></eagle>`,
			subtree: "library/packages/package",
		},
		{
			name:    "deviceset without gates",
			input:   `<eagle><drawing><library><devicesets><deviceset name="X"><devices/></deviceset></devicesets></library></drawing></eagle>`,
			subtree: "library/devicesets/deviceset[X]/gates",
		},
		{
			name:    "empty library",
			input:   `<eagle><drawing><library><description/></library></drawing></eagle>`,
			subtree: "library/packages|symbols|devicesets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), "x.lbr")
			require.Error(t, err)

			var serr *diag.SchemaError
			require.True(t, errors.As(err, &serr), "got %T: %v", err, err)
			assert.Equal(t, tt.subtree, serr.Subtree)
		})
	}
}

func TestReadEmbeddedLibraries(t *testing.T) {
	input := `<eagle version="9.6.2"><drawing><board><libraries>
		<library name="a"><packages><package name="P"/></packages></library>
		<library name="b"><packages><package name="Q"/></packages></library>
	</libraries></board></drawing></eagle>`

	doc, err := Read(strings.NewReader(input), "x.brd")
	require.NoError(t, err)

	assert.Equal(t, FileBoard, doc.Kind)
	require.Len(t, doc.Libraries, 2)
	assert.Equal(t, "b", doc.LibraryName(doc.Libraries[1]))
}

func TestElementFind(t *testing.T) {
	doc, err := Load("../../testdata/resistor.lbr")
	require.NoError(t, err)

	ds := DeviceSets(doc.Libraries[0])[0]
	connects := ds.Find("devices/device/connects/connect")
	assert.Len(t, connects, 4)

	device := ds.FindOne("devices/device")
	require.NotNil(t, device)
	assert.Equal(t, "0805", device.Name())
	assert.Equal(t, ds, connects[0].Ancestor(KindDeviceSet))
	assert.Nil(t, ds.FindOne("devices/nothing"))
}
