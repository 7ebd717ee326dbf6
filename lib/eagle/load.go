package eagle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
	version "github.com/mcuadros/go-version"
	"github.com/xoviat/eagle2fritzing/lib/diag"
)

// MinVersion is the first EAGLE release that wrote XML documents.
const MinVersion = "6.0"

type FileKind string

const (
	FileLibrary   FileKind = "library"
	FileSchematic FileKind = "schematic"
	FileBoard     FileKind = "board"
)

// Document is a loaded EAGLE file.
type Document struct {
	Path      string
	Version   string
	Kind      FileKind
	Root      *Element
	Libraries []*Element
}

// LibraryName returns the name used for part identifiers. Libraries embedded
// in schematics and boards carry a name attribute; a standalone .lbr is named
// after its file.
func (d *Document) LibraryName(lib *Element) string {
	if n := lib.Name(); n != "" {
		return n
	}
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads and structurally validates an EAGLE document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &diag.ParseError{Path: path, Err: err}
	}
	return parse(path, data)
}

// Read is Load for an already open stream; name is used in errors.
func Read(r io.Reader, name string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &diag.ParseError{Path: name, Err: err}
	}
	return parse(name, data)
}

func parse(path string, data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))); err != nil {
		return nil, &diag.ParseError{Path: path, Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &diag.ParseError{Path: path, Err: fmt.Errorf("document has no root element")}
	}

	if root.Tag != KindEagle {
		return nil, &diag.SchemaError{
			Path:    path,
			Subtree: root.Tag,
			Reason:  "root element is not <eagle>",
		}
	}

	d := &Document{
		Path:    path,
		Version: root.SelectAttrValue("version", ""),
		Root:    fromEtree(root, nil),
	}

	if d.Version != "" && version.Compare(version.Normalize(d.Version), version.Normalize(MinVersion), "<") {
		return nil, &diag.SchemaError{
			Path:    path,
			Subtree: "eagle@version",
			Reason:  fmt.Sprintf("version %s is older than %s", d.Version, MinVersion),
		}
	}

	drawing := d.Root.Child(KindDrawing)
	if drawing == nil {
		return nil, &diag.SchemaError{Path: path, Subtree: "drawing"}
	}

	switch {
	case drawing.Child(KindLibrary) != nil:
		d.Kind = FileLibrary
		d.Libraries = drawing.ChildrenOf(KindLibrary)
	case drawing.Child("schematic") != nil:
		d.Kind = FileSchematic
		d.Libraries = drawing.Find("schematic/libraries/library")
	case drawing.Child("board") != nil:
		d.Kind = FileBoard
		d.Libraries = drawing.Find("board/libraries/library")
	}

	if len(d.Libraries) == 0 {
		return nil, &diag.SchemaError{Path: path, Subtree: "drawing/library"}
	}

	for _, lib := range d.Libraries {
		if err := checkLibrary(path, lib); err != nil {
			return nil, err
		}
	}

	return d, nil
}

/*
	A library must hold at least one of its three sections, and everything
	that is referenced by name must have one.
*/
func checkLibrary(path string, lib *Element) error {
	sections := 0
	for _, section := range []struct{ container, kind string }{
		{"packages", KindPackage},
		{"symbols", KindSymbol},
		{"devicesets", KindDeviceSet},
	} {
		c := lib.Child(section.container)
		if c == nil {
			continue
		}
		sections++

		for _, el := range c.ChildrenOf(section.kind) {
			if el.Name() == "" {
				return &diag.SchemaError{
					Path:    path,
					Subtree: el.Path(),
					Reason:  section.kind + " without a name",
				}
			}
		}
	}

	if sections == 0 {
		return &diag.SchemaError{Path: path, Subtree: lib.Path() + "/packages|symbols|devicesets"}
	}

	for _, ds := range lib.Find("devicesets/deviceset") {
		if ds.Child("gates") == nil {
			return &diag.SchemaError{Path: path, Subtree: ds.Path() + "/gates"}
		}
		if ds.Child("devices") == nil {
			return &diag.SchemaError{Path: path, Subtree: ds.Path() + "/devices"}
		}
	}

	return nil
}

// Packages, Symbols and DeviceSets return a library's sections in document
// order.
func Packages(lib *Element) []*Element   { return lib.Find("packages/package") }
func Symbols(lib *Element) []*Element    { return lib.Find("symbols/symbol") }
func DeviceSets(lib *Element) []*Element { return lib.Find("devicesets/deviceset") }

func Package(lib *Element, name string) *Element {
	if c := lib.Child("packages"); c != nil {
		return c.Named(KindPackage, name)
	}
	return nil
}

func Symbol(lib *Element, name string) *Element {
	if c := lib.Child("symbols"); c != nil {
		return c.Named(KindSymbol, name)
	}
	return nil
}
