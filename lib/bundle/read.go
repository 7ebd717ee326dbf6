package bundle

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
)

// Read loads an emitted bundle from dir. Views whose image is missing on
// disk are left out so validation can report them.
func Read(dir string) (*PartBundle, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.fzp"))
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("%s: expected one .fzp, found %d", dir, len(matches))
	}

	module, err := readXML(matches[0])
	if err != nil {
		return nil, err
	}
	if module.Kind != fritzing.KindModule {
		return nil, &diag.SchemaError{Path: matches[0], Subtree: module.Kind, Reason: "root element is not <module>"}
	}

	b := &PartBundle{
		ModuleID: module.AttrOr("moduleId", strings.TrimSuffix(filepath.Base(matches[0]), ".fzp")),
		Dir:      dir,
		Module:   module,
	}

	loaded := make(map[string]*fritzing.Fragment)
	views := module.Child(fritzing.KindViews)
	if views == nil {
		return b, nil
	}

	for _, v := range views.Children {
		view, ok := fritzing.ViewFromTag(v.Kind)
		if !ok {
			continue
		}
		layers := v.Child(fritzing.KindLayers)
		if layers == nil {
			continue
		}
		image := layers.AttrOr("image", "")
		if image == "" {
			continue
		}

		if f, ok := loaded[image]; ok {
			layers.Fragment = f
			continue
		}

		file := path.Base(image)
		root, err := readXML(filepath.Join(dir, file))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if dirView := fritzing.View(path.Dir(image)); dirView != "." {
			view = dirView
		}
		f := &fritzing.Fragment{View: view, File: file, Root: root}
		layers.Fragment = f
		loaded[image] = f
		b.Fragments = append(b.Fragments, f)
	}

	return b, nil
}

func readXML(name string) (*fritzing.Element, error) {
	fh, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	root, err := fritzing.ReadXML(fh)
	if err != nil {
		return nil, &diag.ParseError{Path: name, Err: err}
	}
	return root, nil
}
