package bundle

import (
	"compress/flate"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver"
)

// ArchiveName is the name Fritzing expects a bundle member to have inside a
// .fzpz: part.<file> for the module and svg.<view>.<file> for images.
func (b *PartBundle) ArchiveName(name string) string {
	if name == b.FzpName() {
		return "part." + name
	}
	for _, f := range b.Fragments {
		if f.File == name {
			return "svg." + string(f.View) + "." + name
		}
	}
	return name
}

// Pack writes the bundle as a Fritzing .fzpz archive at dest.
func Pack(b *PartBundle, dest string) (err error) {
	if !strings.HasSuffix(dest, ".fzpz") {
		return fmt.Errorf("pack %s: destination must end in .fzpz", dest)
	}

	files, err := b.files()
	if err != nil {
		return fmt.Errorf("pack %s: %w", dest, err)
	}

	staging, err := os.MkdirTemp("", "fzpz-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(staging)

	var sources []string
	for _, f := range files {
		p := filepath.Join(staging, b.ArchiveName(f.name))
		if err := os.WriteFile(p, f.data, 0o644); err != nil {
			return err
		}
		sources = append(sources, p)
	}

	// the zip writer insists on a .zip extension
	partial := dest + ".partial.zip"
	defer func() {
		if err != nil {
			os.Remove(partial)
		}
	}()

	z := &archiver.Zip{
		CompressionLevel:  flate.DefaultCompression,
		MkdirAll:          true,
		OverwriteExisting: true,
	}
	if err := z.Archive(sources, partial); err != nil {
		return fmt.Errorf("pack %s: %w", dest, err)
	}

	return os.Rename(partial, dest)
}

// Members lists the file names inside a .fzpz archive.
func Members(archive string) ([]string, error) {
	var names []string
	z := &archiver.Zip{}
	err := z.Walk(archive, func(f archiver.File) error {
		names = append(names, f.Name())
		return nil
	})
	return names, err
}
