package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

// FS is the part of the filesystem the emitter touches.
type FS interface {
	MkdirAll(path string, perm os.FileMode) error
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	Rename(oldpath, newpath string) error
	RemoveAll(path string) error
	Stat(name string) (os.FileInfo, error)
}

type osFS struct{}

func (osFS) MkdirAll(path string, perm os.FileMode) error  { return os.MkdirAll(path, perm) }
func (osFS) MkdirTemp(dir, pattern string) (string, error) { return os.MkdirTemp(dir, pattern) }
func (osFS) Rename(oldpath, newpath string) error          { return os.Rename(oldpath, newpath) }
func (osFS) RemoveAll(path string) error                   { return os.RemoveAll(path) }
func (osFS) Stat(name string) (os.FileInfo, error)         { return os.Stat(name) }
func (osFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// OS is the real filesystem.
var OS FS = osFS{}

// Emitter writes bundles. The zero value writes to the real filesystem.
type Emitter struct {
	FS     FS
	Logger *log.Logger
}

func (e *Emitter) fs() FS {
	if e.FS == nil {
		return OS
	}
	return e.FS
}

func (e *Emitter) logger() *log.Logger {
	if e.Logger == nil {
		return log.Default()
	}
	return e.Logger
}

/*
	Emit writes part to <outDir>/<module id>/. The files are written into a
	temporary directory inside outDir and renamed into place, so readers see
	either the previous bundle or the complete new one. The temporary
	directory is removed on every failure path. A failed attempt is retried
	once; the second failure is returned as a *diag.IOError.
*/
func (e *Emitter) Emit(ctx context.Context, part *mapper.Part, outDir string) (*PartBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := FromPart(part)
	files, err := b.files()
	if err != nil {
		return nil, fmt.Errorf("serialize %s: %w", part.Variant, err)
	}

	final := filepath.Join(outDir, b.ModuleID)
	if first := e.write(outDir, final, b.ModuleID, files); first != nil {
		e.logger().Warn("write failed, retrying", "bundle", final, "err", first)
		if err := e.write(outDir, final, b.ModuleID, files); err != nil {
			return nil, err
		}
		b.Diagnostics.Warn(diag.CodeTransientIORetry, final, "first write attempt failed: %v", first)
	}

	b.Dir = final
	return b, nil
}

func (e *Emitter) write(outDir, final, id string, files []file) (err error) {
	fsys := e.fs()

	if err := fsys.MkdirAll(outDir, 0o755); err != nil {
		return &diag.IOError{Op: "mkdir", Path: outDir, Err: err}
	}

	tmp, err := fsys.MkdirTemp(outDir, "."+id+"-*")
	if err != nil {
		return &diag.IOError{Op: "mkdir", Path: outDir, Err: err}
	}
	defer func() {
		if err != nil {
			fsys.RemoveAll(tmp)
		}
	}()

	for _, f := range files {
		p := filepath.Join(tmp, f.name)
		if err := fsys.WriteFile(p, f.data, 0o644); err != nil {
			return &diag.IOError{Op: "write", Path: p, Err: err}
		}
	}

	return e.swap(tmp, final)
}

// swap moves tmp to final, replacing any previous bundle. When the rename
// fails the previous bundle is put back.
func (e *Emitter) swap(tmp, final string) error {
	fsys := e.fs()

	_, err := fsys.Stat(final)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := fsys.Rename(tmp, final); err != nil {
			return &diag.IOError{Op: "rename", Path: final, Err: err}
		}
		return nil
	case err != nil:
		return &diag.IOError{Op: "stat", Path: final, Err: err}
	}

	backup := tmp + ".old"
	if err := fsys.Rename(final, backup); err != nil {
		return &diag.IOError{Op: "rename", Path: final, Err: err}
	}
	if err := fsys.Rename(tmp, final); err != nil {
		if rerr := fsys.Rename(backup, final); rerr != nil {
			e.logger().Error("could not restore previous bundle", "bundle", final, "backup", backup, "err", rerr)
		}
		return &diag.IOError{Op: "rename", Path: final, Err: err}
	}
	fsys.RemoveAll(backup)
	return nil
}
