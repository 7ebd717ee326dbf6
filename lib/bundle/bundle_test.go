package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/fritzing"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

func resistorParts(t *testing.T) []*mapper.Part {
	doc, err := eagle.Load("../../testdata/resistor.lbr")
	require.NoError(t, err)

	res, err := mapper.Map(doc, geometry.Transform(doc, geometry.DefaultOptions()), mapper.Options{Author: "tester"})
	require.NoError(t, err)
	return res.Parts
}

func readTree(t *testing.T, dir string) map[string][]byte {
	out := make(map[string][]byte)
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		data, err := os.ReadFile(p)
		out[rel] = data
		return err
	})
	require.NoError(t, err)
	return out
}

func TestEmitIsByteIdenticalOnRerun(t *testing.T) {
	parts := resistorParts(t)
	first, second := t.TempDir(), t.TempDir()

	e := &Emitter{}
	for _, out := range []string{first, second, second} {
		for _, p := range parts {
			_, err := e.Emit(context.Background(), p, out)
			require.NoError(t, err)
		}
	}

	a, b := readTree(t, first), readTree(t, second)
	assert.Len(t, a, len(parts)*4)
	assert.Equal(t, a, b)

	id := parts[0].ModuleID
	assert.Contains(t, a, filepath.Join(id, id+".fzp"))
	assert.Contains(t, a, filepath.Join(id, id+"_breadboard.svg"))
	assert.Contains(t, a, filepath.Join(id, id+"_schematic.svg"))
	assert.Contains(t, a, filepath.Join(id, id+"_pcb.svg"))
}

func TestEmitReplacesPreviousBundle(t *testing.T) {
	part := resistorParts(t)[0]
	out := t.TempDir()

	e := &Emitter{}
	b, err := e.Emit(context.Background(), part, out)
	require.NoError(t, err)

	stray := filepath.Join(b.Dir, "stray.txt")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o644))

	_, err = e.Emit(context.Background(), part, out)
	require.NoError(t, err)

	assert.NoFileExists(t, stray)
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary directories must not be left behind")
	assert.Equal(t, part.ModuleID, entries[0].Name())
}

// flakyFS fails the first n writes.
type flakyFS struct {
	FS
	n int
}

func (f *flakyFS) WriteFile(name string, data []byte, perm os.FileMode) error {
	if f.n > 0 {
		f.n--
		return errors.New("disk hiccup")
	}
	return f.FS.WriteFile(name, data, perm)
}

func TestEmitRetriesOnce(t *testing.T) {
	part := resistorParts(t)[0]
	out := t.TempDir()

	e := &Emitter{FS: &flakyFS{FS: OS, n: 1}}
	b, err := e.Emit(context.Background(), part, out)
	require.NoError(t, err)

	assert.Equal(t, 1, b.Diagnostics.Count(diag.CodeTransientIORetry))
	assert.FileExists(t, b.FzpPath())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestEmitFailsAfterSecondAttempt(t *testing.T) {
	part := resistorParts(t)[0]
	out := t.TempDir()

	e := &Emitter{FS: &flakyFS{FS: OS, n: 2}}
	_, err := e.Emit(context.Background(), part, out)
	require.Error(t, err)

	var ioErr *diag.IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)
	assert.True(t, diag.IsFatal(err))

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing may be left after a failed emit")
}

func TestEmitHonoursCancellation(t *testing.T) {
	part := resistorParts(t)[0]
	out := filepath.Join(t.TempDir(), "out")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Emitter{}).Emit(ctx, part, out)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoDirExists(t, out)
}

func TestReadEmittedBundle(t *testing.T) {
	part := resistorParts(t)[2]
	emitted, err := (&Emitter{}).Emit(context.Background(), part, t.TempDir())
	require.NoError(t, err)

	b, err := Read(emitted.Dir)
	require.NoError(t, err)

	assert.Equal(t, part.ModuleID, b.ModuleID)
	assert.Equal(t, part.Variant, b.Title())
	require.Len(t, b.Fragments, 3)

	for _, view := range fritzing.Views {
		got := b.Fragment(view)
		require.NotNil(t, got, view)
		assert.Equal(t, emitted.Fragment(view).IDs(), got.IDs())
	}

	pcb := b.FragmentByImage("pcb/" + part.ModuleID + "_pcb.svg")
	assert.Same(t, b.Fragment(fritzing.PCB), pcb)
}

func TestReadMissingView(t *testing.T) {
	part := resistorParts(t)[0]
	emitted, err := (&Emitter{}).Emit(context.Background(), part, t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(emitted.Dir, part.ModuleID+"_schematic.svg")))

	b, err := Read(emitted.Dir)
	require.NoError(t, err)
	assert.Len(t, b.Fragments, 2)
	assert.Nil(t, b.Fragment(fritzing.Schematic))
}

func TestPack(t *testing.T) {
	part := resistorParts(t)[0]
	b := FromPart(part)

	dest := filepath.Join(t.TempDir(), "resistor.fzpz")
	require.NoError(t, Pack(b, dest))

	names, err := Members(dest)
	require.NoError(t, err)

	id := part.ModuleID
	assert.ElementsMatch(t, []string{
		"part." + id + ".fzp",
		"svg.breadboard." + id + "_breadboard.svg",
		"svg.schematic." + id + "_schematic.svg",
		"svg.pcb." + id + "_pcb.svg",
	}, names)
	assert.NoFileExists(t, dest+".partial.zip")

	assert.Error(t, Pack(b, filepath.Join(t.TempDir(), "resistor.zip")))
}
