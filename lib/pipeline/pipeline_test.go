package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/eagle2fritzing/lib/catalog"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

const (
	resistor  = "../../testdata/resistor.lbr"
	gaps      = "../../testdata/gaps.lbr"
	malformed = "../../testdata/malformed.lbr"
)

func config(out string) Config {
	opts := mapper.DefaultOptions()
	opts.Author = "tester"
	return Config{
		OutDir:   out,
		Geometry: geometry.DefaultOptions(),
		Mapper:   opts,
		Workers:  2,
		Logger:   log.New(io.Discard),
	}
}

func tree(t *testing.T, dir string) map[string][]byte {
	out := make(map[string][]byte)
	require.NoError(t, filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(dir, p)
		data, err := os.ReadFile(p)
		out[rel] = data
		return err
	}))
	return out
}

func TestRunIsDeterministic(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()

	a := Run(context.Background(), resistor, config(first))
	b := Run(context.Background(), resistor, config(second))
	require.NoError(t, a.Err)
	require.NoError(t, b.Err)

	assert.Len(t, a.Bundles, 3)
	assert.Equal(t, tree(t, first), tree(t, second))
	assert.Equal(t, 0, ExitCode([]*Result{a, b}))
}

func TestRunUnresolvedExitCode(t *testing.T) {
	r := Run(context.Background(), gaps, config(t.TempDir()))
	require.NoError(t, r.Err)

	require.Len(t, r.Bundles, 1)
	assert.Equal(t, 2, r.Unresolved())
	assert.Equal(t, 2, ExitCode([]*Result{r}))
}

func TestRunMalformedWritesNothing(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")

	r := Run(context.Background(), malformed, config(out))
	var perr *diag.ParseError
	assert.True(t, errors.As(r.Err, &perr))
	assert.Empty(t, r.Bundles)
	assert.Equal(t, 1, ExitCode([]*Result{r}))

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := filepath.Join(t.TempDir(), "out")
	r := Run(ctx, resistor, config(out))
	assert.ErrorIs(t, r.Err, context.Canceled)

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err))
}

func TestRunBatchKeepsInputOrder(t *testing.T) {
	paths := []string{gaps, malformed, resistor}
	results := RunBatch(context.Background(), paths, config(t.TempDir()))

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
	}
	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.Len(t, results[2].Bundles, 3)

	// one failed file outranks the unresolved connections of another
	assert.Equal(t, 1, ExitCode(results))
}

func TestRunSinks(t *testing.T) {
	out := t.TempDir()
	c, err := catalog.Open(t.TempDir())
	require.NoError(t, err)
	defer c.Close()

	cfg := config(out)
	cfg.Catalog = c
	cfg.Fzpz = true

	r := Run(context.Background(), resistor, cfg)
	require.NoError(t, r.Err)

	all, err := c.All()
	require.NoError(t, err)
	assert.Len(t, all, 3)

	for _, b := range r.Bundles {
		_, err := os.Stat(filepath.Join(out, b.ModuleID+".fzpz"))
		assert.NoError(t, err)

		rec, err := c.Get(b.ModuleID)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, resistor, rec.Source)
		assert.Equal(t, b.Dir, rec.Dir)
	}
}

func TestExitCode(t *testing.T) {
	unresolved := &Result{Diagnostics: diag.List{diag.FromError(&diag.UnresolvedConnectionError{Pin: "A"}, diag.CodeUnresolved)}}

	tests := []struct {
		name    string
		results []*Result
		want    int
	}{
		{"clean", []*Result{{}}, 0},
		{"unresolved", []*Result{{}, unresolved}, 2},
		{"parse error", []*Result{unresolved, {Err: &diag.ParseError{Path: "x.lbr"}}}, 1},
		{"io error", []*Result{{Err: &diag.IOError{Op: "rename"}}}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.results))
		})
	}
}
