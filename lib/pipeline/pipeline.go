// Package pipeline runs one EAGLE file through load, transform, map, emit
// and validate, and fans a batch of files out over a bounded worker pool.
package pipeline

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/xoviat/eagle2fritzing/lib/bundle"
	"github.com/xoviat/eagle2fritzing/lib/catalog"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
	"github.com/xoviat/eagle2fritzing/lib/validate"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	OutDir   string
	Geometry geometry.Options
	Mapper   mapper.Options

	// Fzpz also packs every bundle into <OutDir>/<id>.fzpz.
	Fzpz bool

	// Catalog, when set, records every emitted bundle.
	Catalog *catalog.Catalog

	Workers int
	Emitter *bundle.Emitter
	Logger  *log.Logger
}

func (c *Config) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

func (c *Config) emitter() *bundle.Emitter {
	if c.Emitter == nil {
		return &bundle.Emitter{Logger: c.Logger}
	}
	return c.Emitter
}

// Result is the outcome for one input file. Err is the fatal error that
// stopped it, if any; bundles emitted before it stay on disk.
type Result struct {
	Path        string
	Parts       []*mapper.Part
	Bundles     []*bundle.PartBundle
	Diagnostics diag.List
	Err         error
}

// Unresolved counts the unresolved connection diagnostics.
func (r *Result) Unresolved() int {
	return r.Diagnostics.Count(diag.CodeUnresolved)
}

// Run converts one file. Cancellation is checked between stages.
func Run(ctx context.Context, path string, cfg Config) *Result {
	r := &Result{Path: path}
	logger := cfg.logger().With("file", path)

	fail := func(err error) *Result {
		r.Err = err
		logger.Error("conversion failed", "err", err)
		return r
	}

	doc, err := eagle.Load(path)
	if err != nil {
		return fail(err)
	}
	logger.Debug("loaded", "kind", doc.Kind, "version", doc.Version, "libraries", len(doc.Libraries))

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	ann := geometry.Transform(doc, cfg.Geometry)

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	res, err := mapper.Map(doc, ann, cfg.Mapper)
	if res != nil {
		r.Diagnostics = append(r.Diagnostics, res.Diagnostics...)
		logDiagnostics(logger, res.Diagnostics)
	}
	if err != nil {
		return fail(err)
	}
	r.Parts = res.Parts

	emitter := cfg.emitter()
	for _, part := range res.Parts {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		b, err := emitter.Emit(ctx, part, cfg.OutDir)
		if err != nil {
			return fail(err)
		}
		b.Diagnostics = append(b.Diagnostics, validate.Bundle(b)...)

		if cfg.Fzpz {
			dest := filepath.Join(cfg.OutDir, b.ModuleID+".fzpz")
			if err := bundle.Pack(b, dest); err != nil {
				return fail(&diag.IOError{Op: "pack", Path: dest, Err: err})
			}
		}
		if cfg.Catalog != nil {
			if err := cfg.Catalog.Put(catalog.NewRecord(path, part, b)); err != nil {
				b.Diagnostics.Warn(diag.CodeCatalog, b.ModuleID, "catalog: %v", err)
			}
		}

		logDiagnostics(logger.With("part", part.Variant), b.Diagnostics)
		logger.Info("emitted", "part", part.Variant, "dir", b.Dir, "diagnostics", len(b.Diagnostics))

		r.Bundles = append(r.Bundles, b)
		r.Diagnostics = append(r.Diagnostics, b.Diagnostics...)
	}

	return r
}

func logDiagnostics(logger *log.Logger, diags diag.List) {
	for _, d := range diags {
		kv := []interface{}{"code", d.Code, "context", d.Context}
		if d.Severity == diag.Error {
			logger.Error(d.Message, kv...)
		} else {
			logger.Warn(d.Message, kv...)
		}
	}
}

/*
	RunBatch converts paths on at most cfg.Workers goroutines. A fatal error
	only stops its own file. Results are in input order.
*/
func RunBatch(ctx context.Context, paths []string, cfg Config) []*Result {
	results := make([]*Result, len(paths))

	g := errgroup.Group{}
	if cfg.Workers > 0 {
		g.SetLimit(cfg.Workers)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = Run(ctx, path, cfg)
			return nil
		})
	}
	g.Wait()

	return results
}

// ExitCode is 1 when any file failed, 2 when any connection is unresolved
// and 0 otherwise.
func ExitCode(results []*Result) int {
	code := 0
	for _, r := range results {
		if diag.IsFatal(r.Err) {
			return 1
		}
		if r.Unresolved() > 0 {
			code = 2
		}
	}
	return code
}
