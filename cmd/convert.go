/*
Copyright © 2020 Mars Galactic <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/xoviat/eagle2fritzing/lib/bundle"
	"github.com/xoviat/eagle2fritzing/lib/catalog"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/pipeline"
	"github.com/xoviat/eagle2fritzing/lib/report"
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert <input...>",
	Short: "Convert EAGLE files into Fritzing part bundles.",
	Long: `Convert every device variant of the given .lbr, .sch or .brd files into
a Fritzing part bundle under --out.

	Exit status:
		- 0: every file converted
		- 1: a file could not be read, parsed or written
		- 2: converted, but some pins or pads are not connected
	`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if code := convert(args); code != 0 {
			os.Exit(code)
		}
	},
}

func convert(args []string) int {
	gopts, err := cfg.Geometry()
	if err != nil {
		logger.Error("invalid geometry settings", "err", err)
		return 1
	}
	mopts, err := cfg.Mapper()
	if err != nil {
		logger.Error("failed to load layer table", "file", cfg.Layers, "err", err)
		return 1
	}

	pcfg := pipeline.Config{
		OutDir:   cfg.Out,
		Geometry: gopts,
		Mapper:   mopts,
		Fzpz:     cfg.Fzpz,
		Workers:  cfg.Workers,
		Emitter:  &bundle.Emitter{Logger: logger},
		Logger:   logger,
	}
	if cfg.Catalog != "" {
		c, err := catalog.Open(cfg.Catalog)
		if err != nil {
			logger.Error("failed to open catalog", "dir", cfg.Catalog, "err", err)
			return 1
		}
		defer c.Close()
		pcfg.Catalog = c
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results := pipeline.RunBatch(ctx, args, pcfg)
	printSummary(os.Stdout, results)

	if cfg.Report != "" {
		if err := report.Write(cfg.Report, results); err != nil {
			logger.Error("failed to write report", "file", cfg.Report, "err", err)
			return 1
		}
	}

	return pipeline.ExitCode(results)
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringP("out", "o", "parts", "output directory")
	convertCmd.Flags().Float64("unit-scale", geometry.MMToMil, "SVG user units per millimetre")
	convertCmd.Flags().String("origin", string(geometry.OriginTopLeft), "view origin: top-left or center")
	convertCmd.Flags().Int("precision", 4, "decimal places kept in coordinates")
	convertCmd.Flags().IntP("workers", "j", runtime.NumCPU(), "files converted in parallel")
	convertCmd.Flags().String("layers", "", "YAML layer table")
	convertCmd.Flags().String("author", "", "author written into parts without one")
	convertCmd.Flags().Bool("fzpz", false, "also pack every bundle as .fzpz")
	convertCmd.Flags().String("report", "", "write connector and diagnostics sheets to this xlsx file")
}
