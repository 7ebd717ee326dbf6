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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/xoviat/eagle2fritzing/lib/breadboard"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
)

// boardCmd represents the board command
var boardCmd = &cobra.Command{
	Use:   "board <file.brd...>",
	Short: "Draw a breadboard image of a board.",
	Long: `Board draws the outline of an EAGLE board and places a pre-drawn
breadboard subpart for every element on it. Subparts are looked up as
<package>.svg in --subparts; elements without one are reported and left out.

The image is written to <out>/<name>-breadboard.svg.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := os.MkdirAll(cfg.Out, 0o755); err != nil {
			fmt.Printf("failed to create output directory: %s\n", err)
			os.Exit(1)
		}

		failed := false
		for _, path := range args {
			board, err := eagle.LoadBoard(path)
			if err != nil {
				logger.Error("failed to load board", "file", path, "err", err)
				failed = true
				continue
			}

			root, diags, err := breadboard.Build(board, cfg.Breadboard())
			for _, d := range diags {
				logger.Warn(d.Message, "file", path, "code", d.Code, "context", d.Context)
			}
			if err != nil {
				logger.Error("failed to draw board", "file", path, "err", err)
				failed = true
				continue
			}

			dest := breadboard.OutputPath(cfg.Out, path)
			if err := breadboard.Write(dest, root); err != nil {
				logger.Error("failed to write board image", "file", dest, "err", err)
				failed = true
				continue
			}
			fmt.Printf("%s %s\n", okStyle.Render(" OK "), dest)
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(boardCmd)

	boardCmd.Flags().StringP("out", "o", "parts", "output directory")
	boardCmd.Flags().String("subparts", breadboard.DefaultOptions().Subparts, "directory of <package>.svg breadboard subparts")
	boardCmd.Flags().Float64("unit-scale", geometry.MMToMil, "SVG user units per millimetre")
	boardCmd.Flags().Int("precision", 4, "decimal places kept in coordinates")
}
