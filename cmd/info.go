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
	"strings"

	"github.com/spf13/cobra"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/eagle"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
)

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "List the parts a file would convert to.",
	Long: `Info maps an EAGLE file without writing anything and lists every part
variant with its module id and connector count.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := eagle.Load(args[0])
		if err != nil {
			fmt.Printf("failed to load %s: %s\n", args[0], err)
			os.Exit(1)
		}

		fmt.Printf("%s %s (EAGLE %s)\n", okStyle.Render(string(doc.Kind)), doc.Path, doc.Version)
		for _, lib := range doc.Libraries {
			fmt.Printf("  library %s: %d packages, %d symbols, %d devicesets\n",
				doc.LibraryName(lib), len(eagle.Packages(lib)), len(eagle.Symbols(lib)), len(eagle.DeviceSets(lib)))
		}

		gopts, err := cfg.Geometry()
		if err != nil {
			fmt.Printf("invalid geometry settings: %s\n", err)
			os.Exit(1)
		}
		mopts, err := cfg.Mapper()
		if err != nil {
			fmt.Printf("failed to load layer table: %s\n", err)
			os.Exit(1)
		}

		res, err := mapper.Map(doc, geometry.Transform(doc, gopts), mopts)
		if err != nil {
			fmt.Printf("failed to map %s: %s\n", args[0], err)
			os.Exit(1)
		}

		var layers []string
		for _, n := range mopts.Layers.Numbers() {
			name, _ := mopts.Layers.Lookup(n)
			layers = append(layers, fmt.Sprintf("%d=%s", n, name))
		}
		fmt.Printf("  layers %s\n", dimStyle.Render(strings.Join(layers, " ")))

		for _, part := range res.Parts {
			unresolved := part.Diagnostics.Count(diag.CodeUnresolved)
			status := fmt.Sprintf("%d connectors", len(part.Connectors))
			if unresolved > 0 {
				status += warnStyle.Render(fmt.Sprintf(", %d unresolved", unresolved))
			}
			fmt.Printf("  %s %s %s\n", part.Variant, dimStyle.Render(part.ModuleID), status)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
