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
	"github.com/xoviat/eagle2fritzing/lib/bundle"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/validate"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <bundle-dir...>",
	Short: "Check emitted part bundles.",
	Long: `Validate reads part bundles back from disk and checks that every
connector has its element in every view, that connector ids are unique,
that every declared view has its SVG and that the metadata is filled in.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		failed := false
		for _, dir := range args {
			b, err := bundle.Read(dir)
			if err != nil {
				fmt.Printf("%s %s\n", failStyle.Render("FAIL"), dir)
				fmt.Printf("     %s\n", dimStyle.Render(err.Error()))
				failed = true
				continue
			}

			diags := diag.List(validate.Bundle(b))
			if diags.HasErrors() {
				failed = true
				fmt.Printf("%s %s\n", failStyle.Render("FAIL"), dir)
			} else {
				fmt.Printf("%s %s\n", okStyle.Render(" OK "), dir)
			}
			for _, d := range diags {
				fmt.Printf("     %s\n", dimStyle.Render(d.String()))
			}
		}

		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
