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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xoviat/eagle2fritzing/lib/catalog"
)

func isExcel(name string) bool {
	name = strings.ToLower(name)
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls")
}

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Export or import the catalog of converted parts.",
}

var catalogExportCmd = &cobra.Command{
	Use:   "export <file.xlsx>",
	Short: "Export the catalog as a spreadsheet.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dst := args[0]
		if !isExcel(dst) {
			fmt.Printf("export file name must be excel file\n")
			return
		}

		c, err := openCatalog()
		if err != nil {
			fmt.Printf("failed to open catalog: %s\n", err)
			return
		}
		defer c.Close()

		if err := c.Export(dst); err != nil {
			fmt.Printf("failed to export catalog: %s\n", err)
		}
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "Import a spreadsheet written by catalog export.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		src := args[0]
		if !isExcel(src) {
			fmt.Println("import file must be an excel spreadsheet")
			return
		}

		c, err := openCatalog()
		if err != nil {
			fmt.Printf("failed to open catalog: %s\n", err)
			return
		}
		defer c.Close()

		importSheet(os.Stdout, c, src)
	},
}

// importSheet reports how many parts were imported, or the error that
// stopped the import.
func importSheet(w io.Writer, c *catalog.Catalog, src string) error {
	n, err := c.Import(src)
	if err != nil {
		fmt.Fprintf(w, "failed to import catalog after %d parts: %s\n", n, err)
		return err
	}
	fmt.Fprintf(w, "imported %d parts\n", n)
	return nil
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}
