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
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/spf13/cobra"
	"github.com/xoviat/eagle2fritzing/lib/catalog"
)

var (
	interactive bool
	limit       int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog of converted parts.",
	Long: `Search the catalog of converted parts with a bleve query string.

	Example:
		- eagle2fritzing search resistor
		- eagle2fritzing search Package:0805
		- eagle2fritzing search -i         : search interactively
	`,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := openCatalog()
		if err != nil {
			fmt.Printf("failed to open catalog: %s\n", err)
			return
		}
		defer c.Close()

		if !interactive {
			if len(args) == 0 {
				fmt.Println("a query is required unless searching interactively")
				return
			}
			search(c, strings.Join(args, " "))
			return
		}

		records, err := c.All()
		if err != nil {
			fmt.Printf("failed to list catalog: %s\n", err)
			return
		}
		suggestions := []prompt.Suggest{}
		for _, r := range records {
			suggestions = append(suggestions, prompt.Suggest{Text: r.Title, Description: r.Package})
		}

		for {
			q := prompt.Input("search> ", func(d prompt.Document) []prompt.Suggest {
				return prompt.FilterFuzzy(suggestions, d.GetWordBeforeCursor(), true)
			})
			q = strings.TrimSpace(q)
			if q == "" || q == "exit" {
				return
			}
			search(c, q)
		}
	},
}

func search(c *catalog.Catalog, q string) {
	records, err := c.Search(q, limit)
	if err != nil {
		fmt.Printf("search failed: %s\n", err)
		return
	}
	if len(records) == 0 {
		fmt.Println(dimStyle.Render("no parts found"))
		return
	}

	for _, r := range records {
		fmt.Printf("%s %s %s\n", okStyle.Render(r.Title), r.Package, dimStyle.Render(r.Dir))
	}
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "search interactively")
	searchCmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of results")
}
