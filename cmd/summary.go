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

	"github.com/charmbracelet/lipgloss"
	"github.com/xoviat/eagle2fritzing/lib/pipeline"
)

var (
	okStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	warnStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	failStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	dimStyle  = lipgloss.NewStyle().Faint(true)
)

// printSummary prints one block per input file: its status, then each
// bundle directory with its diagnostic count.
func printSummary(w io.Writer, results []*pipeline.Result) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "%s %s\n", failStyle.Render("FAIL"), r.Path)
			fmt.Fprintf(w, "     %s\n", dimStyle.Render(r.Err.Error()))
			continue
		case r.Unresolved() > 0:
			fmt.Fprintf(w, "%s %s %s\n", warnStyle.Render("WARN"), r.Path,
				dimStyle.Render(fmt.Sprintf("(%d unresolved)", r.Unresolved())))
		default:
			fmt.Fprintf(w, "%s %s\n", okStyle.Render(" OK "), r.Path)
		}

		for _, b := range r.Bundles {
			fmt.Fprintf(w, "     %s %s\n", b.Dir, dimStyle.Render(fmt.Sprintf("%d diagnostics", len(b.Diagnostics))))
		}
	}
}
