// Package report writes the connector mapping and diagnostics of a
// conversion run to a spreadsheet.
package report

import (
	"strconv"

	"github.com/xoviat/eagle2fritzing/lib/pipeline"
	"github.com/xuri/excelize/v2"
)

const (
	ConnectorsSheet  = "connectors"
	DiagnosticsSheet = "diagnostics"
)

var (
	connectorColumns  = []interface{}{"File", "Part", "Module ID", "Connector", "Name", "Gate", "Pin", "Pad"}
	diagnosticColumns = []interface{}{"File", "Severity", "Code", "Context", "Message"}
)

// Write saves one connectors row per mapped pin and pad pair and one
// diagnostics row per finding. A file that failed gets a "fatal" row.
func Write(path string, results []*pipeline.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, name := range []string{ConnectorsSheet, DiagnosticsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	i := 1
	if err := f.SetSheetRow(ConnectorsSheet, "A"+strconv.Itoa(i), &connectorColumns); err != nil {
		return err
	}
	for _, r := range results {
		for _, part := range r.Parts {
			for _, c := range part.Connectors {
				i++
				row := []interface{}{r.Path, part.Variant, part.ModuleID, c.ID, c.Name, c.Gate, c.Pin, c.Pad}
				if err := f.SetSheetRow(ConnectorsSheet, "A"+strconv.Itoa(i), &row); err != nil {
					return err
				}
			}
		}
	}

	i = 1
	if err := f.SetSheetRow(DiagnosticsSheet, "A"+strconv.Itoa(i), &diagnosticColumns); err != nil {
		return err
	}
	for _, r := range results {
		for _, d := range r.Diagnostics {
			i++
			row := []interface{}{r.Path, string(d.Severity), d.Code, d.Context, d.Message}
			if err := f.SetSheetRow(DiagnosticsSheet, "A"+strconv.Itoa(i), &row); err != nil {
				return err
			}
		}
		if r.Err != nil {
			i++
			row := []interface{}{r.Path, "fatal", "fatal", "", r.Err.Error()}
			if err := f.SetSheetRow(DiagnosticsSheet, "A"+strconv.Itoa(i), &row); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}
