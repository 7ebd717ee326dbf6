package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xoviat/eagle2fritzing/lib/mapper"
	"github.com/xuri/excelize/v2"
)

const sheet = "parts"

var columns = []string{
	"ID", "Title", "Library", "DeviceSet", "Device", "Variant",
	"Package", "Family", "Source", "Dir", "Connectors", "Diagnostics",
}

// Export writes every record to an xlsx file, one row per part.
func (c *Catalog) Export(dest string) error {
	records, err := c.All()
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.ID, r.Title, r.Library, r.DeviceSet, r.Device, r.Variant,
			r.Package, r.Family, r.Source, r.Dir, formatConnectors(r.Connectors), r.Diagnostics,
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	return f.SaveAs(dest)
}

/*
	Import reads a sheet written by Export back into the catalog and returns
	the number of records stored.
*/
func (c *Catalog) Import(src string) (int, error) {
	f, err := excelize.OpenFile(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	rows, err := f.Rows(f.GetSheetList()[0])
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	n := 0
	for line := 1; rows.Next(); line++ {
		row, err := rows.Columns()
		if err != nil {
			return n, err
		}
		if line == 1 || len(row) == 0 || row[0] == "" {
			continue
		}
		for len(row) < len(columns) {
			row = append(row, "")
		}

		connectors, err := parseConnectors(row[10])
		if err != nil {
			return n, fmt.Errorf("%s row %d: %w", src, line, err)
		}
		diagnostics, _ := strconv.Atoi(row[11])

		r := &Record{
			ID:          row[0],
			Title:       row[1],
			Library:     row[2],
			DeviceSet:   row[3],
			Device:      row[4],
			Variant:     row[5],
			Package:     row[6],
			Family:      row[7],
			Source:      row[8],
			Dir:         row[9],
			Connectors:  connectors,
			Diagnostics: diagnostics,
		}
		if err := c.Put(r); err != nil {
			return n, err
		}
		n++
	}

	return n, rows.Error()
}

/*
	formatConnectors renders mappings as "id=name|gate/pin:pad" joined by
	"; ", for example "connector0=A.OUT|A/OUT:1".
*/
func formatConnectors(mappings []mapper.ConnectorMapping) string {
	parts := make([]string, 0, len(mappings))
	for _, m := range mappings {
		parts = append(parts, fmt.Sprintf("%s=%s|%s/%s:%s", m.ID, m.Name, m.Gate, m.Pin, m.Pad))
	}
	return strings.Join(parts, "; ")
}

func parseConnectors(s string) ([]mapper.ConnectorMapping, error) {
	var out []mapper.ConnectorMapping
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, rest, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bad connector %q", part)
		}
		// sheets without the name field name the connector after its pin
		name, rest, named := strings.Cut(rest, "|")
		if !named {
			rest = name
		}
		ref, pad, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("bad connector %q", part)
		}
		gate, pin, ok := strings.Cut(ref, "/")
		if !ok {
			return nil, fmt.Errorf("bad connector %q", part)
		}
		if !named {
			name = pin
		}

		out = append(out, mapper.ConnectorMapping{ID: id, Name: name, Gate: gate, Pin: pin, Pad: pad})
	}
	return out, nil
}
