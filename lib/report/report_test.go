package report

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xoviat/eagle2fritzing/lib/diag"
	"github.com/xoviat/eagle2fritzing/lib/geometry"
	"github.com/xoviat/eagle2fritzing/lib/mapper"
	"github.com/xoviat/eagle2fritzing/lib/pipeline"
	"github.com/xuri/excelize/v2"
)

func TestWrite(t *testing.T) {
	cfg := pipeline.Config{
		OutDir:   t.TempDir(),
		Geometry: geometry.DefaultOptions(),
		Mapper:   mapper.DefaultOptions(),
		Logger:   log.New(io.Discard),
	}
	results := pipeline.RunBatch(context.Background(), []string{
		"../../testdata/gaps.lbr",
		"../../testdata/malformed.lbr",
	}, cfg)

	dest := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, Write(dest, results))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ConnectorsSheet, DiagnosticsSheet}, f.GetSheetList())

	connectors, err := f.GetRows(ConnectorsSheet)
	require.NoError(t, err)
	require.Len(t, connectors, 1+len(results[0].Parts[0].Connectors))
	assert.Equal(t, "Connector", connectors[0][3])
	assert.Equal(t, "connector0", connectors[1][3])

	rows, err := f.GetRows(DiagnosticsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1+len(results[0].Diagnostics)+1)

	unresolved := 0
	for _, row := range rows[1:] {
		if row[2] == diag.CodeUnresolved {
			unresolved++
		}
	}
	assert.Equal(t, 2, unresolved)

	last := rows[len(rows)-1]
	assert.Equal(t, "../../testdata/malformed.lbr", last[0])
	assert.Equal(t, "fatal", last[1])
}
