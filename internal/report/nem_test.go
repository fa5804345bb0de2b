package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/feuerlager/feuerlager/internal/domain/stock"
)

func TestNemWorkbook(t *testing.T) {
	rows := []stock.LocationTotals{
		{
			Location:     stock.AtLocation(1),
			LocationName: "Karton A1",
			Totals:       stock.Totals{Positions: 2, TotalPieces: 27, TotalNEM: 165},
		},
		{
			Location: stock.Unassigned(),
			Totals:   stock.Totals{Positions: 1, TotalPieces: 10, TotalNEM: 50},
		},
	}
	grand := stock.Totals{Positions: 3, TotalPieces: 37, TotalNEM: 215}

	buf, err := NemWorkbook(rows, grand)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	got, err := f.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, got, 4) // header, two locations, grand total

	assert.Equal(t, []string{"location", "positions", "total_pieces", "total_nem_g"}, got[0])
	assert.Equal(t, "Karton A1", got[1][0])
	assert.Equal(t, FreePoolLabel, got[2][0])
	assert.Equal(t, "total", got[3][0])
	assert.Equal(t, "37", got[3][2])
}
