package report

import (
	"bytes"

	"github.com/xuri/excelize/v2"

	"github.com/feuerlager/feuerlager/internal/domain/stock"
)

// FreePoolLabel is how the unassigned pool shows up in reports.
const FreePoolLabel = "free (unassigned stock)"

// NemWorkbook renders the per-location NEM overview as an xlsx workbook:
// header, one row per location, grand total last.
func NemWorkbook(rows []stock.LocationTotals, grand stock.Totals) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := []interface{}{"location", "positions", "total_pieces", "total_nem_g"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}

	rowIdx := 2
	for _, r := range rows {
		name := r.LocationName
		if !r.Location.Assigned() {
			name = FreePoolLabel
		}
		excelRow := []interface{}{name, r.Positions, r.TotalPieces, r.TotalNEM}
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return nil, err
		}
		rowIdx++
	}

	totalRow := []interface{}{"total", grand.Positions, grand.TotalPieces, grand.TotalNEM}
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, cell, &totalRow); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
