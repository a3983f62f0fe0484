package ledger

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/kurier-ops/kurier-ops/internal/shared"
)

const exportSheet = "Transactions"

// ExportXLSX renders the summary transaction list as a spreadsheet: one
// sheet, a header row and a totals footer.
func ExportXLSX(sum *Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	headers := []string{"Date", "Type", "Description", "Amount", "Driver"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return nil, err
		}
	}

	row := 2
	for _, tr := range sum.Transactions {
		values := []any{
			tr.Date.Format(shared.DayFormat),
			tr.Type,
			tr.Description,
			tr.Amount,
			tr.DriverName,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(exportSheet, cell, v); err != nil {
				return nil, err
			}
		}
		row++
	}

	footer := [][2]any{
		{"Total incomes", sum.TotalIncomes},
		{"Total expenses", sum.TotalExpenses},
		{"Total driver cash", sum.TotalDriverCash},
		{"Balance", sum.TotalBalance},
	}
	row++
	for _, line := range footer {
		if err := f.SetCellValue(exportSheet, fmt.Sprintf("A%d", row), line[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(exportSheet, fmt.Sprintf("D%d", row), line[1]); err != nil {
			return nil, err
		}
		row++
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
