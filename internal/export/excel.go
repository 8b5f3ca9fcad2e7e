package export

import (
	"fmt"
	"io"

	"github.com/alleghenyre/propsearch/internal/property"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Properties"

// WriteExcel writes one worksheet with the report columns. Prices and areas
// are stored as numbers so they sort and sum in a spreadsheet.
func WriteExcel(w io.Writer, props []property.Property) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	head := make([]any, len(columns))
	for i, c := range columns {
		head[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &head); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"428BCA"}, Pattern: 1},
	})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", "F1", style); err != nil {
		return err
	}

	for i, p := range props {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{
			orMissing(p.PropertyAddress),
			orMissing(p.PropertyCity),
			numberOrMissing(p.SalePrice),
			orMissing(p.SaleDate),
			numberOrMissing(p.FinishedLivingArea),
			orMissing(p.SchoolDesc),
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	for col, width := range map[string]float64{"A": 40, "B": 20, "C": 14, "D": 12, "E": 10, "F": 36} {
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func numberOrMissing(v float64) any {
	if v <= 0 {
		return missing
	}
	return v
}
