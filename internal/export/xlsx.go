package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"fjacquet/camp-registration/internal/models"
)

// SheetName is the worksheet holding the registrations.
const SheetName = "Registrations"

// WriteXLSX writes registrations as an XLSX workbook with a header row.
func WriteXLSX(w io.Writer, regs []models.Registration) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("xlsx header: %w", err)
		}
	}

	for r, row := range NewRows(regs) {
		for c, v := range row.values() {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx row %d: %w", r+1, err)
			}
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "B", "B", 24)
	_ = f.SetColWidth(SheetName, "O", "O", 48)
	if err := f.SetPanes(SheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("xlsx panes: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
