package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"fjacquet/camp-registration/internal/models"
)

// Delimiter separates CSV columns.
var Delimiter rune = ','

// WriteCSV writes registrations as CSV. The header row is written even when
// there are no registrations.
func WriteCSV(w io.Writer, regs []models.Registration) error {
	if regs == nil {
		regs = []models.Registration{}
	}
	rows := NewRows(regs)

	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = Delimiter
	if err := gocsv.MarshalCSV(rows, gocsv.NewSafeCSVWriter(csvWriter)); err != nil {
		return fmt.Errorf("error writing CSV data: %w", err)
	}
	return nil
}
