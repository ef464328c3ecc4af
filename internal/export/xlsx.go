package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"voxform/internal/domain"
)

// SheetName is the worksheet holding the submissions.
const SheetName = "Submissions"

// WriteXLSX writes submissions as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, subs []domain.Submission) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx: header style: %w", err)
	}

	for i := range subs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: cell name: %w", err)
		}
		row := Row(&subs[i])
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+2, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(Columns))
	if err != nil {
		return fmt.Errorf("xlsx: column name: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, 22); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}
