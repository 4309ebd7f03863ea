// Package export writes table rows to CSV and Excel files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"hoteldesk/internal/tableview"

	"github.com/xuri/excelize/v2"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Table turns rows into string cells in fields order.
func Table(rows []tableview.Row, fields []string) [][]string {
	data := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := make([]string, len(fields))
		for i, f := range fields {
			line[i] = r.Value(f)
		}
		data = append(data, line)
	}
	return data
}

// WriteCSV writes a header line followed by data.
func WriteCSV(w io.Writer, headers []string, data [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range data {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with a single sheet and a bold header row.
func WriteXLSX(w io.Writer, sheetName string, headers []string, data [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("failed to write header %s: %w", header, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to style header %s: %w", header, err)
		}
	}

	for rowIdx, row := range data {
		for colIdx, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	if len(headers) > 0 {
		last, err := excelize.ColumnNumberToName(len(headers))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, "A", last, 18); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
	}

	if sheetName != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return fmt.Errorf("failed to drop default sheet: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// FileName is the export file name for view at t, e.g.
// access_20261016_153000.csv.
func FileName(view, format string, t time.Time) string {
	return fmt.Sprintf("%s_%s.%s", view, t.Format("20060102_150405"), format)
}

// ToFile writes an export of view into dir and returns the file path.
func ToFile(dir, view, format string, headers []string, data [][]string, now time.Time) (string, error) {
	if format != FormatCSV && format != FormatXLSX {
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export dir: %w", err)
	}

	path := filepath.Join(dir, FileName(view, format, now))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	switch format {
	case FormatCSV:
		err = WriteCSV(file, headers, data)
	case FormatXLSX:
		err = WriteXLSX(file, sheetTitle(view), headers, data)
	}
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close export file: %w", cerr)
	}
	if err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// sheetTitle capitalises the view name; Excel caps sheet names at 31 runes.
func sheetTitle(view string) string {
	if view == "" {
		return "Sheet1"
	}
	r := []rune(view)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] -= 'a' - 'A'
	}
	if len(r) > 31 {
		r = r[:31]
	}
	return string(r)
}
