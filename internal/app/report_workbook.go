package app

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

const (
	reportHeaderColor = "233F84"
	maxSheetName      = 31
	minColumnWidth    = 10
	maxColumnWidth    = 60
)

// writeWorkbook writes sheets as one XLSX workbook, in order. Sheet names are
// cleaned of characters Excel rejects and made unique.
func writeWorkbook(w io.Writer, sheets ...reportSheet) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{reportHeaderColor}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	used := make(map[string]bool)
	for i, sheet := range sheets {
		name := uniqueSheetName(sheet.name, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to name sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, sheet, headerStyle); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, sheet reportSheet, headerStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("failed to open sheet %q: %w", name, err)
	}

	// Column widths must be set before the first row is streamed.
	for col, width := range columnWidths(sheet) {
		if err := sw.SetColWidth(col+1, col+1, width); err != nil {
			return err
		}
	}

	header := make([]any, len(sheet.header))
	for i, h := range sheet.header {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", name, err)
	}

	for i, values := range sheet.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i+2, name, err)
		}
	}
	return sw.Flush()
}

// columnWidths sizes each column to its longest value, within bounds.
func columnWidths(sheet reportSheet) []float64 {
	widths := make([]float64, len(sheet.header))
	measure := func(col int, v any) {
		if col >= len(widths) {
			return
		}
		n := float64(utf8.RuneCountInString(cellText(v)) + 2)
		if n > widths[col] {
			widths[col] = n
		}
	}
	for i, h := range sheet.header {
		measure(i, h)
	}
	for _, values := range sheet.rows {
		for i, v := range values {
			measure(i, v)
		}
	}
	for i, n := range widths {
		widths[i] = min(max(n, minColumnWidth), maxColumnWidth)
	}
	return widths
}

func cellText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// uniqueSheetName drops the characters Excel forbids in sheet names, caps the
// length and appends a counter on collision.
func uniqueSheetName(name string, used map[string]bool) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return -1
		}
		return r
	}, name)
	clean = truncateRunes(strings.TrimSpace(clean), maxSheetName)
	if clean == "" {
		clean = "Hoja"
	}

	candidate := clean
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		candidate = truncateRunes(clean, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
