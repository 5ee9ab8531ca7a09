package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's limit on worksheet name length.
const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	"/", "-", "\\", "-", "?", "", "*", "", "[", "(", "]", ")", ":", " ", "'", "",
)

// WriteXLSX saves a workbook with a summary sheet followed by one sheet per
// table of sections.
func WriteXLSX(path string, p Page) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summary = "Resumo"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	meta := [][]string{{p.Title, ""}, {"Gerado em", p.GeneratedAt}}
	if p.Range != "" {
		meta = append(meta, []string{"Período", p.Range})
	}
	if p.ProfileName != "" {
		meta = append(meta, []string{"Perfil", p.ProfileName})
	}
	for _, ind := range p.Indicators {
		meta = append(meta, []string{ind.Label, ind.Value})
	}
	if err := writeGrid(f, summary, meta); err != nil {
		return err
	}
	if err := f.SetCellStyle(summary, "A1", "A1", bold); err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	if err := f.SetColWidth(summary, "A", "B", 28); err != nil {
		return fmt.Errorf("xlsx: column width: %w", err)
	}

	n := 0
	for _, s := range p.Sections {
		for _, t := range s.Tables {
			n++
			name := sheetName(n, t.Title)
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("xlsx: new sheet %q: %w", name, err)
			}
			if err := writeGrid(f, name, tableGrid(t)); err != nil {
				return err
			}
			last, _ := excelize.ColumnNumberToName(len(t.Header))
			if err := f.SetCellStyle(name, "A1", last+"1", bold); err != nil {
				return fmt.Errorf("xlsx: style: %w", err)
			}
			if err := f.SetColWidth(name, "A", last, 18); err != nil {
				return fmt.Errorf("xlsx: column width: %w", err)
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("xlsx: create output dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx: save %q: %w", path, err)
	}
	return nil
}

// tableGrid flattens t into rows of cells, header first. Partial periods are
// marked with a trailing "*".
func tableGrid(t Table) [][]string {
	grid := make([][]string, 0, len(t.Rows)+1)
	grid = append(grid, t.Header)
	for _, r := range t.Rows {
		label := r.Label
		if r.Partial {
			label += " *"
		}
		grid = append(grid, append([]string{label}, r.Cells...))
	}
	return grid
}

func writeGrid(f *excelize.File, sheet string, grid [][]string) error {
	for r, row := range grid {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("xlsx: cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("xlsx: write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

// sheetName derives a unique, valid worksheet name from a table title.
func sheetName(n int, title string) string {
	name := fmt.Sprintf("%02d %s", n, sheetNameReplacer.Replace(title))
	for utf8.RuneCountInString(name) > maxSheetName {
		_, size := utf8.DecodeLastRuneInString(name)
		name = name[:len(name)-size]
	}
	return strings.TrimSpace(name)
}
