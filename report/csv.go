package report

import (
	"strconv"

	"market-dashboard/storage"
)

// CSVHeader is the header of the long-format table export.
var CSVHeader = []string{"section", "table", "row", "column", "value", "partial"}

// WriteCSV exports every cell of p's sections in long format, one line per
// cell, through the storage CSV writer.
func WriteCSV(path string, p Page) error {
	w, err := storage.NewCSVWriter(path, CSVHeader)
	if err != nil {
		return err
	}

	var lines [][]string
	for _, s := range p.Sections {
		for _, t := range s.Tables {
			for _, r := range t.Rows {
				for i, v := range r.Cells {
					column := strconv.Itoa(i + 1)
					if i+1 < len(t.Header) {
						column = t.Header[i+1]
					}
					lines = append(lines, []string{
						s.Category, t.Title, r.Label, column, v, strconv.FormatBool(r.Partial),
					})
				}
			}
		}
	}

	if err := w.WriteRows(lines); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
