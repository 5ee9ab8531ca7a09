package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"market-dashboard/models"
)

func TestCSVWriterWritesRawRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "raw.csv")
	w, err := NewCSVWriter(path, RawHeader)
	if err != nil {
		t.Fatal(err)
	}
	var _ RecordWriter = w

	records := []*models.RawRecord{
		{Sheet: "Residencial", Line: 2, Period: "202101", Status: "Vendido", Project: "Alfa, Bloco A"},
		{Sheet: "Residencial", Line: 3, Period: "202102", Status: "Oferta"},
	}
	if err := w.Write(records); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d lines, want header + 2", len(rows))
	}
	if rows[0][0] != "sheet" || len(rows[0]) != len(RawHeader) {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "2" || rows[1][10] != "Alfa, Bloco A" {
		t.Errorf("first row = %v", rows[1])
	}
}
