package storage

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"market-dashboard/models"
	"market-dashboard/utils"
)

// column identifies a RawRecord field in a sheet header.
type column int

const (
	colPeriod column = iota
	colStatus
	colNeighborhood
	colUnits
	colPricedValue
	colArea
	colRooms
	colStage
	colProject
	colCompany
	colUnitPrice
	colUnitArea
)

// headerAliases maps folded header labels to columns.
var headerAliases = map[string]column{
	"PERIODO":            colPeriod,
	"MES/ANO":            colPeriod,
	"ANO MES":            colPeriod,
	"COMPETENCIA":        colPeriod,
	"STATUS":             colStatus,
	"SITUACAO":           colStatus,
	"BAIRRO":             colNeighborhood,
	"REGIAO":             colNeighborhood,
	"QUANTIDADE":         colUnits,
	"QTD":                colUnits,
	"UNIDADES":           colUnits,
	"VALOR X QTD":        colPricedValue,
	"VALOR X QUANTIDADE": colPricedValue,
	"VALOR TOTAL":        colPricedValue,
	"AREA X QTD":         colArea,
	"AREA X QUANTIDADE":  colArea,
	"AREA TOTAL":         colArea,
	"QUARTOS":            colRooms,
	"DORMITORIOS":        colRooms,
	"ESTAGIO DA OBRA":    colStage,
	"ESTAGIO":            colStage,
	"EMPREENDIMENTO":     colProject,
	"PROJETO":            colProject,
	"EMPRESA":            colCompany,
	"INCORPORADORA":      colCompany,
	"CONSTRUTORA":        colCompany,
	"VALOR":              colUnitPrice,
	"VALOR UNITARIO":     colUnitPrice,
	"AREA PRIVATIVA":     colUnitArea,
	"AREA UNITARIA":      colUnitArea,
}

// requiredColumns must all be present for a sheet to be read.
var requiredColumns = []column{colPeriod, colStatus, colUnits}

// XLSXReader reads market rows from every sheet of a workbook.
type XLSXReader struct {
	path   string
	logger *utils.Logger
}

// NewXLSXReader creates a reader for the workbook at path.
func NewXLSXReader(path string, logger *utils.Logger) *XLSXReader {
	return &XLSXReader{path: path, logger: logger}
}

// FetchAll opens the workbook and returns the rows of all usable sheets,
// concatenated in sheet order.
func (x *XLSXReader) FetchAll() ([]*models.RawRecord, error) {
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", x.path, err)
	}
	defer func() { _ = f.Close() }()
	return x.readWorkbook(f)
}

// Read is FetchAll over an already open stream.
func (x *XLSXReader) Read(r io.Reader) ([]*models.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open stream: %w", err)
	}
	defer func() { _ = f.Close() }()
	return x.readWorkbook(f)
}

func (x *XLSXReader) readWorkbook(f *excelize.File) ([]*models.RawRecord, error) {
	var records []*models.RawRecord
	used := 0

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("xlsx: read sheet %q: %w", sheet, err)
		}

		headerAt, index := findHeader(rows)
		if headerAt < 0 {
			x.logger.Warn("[xlsx] Sheet %q skipped: missing PERIODO, STATUS or QUANTIDADE column", sheet)
			continue
		}
		used++

		before := len(records)
		for i := headerAt + 1; i < len(rows); i++ {
			if blank(rows[i]) {
				continue
			}
			records = append(records, toRecord(sheet, i+1, rows[i], index))
		}
		x.logger.Debug("[xlsx] Sheet %q: %d rows", sheet, len(records)-before)
	}

	if used == 0 {
		return nil, fmt.Errorf("xlsx: no sheet has the PERIODO, STATUS and QUANTIDADE columns")
	}
	x.logger.Info("[xlsx] Read %d rows from %d sheet(s)", len(records), used)
	return records, nil
}

// findHeader returns the index of the first non-blank row and its column
// positions, or -1 when that row lacks a required column.
func findHeader(rows [][]string) (int, map[column]int) {
	for i, row := range rows {
		if blank(row) {
			continue
		}
		index := make(map[column]int)
		for pos, cell := range row {
			label := utils.Fold(strings.ReplaceAll(cell, "_", " "))
			if c, ok := headerAliases[label]; ok {
				if _, dup := index[c]; !dup {
					index[c] = pos
				}
			}
		}
		for _, c := range requiredColumns {
			if _, ok := index[c]; !ok {
				return -1, nil
			}
		}
		return i, index
	}
	return -1, nil
}

func toRecord(sheet string, line int, row []string, index map[column]int) *models.RawRecord {
	cell := func(c column) string {
		pos, ok := index[c]
		if !ok || pos >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos])
	}
	return &models.RawRecord{
		Sheet:        sheet,
		Line:         line,
		Period:       periodCell(cell(colPeriod)),
		Status:       cell(colStatus),
		Neighborhood: cell(colNeighborhood),
		Units:        cell(colUnits),
		PricedValue:  cell(colPricedValue),
		Area:         cell(colArea),
		Rooms:        cell(colRooms),
		Stage:        cell(colStage),
		Project:      cell(colProject),
		Company:      cell(colCompany),
		UnitPrice:    cell(colUnitPrice),
		UnitArea:     cell(colUnitArea),
	}
}

// periodCell turns a date-formatted period (an Excel serial number) into
// YYYYMM. Other values are returned unchanged.
func periodCell(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil || serial < 1 || serial >= 100000 {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format("200601")
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
