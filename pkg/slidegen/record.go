package slidegen

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Record is one input row, keyed by column header. A missing column reads as
// the empty string.
type Record map[string]string

// Get returns the value of the named field, or "" when the field is absent.
func (r Record) Get(field string) string {
	return r[field]
}

// ReadRecords loads all rows from a tabular data file. The format is chosen by
// file extension: .csv, .xlsx or .xls. Any other extension is an
// UnsupportedFormatError.
func ReadRecords(path string) ([]Record, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx":
		return readXLSX(path)
	case ".xls":
		return readXLS(path)
	default:
		return nil, NewUnsupportedFormatError(filepath.Ext(path))
	}
}

// readCSV reads a UTF-8 CSV file with a header row. A leading byte order mark
// is tolerated.
func readCSV(path string) ([]Record, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	text := strings.TrimPrefix(string(content), "\uFEFF")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, NewDocumentError("parse", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, rowToRecord(headers, row))
	}
	return records, nil
}

// readXLSX reads the first sheet of an XLSX workbook with a header row.
// Rows with no content at all are skipped.
func readXLSX(path string) ([]Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, NewDocumentError("read", path, err)
	}
	if len(rows) < 2 {
		return nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	var records []Record
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}
		records = append(records, rowToRecord(headers, row))
	}
	return records, nil
}

// readXLS reads the first sheet of a legacy XLS workbook with a header row.
func readXLS(path string) ([]Record, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return nil, NewDocumentError("open", path, err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil || sheet.MaxRow < 1 {
		return nil, nil
	}

	headerRow := sheet.Row(0)
	if headerRow == nil {
		return nil, nil
	}
	cols := headerRow.LastCol()
	headers := make([]string, cols)
	for c := 0; c < cols; c++ {
		headers[c] = strings.TrimSpace(headerRow.Col(c))
	}

	var records []Record
	for i := 1; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		cells := make([]string, cols)
		for c := 0; c < cols; c++ {
			cells[c] = row.Col(c)
		}
		if isEmptyRow(cells) {
			continue
		}
		records = append(records, rowToRecord(headers, cells))
	}
	return records, nil
}

func rowToRecord(headers []string, row []string) Record {
	record := make(Record, len(headers))
	for i, h := range headers {
		if h == "" {
			h = fmt.Sprintf("column%d", i+1)
		}
		if i < len(row) {
			record[h] = row[i]
		} else {
			record[h] = ""
		}
	}
	return record
}

func isEmptyRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
