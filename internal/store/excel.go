package store

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocabsheet/pkg/models"
)

// ExcelStore is a RowStore backed by an .xlsx workbook. Data rows start at
// sheet row 2; sheet row 1 is the header the schema is read from.
type ExcelStore struct {
	mu     sync.Mutex
	path   string
	sheet  string
	file   *excelize.File
	schema *Schema
}

// OpenExcel opens the workbook at path, creating it with a default header
// when it does not exist yet.
func OpenExcel(path, sheet string) (*ExcelStore, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createExcel(path, sheet)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v", err)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read sheet %q: %v", sheet, err)
	}
	if len(rows) == 0 {
		f.Close()
		return nil, fmt.Errorf("sheet %q has no header row", sheet)
	}

	schema, err := SchemaFromHeader(rows[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("invalid sheet header: %v", err)
	}

	return &ExcelStore{path: path, sheet: sheet, file: f, schema: schema}, nil
}

// createExcel builds a fresh workbook with the default column layout
func createExcel(path, sheet string) (*ExcelStore, error) {
	f := excelize.NewFile()
	if sheet != "Sheet1" {
		f.SetSheetName("Sheet1", sheet)
	}

	schema := DefaultSchema()
	header := toCellValues(schema.Header())
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %v", err)
	}
	if err := f.SaveAs(path); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create workbook: %v", err)
	}

	return &ExcelStore{path: path, sheet: sheet, file: f, schema: schema}, nil
}

// Schema returns the column layout discovered from the header row
func (s *ExcelStore) Schema() *Schema {
	return s.schema
}

// Close releases the underlying workbook
func (s *ExcelStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// ReadRows returns up to count records starting at the 1-based data row start
func (s *ExcelStore) ReadRows(start, count int) ([]models.WordRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.dataRows()
	if err != nil {
		return nil, err
	}
	if start < 1 || start > len(data) || count <= 0 {
		return nil, nil
	}
	end := start - 1 + count
	if end > len(data) {
		end = len(data)
	}

	recs := make([]models.WordRecord, 0, end-start+1)
	for i := start - 1; i < end; i++ {
		recs = append(recs, s.schema.Decode(data[i], i+1))
	}
	return recs, nil
}

// WriteRows writes records to consecutive data rows starting at start
func (s *ExcelStore) WriteRows(start int, recs []models.WordRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if start < 1 {
		return fmt.Errorf("invalid start row %d", start)
	}
	for i, rec := range recs {
		values := toCellValues(s.schema.Encode(rec))
		cell, err := excelize.CoordinatesToCellName(1, start+1+i)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %v", err)
		}
		if err := s.file.SetSheetRow(s.sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %v", start+i, err)
		}
	}
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %v", err)
	}
	return nil
}

// DeleteRow removes a data row, shifting the rows below it up
func (s *ExcelStore) DeleteRow(row int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.RemoveRow(s.sheet, row+1); err != nil {
		return fmt.Errorf("failed to remove row %d: %v", row, err)
	}
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %v", err)
	}
	return nil
}

// RowCount returns the number of data rows
func (s *ExcelStore) RowCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.dataRows()
	if err != nil {
		return 0, err
	}
	return len(data), nil
}

// Sort reorders all data rows by the given keys and rewrites the sheet
func (s *ExcelStore) Sort(by []SortKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.dataRows()
	if err != nil {
		return err
	}
	recs := make([]models.WordRecord, len(data))
	for i, row := range data {
		recs[i] = s.schema.Decode(row, i+1)
	}

	sortRecords(recs, by, s.schema)

	for i, rec := range recs {
		values := toCellValues(s.schema.Encode(rec))
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to build cell name: %v", err)
		}
		if err := s.file.SetSheetRow(s.sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %v", i+1, err)
		}
	}
	if err := s.file.Save(); err != nil {
		return fmt.Errorf("failed to save workbook: %v", err)
	}
	return nil
}

// dataRows returns the raw rows below the header. Caller holds the lock.
func (s *ExcelStore) dataRows() ([][]string, error) {
	rows, err := s.file.GetRows(s.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %v", s.sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// sortRecords orders records by comparing their encoded cell values, so the
// ordering matches what a user sorting the sheet by hand would see
func sortRecords(recs []models.WordRecord, by []SortKey, schema *Schema) {
	sort.SliceStable(recs, func(i, j int) bool {
		ri := schema.Encode(recs[i])
		rj := schema.Encode(recs[j])
		for _, key := range by {
			col := schema.Col(key.Field)
			if col < 0 {
				continue
			}
			a, b := ri[col], rj[col]
			if a == b {
				continue
			}
			if key.Ascending {
				return a < b
			}
			return a > b
		}
		return false
	})
}

func toCellValues(row []string) []interface{} {
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	return values
}
