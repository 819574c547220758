package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/example/vocabsheet/internal/srs"
	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

// Config defines where the seed words come from
type Config struct {
	FilePath          string // Path to the Excel or CSV file
	WordColumn        string // Column with the word
	TranslationColumn string // Column with the translation
	SheetName         string // Name of the sheet to import (Excel only)
	StartRow          int    // The row to start importing from (1-based index)
}

// DefaultConfig returns the default import configuration
func DefaultConfig(path string) Config {
	return Config{
		FilePath:          path,
		WordColumn:        "A",
		TranslationColumn: "B",
		SheetName:         "Sheet1",
		StartRow:          2, // By default, start from the second row (skip header)
	}
}

// Result holds the outcome of an import operation
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
}

// Import seeds the vocabulary sheet with words from a CSV or Excel file.
// Only the word and translation cells are filled; enrichment is left to the
// batch refresh. Words already present (case-insensitive) are skipped.
func Import(cfg Config, st store.RowStore, now time.Time) (*Result, error) {
	rows, err := readSource(cfg)
	if err != nil {
		return nil, err
	}

	existing, err := store.ReadAll(st)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing records: %v", err)
	}
	known := make(map[string]bool, len(existing))
	for _, rec := range existing {
		if rec.HasWord() {
			known[strings.ToLower(rec.Word)] = true
		}
	}

	result := &Result{Errors: make([]string, 0)}
	var created []models.WordRecord

	wordIdx := columnToIndex(cfg.WordColumn)
	translationIdx := columnToIndex(cfg.TranslationColumn)

	for i, row := range rows {
		if i < cfg.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		var word, translation string
		if wordIdx < len(row) {
			word = cleanWord(row[wordIdx])
		}
		if translationIdx < len(row) {
			translation = strings.TrimSpace(row[translationIdx])
		}

		if word == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: word cannot be empty", i+1))
			continue
		}
		if known[strings.ToLower(word)] {
			result.Skipped++
			continue
		}

		known[strings.ToLower(word)] = true
		created = append(created, models.WordRecord{
			Word:        word,
			Translation: translation,
			CreatedAt:   now,
			ModifiedAt:  now,
			Review:      models.ReviewState{NextDue: srs.Tomorrow(now)},
		})
		result.Created++
	}

	if len(created) > 0 {
		count, err := st.RowCount()
		if err != nil {
			return nil, fmt.Errorf("failed to count rows: %v", err)
		}
		if err := st.WriteRows(count+1, created); err != nil {
			return nil, fmt.Errorf("failed to append imported rows: %v", err)
		}
	}
	return result, nil
}

// readSource loads raw rows from a CSV or Excel file
func readSource(cfg Config) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(cfg.FilePath))
	if ext == ".csv" {
		return readCSV(cfg.FilePath)
	}
	return readExcel(cfg)
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // Allow variable number of fields
	reader.LazyQuotes = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %v", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readExcel(cfg Config) ([][]string, error) {
	f, err := excelize.OpenFile(cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %v", err)
	}
	return rows, nil
}

// cleanWord удаляет из слова дополнительную информацию в скобках
func cleanWord(word string) string {
	if idx := strings.Index(word, "("); idx > 0 {
		word = word[:idx]
	}
	return strings.TrimSpace(word)
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	index := 0
	for i := 0; i < len(column); i++ {
		index = index*26 + int(column[i]-'A'+1)
	}
	return index - 1
}
