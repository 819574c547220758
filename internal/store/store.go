package store

import "github.com/example/vocabsheet/pkg/models"

// SortKey describes one column to order by
type SortKey struct {
	Field     string
	Ascending bool
}

// RowStore is the tabular backend for vocabulary records. Row indexes are
// 1-based over data rows (the header row is not addressable). Calls are
// atomic individually but not transactional across calls.
type RowStore interface {
	// ReadRows returns up to count records starting at start. Reading past
	// the end returns the rows that exist, not an error.
	ReadRows(start, count int) ([]models.WordRecord, error)
	// WriteRows writes records to consecutive rows starting at start,
	// extending the table when start is beyond the current end.
	WriteRows(start int, recs []models.WordRecord) error
	DeleteRow(row int) error
	RowCount() (int, error)
	Sort(by []SortKey) error
}

// ReadAll returns every record in the store.
func ReadAll(s RowStore) ([]models.WordRecord, error) {
	n, err := s.RowCount()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	return s.ReadRows(1, n)
}
