package store

import (
	"fmt"
	"sync"

	"github.com/example/vocabsheet/pkg/models"
)

// MemoryStore is an in-memory RowStore. It backs tests and throwaway runs
// where no workbook should be touched.
type MemoryStore struct {
	mu     sync.Mutex
	rows   []models.WordRecord
	schema *Schema
}

// NewMemory returns an empty in-memory store
func NewMemory() *MemoryStore {
	return &MemoryStore{schema: DefaultSchema()}
}

// Seed replaces the store contents with the given records
func (m *MemoryStore) Seed(recs []models.WordRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make([]models.WordRecord, len(recs))
	copy(m.rows, recs)
	m.renumber()
}

func (m *MemoryStore) ReadRows(start, count int) ([]models.WordRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start < 1 || start > len(m.rows) || count <= 0 {
		return nil, nil
	}
	end := start - 1 + count
	if end > len(m.rows) {
		end = len(m.rows)
	}
	out := make([]models.WordRecord, end-start+1)
	copy(out, m.rows[start-1:end])
	return out, nil
}

func (m *MemoryStore) WriteRows(start int, recs []models.WordRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if start < 1 {
		return fmt.Errorf("invalid start row %d", start)
	}
	for need := start - 1 + len(recs); len(m.rows) < need; {
		m.rows = append(m.rows, models.WordRecord{})
	}
	copy(m.rows[start-1:], recs)
	m.renumber()
	return nil
}

func (m *MemoryStore) DeleteRow(row int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if row < 1 || row > len(m.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	m.rows = append(m.rows[:row-1], m.rows[row:]...)
	m.renumber()
	return nil
}

func (m *MemoryStore) RowCount() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows), nil
}

func (m *MemoryStore) Sort(by []SortKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sortRecords(m.rows, by, m.schema)
	m.renumber()
	return nil
}

// renumber keeps Row fields in sync with positions. Caller holds the lock.
func (m *MemoryStore) renumber() {
	for i := range m.rows {
		m.rows[i].Row = i + 1
	}
}
