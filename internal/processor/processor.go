package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/vocabsheet/internal/srs"
	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

// ErrLockTimeout means the exclusive row lock could not be taken in time;
// the operation is abandoned with no partial state
var ErrLockTimeout = errors.New("timed out waiting for the row lock")

// DuplicateError reports a word that already exists in another row
type DuplicateError struct {
	Word string
	Row  int // the row that already holds the word
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("word %q already exists at row %d", e.Word, e.Row)
}

// Enricher is the external language-data service
type Enricher interface {
	Lookup(ctx context.Context, word string) ([]models.SenseGroup, error)
}

// Processor handles a single word edit end to end: duplicate check,
// enrichment, flattening and the write back to the sheet
type Processor struct {
	store    store.RowStore
	enricher Enricher
	lock     chan struct{} // exclusive across duplicate-check + write
	lockWait time.Duration
	now      func() time.Time
}

// New creates a processor. lockWait bounds how long one edit may wait for
// another to finish.
func New(st store.RowStore, en Enricher, lockWait time.Duration) *Processor {
	if lockWait <= 0 {
		lockWait = 10 * time.Second
	}
	return &Processor{
		store:    st,
		enricher: en,
		lock:     make(chan struct{}, 1),
		lockWait: lockWait,
		now:      time.Now,
	}
}

// Process enriches a word and writes the result to the given row.
// Returns *DuplicateError when the word already exists elsewhere (the target
// row's word cell is cleared), the enrichment error after writing the visible
// sentinel record, or nil on success.
func (p *Processor) Process(ctx context.Context, word string, row int) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return fmt.Errorf("word is empty") // пустое значение означает очистку строки, не обработку
	}

	release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	all, err := store.ReadAll(p.store)
	if err != nil {
		return fmt.Errorf("failed to read records: %v", err)
	}

	// The target record is loaded up front: a duplicate rejection must clear
	// only its word cell and leave everything else in the row as it was.
	target := models.WordRecord{Row: row}
	for _, rec := range all {
		if rec.Row == row {
			target = rec
			break
		}
	}

	// Duplicate scan is case-insensitive and skips the row being edited.
	// Holding the lock here keeps two concurrent edits from both passing the
	// check against a stale snapshot.
	for _, rec := range all {
		if rec.Row == row {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(rec.Word), word) {
			target.Word = ""
			if werr := p.store.WriteRows(row, []models.WordRecord{target}); werr != nil {
				return fmt.Errorf("failed to clear duplicate row %d: %v", row, werr)
			}
			return &DuplicateError{Word: word, Row: rec.Row}
		}
	}

	now := p.now()
	target.Word = word

	groups, lookupErr := p.enricher.Lookup(ctx, word)
	if lookupErr != nil {
		FailureContent(lookupErr.Error()).ApplyTo(&target)
	} else {
		Flatten(groups).ApplyTo(&target)
	}

	if target.CreatedAt.IsZero() {
		// First creation: stamp createdAt once and seed the scheduling
		// fields. Re-processing an existing row must leave them alone.
		target.CreatedAt = now
		target.Review = models.ReviewState{NextDue: srs.Tomorrow(now)}
		target.QuizUsage = 0
	}
	target.ModifiedAt = now

	if err := p.store.WriteRows(row, []models.WordRecord{target}); err != nil {
		return fmt.Errorf("failed to write row %d: %v", row, err)
	}
	return lookupErr
}

// Clear blanks a row. Used when the word cell of a row is emptied.
func (p *Processor) Clear(ctx context.Context, row int) error {
	release, err := p.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := p.store.WriteRows(row, []models.WordRecord{{Row: row}}); err != nil {
		return fmt.Errorf("failed to clear row %d: %v", row, err)
	}
	return nil
}

// acquire takes the exclusive edit lock with a bounded wait
func (p *Processor) acquire(ctx context.Context) (func(), error) {
	timer := time.NewTimer(p.lockWait)
	defer timer.Stop()

	select {
	case p.lock <- struct{}{}:
		return func() { <-p.lock }, nil
	case <-timer.C:
		return nil, ErrLockTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
