package batch

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/example/vocabsheet/internal/processor"
	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

// cursorKey is where the pipeline keeps its durable progress marker
const cursorKey = "batch:cursor"

// Enricher is the external language-data service
type Enricher interface {
	Lookup(ctx context.Context, word string) ([]models.SenseGroup, error)
}

// KV is the durable store holding the cursor between invocations
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Status describes how far the refresh walk has come
type Status struct {
	LastProcessed int
	TotalRows     int
	Complete      bool
}

// Pipeline re-enriches the whole sheet in fixed-size windows. The only
// durable state is the cursor: it advances after a window's write lands, so
// an interruption at any point costs at most one redundantly reprocessed
// window on resume, never a skipped row and never lost data.
type Pipeline struct {
	store     store.RowStore
	enricher  Enricher
	kv        KV
	batchSize int
	now       func() time.Time
}

// New creates a pipeline. batchSize caps the concurrent fan-out against the
// enrichment service.
func New(st store.RowStore, en Enricher, kv KV, batchSize int) *Pipeline {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Pipeline{
		store:     st,
		enricher:  en,
		kv:        kv,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Status is a pure read: it compares the stored cursor with the current row
// count and is safe to call at any time
func (p *Pipeline) Status() (Status, error) {
	cursor, err := p.cursor()
	if err != nil {
		return Status{}, err
	}
	total, err := p.store.RowCount()
	if err != nil {
		return Status{}, fmt.Errorf("failed to count rows: %v", err)
	}
	return Status{
		LastProcessed: cursor,
		TotalRows:     total,
		Complete:      cursor >= total,
	}, nil
}

// Reset deletes the cursor so the next window starts from row 1. Row content
// is untouched; only progress tracking is lost.
func (p *Pipeline) Reset() error {
	if err := p.kv.Delete(cursorKey); err != nil {
		return fmt.Errorf("failed to reset cursor: %v", err)
	}
	return nil
}

// ProcessNextWindow refreshes the next window of rows and advances the
// cursor. Call it repeatedly until Status.Complete; the caller serializes
// invocations.
func (p *Pipeline) ProcessNextWindow(ctx context.Context) (Status, error) {
	cursor, err := p.cursor()
	if err != nil {
		return Status{}, err
	}
	total, err := p.store.RowCount()
	if err != nil {
		return Status{}, fmt.Errorf("failed to count rows: %v", err)
	}

	start := cursor + 1
	if start > total {
		return Status{LastProcessed: cursor, TotalRows: total, Complete: true}, nil
	}

	size := p.batchSize
	if remaining := total - start + 1; remaining < size {
		size = remaining
	}

	recs, err := p.store.ReadRows(start, size)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read window at row %d: %v", start, err)
	}

	p.refreshWindow(ctx, recs)

	if err := p.store.WriteRows(start, recs); err != nil {
		return Status{}, fmt.Errorf("failed to write window at row %d: %v", start, err)
	}

	// Advance only after the write landed: a crash before this line replays
	// the same window on resume (at-least-once, not exactly-once).
	newCursor := start + size - 1
	if err := p.kv.Set(cursorKey, strconv.Itoa(newCursor)); err != nil {
		return Status{}, fmt.Errorf("failed to persist cursor: %v", err)
	}

	return Status{
		LastProcessed: newCursor,
		TotalRows:     total,
		Complete:      newCursor >= total,
	}, nil
}

// refreshWindow enriches every word in the window concurrently and merges
// the successful results back into the records in place
func (p *Pipeline) refreshWindow(ctx context.Context, recs []models.WordRecord) {
	type outcome struct {
		groups []models.SenseGroup
		err    error
	}
	results := make([]outcome, len(recs))

	// One in-flight call per word; the window size bounds the fan-out.
	var wg sync.WaitGroup
	for i := range recs {
		word := strings.TrimSpace(recs[i].Word)
		if word == "" {
			continue
		}
		wg.Add(1)
		go func(i int, word string) {
			defer wg.Done()
			groups, err := p.enricher.Lookup(ctx, word)
			results[i] = outcome{groups: groups, err: err}
		}(i, word)
	}
	wg.Wait()

	now := p.now()
	for i := range recs {
		// Same trimmed check as the dispatch above: a row that was never
		// looked up must not be merged either.
		if strings.TrimSpace(recs[i].Word) == "" {
			continue
		}
		if err := results[i].err; err != nil {
			// Неудачное слово в батче не должно портить уже имеющиеся
			// данные: строка остается как есть и попадет в следующий проход.
			log.Printf("Batch refresh failed for %q at row %d: %v", recs[i].Word, recs[i].Row, err)
			continue
		}
		// Content fields only: createdAt, scheduling and user metadata are
		// never part of the merge.
		processor.Flatten(results[i].groups).ApplyTo(&recs[i])
		recs[i].ModifiedAt = now
	}
}

// cursor reads the stored cursor; absent means "not started"
func (p *Pipeline) cursor() (int, error) {
	value, ok, err := p.kv.Get(cursorKey)
	if err != nil {
		return 0, fmt.Errorf("failed to read cursor: %v", err)
	}
	if !ok {
		return 0, nil
	}
	cursor, err := strconv.Atoi(value)
	if err != nil || cursor < 0 {
		return 0, fmt.Errorf("corrupt cursor value %q", value)
	}
	return cursor, nil
}
