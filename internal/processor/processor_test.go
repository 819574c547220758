package processor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabsheet/internal/srs"
	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

var testNow = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

type fakeEnricher struct {
	mu     sync.Mutex
	groups []models.SenseGroup
	err    error
	gate   chan struct{} // when set, Lookup blocks until the gate closes
	calls  int
}

func (f *fakeEnricher) Lookup(ctx context.Context, word string) ([]models.SenseGroup, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return f.groups, f.err
}

func (f *fakeEnricher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func runGroups() []models.SenseGroup {
	return []models.SenseGroup{
		{
			PartOfSpeech: "verb",
			Meanings: []models.Meaning{
				{Definition: "move at a speed faster than a walk", Example: "She runs every morning", Translation: "бегать"},
			},
			Synonyms: []string{"sprint", "jog"},
		},
	}
}

func newTestProcessor(st store.RowStore, en Enricher) *Processor {
	p := New(st, en, time.Second)
	p.now = func() time.Time { return testNow }
	return p
}

func TestProcessNewWord(t *testing.T) {
	st := store.NewMemory()
	en := &fakeEnricher{groups: runGroups()}
	p := newTestProcessor(st, en)

	require.NoError(t, p.Process(context.Background(), " run ", 1))

	recs, err := st.ReadRows(1, 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, "run", rec.Word)
	assert.Equal(t, "verb", rec.PartOfSpeech)
	assert.Contains(t, rec.Definition, "move at a speed faster than a walk")
	assert.Contains(t, rec.Synonyms, "sprint")
	assert.Equal(t, testNow, rec.CreatedAt)
	assert.Equal(t, testNow, rec.ModifiedAt)
	assert.Equal(t, srs.Tomorrow(testNow), rec.Review.NextDue)
	assert.Equal(t, 0, rec.Review.ReviewCount)
	assert.Equal(t, 0, rec.QuizUsage)
}

func TestProcessDuplicateCaseInsensitive(t *testing.T) {
	st := store.NewMemory()
	en := &fakeEnricher{groups: runGroups()}
	p := newTestProcessor(st, en)

	require.NoError(t, p.Process(context.Background(), "Run", 1))

	err := p.Process(context.Background(), "run", 2)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.Row)

	// the first row stays enriched, the second row's word cell is cleared
	recs, err := st.ReadRows(1, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Run", recs[0].Word)
	assert.Empty(t, recs[1].Word)

	// the duplicate was never sent to the enrichment service
	assert.Equal(t, 1, en.callCount())
}

func TestProcessDuplicateAtLowerRowClearsOnlyWordCell(t *testing.T) {
	st := store.NewMemory()
	created := testNow.AddDate(0, -1, 0)
	st.Seed([]models.WordRecord{
		{Word: "run"},
		{
			Word:       "cat",
			Definition: "a small feline",
			CreatedAt:  created,
			Review:     models.ReviewState{ReviewCount: 3, TotalReviews: 5},
			Meta:       models.UserMetadata{Speaking: true},
		},
	})
	en := &fakeEnricher{groups: runGroups()}
	p := newTestProcessor(st, en)

	err := p.Process(context.Background(), "run", 2)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, dup.Row)

	// only the word cell of row 2 is cleared; the conflict sitting above the
	// edited row must not change that
	recs, readErr := st.ReadRows(2, 1)
	require.NoError(t, readErr)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Empty(t, rec.Word)
	assert.Equal(t, "a small feline", rec.Definition)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, 3, rec.Review.ReviewCount)
	assert.Equal(t, 5, rec.Review.TotalReviews)
	assert.True(t, rec.Meta.Speaking)
	assert.Equal(t, 0, en.callCount())
}

func TestReprocessPreservesSchedulingAndMetadata(t *testing.T) {
	st := store.NewMemory()
	created := testNow.AddDate(0, -1, 0)
	st.Seed([]models.WordRecord{{
		Word:       "run",
		Definition: "stale definition",
		CreatedAt:  created,
		Review:     models.ReviewState{NextDue: testNow.AddDate(0, 0, 7), ReviewCount: 3, TotalReviews: 5},
		QuizUsage:  2,
		Meta:       models.UserMetadata{Speaking: true, Difficulty: 4},
	}})
	en := &fakeEnricher{groups: runGroups()}
	p := newTestProcessor(st, en)

	require.NoError(t, p.Process(context.Background(), "run", 1))

	recs, err := st.ReadRows(1, 1)
	require.NoError(t, err)
	rec := recs[0]

	assert.Contains(t, rec.Definition, "move at a speed faster than a walk")
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, 3, rec.Review.ReviewCount)
	assert.Equal(t, 5, rec.Review.TotalReviews)
	assert.Equal(t, 2, rec.QuizUsage)
	assert.True(t, rec.Meta.Speaking)
	assert.Equal(t, 4, rec.Meta.Difficulty)
	assert.Equal(t, testNow, rec.ModifiedAt)
}

func TestProcessFailureWritesVisibleSentinel(t *testing.T) {
	st := store.NewMemory()
	lookupErr := errors.New("service unreachable")
	p := newTestProcessor(st, &fakeEnricher{err: lookupErr})

	err := p.Process(context.Background(), "run", 1)
	require.ErrorIs(t, err, lookupErr)

	recs, err := st.ReadRows(1, 1)
	require.NoError(t, err)
	rec := recs[0]

	assert.Equal(t, "run", rec.Word)
	assert.Equal(t, "service unreachable", rec.PartOfSpeech)
	assert.Equal(t, Sentinel, rec.Definition)
	assert.Equal(t, Sentinel, rec.Translation)
	assert.Equal(t, testNow, rec.CreatedAt)
}

func TestProcessRejectsEmptyWord(t *testing.T) {
	p := newTestProcessor(store.NewMemory(), &fakeEnricher{})
	require.Error(t, p.Process(context.Background(), "   ", 1))
}

func TestProcessLockTimeout(t *testing.T) {
	st := store.NewMemory()
	gate := make(chan struct{})
	en := &fakeEnricher{groups: runGroups(), gate: gate}
	p := New(st, en, 20*time.Millisecond)

	started := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		close(started)
		done <- p.Process(context.Background(), "first", 1)
	}()
	<-started
	// give the first call time to take the lock and block in the enricher
	time.Sleep(10 * time.Millisecond)

	err := p.Process(context.Background(), "second", 2)
	require.ErrorIs(t, err, ErrLockTimeout)

	// no partial state for the abandoned edit
	recs, readErr := st.ReadRows(2, 1)
	require.NoError(t, readErr)
	if len(recs) > 0 {
		assert.Empty(t, recs[0].Word)
	}

	close(gate)
	require.NoError(t, <-done)
}

func TestClearBlanksRow(t *testing.T) {
	st := store.NewMemory()
	st.Seed([]models.WordRecord{{Word: "run", Definition: "something"}})
	p := newTestProcessor(st, &fakeEnricher{})

	require.NoError(t, p.Clear(context.Background(), 1))

	recs, err := st.ReadRows(1, 1)
	require.NoError(t, err)
	assert.Empty(t, recs[0].Word)
	assert.Empty(t, recs[0].Definition)
}

func TestWatchProcessesAndClears(t *testing.T) {
	st := store.NewMemory()
	st.Seed([]models.WordRecord{{Word: "old", Definition: "stale"}})
	en := &fakeEnricher{groups: runGroups()}
	p := newTestProcessor(st, en)

	events := make(chan RowChange)
	finished := make(chan struct{})
	go func() {
		p.Watch(context.Background(), events)
		close(finished)
	}()

	events <- RowChange{Row: 2, Word: "run"}
	events <- RowChange{Row: 1, Word: ""}
	close(events)
	<-finished

	recs, err := st.ReadRows(1, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Empty(t, recs[0].Word)
	assert.Equal(t, "run", recs[1].Word)
}
