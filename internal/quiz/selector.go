package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/example/vocabsheet/internal/processor"
	"github.com/example/vocabsheet/internal/srs"
	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

// optionCount is the number of answer options per question (1 correct + 3)
const optionCount = 4

// ErrInsufficientPool means fewer than optionCount records are eligible, so
// no meaningful multiple-choice question can be built
var ErrInsufficientPool = errors.New("not enough reviewed words for a quiz")

// Question is one multiple-choice item
type Question struct {
	Prompt       string   // the definition shown to the user
	Options      []string // shuffled answer words
	CorrectIndex int
	Row          int // row of the correct word
}

// Answer records the outcome for one question of a session
type Answer struct {
	Row     int
	Correct bool
}

// Selector builds quizzes from the eligible pool and feeds session results
// back into usage counters and due dates
type Selector struct {
	store store.RowStore
	rnd   *rand.Rand
}

// New creates a selector. rnd may be nil; a time-seeded source is used then.
func New(st store.RowStore, rnd *rand.Rand) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{store: st, rnd: rnd}
}

// Questions selects up to n usage-balanced questions. Words used in fewer
// quizzes go first: the subset at the minimum usage count is exhausted before
// any row above it is considered.
func (s *Selector) Questions(n int) ([]Question, error) {
	eligible, err := s.eligible()
	if err != nil {
		return nil, err
	}
	if len(eligible) < optionCount {
		return nil, ErrInsufficientPool
	}

	minUsage := eligible[0].QuizUsage
	for _, rec := range eligible[1:] {
		if rec.QuizUsage < minUsage {
			minUsage = rec.QuizUsage
		}
	}
	var leastUsed []models.WordRecord
	for _, rec := range eligible {
		if rec.QuizUsage == minUsage {
			leastUsed = append(leastUsed, rec)
		}
	}

	// Least-used rows are always taken first; rows above the minimum only
	// fill what is left. Starting from equal counters this keeps the spread
	// between any two eligible rows at one until a global reset.
	s.shuffleRecords(leastUsed)
	pool := leastUsed
	if len(pool) < n {
		var rest []models.WordRecord
		for _, rec := range eligible {
			if rec.QuizUsage != minUsage {
				rest = append(rest, rec)
			}
		}
		s.shuffleRecords(rest)
		pool = append(pool, rest...)
	}
	if len(pool) > n {
		pool = pool[:n]
	}

	questions := make([]Question, 0, len(pool))
	for _, rec := range pool {
		q, err := s.buildQuestion(rec, eligible)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, nil
}

// ApplyResults updates usage counters for every touched row, pushes missed
// words back to tomorrow, and restarts the fairness cycle once every eligible
// row has been used at least once
func (s *Selector) ApplyResults(answers []Answer, now time.Time) error {
	for _, a := range answers {
		recs, err := s.store.ReadRows(a.Row, 1)
		if err != nil {
			return fmt.Errorf("failed to read row %d: %v", a.Row, err)
		}
		if len(recs) == 0 {
			continue
		}
		rec := recs[0]
		rec.QuizUsage++
		if !a.Correct {
			rec.Review.NextDue = srs.Tomorrow(now)
			rec.ModifiedAt = now
		}
		if err := s.store.WriteRows(a.Row, []models.WordRecord{rec}); err != nil {
			return fmt.Errorf("failed to write row %d: %v", a.Row, err)
		}
	}
	return s.maybeResetUsage()
}

// maybeResetUsage zeroes every eligible row's usage counter once all of them
// are above zero. Triggered by session updates, not by a scheduled sweep.
func (s *Selector) maybeResetUsage() error {
	eligible, err := s.eligible()
	if err != nil {
		return err
	}
	if len(eligible) == 0 {
		return nil
	}
	for _, rec := range eligible {
		if rec.QuizUsage == 0 {
			return nil
		}
	}
	for _, rec := range eligible {
		rec.QuizUsage = 0
		if err := s.store.WriteRows(rec.Row, []models.WordRecord{rec}); err != nil {
			return fmt.Errorf("failed to reset usage at row %d: %v", rec.Row, err)
		}
	}
	return nil
}

// eligible returns the records usable for quizzing: reviewed at least once
// and carrying a real definition
func (s *Selector) eligible() ([]models.WordRecord, error) {
	recs, err := store.ReadAll(s.store)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %v", err)
	}
	var pool []models.WordRecord
	for _, rec := range recs {
		if !rec.HasWord() || rec.Review.ReviewCount == 0 {
			continue
		}
		if rec.Definition == "" || rec.Definition == processor.Sentinel {
			continue
		}
		pool = append(pool, rec)
	}
	return pool, nil
}

// buildQuestion picks three distractors and shuffles the options, tracking
// where the correct answer ends up
func (s *Selector) buildQuestion(rec models.WordRecord, eligible []models.WordRecord) (Question, error) {
	others := make([]models.WordRecord, 0, len(eligible)-1)
	for _, cand := range eligible {
		if cand.Row != rec.Row {
			others = append(others, cand)
		}
	}
	if len(others) < optionCount-1 {
		return Question{}, ErrInsufficientPool
	}
	s.shuffleRecords(others)

	options := make([]string, 0, optionCount)
	for _, cand := range others[:optionCount-1] {
		options = append(options, cand.Word)
	}
	options = append(options, rec.Word)
	correctIndex := len(options) - 1

	s.rnd.Shuffle(len(options), func(i, j int) {
		if i == correctIndex {
			correctIndex = j
		} else if j == correctIndex {
			correctIndex = i
		}
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		Prompt:       rec.Definition,
		Options:      options,
		CorrectIndex: correctIndex,
		Row:          rec.Row,
	}, nil
}

func (s *Selector) shuffleRecords(recs []models.WordRecord) {
	s.rnd.Shuffle(len(recs), func(i, j int) {
		recs[i], recs[j] = recs[j], recs[i]
	})
}
