package srs

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/vocabsheet/internal/store"
	"github.com/example/vocabsheet/pkg/models"
)

// Review runs the review session flows against the row store
type Review struct {
	store store.RowStore
}

// NewReview creates a review service
func NewReview(st store.RowStore) *Review {
	return &Review{store: st}
}

// Due returns the records eligible for review on asOf (nextDue <= asOf)
func (r *Review) Due(asOf time.Time) ([]models.WordRecord, error) {
	recs, err := store.ReadAll(r.store)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %v", err)
	}

	cutoff := Midnight(asOf)
	var due []models.WordRecord
	for _, rec := range recs {
		if !rec.HasWord() || rec.Review.NextDue.IsZero() {
			continue
		}
		if !rec.Review.NextDue.After(cutoff) {
			due = append(due, rec)
		}
	}
	return due, nil
}

// Future returns up to limit records due strictly after asOf, soonest first.
// Used by the cram view to peek at what is coming.
func (r *Review) Future(asOf time.Time, limit int) ([]models.WordRecord, error) {
	recs, err := store.ReadAll(r.store)
	if err != nil {
		return nil, fmt.Errorf("failed to read records: %v", err)
	}

	cutoff := Midnight(asOf)
	var future []models.WordRecord
	for _, rec := range recs {
		if !rec.HasWord() || rec.Review.NextDue.IsZero() {
			continue
		}
		if rec.Review.NextDue.After(cutoff) {
			future = append(future, rec)
		}
	}

	sort.SliceStable(future, func(i, j int) bool {
		return future[i].Review.NextDue.Before(future[j].Review.NextDue)
	})
	if limit > 0 && len(future) > limit {
		future = future[:limit]
	}
	return future, nil
}

// ApplyFeedback schedules the next review for one row and persists the result
func (r *Review) ApplyFeedback(row int, fb models.Feedback, now time.Time) (Result, error) {
	recs, err := r.store.ReadRows(row, 1)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read row %d: %v", row, err)
	}
	if len(recs) == 0 {
		return Result{}, fmt.Errorf("row %d does not exist", row)
	}
	rec := recs[0]

	res, err := Schedule(fb, rec.Review.ReviewCount, rec.Review.TotalReviews, now)
	if err != nil {
		return Result{}, err
	}

	rec.Review.NextDue = res.NextDue
	rec.Review.ReviewCount = res.ReviewCount
	rec.Review.TotalReviews = res.TotalReviews
	rec.ModifiedAt = now
	if err := r.store.WriteRows(row, []models.WordRecord{rec}); err != nil {
		return Result{}, fmt.Errorf("failed to write row %d: %v", row, err)
	}
	return res, nil
}
