package srs

import (
	"errors"
	"time"

	"github.com/example/vocabsheet/pkg/models"
)

// ErrInvalidFeedback is returned for a signal outside the known tiers;
// the caller's state stays unchanged
var ErrInvalidFeedback = errors.New("invalid review feedback")

// Interval ladders in days, indexed by total review count. Past the end of a
// ladder the final interval applies.
var (
	goodLadder = []int{3, 7, 14}
	easyLadder = []int{7, 30, 90}
)

const (
	goodFinal = 30
	easyFinal = 180
)

// Result is the scheduler's verdict for one feedback signal
type Result struct {
	Days         int       // interval until the next review
	NextDue      time.Time // due date, normalized to midnight
	ReviewCount  int
	TotalReviews int
}

// Schedule computes the next review interval from a feedback signal and the
// record's counters. It is a pure function: the caller supplies "now", so
// identical inputs always produce identical output.
//
// Правила по типу сигнала:
//   - literal n>0: interval n, both counters +1
//   - again: due today, streak reset, total untouched
//   - hard: one day, total +1, streak unchanged (not a successful repetition)
//   - good: ladder [3 7 14] then 30, streak +1, total +1
//   - easy: ladder [7 30 90] then 180, streak +2, total +1
func Schedule(fb models.Feedback, reviewCount, totalReviews int, now time.Time) (Result, error) {
	res := Result{ReviewCount: reviewCount, TotalReviews: totalReviews}

	switch {
	case fb.Days > 0:
		res.Days = fb.Days
		res.ReviewCount = reviewCount + 1
		res.TotalReviews = totalReviews + 1
	case fb.Tier == models.FeedbackAgain:
		res.Days = 0
		res.ReviewCount = 0
	case fb.Tier == models.FeedbackHard:
		res.Days = 1
		res.TotalReviews = totalReviews + 1
	case fb.Tier == models.FeedbackGood:
		res.Days = ladderInterval(goodLadder, goodFinal, totalReviews)
		res.ReviewCount = reviewCount + 1
		res.TotalReviews = totalReviews + 1
	case fb.Tier == models.FeedbackEasy:
		res.Days = ladderInterval(easyLadder, easyFinal, totalReviews)
		res.ReviewCount = reviewCount + 2
		res.TotalReviews = totalReviews + 1
	default:
		return Result{ReviewCount: reviewCount, TotalReviews: totalReviews}, ErrInvalidFeedback
	}

	res.NextDue = Midnight(now).AddDate(0, 0, res.Days)
	return res, nil
}

func ladderInterval(ladder []int, final, totalReviews int) int {
	if totalReviews < 0 {
		totalReviews = 0
	}
	if totalReviews < len(ladder) {
		return ladder[totalReviews]
	}
	return final
}

// Midnight truncates a timestamp to its date. Due dates compare at day
// granularity only.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Tomorrow returns the next day's midnight, the due date forced onto a word
// missed in a quiz
func Tomorrow(now time.Time) time.Time {
	return Midnight(now).AddDate(0, 0, 1)
}
