package models

import (
	"strconv"
	"strings"
)

// FeedbackTier is a named review quality signal
type FeedbackTier string

const (
	// FeedbackAgain means the word was not recalled; it becomes due immediately
	FeedbackAgain FeedbackTier = "again"
	// FeedbackHard means the word was recalled with serious effort
	FeedbackHard FeedbackTier = "hard"
	// FeedbackGood means the word was recalled correctly
	FeedbackGood FeedbackTier = "good"
	// FeedbackEasy means the word was recalled without any effort
	FeedbackEasy FeedbackTier = "easy"
)

// Feedback is a single review signal: either a named tier or a literal
// day-count override. Days takes effect when it is positive.
type Feedback struct {
	Tier FeedbackTier `json:"tier"`
	Days int          `json:"days"`
}

// ParseFeedback interprets user input as a feedback signal.
// Числовой ввод трактуется как количество дней до следующего показа.
func ParseFeedback(s string) (Feedback, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return Feedback{Days: n}, true
	}
	switch FeedbackTier(s) {
	case FeedbackAgain, FeedbackHard, FeedbackGood, FeedbackEasy:
		return Feedback{Tier: FeedbackTier(s)}, true
	}
	return Feedback{}, false
}
