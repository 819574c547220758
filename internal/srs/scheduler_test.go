package srs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/vocabsheet/pkg/models"
)

var testNow = time.Date(2026, time.March, 14, 15, 9, 26, 0, time.UTC)

func TestScheduleGoodLadder(t *testing.T) {
	cases := []struct {
		totalReviews int
		wantDays     int
	}{
		{0, 3},
		{1, 7},
		{2, 14},
		{3, 30},
		{5, 30},
		{100, 30},
	}
	for _, tc := range cases {
		res, err := Schedule(models.Feedback{Tier: models.FeedbackGood}, 1, tc.totalReviews, testNow)
		require.NoError(t, err)
		assert.Equal(t, tc.wantDays, res.Days, "totalReviews=%d", tc.totalReviews)
		assert.Equal(t, 2, res.ReviewCount)
		assert.Equal(t, tc.totalReviews+1, res.TotalReviews)
	}
}

func TestScheduleEasyLadder(t *testing.T) {
	cases := []struct {
		totalReviews int
		wantDays     int
	}{
		{0, 7},
		{1, 30},
		{2, 90},
		{3, 180},
		{10, 180},
	}
	for _, tc := range cases {
		res, err := Schedule(models.Feedback{Tier: models.FeedbackEasy}, 1, tc.totalReviews, testNow)
		require.NoError(t, err)
		assert.Equal(t, tc.wantDays, res.Days, "totalReviews=%d", tc.totalReviews)
		// easy counts as two successful repetitions
		assert.Equal(t, 3, res.ReviewCount)
		assert.Equal(t, tc.totalReviews+1, res.TotalReviews)
	}
}

func TestScheduleAgainResetsStreakOnly(t *testing.T) {
	res, err := Schedule(models.Feedback{Tier: models.FeedbackAgain}, 7, 12, testNow)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Days)
	assert.Equal(t, 0, res.ReviewCount)
	assert.Equal(t, 12, res.TotalReviews) // totalReviews untouched
	assert.Equal(t, Midnight(testNow), res.NextDue)
}

func TestScheduleHardDoesNotCountAsRepetition(t *testing.T) {
	res, err := Schedule(models.Feedback{Tier: models.FeedbackHard}, 4, 9, testNow)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Days)
	assert.Equal(t, 4, res.ReviewCount)
	assert.Equal(t, 10, res.TotalReviews)
}

func TestScheduleLiteralDays(t *testing.T) {
	res, err := Schedule(models.Feedback{Days: 21}, 2, 5, testNow)
	require.NoError(t, err)

	assert.Equal(t, 21, res.Days)
	assert.Equal(t, 3, res.ReviewCount)
	assert.Equal(t, 6, res.TotalReviews)
	assert.Equal(t, Midnight(testNow).AddDate(0, 0, 21), res.NextDue)
}

func TestScheduleInvalidFeedbackLeavesStateUnchanged(t *testing.T) {
	res, err := Schedule(models.Feedback{Tier: "brilliant"}, 5, 8, testNow)
	require.ErrorIs(t, err, ErrInvalidFeedback)

	assert.Equal(t, 5, res.ReviewCount)
	assert.Equal(t, 8, res.TotalReviews)
}

func TestScheduleIsDeterministic(t *testing.T) {
	fb := models.Feedback{Tier: models.FeedbackGood}
	first, err := Schedule(fb, 3, 2, testNow)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := Schedule(fb, 3, 2, testNow)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScheduleNormalizesToMidnight(t *testing.T) {
	res, err := Schedule(models.Feedback{Tier: models.FeedbackGood}, 0, 0, testNow)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, time.March, 17, 0, 0, 0, 0, time.UTC), res.NextDue)
}

func TestTomorrow(t *testing.T) {
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), Tomorrow(testNow))
}
