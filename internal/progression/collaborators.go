package progression

import (
	"context"
	"time"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/rewards"
)

// SeasonSource supplies the current season. The engine reads it on every
// reward computation and never stores it.
type SeasonSource interface {
	Season(ctx context.Context, userID string, now time.Time) rewards.Season
}

// CalendarSeasons derives the season from the date in Location.
type CalendarSeasons struct {
	Location *time.Location
}

func (c CalendarSeasons) Season(_ context.Context, _ string, now time.Time) rewards.Season {
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return rewards.SeasonForDate(now)
}

// FixedSeason always reports the same season.
type FixedSeason rewards.Season

func (f FixedSeason) Season(context.Context, string, time.Time) rewards.Season {
	return rewards.Season(f)
}

// MilestoneEvaluator is notified with updated totals after each committed
// activity. now is the activity's evaluation time; anything recorded in
// response must use it. Its outcome never affects the receipt.
type MilestoneEvaluator interface {
	EvaluateMilestones(ctx context.Context, userID string, totals ledger.Standing, now time.Time) error
}

// MilestoneFunc adapts a function to MilestoneEvaluator.
type MilestoneFunc func(ctx context.Context, userID string, totals ledger.Standing, now time.Time) error

func (f MilestoneFunc) EvaluateMilestones(ctx context.Context, userID string, totals ledger.Standing, now time.Time) error {
	return f(ctx, userID, totals, now)
}
