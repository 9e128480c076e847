package progression

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/metrics"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/store"
	"github.com/abhisek/vitality/internal/vitality"
)

// Event appends are best-effort: the state is already committed, so a
// failure is logged and otherwise ignored.

func (e *Engine) appendActivity(ctx context.Context, r *Receipt) {
	if e.events == nil {
		return
	}
	data := store.ActivityEventData{
		ReceiptID:       r.ID,
		UserID:          r.UserID,
		ActivityType:    string(r.ActivityType),
		Kind:            string(r.Kind),
		Description:     r.Description,
		EnergySpent:     r.EnergySpent,
		OverallXP:       r.OverallXPGained,
		CategoryXP:      categoryMap(r.CategoryXPGained),
		ResourceChanges: r.ResourceChanges,
		RecordedAt:      r.RecordedAt,
	}
	if err := e.events.AppendActivity(ctx, data); err != nil {
		e.log.WithField("user_id", r.UserID).WithError(err).Warn("append activity event failed")
	}
}

func (e *Engine) appendTick(ctx context.Context, data store.TickEventData) {
	if e.events == nil {
		return
	}
	if err := e.events.AppendTick(ctx, data); err != nil {
		e.log.WithFields(logrus.Fields{"user_id": data.UserID, "tick": data.Tick}).
			WithError(err).Warn("append tick event failed")
	}
}

func (e *Engine) recordTransitions(ctx context.Context, userID string, ts []vitality.Transition) {
	for _, t := range ts {
		metrics.Transitions.WithLabelValues(string(t.From), string(t.To)).Inc()
		e.log.WithFields(logrus.Fields{
			"user_id":  userID,
			"from":     t.From,
			"to":       t.To,
			"trigger":  t.Trigger,
			"capacity": t.Capacity,
		}).Info("burnout phase changed")

		if e.events == nil {
			continue
		}
		err := e.events.AppendTransition(ctx, store.TransitionEventData{
			UserID:   userID,
			From:     string(t.From),
			To:       string(t.To),
			Trigger:  string(t.Trigger),
			Capacity: t.Capacity,
			At:       t.At,
		})
		if err != nil {
			e.log.WithField("user_id", userID).WithError(err).Warn("append transition event failed")
		}
	}
}

func (e *Engine) appendOverride(ctx context.Context, userID string, o ledger.Override, prev int64, now time.Time) {
	if e.events == nil {
		return
	}
	data := store.OverrideEventData{
		UserID:      userID,
		OverallXP:   o.Overall,
		PrevOverall: prev,
		At:          now,
	}
	if len(o.Categories) > 0 {
		data.CategoryXP = make(map[string]int64, len(o.Categories))
		for c, v := range o.Categories {
			data.CategoryXP[string(c)] = v
		}
	}
	if err := e.events.AppendOverride(ctx, data); err != nil {
		e.log.WithField("user_id", userID).WithError(err).Warn("append override event failed")
	}
}

// History returns the user's stored events in order.
func (e *Engine) History(ctx context.Context, userID string, opts store.QueryOpts) ([]store.Event, error) {
	if e.events == nil {
		return nil, nil
	}
	return e.events.Query(ctx, userID, opts)
}

func categoryMap(x rewards.CategoryXP) map[string]int64 {
	m := make(map[string]int64, len(rewards.AllCategories()))
	for _, c := range rewards.AllCategories() {
		m[string(c)] = x.Get(c)
	}
	return m
}
