package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/metrics"
	"github.com/abhisek/vitality/internal/store"
	"github.com/abhisek/vitality/internal/vitality"
)

// TickKind selects which scheduled evaluation to run.
type TickKind string

const (
	TickDaily  TickKind = "daily"
	TickWeekly TickKind = "weekly"
)

// ParseTickKind validates a tick kind name.
func ParseTickKind(s string) (TickKind, error) {
	switch TickKind(s) {
	case TickDaily, TickWeekly:
		return TickKind(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTickKind, s)
	}
}

// TickStatus reports whether a tick changed anything.
type TickStatus string

const (
	TickApplied TickStatus = "applied"
	// TickSkipped means the period was already applied. It is not an error.
	TickSkipped TickStatus = "stale_tick_skipped"
)

// TickResult describes the outcome of one tick request.
type TickResult struct {
	UserID string     `json:"userId"`
	Kind   TickKind   `json:"kind"`
	Status TickStatus `json:"status"`
	// Days is the number of daily periods replayed.
	Days int `json:"days,omitempty"`
	// Weekly is set when a weekly evaluation ran.
	Weekly      *vitality.WeeklyOutcome `json:"weekly,omitempty"`
	Transitions []vitality.Transition   `json:"transitions,omitempty"`
	Snapshot    Snapshot                `json:"snapshot"`
}

// Stale reports whether the tick was skipped as already applied.
func (r *TickResult) Stale() bool {
	return r.Status == TickSkipped
}

// RunScheduledTick applies a daily or weekly tick for the user. Each
// calendar day and each 7-day period since onboarding is applied at most
// once; a repeated request returns TickSkipped with the unchanged state.
func (e *Engine) RunScheduledTick(ctx context.Context, userID string, kind TickKind, now time.Time) (*TickResult, error) {
	if _, err := ParseTickKind(string(kind)); err != nil {
		return nil, err
	}

	var res *TickResult
	err := e.withUser(ctx, userID, func(sl *slot) error {
		next := sl.state.Clone()

		var pending []store.TickEventData
		res = &TickResult{UserID: userID, Kind: kind, Status: TickSkipped}
		switch kind {
		case TickDaily:
			res.Days, res.Transitions, pending = e.applyDaily(next, now)
			if res.Days > 0 {
				res.Status = TickApplied
			}
		case TickWeekly:
			if out, ev, ok := e.applyWeekly(next, now); ok {
				res.Status = TickApplied
				res.Weekly = &out
				res.Transitions = out.Transitions
				pending = append(pending, ev)
			}
		}

		if res.Status == TickApplied {
			if err := e.commit(ctx, sl, next, now); err != nil {
				return err
			}
			e.afterTicks(ctx, userID, pending, res.Transitions)
		}
		res.Snapshot = e.snapshot(sl.state, e.season(ctx, userID, now))
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.TicksApplied.WithLabelValues(string(kind), string(res.Status)).Inc()
	e.log.WithFields(logrus.Fields{
		"user_id": userID,
		"tick":    kind,
		"status":  res.Status,
		"days":    res.Days,
	}).Debug("scheduled tick processed")
	return res, nil
}

// CatchUp applies every due tick for the user: the weekly evaluation
// first, then the daily replay, so burnout entry reads post-decay
// capacity. It returns the ticks that were applied.
func (e *Engine) CatchUp(ctx context.Context, userID string, now time.Time) ([]*TickResult, error) {
	var results []*TickResult
	err := e.withUser(ctx, userID, func(sl *slot) error {
		var err error
		results, err = e.catchUpLocked(ctx, sl, now)
		return err
	})
	return results, err
}

// catchUpLocked applies due ticks as one commit. Caller holds sl.mu.
func (e *Engine) catchUpLocked(ctx context.Context, sl *slot, now time.Time) ([]*TickResult, error) {
	next := sl.state.Clone()
	results, pending, transitions := e.applyDue(next, now)
	if len(results) == 0 {
		return nil, nil
	}
	if err := e.commit(ctx, sl, next, now); err != nil {
		return nil, err
	}
	e.afterTicks(ctx, next.UserID, pending, transitions)

	snap := e.snapshot(next, e.season(ctx, next.UserID, now))
	for _, r := range results {
		r.Snapshot = snap
		metrics.TicksApplied.WithLabelValues(string(r.Kind), string(r.Status)).Inc()
	}
	return results, nil
}

// applyDue runs the weekly then the daily tick on s if they are due.
func (e *Engine) applyDue(s *State, now time.Time) ([]*TickResult, []store.TickEventData, []vitality.Transition) {
	var (
		results     []*TickResult
		pending     []store.TickEventData
		transitions []vitality.Transition
	)
	if out, ev, ok := e.applyWeekly(s, now); ok {
		results = append(results, &TickResult{
			UserID: s.UserID, Kind: TickWeekly, Status: TickApplied,
			Weekly: &out, Transitions: out.Transitions,
		})
		pending = append(pending, ev)
		transitions = append(transitions, out.Transitions...)
	}
	if days, ts, evs := e.applyDaily(s, now); days > 0 {
		results = append(results, &TickResult{
			UserID: s.UserID, Kind: TickDaily, Status: TickApplied,
			Days: days, Transitions: ts,
		})
		pending = append(pending, evs...)
		transitions = append(transitions, ts...)
	}
	return results, pending, transitions
}

// applyDaily replays every calendar day after the last applied one, up to
// today, in order. It returns the number of days applied.
func (e *Engine) applyDaily(s *State, now time.Time) (int, []vitality.Transition, []store.TickEventData) {
	today := e.day(now)
	if !today.After(s.LastDailyTick) {
		return 0, nil, nil
	}

	var (
		transitions []vitality.Transition
		evs         []store.TickEventData
	)
	days := effort.DaysBetween(s.LastDailyTick, today)
	for range days {
		day := effort.AddDays(s.LastDailyTick, 1)
		at := e.instant(day)
		if day.Equal(today) {
			at = now
		}
		before := s.Vitals.Capacity

		s.Effort.CloseDay(effort.AddDays(day, -1))
		s.Effort.Evict(day, e.cfg.WindowDays)
		transitions = append(transitions, e.machine.EvaluateDaily(&s.Vitals, at)...)
		s.Energy.Recompute(e.cfg.CapPolicy, s.Vitals.Capacity, s.Vitals.Burnout.Active)
		s.Energy.Reset()
		s.LastDailyTick = day

		evs = append(evs, store.TickEventData{
			UserID:         s.UserID,
			Tick:           string(TickDaily),
			Period:         day.Format(dayLayout),
			CapacityBefore: before,
			CapacityAfter:  s.Vitals.Capacity,
			EnergyCap:      s.Energy.Cap,
			AppliedAt:      at,
		})
	}
	return days, transitions, evs
}

// weekPeriod returns the number of whole weeks between onboarding and
// now's calendar day.
func (e *Engine) weekPeriod(s *State, now time.Time) int {
	return effort.DaysBetween(s.OnboardedOn, e.day(now)) / 7
}

// applyWeekly runs one weekly evaluation if a new 7-day period has begun.
// Several elapsed periods are covered by a single evaluation.
func (e *Engine) applyWeekly(s *State, now time.Time) (vitality.WeeklyOutcome, store.TickEventData, bool) {
	period := e.weekPeriod(s, now)
	if period <= s.LastWeeklyPeriod {
		return vitality.WeeklyOutcome{}, store.TickEventData{}, false
	}

	since, hasRecovered := s.Effort.SinceLastRecovery(now)
	sig := vitality.Signals{
		ConsecutiveHighEffortDays: s.Effort.ConsecutiveHighEffortDays,
		RollingWork:               s.Effort.RollingWork(),
		RollingTotal:              s.Effort.RollingTotal(),
		ActionsThisWeek:           s.Effort.Recovery.ActionsThisWeek,
		SinceLastRecovery:         since,
		HasRecovered:              hasRecovered,
	}
	out := e.machine.EvaluateWeekly(&s.Vitals, sig, now)
	s.Effort.ResetWeek()
	s.Energy.Recompute(e.cfg.CapPolicy, s.Vitals.Capacity, s.Vitals.Burnout.Active)
	s.LastWeeklyPeriod = period

	ev := store.TickEventData{
		UserID:         s.UserID,
		Tick:           string(TickWeekly),
		Period:         fmt.Sprintf("week-%d", period),
		CapacityBefore: out.Before,
		CapacityAfter:  out.After,
		EnergyCap:      s.Energy.Cap,
		AppliedAt:      now,
	}
	return out, ev, true
}

// afterTicks records events for committed ticks.
func (e *Engine) afterTicks(ctx context.Context, userID string, evs []store.TickEventData, ts []vitality.Transition) {
	for _, ev := range evs {
		if ev.Tick == string(TickWeekly) {
			metrics.CapacityDelta.Observe(float64(ev.CapacityAfter - ev.CapacityBefore))
		}
		e.appendTick(ctx, ev)
	}
	e.recordTransitions(ctx, userID, ts)
}
