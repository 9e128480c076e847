package progression

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/store"
	"github.com/abhisek/vitality/internal/vitality"
)

const (
	stateVersion = 1
	dayLayout    = "2006-01-02"
)

// persist saves s as the user's newest snapshot and prunes old versions.
// Pruning failures are logged and otherwise ignored.
func (e *Engine) persist(ctx context.Context, s *State, now time.Time) error {
	if e.snapshots == nil {
		return nil
	}
	err := e.snapshots.Save(ctx, &store.Snapshot{
		UserID:    s.UserID,
		Timestamp: now,
		Data:      stateToData(s),
	})
	if err != nil {
		return fmt.Errorf("persist state: %w", err)
	}

	if e.cfg.SnapshotRetention > 0 {
		if err := e.snapshots.Prune(ctx, s.UserID, e.cfg.SnapshotRetention); err != nil {
			e.log.WithField("user_id", s.UserID).WithError(err).Warn("prune snapshots failed")
		}
	}
	return nil
}

// restore loads the user's newest snapshot, or returns nil when none exist.
func (e *Engine) restore(ctx context.Context, userID string) (*State, error) {
	if e.snapshots == nil {
		return nil, nil
	}
	snap, err := e.snapshots.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	return stateFromData(snap.Data)
}

func stateToData(s *State) store.StateData {
	d := store.StateData{
		Version:     stateVersion,
		UserID:      s.UserID,
		OnboardedOn: s.OnboardedOn.Format(dayLayout),

		OverallXP:  s.Ledger.Overall,
		CategoryXP: make(map[string]int64, len(rewards.AllCategories())),

		Capacity:        s.Vitals.Capacity,
		BurnoutActive:   s.Vitals.Burnout.Active,
		LowCapacityDays: s.Vitals.LowCapacityDays,
		Recovering:      s.Vitals.Recovering,

		EnergyCurrent: s.Energy.Current,
		EnergyCap:     s.Energy.Cap,

		ConsecutiveHighEffortDays: s.Effort.ConsecutiveHighEffortDays,
		ActionsThisWeek:           s.Effort.Recovery.ActionsThisWeek,

		LastDailyTick:    s.LastDailyTick.Format(dayLayout),
		LastWeeklyPeriod: s.LastWeeklyPeriod,
		UpdatedAt:        s.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	for _, c := range rewards.AllCategories() {
		d.CategoryXP[string(c)] = s.Ledger.Categories.Get(c)
	}
	if at := s.Vitals.Burnout.EnteredAt; at != nil {
		d.BurnoutEnteredAt = at.UTC().Format(time.RFC3339Nano)
	}
	if at := s.Effort.Recovery.LastRecoveryAt; at != nil {
		d.LastRecoveryAt = at.UTC().Format(time.RFC3339Nano)
	}
	for _, t := range s.Effort.Days {
		d.EffortDays = append(d.EffortDays, store.EffortDayData{
			Day:      t.Day.Format(dayLayout),
			Work:     t.Work,
			Recovery: t.Recovery,
		})
	}
	return d
}

func stateFromData(d store.StateData) (*State, error) {
	if d.Version != stateVersion {
		return nil, fmt.Errorf("unsupported state version %d", d.Version)
	}

	s := &State{
		UserID: d.UserID,
		Ledger: ledger.Ledger{Overall: d.OverallXP},
		Vitals: vitality.Vitals{
			Capacity:        d.Capacity,
			Burnout:         vitality.Burnout{Active: d.BurnoutActive},
			LowCapacityDays: d.LowCapacityDays,
			Recovering:      d.Recovering,
		},
		LastWeeklyPeriod: d.LastWeeklyPeriod,
	}
	s.Energy.Current, s.Energy.Cap = d.EnergyCurrent, d.EnergyCap
	s.Effort.ConsecutiveHighEffortDays = d.ConsecutiveHighEffortDays
	s.Effort.Recovery.ActionsThisWeek = d.ActionsThisWeek

	for c, v := range d.CategoryXP {
		s.Ledger.Categories.Set(rewards.Category(c), v)
	}

	var err error
	if s.OnboardedOn, err = time.Parse(dayLayout, d.OnboardedOn); err != nil {
		return nil, fmt.Errorf("onboarded day: %w", err)
	}
	if s.LastDailyTick, err = time.Parse(dayLayout, d.LastDailyTick); err != nil {
		return nil, fmt.Errorf("last daily tick: %w", err)
	}
	if s.UpdatedAt, err = time.Parse(time.RFC3339Nano, d.UpdatedAt); err != nil {
		return nil, fmt.Errorf("updated at: %w", err)
	}
	if d.BurnoutEnteredAt != "" {
		at, err := time.Parse(time.RFC3339Nano, d.BurnoutEnteredAt)
		if err != nil {
			return nil, fmt.Errorf("burnout entered at: %w", err)
		}
		s.Vitals.Burnout.EnteredAt = &at
	}
	if d.LastRecoveryAt != "" {
		at, err := time.Parse(time.RFC3339Nano, d.LastRecoveryAt)
		if err != nil {
			return nil, fmt.Errorf("last recovery at: %w", err)
		}
		s.Effort.Recovery.LastRecoveryAt = &at
	}
	for _, ed := range d.EffortDays {
		day, err := time.Parse(dayLayout, ed.Day)
		if err != nil {
			return nil, fmt.Errorf("effort day: %w", err)
		}
		s.Effort.Days = append(s.Effort.Days, effort.Tally{Day: day, Work: ed.Work, Recovery: ed.Recovery})
	}
	return s, nil
}
