package progression

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/metrics"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/vitality"
)

// ActivityRequest describes one user action.
type ActivityRequest struct {
	Type        rewards.ActivityType `json:"activityType"`
	Description string               `json:"description,omitempty"`
	// CustomXP replaces the table's base award.
	CustomXP *rewards.Award `json:"customXP,omitempty"`
	// EnergyCost replaces the table's energy cost.
	EnergyCost *int `json:"energyCost,omitempty"`
	// ResourceChanges are host-owned resource deltas carried through to
	// the receipt and event log untouched.
	ResourceChanges map[string]int64 `json:"resourceChanges,omitempty"`
}

// Receipt is returned for every committed activity.
type Receipt struct {
	ID               string               `json:"id"`
	UserID           string               `json:"userId"`
	ActivityType     rewards.ActivityType `json:"activityType"`
	Kind             rewards.Kind         `json:"kind"`
	Description      string               `json:"description,omitempty"`
	EnergySpent      int                  `json:"energySpent"`
	EnergyRemaining  int                  `json:"energyRemaining"`
	OverallXPGained  int64                `json:"overallXPGained"`
	CategoryXPGained rewards.CategoryXP   `json:"categoryXPGained"`
	Multipliers      rewards.Multipliers  `json:"multipliers"`
	Season           rewards.Season       `json:"season"`
	Totals           ledger.Standing      `json:"newTotals"`
	ResourceChanges  map[string]int64     `json:"resourceChanges,omitempty"`
	RecordedAt       time.Time            `json:"recordedAt"`
}

// Quote is the pure reward computation for one activity.
type Quote struct {
	ActivityType rewards.ActivityType `json:"activityType"`
	Kind         rewards.Kind         `json:"kind"`
	EnergyCost   int                  `json:"energyCost"`
	Base         rewards.Award        `json:"base"`
	Multipliers  rewards.Multipliers  `json:"multipliers"`
	Reward       rewards.Award        `json:"reward"`
}

// ComputeReward prices an activity for the given vitals and season. It
// is the single formula behind both previews and committed activities:
// base (or custom) award, then season, capacity band and burnout
// multipliers, each component rounded half-up on its own.
func ComputeReward(table *rewards.Table, rules vitality.Rules, req ActivityRequest, season rewards.Season, v vitality.Vitals) (Quote, error) {
	rule, base, cost, err := resolveActivity(table, req)
	if err != nil {
		return Quote{}, err
	}

	mults := rewards.Multipliers{
		Season:   table.SeasonMultiplier(season),
		Capacity: rules.CapacityEfficiency(v.Band()),
		Burnout:  rules.BurnoutFactor(v.Burnout.Active),
	}
	return Quote{
		ActivityType: req.Type,
		Kind:         rule.Kind,
		EnergyCost:   cost,
		Base:         base,
		Multipliers:  mults,
		Reward:       mults.Apply(base),
	}, nil
}

// resolveActivity checks the request against the table and returns the
// rule with its effective base award and energy cost. It depends on
// nothing but the request, so it runs before any state is touched.
func resolveActivity(table *rewards.Table, req ActivityRequest) (rewards.Rule, rewards.Award, int, error) {
	if !req.Type.Valid() {
		return rewards.Rule{}, rewards.Award{}, 0, fmt.Errorf("%w: %q", ErrInvalidActivityType, req.Type)
	}
	rule, err := table.Rule(req.Type)
	if err != nil {
		return rewards.Rule{}, rewards.Award{}, 0, fmt.Errorf("%w: %v", ErrInvalidActivityType, err)
	}

	base := rule.Award
	if req.CustomXP != nil {
		if err := req.CustomXP.Validate(); err != nil {
			return rewards.Rule{}, rewards.Award{}, 0, fmt.Errorf("%w: %v", ErrInvalidReward, err)
		}
		base = *req.CustomXP
	}

	cost := rule.EnergyCost
	if req.EnergyCost != nil {
		if *req.EnergyCost < 0 {
			return rewards.Rule{}, rewards.Award{}, 0, fmt.Errorf("%w: %d", ErrInvalidEnergyCost, *req.EnergyCost)
		}
		cost = *req.EnergyCost
	}
	return rule, base, cost, nil
}

// Preview is a quote for a specific user plus whether the activity would
// currently be accepted.
type Preview struct {
	Quote
	Season        rewards.Season `json:"season"`
	CurrentEnergy int            `json:"currentEnergy"`
	Affordable    bool           `json:"affordable"`
	Blocked       bool           `json:"blockedByBurnout"`
}

// RecordActivity validates and applies one activity. Every rejection
// happens before any field of the user's state changes.
func (e *Engine) RecordActivity(ctx context.Context, userID string, req ActivityRequest, now time.Time) (*Receipt, error) {
	var receipt *Receipt
	err := e.withUser(ctx, userID, func(sl *slot) error {
		// Malformed requests never reach catch-up.
		if _, _, _, err := resolveActivity(e.cfg.Table, req); err != nil {
			return err
		}
		if e.cfg.CatchUpOnAccess {
			if _, err := e.catchUpLocked(ctx, sl, now); err != nil {
				return err
			}
		}

		season := e.season(ctx, userID, now)
		next := sl.state.Clone()
		q, err := ComputeReward(e.cfg.Table, e.cfg.Rules, req, season, next.Vitals)
		if err != nil {
			return err
		}
		if next.Vitals.Burnout.Active && q.Kind == rewards.KindWork {
			return ErrBlockedByBurnout
		}
		if err := next.Energy.Spend(q.EnergyCost); err != nil {
			return err
		}

		next.Ledger.Apply(q.Reward)
		next.Effort.Record(q.Kind, e.day(now))
		if q.Kind == rewards.KindRecovery {
			next.Effort.RecordRecovery(now)
		}

		if err := e.commit(ctx, sl, next, now); err != nil {
			return err
		}

		receipt = &Receipt{
			ID:               uuid.NewString(),
			UserID:           userID,
			ActivityType:     q.ActivityType,
			Kind:             q.Kind,
			Description:      req.Description,
			EnergySpent:      q.EnergyCost,
			EnergyRemaining:  next.Energy.Current,
			OverallXPGained:  q.Reward.Overall,
			CategoryXPGained: q.Reward.Split,
			Multipliers:      q.Multipliers,
			Season:           season,
			Totals:           next.Ledger.Standing(e.cfg.Table.Ranks),
			ResourceChanges:  req.ResourceChanges,
			RecordedAt:       now,
		}
		e.appendActivity(ctx, receipt)
		return nil
	})
	if err != nil {
		metrics.ActivitiesRejected.WithLabelValues(rejectReason(err)).Inc()
		e.log.WithFields(logrus.Fields{
			"user_id":       userID,
			"activity_type": req.Type,
		}).WithError(err).Debug("activity rejected")
		return nil, err
	}

	metrics.ActivitiesRecorded.WithLabelValues(string(receipt.ActivityType), string(receipt.Kind)).Inc()
	metrics.XPAwarded.Add(float64(receipt.OverallXPGained))
	e.log.WithFields(logrus.Fields{
		"user_id":       userID,
		"activity_type": receipt.ActivityType,
		"energy_spent":  receipt.EnergySpent,
		"xp":            receipt.OverallXPGained,
	}).Info("activity recorded")

	// Outside the user's lock, so an evaluator may record follow-up awards.
	e.evaluateMilestones(ctx, userID, receipt.Totals, now)
	return receipt, nil
}

// Preview prices an activity against the user's current state without
// changing it. Due ticks are applied to a scratch copy when catch-up on
// access is enabled, so the quote matches what RecordActivity would do.
func (e *Engine) Preview(ctx context.Context, userID string, req ActivityRequest, now time.Time) (*Preview, error) {
	var p *Preview
	err := e.withUser(ctx, userID, func(sl *slot) error {
		scratch := sl.state.Clone()
		if e.cfg.CatchUpOnAccess {
			e.applyDue(scratch, now)
		}

		season := e.season(ctx, userID, now)
		q, err := ComputeReward(e.cfg.Table, e.cfg.Rules, req, season, scratch.Vitals)
		if err != nil {
			return err
		}
		p = &Preview{
			Quote:         q,
			Season:        season,
			CurrentEnergy: scratch.Energy.Current,
			Affordable:    scratch.Energy.CanAfford(q.EnergyCost),
			Blocked:       scratch.Vitals.Burnout.Active && q.Kind == rewards.KindWork,
		}
		return nil
	})
	return p, err
}

func (e *Engine) season(ctx context.Context, userID string, now time.Time) rewards.Season {
	return e.seasons.Season(ctx, userID, now)
}

func (e *Engine) evaluateMilestones(ctx context.Context, userID string, totals ledger.Standing, now time.Time) {
	if e.milestones == nil {
		return
	}
	if err := e.milestones.EvaluateMilestones(ctx, userID, totals, now); err != nil {
		e.log.WithField("user_id", userID).WithError(err).Warn("milestone evaluation failed")
	}
}

func rejectReason(err error) string {
	var ie *InsufficientEnergyError
	switch {
	case errors.As(err, &ie):
		return "insufficient_energy"
	case errors.Is(err, ErrBlockedByBurnout):
		return "blocked_by_burnout"
	case errors.Is(err, ErrInvalidActivityType):
		return "invalid_activity_type"
	case errors.Is(err, ErrInvalidReward), errors.Is(err, ErrInvalidEnergyCost):
		return "invalid_request"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	default:
		return "internal"
	}
}
