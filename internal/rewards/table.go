package rewards

import (
	"errors"
	"fmt"
)

// Rule is the reward table entry for one activity type.
type Rule struct {
	Kind       Kind  `json:"kind"`
	EnergyCost int   `json:"energyCost"`
	Award      Award `json:"award"`
}

// Table is the static reward configuration. It is read-only once built.
type Table struct {
	Activities map[ActivityType]Rule
	Seasons    map[Season]Multiplier
	Ranks      []RankTier
}

// ErrUnknownActivity is returned for activity types absent from the table.
var ErrUnknownActivity = errors.New("unknown activity type")

// DefaultTable returns the standard reward table.
func DefaultTable() *Table {
	return &Table{
		Activities: map[ActivityType]Rule{
			WorkProject: {Kind: KindWork, EnergyCost: 30, Award: Award{
				Overall: 500,
				Split:   CategoryXP{Capacity: 100, Engines: 300, Oxygen: 50},
			}},
			Exercise: {Kind: KindRecovery, EnergyCost: 25, Award: Award{
				Overall: 250,
				Split:   CategoryXP{Capacity: 250, Optionality: 50},
			}},
			Learning: {Kind: KindRecovery, EnergyCost: 20, Award: Award{
				Overall: 400,
				Split:   CategoryXP{Capacity: 150, Engines: 100, Optionality: 200},
			}},
			SaveExpenses: {Kind: KindRecovery, EnergyCost: 15, Award: Award{
				Overall: 1000,
				Split:   CategoryXP{Engines: 200, Oxygen: 500, Optionality: 300},
			}},
			Rest:   {Kind: KindRecovery, EnergyCost: 18},
			Custom: {Kind: KindWork, EnergyCost: 20},
			SeasonCompletion: {Kind: KindSystem, Award: Award{
				Overall: 1000,
				Split:   CategoryXP{Capacity: 200, Engines: 200, Oxygen: 200, Meaning: 200, Optionality: 200},
			}},
			Milestone: {Kind: KindSystem, Award: Award{
				Overall: 2000,
				Split:   CategoryXP{Capacity: 500, Engines: 500, Oxygen: 500, Meaning: 500, Optionality: 500},
			}},
		},
		Seasons: map[Season]Multiplier{
			Spring: 1200,
			Summer: 1300,
			Autumn: 1200,
			Winter: 1100,
		},
		Ranks: DefaultRankTiers(),
	}
}

// Rule returns the entry for at.
func (t *Table) Rule(at ActivityType) (Rule, error) {
	r, ok := t.Activities[at]
	if !ok {
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownActivity, at)
	}
	return r, nil
}

// SeasonMultiplier returns the multiplier for s, or Unit when s is unset
// or unknown.
func (t *Table) SeasonMultiplier(s Season) Multiplier {
	if m, ok := t.Seasons[s]; ok {
		return m
	}
	return Unit
}

// Validate checks that the table is complete and internally consistent.
func (t *Table) Validate() error {
	for _, at := range AllActivityTypes() {
		r, ok := t.Activities[at]
		if !ok {
			return fmt.Errorf("activity %q: missing", at)
		}
		if !r.Kind.Valid() {
			return fmt.Errorf("activity %q: invalid kind %q", at, r.Kind)
		}
		if r.EnergyCost < 0 {
			return fmt.Errorf("activity %q: negative energy cost", at)
		}
		if err := r.Award.Validate(); err != nil {
			return fmt.Errorf("activity %q: %w", at, err)
		}
	}
	for at := range t.Activities {
		if !at.Valid() {
			return fmt.Errorf("activity %q: %w", at, ErrUnknownActivity)
		}
	}

	for _, s := range AllSeasons() {
		m, ok := t.Seasons[s]
		if !ok {
			return fmt.Errorf("season %q: missing multiplier", s)
		}
		if m <= 0 {
			return fmt.Errorf("season %q: multiplier must be positive", s)
		}
	}

	if len(t.Ranks) != RankCount {
		return fmt.Errorf("rank table has %d tiers, want %d", len(t.Ranks), RankCount)
	}
	for i, tier := range t.Ranks {
		if tier.Rank != Rank(i) {
			return fmt.Errorf("rank tier %d: got %s", i, tier.Rank)
		}
		if i == 0 && tier.MinXP != 0 {
			return fmt.Errorf("rank tier %s must start at 0 XP", tier.Rank)
		}
		if i > 0 && tier.MinXP <= t.Ranks[i-1].MinXP {
			return fmt.Errorf("rank tier %s: thresholds must be strictly ascending", tier.Rank)
		}
	}
	return nil
}
