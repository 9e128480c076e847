package vitality

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/vitality/internal/rewards"
)

// EffortTier applies Delta once the high-effort streak reaches Days.
type EffortTier struct {
	Days  int `toml:"days"`
	Delta int `toml:"delta"`
}

// RecoveryTier applies Gain once weekly recovery actions reach Actions.
type RecoveryTier struct {
	Actions int `toml:"actions"`
	Gain    int `toml:"gain"`
}

// Rules holds the game-balance constants of the state machine.
type Rules struct {
	// EffortTiers are ascending by Days; only the highest match applies.
	EffortTiers []EffortTier
	// ImbalancePermille is the work/total ratio, in permille, at or above
	// which ImbalanceDecay applies.
	ImbalancePermille int
	ImbalanceDecay    int
	// NeglectAfter is how long without a recovery action before
	// NeglectDecay applies.
	NeglectAfter time.Duration
	NeglectDecay int
	// RecoveryTiers are ascending by Actions; only the highest match
	// applies.
	RecoveryTiers []RecoveryTier

	BurnoutThreshold  int
	BurnoutEntryDays  int
	BurnoutEfficiency rewards.Multiplier
	BandEfficiency    map[Band]rewards.Multiplier
}

// DefaultRules returns the standard balance.
func DefaultRules() Rules {
	return Rules{
		EffortTiers: []EffortTier{
			{Days: 7, Delta: -1},
			{Days: 14, Delta: -2},
			{Days: 21, Delta: -3},
		},
		ImbalancePermille: 700,
		ImbalanceDecay:    -1,
		NeglectAfter:      7 * 24 * time.Hour,
		NeglectDecay:      -1,
		RecoveryTiers: []RecoveryTier{
			{Actions: 2, Gain: 1},
			{Actions: 4, Gain: 2},
		},
		BurnoutThreshold:  30,
		BurnoutEntryDays:  7,
		BurnoutEfficiency: 300,
		BandEfficiency: map[Band]rewards.Multiplier{
			BandCritical: 600,
			BandLow:      800,
			BandMedium:   1000,
			BandHigh:     1100,
			BandOptimal:  1150,
		},
	}
}

// Validate checks tier ordering and value ranges.
func (r Rules) Validate() error {
	for i, t := range r.EffortTiers {
		if t.Days <= 0 || t.Delta > 0 {
			return fmt.Errorf("effort tier %d: days must be positive and delta non-positive", i)
		}
		if i > 0 && t.Days <= r.EffortTiers[i-1].Days {
			return fmt.Errorf("effort tier %d: days must be strictly ascending", i)
		}
	}
	for i, t := range r.RecoveryTiers {
		if t.Actions <= 0 || t.Gain < 0 {
			return fmt.Errorf("recovery tier %d: actions must be positive and gain non-negative", i)
		}
		if i > 0 && t.Actions <= r.RecoveryTiers[i-1].Actions {
			return fmt.Errorf("recovery tier %d: actions must be strictly ascending", i)
		}
	}
	if r.ImbalancePermille <= 0 || r.ImbalancePermille > 1000 {
		return errors.New("imbalance ratio must be in (0, 1]")
	}
	if r.ImbalanceDecay > 0 || r.NeglectDecay > 0 {
		return errors.New("decay amounts must not be positive")
	}
	if r.NeglectAfter <= 0 {
		return errors.New("neglect window must be positive")
	}
	if r.BurnoutThreshold <= MinCapacity || r.BurnoutThreshold > MaxCapacity {
		return fmt.Errorf("burnout threshold %d out of range", r.BurnoutThreshold)
	}
	if r.BurnoutEntryDays <= 0 {
		return errors.New("burnout entry days must be positive")
	}
	if r.BurnoutEfficiency <= 0 {
		return errors.New("burnout efficiency must be positive")
	}
	for _, b := range AllBands() {
		if m, ok := r.BandEfficiency[b]; ok && m <= 0 {
			return fmt.Errorf("band %s: efficiency must be positive", b)
		}
	}
	return nil
}

// CapacityEfficiency returns the XP multiplier for a band. Bands without
// an entry earn at Unit.
func (r Rules) CapacityEfficiency(b Band) rewards.Multiplier {
	if m, ok := r.BandEfficiency[b]; ok {
		return m
	}
	return rewards.Unit
}

// BurnoutFactor returns the XP multiplier for the burnout status.
func (r Rules) BurnoutFactor(active bool) rewards.Multiplier {
	if active {
		return r.BurnoutEfficiency
	}
	return rewards.Unit
}

func (r Rules) effortDelta(streak int) int {
	delta := 0
	for _, t := range r.EffortTiers {
		if streak >= t.Days {
			delta = t.Delta
		}
	}
	return delta
}

func (r Rules) recoveryGain(actions int) int {
	gain := 0
	for _, t := range r.RecoveryTiers {
		if actions >= t.Actions {
			gain = t.Gain
		}
	}
	return gain
}
