package vitality

import "time"

const (
	MinCapacity = 0
	MaxCapacity = 100
	// OnboardingCapacity is the capacity every new user starts with.
	OnboardingCapacity = 50
)

// Phase is the burnout state machine's current state.
type Phase string

const (
	PhaseNormal     Phase = "normal"
	PhaseAtRisk     Phase = "at_risk"
	PhaseBurnout    Phase = "burnout"
	PhaseRecovering Phase = "recovering"
)

// DisplayName returns a human-readable label for the phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseNormal:
		return "Normal"
	case PhaseAtRisk:
		return "At Risk"
	case PhaseBurnout:
		return "Burnout"
	case PhaseRecovering:
		return "Recovering"
	default:
		return string(p)
	}
}

// Burnout records whether the user is burnt out and since when.
type Burnout struct {
	Active    bool       `json:"active"`
	EnteredAt *time.Time `json:"enteredAt"`
}

// Vitals is the capacity and burnout part of a user's state.
type Vitals struct {
	Capacity int     `json:"capacity"`
	Burnout  Burnout `json:"burnout"`
	// LowCapacityDays counts consecutive daily evaluations below the
	// burnout threshold.
	LowCapacityDays int `json:"lowCapacityDays"`
	// Recovering is set on burnout exit and cleared by the next weekly
	// evaluation.
	Recovering bool `json:"recovering"`
}

// NewVitals returns the vitals of a freshly onboarded user.
func NewVitals() Vitals {
	return Vitals{Capacity: OnboardingCapacity}
}

// Band returns the band implied by the current capacity.
func (v Vitals) Band() Band {
	return BandFor(v.Capacity)
}

// Phase derives the state machine phase. threshold is the capacity
// below which a user is at risk.
func (v Vitals) Phase(threshold int) Phase {
	switch {
	case v.Burnout.Active:
		return PhaseBurnout
	case v.Recovering:
		return PhaseRecovering
	case v.Capacity < threshold:
		return PhaseAtRisk
	default:
		return PhaseNormal
	}
}

// Clone returns a deep copy.
func (v Vitals) Clone() Vitals {
	out := v
	if v.Burnout.EnteredAt != nil {
		at := *v.Burnout.EnteredAt
		out.Burnout.EnteredAt = &at
	}
	return out
}

// Trigger identifies the evaluation that caused a transition.
type Trigger string

const (
	TriggerDaily  Trigger = "daily-evaluation"
	TriggerWeekly Trigger = "weekly-evaluation"
)

// Transition records a phase change.
type Transition struct {
	From     Phase     `json:"from"`
	To       Phase     `json:"to"`
	Trigger  Trigger   `json:"trigger"`
	Capacity int       `json:"capacity"`
	At       time.Time `json:"at"`
}

func clampCapacity(c int) int {
	return max(MinCapacity, min(MaxCapacity, c))
}
