package progression

import (
	"time"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/energy"
	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/vitality"
)

// State is one user's progression aggregate. Days are calendar dates in
// the engine's location, held as midnight UTC.
type State struct {
	UserID      string
	OnboardedOn time.Time

	Ledger ledger.Ledger
	Vitals vitality.Vitals
	Energy energy.Cell
	Effort effort.Tracker

	LastDailyTick    time.Time
	LastWeeklyPeriod int
	UpdatedAt        time.Time
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := *s
	out.Vitals = s.Vitals.Clone()
	out.Effort = s.Effort.Clone()
	return &out
}

// newState builds the onboarding state for a user.
func newState(userID string, day time.Time, policy energy.CapPolicy, now time.Time) *State {
	v := vitality.NewVitals()
	return &State{
		UserID:        userID,
		OnboardedOn:   day,
		Vitals:        v,
		Energy:        energy.Full(policy, v.Capacity, v.Burnout.Active),
		LastDailyTick: day,
		UpdatedAt:     now,
	}
}
