package progression

import (
	"time"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/energy"
	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/vitality"
)

// EffortView is the effort window as exposed to dashboards.
type EffortView struct {
	ConsecutiveHighEffortDays int       `json:"consecutiveHighEffortDays"`
	RollingWorkActionCount    int       `json:"rollingWorkActionCount"`
	RollingTotalActionCount   int       `json:"rollingTotalActionCount"`
	WindowStart               time.Time `json:"windowStart"`
}

// Snapshot is the read-only projection of a user's state.
type Snapshot struct {
	UserID       string           `json:"userId"`
	Capacity     int              `json:"capacity"`
	CapacityBand vitality.Band    `json:"capacityBand"`
	Phase        vitality.Phase   `json:"phase"`
	Burnout      vitality.Burnout `json:"burnout"`
	Energy       energy.Cell      `json:"energy"`
	Effort       EffortView       `json:"effort"`
	Recovery     effort.Recovery  `json:"recovery"`
	XP           ledger.Standing  `json:"xp"`
	Season       rewards.Season   `json:"season"`

	OnboardedOn      time.Time `json:"onboardedOn"`
	LastDailyTick    time.Time `json:"lastDailyTick"`
	LastWeeklyPeriod int       `json:"lastWeeklyPeriod"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (e *Engine) snapshot(s *State, season rewards.Season) Snapshot {
	v := s.Vitals.Clone()
	return Snapshot{
		UserID:       s.UserID,
		Capacity:     v.Capacity,
		CapacityBand: v.Band(),
		Phase:        e.machine.Phase(v),
		Burnout:      v.Burnout,
		Energy:       s.Energy,
		Effort: EffortView{
			ConsecutiveHighEffortDays: s.Effort.ConsecutiveHighEffortDays,
			RollingWorkActionCount:    s.Effort.RollingWork(),
			RollingTotalActionCount:   s.Effort.RollingTotal(),
			WindowStart:               effort.WindowStart(s.LastDailyTick, e.cfg.WindowDays),
		},
		Recovery:         s.Effort.Clone().Recovery,
		XP:               s.Ledger.Standing(e.cfg.Table.Ranks),
		Season:           season,
		OnboardedOn:      s.OnboardedOn,
		LastDailyTick:    s.LastDailyTick,
		LastWeeklyPeriod: s.LastWeeklyPeriod,
		UpdatedAt:        s.UpdatedAt,
	}
}
