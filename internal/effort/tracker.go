package effort

import (
	"slices"
	"time"

	"github.com/abhisek/vitality/internal/rewards"
)

// Tally counts the actions recorded on one calendar day.
type Tally struct {
	Day      time.Time `json:"day"`
	Work     int       `json:"work"`
	Recovery int       `json:"recovery"`
}

// Recovery tracks recovery cadence for the weekly gain and neglect terms.
type Recovery struct {
	ActionsThisWeek int        `json:"actionsThisWeek"`
	LastRecoveryAt  *time.Time `json:"lastRecoveryAt"`
}

// Tracker keeps per-day effort tallies over a trailing window plus the
// high-effort streak and recovery counters.
type Tracker struct {
	Days                      []Tally  `json:"days"`
	ConsecutiveHighEffortDays int      `json:"consecutiveHighEffortDays"`
	Recovery                  Recovery `json:"recovery"`
}

// Clone returns a deep copy.
func (t Tracker) Clone() Tracker {
	out := t
	out.Days = slices.Clone(t.Days)
	if t.Recovery.LastRecoveryAt != nil {
		at := *t.Recovery.LastRecoveryAt
		out.Recovery.LastRecoveryAt = &at
	}
	return out
}

// Record adds one action of the given kind to day's tally. System
// actions are not tracked.
func (t *Tracker) Record(kind rewards.Kind, day time.Time) {
	if kind == rewards.KindSystem {
		return
	}
	i := t.tallyIndex(day)
	switch kind {
	case rewards.KindWork:
		t.Days[i].Work++
	case rewards.KindRecovery:
		t.Days[i].Recovery++
	}
}

// RecordRecovery counts a recovery action toward this week's gain and
// restarts the neglect clock.
func (t *Tracker) RecordRecovery(at time.Time) {
	t.Recovery.ActionsThisWeek++
	t.Recovery.LastRecoveryAt = &at
}

// CloseDay folds a finished day into the high-effort streak. A day with
// work and no recovery extends it; any other day resets it.
func (t *Tracker) CloseDay(day time.Time) {
	tally, ok := t.tally(day)
	switch {
	case ok && tally.Recovery > 0:
		t.ConsecutiveHighEffortDays = 0
	case ok && tally.Work > 0:
		t.ConsecutiveHighEffortDays++
	default:
		t.ConsecutiveHighEffortDays = 0
	}
}

// WindowStart returns the first day inside a window of n days ending
// on today.
func WindowStart(today time.Time, n int) time.Time {
	return AddDays(today, -(n - 1))
}

// Evict drops tallies that fall before the window ending on today.
func (t *Tracker) Evict(today time.Time, n int) {
	start := WindowStart(today, n)
	t.Days = slices.DeleteFunc(t.Days, func(d Tally) bool {
		return d.Day.Before(start)
	})
}

// RollingWork returns the number of work actions in the window.
func (t Tracker) RollingWork() int {
	n := 0
	for _, d := range t.Days {
		n += d.Work
	}
	return n
}

// RollingTotal returns the number of work and recovery actions in the
// window.
func (t Tracker) RollingTotal() int {
	n := 0
	for _, d := range t.Days {
		n += d.Work + d.Recovery
	}
	return n
}

// WorkRatio returns work/total over the window, or 0 for an empty window.
func (t Tracker) WorkRatio() float64 {
	total := t.RollingTotal()
	if total == 0 {
		return 0
	}
	return float64(t.RollingWork()) / float64(total)
}

// ResetWeek clears the weekly recovery counter.
func (t *Tracker) ResetWeek() {
	t.Recovery.ActionsThisWeek = 0
}

// SinceLastRecovery returns the time since the last recovery action and
// whether one was ever recorded.
func (t Tracker) SinceLastRecovery(now time.Time) (time.Duration, bool) {
	if t.Recovery.LastRecoveryAt == nil {
		return 0, false
	}
	return now.Sub(*t.Recovery.LastRecoveryAt), true
}

func (t Tracker) tally(day time.Time) (Tally, bool) {
	for _, d := range t.Days {
		if d.Day.Equal(day) {
			return d, true
		}
	}
	return Tally{}, false
}

// tallyIndex returns the index of day's tally, inserting an empty one in
// date order if needed.
func (t *Tracker) tallyIndex(day time.Time) int {
	i, found := slices.BinarySearchFunc(t.Days, day, func(d Tally, target time.Time) int {
		return d.Day.Compare(target)
	})
	if !found {
		t.Days = slices.Insert(t.Days, i, Tally{Day: day})
	}
	return i
}
