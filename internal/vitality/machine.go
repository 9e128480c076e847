package vitality

import "time"

// Signals are the effort and recovery figures read by a weekly
// evaluation.
type Signals struct {
	ConsecutiveHighEffortDays int
	RollingWork               int
	RollingTotal              int
	ActionsThisWeek           int
	// SinceLastRecovery is only meaningful when HasRecovered is true.
	SinceLastRecovery time.Duration
	HasRecovered      bool
}

// WeeklyOutcome breaks down one weekly evaluation.
type WeeklyOutcome struct {
	EffortDecay    int          `json:"effortDecay"`
	ImbalanceDecay int          `json:"imbalanceDecay"`
	NeglectDecay   int          `json:"neglectDecay"`
	RecoveryGain   int          `json:"recoveryGain"`
	Delta          int          `json:"delta"`
	Before         int          `json:"capacityBefore"`
	After          int          `json:"capacityAfter"`
	BurnoutExited  bool         `json:"burnoutExited"`
	Transitions    []Transition `json:"transitions,omitempty"`
}

// Machine evaluates capacity and burnout transitions under a rule set.
type Machine struct {
	rules Rules
}

// NewMachine creates a Machine with the given rules.
func NewMachine(rules Rules) *Machine {
	return &Machine{rules: rules}
}

// Rules returns the machine's rule set.
func (m *Machine) Rules() Rules {
	return m.rules
}

// Phase derives the phase of v under the machine's threshold.
func (m *Machine) Phase(v Vitals) Phase {
	return v.Phase(m.rules.BurnoutThreshold)
}

// EvaluateDaily runs one daily burnout-entry evaluation. Burnout starts
// on the evaluation that completes BurnoutEntryDays consecutive days
// below the threshold.
func (m *Machine) EvaluateDaily(v *Vitals, now time.Time) []Transition {
	if v.Burnout.Active {
		v.LowCapacityDays = 0
		return nil
	}

	from := m.Phase(*v)
	if v.Capacity < m.rules.BurnoutThreshold {
		v.LowCapacityDays++
	} else {
		v.LowCapacityDays = 0
	}

	if v.LowCapacityDays >= m.rules.BurnoutEntryDays {
		at := now
		v.Burnout = Burnout{Active: true, EnteredAt: &at}
		v.LowCapacityDays = 0
		v.Recovering = false
	}

	return m.transition(from, *v, TriggerDaily, now)
}

// EvaluateWeekly applies the weekly capacity delta and evaluates burnout
// exit. Decay and gain are summed before clamping.
func (m *Machine) EvaluateWeekly(v *Vitals, sig Signals, now time.Time) WeeklyOutcome {
	from := m.Phase(*v)
	out := WeeklyOutcome{Before: v.Capacity}

	out.EffortDecay = m.rules.effortDelta(sig.ConsecutiveHighEffortDays)
	if sig.RollingTotal > 0 && sig.RollingWork*1000 >= m.rules.ImbalancePermille*sig.RollingTotal {
		out.ImbalanceDecay = m.rules.ImbalanceDecay
	}
	if !sig.HasRecovered || sig.SinceLastRecovery > m.rules.NeglectAfter {
		out.NeglectDecay = m.rules.NeglectDecay
	}
	out.RecoveryGain = m.rules.recoveryGain(sig.ActionsThisWeek)

	out.Delta = out.EffortDecay + out.ImbalanceDecay + out.NeglectDecay + out.RecoveryGain
	v.Capacity = clampCapacity(v.Capacity + out.Delta)
	out.After = v.Capacity

	switch {
	case v.Burnout.Active && v.Capacity >= m.rules.BurnoutThreshold:
		v.Burnout = Burnout{}
		v.LowCapacityDays = 0
		v.Recovering = true
		out.BurnoutExited = true
	case v.Recovering:
		v.Recovering = false
	}

	out.Transitions = m.transition(from, *v, TriggerWeekly, now)
	return out
}

func (m *Machine) transition(from Phase, v Vitals, trigger Trigger, now time.Time) []Transition {
	to := m.Phase(v)
	if to == from {
		return nil
	}
	return []Transition{{
		From:     from,
		To:       to,
		Trigger:  trigger,
		Capacity: v.Capacity,
		At:       now,
	}}
}
