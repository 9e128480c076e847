package energy

import (
	"errors"
	"fmt"
)

// BurnoutCap is the cap forced while burnout is active. It is fixed;
// only the steps are tunable.
const BurnoutCap = 40

// Step sets the cap for every capacity at or above MinCapacity, up to
// the next step.
type Step struct {
	MinCapacity int `json:"minCapacity" toml:"min_capacity"`
	Cap         int `json:"cap" toml:"cap"`
}

// CapPolicy derives the energy cap from capacity and burnout status.
type CapPolicy struct {
	Steps []Step
}

// DefaultCapPolicy returns one step per capacity band.
func DefaultCapPolicy() CapPolicy {
	return CapPolicy{
		Steps: []Step{
			{MinCapacity: 0, Cap: 50},
			{MinCapacity: 20, Cap: 60},
			{MinCapacity: 30, Cap: 70},
			{MinCapacity: 61, Cap: 85},
			{MinCapacity: 90, Cap: 100},
		},
	}
}

// Validate checks the policy is a monotonic non-decreasing step function
// covering capacity 0.
func (p CapPolicy) Validate() error {
	if len(p.Steps) == 0 {
		return errors.New("cap policy needs at least one step")
	}
	if p.Steps[0].MinCapacity != 0 {
		return errors.New("first cap step must start at capacity 0")
	}
	for i, s := range p.Steps {
		if s.Cap <= 0 {
			return fmt.Errorf("step %d: cap must be positive", i)
		}
		if i == 0 {
			continue
		}
		prev := p.Steps[i-1]
		if s.MinCapacity <= prev.MinCapacity {
			return fmt.Errorf("step %d: capacity thresholds must be strictly ascending", i)
		}
		if s.Cap < prev.Cap {
			return fmt.Errorf("step %d: cap %d is below previous cap %d", i, s.Cap, prev.Cap)
		}
	}
	return nil
}

// CapFor returns the cap for the given capacity and burnout status.
func (p CapPolicy) CapFor(capacity int, burnout bool) int {
	if burnout {
		return BurnoutCap
	}
	limit := 0
	for _, s := range p.Steps {
		if capacity < s.MinCapacity {
			break
		}
		limit = s.Cap
	}
	return limit
}

// InsufficientError reports an activity that costs more energy than is
// available.
type InsufficientError struct {
	Required int
	Current  int
}

func (e *InsufficientError) Error() string {
	return fmt.Sprintf("insufficient energy: required %d, current %d", e.Required, e.Current)
}

// Cell is a user's energy reserve. Current never exceeds Cap.
type Cell struct {
	Current int `json:"current"`
	Cap     int `json:"cap"`
}

// Full returns a cell filled to the cap implied by the policy.
func Full(p CapPolicy, capacity int, burnout bool) Cell {
	limit := p.CapFor(capacity, burnout)
	return Cell{Current: limit, Cap: limit}
}

// Recompute re-derives the cap and clamps current to it.
func (c *Cell) Recompute(p CapPolicy, capacity int, burnout bool) {
	c.Cap = p.CapFor(capacity, burnout)
	c.Current = max(0, min(c.Current, c.Cap))
}

// Reset refills the cell to its cap.
func (c *Cell) Reset() {
	c.Current = c.Cap
}

// CanAfford reports whether cost can be spent without overdraft.
func (c Cell) CanAfford(cost int) bool {
	return cost <= c.Current
}

// Spend deducts cost. The cell is unchanged when it cannot afford it.
func (c *Cell) Spend(cost int) error {
	if cost < 0 {
		return fmt.Errorf("negative energy cost %d", cost)
	}
	if !c.CanAfford(cost) {
		return &InsufficientError{Required: cost, Current: c.Current}
	}
	c.Current -= cost
	return nil
}
