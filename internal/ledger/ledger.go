package ledger

import (
	"errors"
	"fmt"

	"github.com/abhisek/vitality/internal/rewards"
)

const (
	// XPPerCategoryLevel is the XP span of one category level.
	XPPerCategoryLevel = 1000
	// XPPerOverallLevel is the XP span of one overall level.
	XPPerOverallLevel = 5000
)

var (
	// ErrNegativeXP is returned when an override would set a negative total.
	ErrNegativeXP = errors.New("xp must not be negative")
	// ErrOverallBelowCategory is returned when overall XP would fall below a
	// category total.
	ErrOverallBelowCategory = errors.New("overall xp must be at least every category xp")
)

// Ledger accumulates overall and per-category XP.
type Ledger struct {
	Overall    int64              `json:"overall"`
	Categories rewards.CategoryXP `json:"categories"`
}

// Apply adds an award to the totals.
func (l *Ledger) Apply(a rewards.Award) {
	l.Overall += a.Overall
	l.Categories = l.Categories.Add(a.Split)
}

// Override describes an administrative change to the totals. Nil or
// absent fields keep their current values.
type Override struct {
	Overall    *int64                     `json:"overallXP,omitempty"`
	Categories map[rewards.Category]int64 `json:"categoryXP,omitempty"`
}

// Empty reports whether the override changes nothing.
func (o Override) Empty() bool {
	return o.Overall == nil && len(o.Categories) == 0
}

// Override sets totals directly. The ledger is left untouched when the
// result would be negative or break overall >= max(category).
func (l *Ledger) Override(o Override) error {
	next := *l
	if o.Overall != nil {
		next.Overall = *o.Overall
	}
	for c, v := range o.Categories {
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", c)
		}
		next.Categories.Set(c, v)
	}

	if next.Overall < 0 || next.Categories.Min() < 0 {
		return ErrNegativeXP
	}
	if m := next.Categories.Max(); next.Overall < m {
		return fmt.Errorf("%w: overall %d < %d", ErrOverallBelowCategory, next.Overall, m)
	}

	*l = next
	return nil
}

// CategoryLevel returns the level for a category total.
func CategoryLevel(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerCategoryLevel) + 1
}

// OverallLevel returns the level for an overall total.
func OverallLevel(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerOverallLevel) + 1
}
