package progression

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/energy"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/vitality"
)

// Config holds the engine's game-balance and runtime settings.
type Config struct {
	Table     *rewards.Table
	Rules     vitality.Rules
	CapPolicy energy.CapPolicy

	// WindowDays is the length of the rolling effort window.
	WindowDays int
	// Location defines calendar-day boundaries for daily ticks.
	Location *time.Location
	// CatchUpOnAccess applies due ticks before activities and reads.
	CatchUpOnAccess bool
	// SnapshotRetention is how many state versions to keep per user.
	// Zero keeps all.
	SnapshotRetention int
}

// DefaultConfig returns the standard balance with UTC day boundaries.
func DefaultConfig() Config {
	return Config{
		Table:             rewards.DefaultTable(),
		Rules:             vitality.DefaultRules(),
		CapPolicy:         energy.DefaultCapPolicy(),
		WindowDays:        effort.DefaultWindowDays,
		Location:          time.UTC,
		CatchUpOnAccess:   true,
		SnapshotRetention: 50,
	}
}

// Validate checks every component's settings.
func (c Config) Validate() error {
	if c.Table == nil {
		return errors.New("reward table is required")
	}
	if err := c.Table.Validate(); err != nil {
		return fmt.Errorf("reward table: %w", err)
	}
	if err := c.Rules.Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if err := c.CapPolicy.Validate(); err != nil {
		return fmt.Errorf("cap policy: %w", err)
	}
	if c.WindowDays <= 0 {
		return errors.New("window days must be positive")
	}
	if c.SnapshotRetention < 0 {
		return errors.New("snapshot retention must not be negative")
	}
	return nil
}
