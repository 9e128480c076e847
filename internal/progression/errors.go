package progression

import (
	"errors"

	"github.com/abhisek/vitality/internal/energy"
)

var (
	// ErrUserNotFound is returned for users that were never onboarded.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when onboarding an existing user.
	ErrUserExists = errors.New("user already onboarded")

	// ErrBlockedByBurnout rejects work activities while burnout is active.
	ErrBlockedByBurnout = errors.New("blocked by burnout")
	// ErrInvalidActivityType rejects activity types absent from the table.
	ErrInvalidActivityType = errors.New("invalid activity type")
	// ErrInvalidReward rejects malformed caller-supplied XP.
	ErrInvalidReward = errors.New("invalid custom xp")
	// ErrInvalidEnergyCost rejects negative energy cost overrides.
	ErrInvalidEnergyCost = errors.New("invalid energy cost")
	// ErrInvalidOverride rejects administrative overrides that would break
	// ledger invariants.
	ErrInvalidOverride = errors.New("invalid xp override")
	// ErrInvalidTickKind rejects tick kinds other than daily and weekly.
	ErrInvalidTickKind = errors.New("invalid tick kind")
)

// InsufficientEnergyError reports an activity that costs more energy than
// the user has. No state is changed when it is returned.
type InsufficientEnergyError = energy.InsufficientError
