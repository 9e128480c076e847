package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int    // max results (0 = unlimited)
	After int64  // sequence > After
	Kind  string // event kind filter ("" = all)
}

// StateData is the persisted form of one user's progression state.
// Times are RFC 3339 strings; days are YYYY-MM-DD.
type StateData struct {
	Version     int    `json:"version"`
	UserID      string `json:"userId"`
	OnboardedOn string `json:"onboardedOn"`

	OverallXP  int64            `json:"overallXP"`
	CategoryXP map[string]int64 `json:"categoryXP"`

	Capacity         int    `json:"capacity"`
	BurnoutActive    bool   `json:"burnoutActive"`
	BurnoutEnteredAt string `json:"burnoutEnteredAt,omitempty"`
	LowCapacityDays  int    `json:"lowCapacityDays"`
	Recovering       bool   `json:"recovering"`

	EnergyCurrent int `json:"energyCurrent"`
	EnergyCap     int `json:"energyCap"`

	ConsecutiveHighEffortDays int             `json:"consecutiveHighEffortDays"`
	EffortDays                []EffortDayData `json:"effortDays"`
	ActionsThisWeek           int             `json:"actionsThisWeek"`
	LastRecoveryAt            string          `json:"lastRecoveryAt,omitempty"`

	LastDailyTick    string `json:"lastDailyTick"`
	LastWeeklyPeriod int    `json:"lastWeeklyPeriod"`
	UpdatedAt        string `json:"updatedAt"`
}

// EffortDayData is one day's action tally.
type EffortDayData struct {
	Day      string `json:"day"`
	Work     int    `json:"work"`
	Recovery int    `json:"recovery"`
}

// Snapshot is one committed version of a user's state.
type Snapshot struct {
	ID        int
	UserID    string
	Sequence  int64
	Timestamp time.Time
	Data      StateData
}

// SnapshotRepo manages per-user state snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. A zero Sequence is assigned from the
	// global counter.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the user's most recent snapshot, or nil if none exist.
	Latest(ctx context.Context, userID string) (*Snapshot, error)

	// Prune deletes all but the user's N most recent snapshots.
	Prune(ctx context.Context, userID string, keep int) error

	// Users returns every user with at least one snapshot.
	Users(ctx context.Context) ([]string, error)
}

// Event kinds.
const (
	KindActivity   = "activity"
	KindTick       = "tick"
	KindTransition = "transition"
	KindOverride   = "override"
)

// ActivityEventData captures one recorded activity.
type ActivityEventData struct {
	ReceiptID       string           `json:"receiptId"`
	UserID          string           `json:"userId"`
	ActivityType    string           `json:"activityType"`
	Kind            string           `json:"kind"`
	Description     string           `json:"description,omitempty"`
	EnergySpent     int              `json:"energySpent"`
	OverallXP       int64            `json:"overallXP"`
	CategoryXP      map[string]int64 `json:"categoryXP"`
	ResourceChanges map[string]int64 `json:"resourceChanges,omitempty"`
	RecordedAt      time.Time        `json:"recordedAt"`
}

// TickEventData captures one applied tick.
type TickEventData struct {
	UserID         string    `json:"userId"`
	Tick           string    `json:"tick"`
	Period         string    `json:"period"`
	CapacityBefore int       `json:"capacityBefore"`
	CapacityAfter  int       `json:"capacityAfter"`
	EnergyCap      int       `json:"energyCap"`
	AppliedAt      time.Time `json:"appliedAt"`
}

// TransitionEventData captures one burnout state machine transition.
type TransitionEventData struct {
	UserID   string    `json:"userId"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Trigger  string    `json:"trigger"`
	Capacity int       `json:"capacity"`
	At       time.Time `json:"at"`
}

// OverrideEventData captures an administrative XP override.
type OverrideEventData struct {
	UserID      string           `json:"userId"`
	OverallXP   *int64           `json:"overallXP,omitempty"`
	CategoryXP  map[string]int64 `json:"categoryXP,omitempty"`
	PrevOverall int64            `json:"prevOverallXP"`
	At          time.Time        `json:"at"`
}

// Event is a stored event with its raw payload.
type Event struct {
	Sequence  int64           `json:"sequence"`
	UserID    string          `json:"userId"`
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// EventRepo provides append and query access to progression events.
type EventRepo interface {
	AppendActivity(ctx context.Context, data ActivityEventData) error
	AppendTick(ctx context.Context, data TickEventData) error
	AppendTransition(ctx context.Context, data TransitionEventData) error
	AppendOverride(ctx context.Context, data OverrideEventData) error

	// Query returns a user's events in sequence order.
	Query(ctx context.Context, userID string, opts QueryOpts) ([]Event, error)
}
