package progression

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/vitality/internal/effort"
	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/logging"
	"github.com/abhisek/vitality/internal/metrics"
	"github.com/abhisek/vitality/internal/store"
	"github.com/abhisek/vitality/internal/vitality"
)

// Deps are the engine's collaborators. Nil fields fall back to
// in-memory state, calendar seasons, no milestones and a silent logger.
type Deps struct {
	Snapshots  store.SnapshotRepo
	Events     store.EventRepo
	Seasons    SeasonSource
	Milestones MilestoneEvaluator
	Logger     logrus.FieldLogger
}

// Engine owns every user's progression state. Operations on one user are
// serialized by that user's lock; different users never contend.
type Engine struct {
	cfg        Config
	machine    *vitality.Machine
	snapshots  store.SnapshotRepo
	events     store.EventRepo
	seasons    SeasonSource
	milestones MilestoneEvaluator
	log        logrus.FieldLogger

	mu    sync.Mutex
	slots map[string]*slot
}

// slot guards one user's committed state.
type slot struct {
	mu    sync.Mutex
	state *State
}

// NewEngine creates an engine after validating cfg.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		cfg:        cfg,
		machine:    vitality.NewMachine(cfg.Rules),
		snapshots:  deps.Snapshots,
		events:     deps.Events,
		seasons:    deps.Seasons,
		milestones: deps.Milestones,
		log:        deps.Logger,
		slots:      make(map[string]*slot),
	}
	if e.seasons == nil {
		e.seasons = CalendarSeasons{Location: cfg.Location}
	}
	if e.log == nil {
		e.log = logging.Discard()
	}
	return e, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Onboard creates a user's state. The onboarding day counts as the first
// applied daily tick and week zero as the first applied weekly period.
func (e *Engine) Onboard(ctx context.Context, userID string, now time.Time) (Snapshot, error) {
	if userID == "" {
		return Snapshot{}, fmt.Errorf("%w: empty user id", ErrUserNotFound)
	}

	sl := e.lockSlot(userID)
	defer sl.mu.Unlock()

	if sl.state == nil {
		existing, err := e.restore(ctx, userID)
		if err != nil {
			e.dropSlot(userID, sl)
			return Snapshot{}, err
		}
		sl.state = existing
	}
	if sl.state != nil {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUserExists, userID)
	}

	st := newState(userID, e.day(now), e.cfg.CapPolicy, now)
	if err := e.commit(ctx, sl, st, now); err != nil {
		e.dropSlot(userID, sl)
		return Snapshot{}, err
	}
	metrics.UsersLoaded.Inc()

	e.log.WithFields(logrus.Fields{
		"user_id":  userID,
		"capacity": st.Vitals.Capacity,
		"energy":   st.Energy.Cap,
	}).Info("user onboarded")

	return e.snapshot(st, e.season(ctx, userID, now)), nil
}

// GetState returns the user's current snapshot, applying due ticks first
// when catch-up on access is enabled.
func (e *Engine) GetState(ctx context.Context, userID string, now time.Time) (Snapshot, error) {
	var snap Snapshot
	err := e.withUser(ctx, userID, func(sl *slot) error {
		if e.cfg.CatchUpOnAccess {
			if _, err := e.catchUpLocked(ctx, sl, now); err != nil {
				return err
			}
		}
		snap = e.snapshot(sl.state, e.season(ctx, userID, now))
		return nil
	})
	return snap, err
}

// AdminOverride sets XP totals directly. Levels and rank are re-derived
// from the new totals; overrides that would leave overall XP below any
// category are rejected without change.
func (e *Engine) AdminOverride(ctx context.Context, userID string, o ledger.Override, now time.Time) (Snapshot, error) {
	var (
		snap Snapshot
		prev int64
	)
	err := e.withUser(ctx, userID, func(sl *slot) error {
		next := sl.state.Clone()
		prev = next.Ledger.Overall
		if err := next.Ledger.Override(o); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidOverride, err)
		}
		if err := e.commit(ctx, sl, next, now); err != nil {
			return err
		}
		snap = e.snapshot(next, e.season(ctx, userID, now))
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	e.appendOverride(ctx, userID, o, prev, now)
	e.log.WithFields(logrus.Fields{
		"user_id":      userID,
		"prev_overall": prev,
		"overall":      snap.XP.OverallXP,
		"rank":         snap.XP.RankTitle,
	}).Info("xp override applied")
	return snap, nil
}

// Users returns every known user ID, sorted.
func (e *Engine) Users(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	e.mu.Lock()
	slots := make(map[string]*slot, len(e.slots))
	for id, sl := range e.slots {
		slots[id] = sl
	}
	e.mu.Unlock()

	// A slot may be mid-onboarding with no state yet.
	for id, sl := range slots {
		sl.mu.Lock()
		if sl.state != nil {
			seen[id] = true
		}
		sl.mu.Unlock()
	}

	if e.snapshots != nil {
		stored, err := e.snapshots.Users(ctx)
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		for _, id := range stored {
			seen[id] = true
		}
	}

	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

func (e *Engine) slot(userID string) *slot {
	e.mu.Lock()
	defer e.mu.Unlock()
	sl, ok := e.slots[userID]
	if !ok {
		sl = &slot{}
		e.slots[userID] = sl
	}
	return sl
}

// lockSlot returns the user's slot with its lock held. A slot dropped
// while the caller waited for its lock is stale, so the lookup is retried.
func (e *Engine) lockSlot(userID string) *slot {
	for {
		sl := e.slot(userID)
		sl.mu.Lock()
		e.mu.Lock()
		current := e.slots[userID] == sl
		e.mu.Unlock()
		if current {
			return sl
		}
		sl.mu.Unlock()
	}
}

// dropSlot forgets a slot that holds no state, so lookups of unknown
// users leave nothing behind. Caller holds sl.mu.
func (e *Engine) dropSlot(userID string, sl *slot) {
	if sl.state != nil {
		return
	}
	e.mu.Lock()
	if e.slots[userID] == sl {
		delete(e.slots, userID)
	}
	e.mu.Unlock()
}

// withUser runs fn holding the user's lock with the state loaded.
func (e *Engine) withUser(ctx context.Context, userID string, fn func(sl *slot) error) error {
	sl := e.lockSlot(userID)
	defer sl.mu.Unlock()

	if sl.state == nil {
		st, err := e.restore(ctx, userID)
		if err != nil {
			e.dropSlot(userID, sl)
			return err
		}
		if st == nil {
			e.dropSlot(userID, sl)
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		sl.state = st
		metrics.UsersLoaded.Inc()
	}
	return fn(sl)
}

// commit persists next and makes it the user's current state. On error
// the previous state stays current.
func (e *Engine) commit(ctx context.Context, sl *slot, next *State, now time.Time) error {
	next.UpdatedAt = now
	if err := e.persist(ctx, next, now); err != nil {
		metrics.PersistFailures.Inc()
		return err
	}
	sl.state = next
	return nil
}

func (e *Engine) day(now time.Time) time.Time {
	return effort.DayOf(now, e.cfg.Location)
}

// instant returns the start of day in the engine's location.
func (e *Engine) instant(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, e.cfg.Location)
}
