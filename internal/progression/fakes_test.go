package progression

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/store"
)

// mockSnapshotRepo keeps snapshots in memory and can be told to fail.
type mockSnapshotRepo struct {
	mu       sync.Mutex
	latest   map[string]store.Snapshot
	saves    int
	failSave bool
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{latest: make(map[string]store.Snapshot)}
}

func (m *mockSnapshotRepo) Save(_ context.Context, snap *store.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.latest[snap.UserID] = *snap
	return nil
}

func (m *mockSnapshotRepo) Latest(_ context.Context, userID string) (*store.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.latest[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *mockSnapshotRepo) Prune(context.Context, string, int) error { return nil }

func (m *mockSnapshotRepo) Users(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for id := range m.latest {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

// mockEventRepo records appended events.
type mockEventRepo struct {
	mu          sync.Mutex
	activities  []store.ActivityEventData
	ticks       []store.TickEventData
	transitions []store.TransitionEventData
	overrides   []store.OverrideEventData
	fail        bool
}

func (m *mockEventRepo) AppendActivity(_ context.Context, d store.ActivityEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("event log unavailable")
	}
	m.activities = append(m.activities, d)
	return nil
}

func (m *mockEventRepo) AppendTick(_ context.Context, d store.TickEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticks = append(m.ticks, d)
	return nil
}

func (m *mockEventRepo) AppendTransition(_ context.Context, d store.TransitionEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, d)
	return nil
}

func (m *mockEventRepo) AppendOverride(_ context.Context, d store.OverrideEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides = append(m.overrides, d)
	return nil
}

func (m *mockEventRepo) Query(context.Context, string, store.QueryOpts) ([]store.Event, error) {
	return nil, nil
}

// day0 is a spring Monday morning.
var day0 = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

func days(n int) time.Time { return day0.AddDate(0, 0, n) }

type testEnv struct {
	engine *Engine
	snaps  *mockSnapshotRepo
	events *mockEventRepo
}

func newTestEnv(t *testing.T, mutate ...func(*Config)) *testEnv {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CatchUpOnAccess = false
	for _, m := range mutate {
		m(&cfg)
	}

	env := &testEnv{snaps: newMockSnapshotRepo(), events: &mockEventRepo{}}
	e, err := NewEngine(cfg, Deps{
		Snapshots: env.snaps,
		Events:    env.events,
		Seasons:   FixedSeason(rewards.Spring),
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	env.engine = e
	return env
}

func (env *testEnv) onboard(t *testing.T, userID string) {
	t.Helper()
	if _, err := env.engine.Onboard(context.Background(), userID, day0); err != nil {
		t.Fatalf("Onboard(%s): %v", userID, err)
	}
}

// modify edits the committed state directly, for setting up scenarios.
func (env *testEnv) modify(t *testing.T, userID string, fn func(*State)) {
	t.Helper()
	sl := env.engine.slot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	if sl.state == nil {
		t.Fatalf("user %s not loaded", userID)
	}
	fn(sl.state)
}

func (env *testEnv) state(t *testing.T, userID string) *State {
	t.Helper()
	sl := env.engine.slot(userID)
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.state.Clone()
}

func work() ActivityRequest { return ActivityRequest{Type: rewards.WorkProject} }
