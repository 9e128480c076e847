package progression

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/vitality"
)

func TestRecordActivity_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()

	snap, err := env.engine.GetState(ctx, "u1", day0)
	require.NoError(t, err)
	require.Equal(t, 50, snap.Capacity)
	require.Equal(t, 70, snap.Energy.Cap)
	require.Equal(t, 70, snap.Energy.Current)
	require.False(t, snap.Burnout.Active)

	r, err := env.engine.RecordActivity(ctx, "u1", work(), day0)
	require.NoError(t, err)

	assert.Equal(t, 30, r.EnergySpent)
	assert.Equal(t, 40, r.EnergyRemaining)
	assert.Equal(t, int64(600), r.OverallXPGained)
	assert.Equal(t, rewards.CategoryXP{Capacity: 120, Engines: 360, Oxygen: 60}, r.CategoryXPGained)
	assert.Equal(t, rewards.Multiplier(1200), r.Multipliers.Season)
	assert.Equal(t, int64(600), r.Totals.OverallXP)
	assert.NotEmpty(t, r.ID)

	snap, err = env.engine.GetState(ctx, "u1", day0)
	require.NoError(t, err)
	assert.Equal(t, 40, snap.Energy.Current)
	assert.Equal(t, int64(600), snap.XP.OverallXP)
	assert.Equal(t, int64(360), snap.XP.CategoryXP.Engines)
	assert.Equal(t, 1, snap.Effort.RollingWorkActionCount)

	require.Len(t, env.events.activities, 1)
	assert.Equal(t, r.ID, env.events.activities[0].ReceiptID)
}

func TestRecordActivity_NoOverdraft(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()

	_, err := env.engine.RecordActivity(ctx, "u1", work(), day0)
	require.NoError(t, err)
	_, err = env.engine.RecordActivity(ctx, "u1", work(), day0)
	require.NoError(t, err)

	before := env.state(t, "u1")
	require.Equal(t, 10, before.Energy.Current)

	_, err = env.engine.RecordActivity(ctx, "u1", work(), day0)
	var ie *InsufficientEnergyError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 30, ie.Required)
	assert.Equal(t, 10, ie.Current)

	after := env.state(t, "u1")
	assert.Equal(t, before, after)
}

func TestRecordActivity_BurnoutGating(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()

	entered := days(-1)
	env.modify(t, "u1", func(s *State) {
		s.Vitals.Capacity = 28
		s.Vitals.Burnout = vitality.Burnout{Active: true, EnteredAt: &entered}
		s.Energy.Recompute(env.engine.cfg.CapPolicy, s.Vitals.Capacity, true)
	})
	before := env.state(t, "u1")
	require.Equal(t, 40, before.Energy.Cap)

	for _, at := range []rewards.ActivityType{rewards.WorkProject, rewards.Custom} {
		_, err := env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: at}, day0)
		require.ErrorIs(t, err, ErrBlockedByBurnout, "type %s", at)
	}
	assert.Equal(t, before, env.state(t, "u1"))

	// Recovery is allowed at the burnout efficiency on top of the low band.
	r, err := env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: rewards.Exercise}, day0)
	require.NoError(t, err)
	assert.Equal(t, rewards.Multiplier(300), r.Multipliers.Burnout)
	assert.Equal(t, rewards.Multiplier(800), r.Multipliers.Capacity)
	// 250 * 1.2 * 0.8 * 0.3 = 72
	assert.Equal(t, int64(72), r.OverallXPGained)

	// System awards are never blocked and cost nothing.
	_, err = env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: rewards.Milestone}, day0)
	require.NoError(t, err)

	// A weekly tick that lifts capacity to the threshold clears burnout.
	env.modify(t, "u1", func(s *State) {
		s.Effort.Recovery.ActionsThisWeek = 4
	})
	res, err := env.engine.RunScheduledTick(ctx, "u1", TickWeekly, days(7))
	require.NoError(t, err)
	require.NotNil(t, res.Weekly)
	assert.True(t, res.Weekly.BurnoutExited)
	assert.Equal(t, vitality.PhaseRecovering, res.Snapshot.Phase)
	assert.Equal(t, 70, res.Snapshot.Energy.Cap)

	_, err = env.engine.RunScheduledTick(ctx, "u1", TickDaily, days(7))
	require.NoError(t, err)
	_, err = env.engine.RecordActivity(ctx, "u1", work(), days(7))
	require.NoError(t, err)
}

func TestRecordActivity_InvalidRequests(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()
	neg := -5

	tests := []struct {
		name string
		req  ActivityRequest
		want error
	}{
		{"unknown type", ActivityRequest{Type: "juggling"}, ErrInvalidActivityType},
		{"empty type", ActivityRequest{}, ErrInvalidActivityType},
		{"negative custom xp", ActivityRequest{Type: rewards.Custom, CustomXP: &rewards.Award{Overall: -1}}, ErrInvalidReward},
		{"split above overall", ActivityRequest{Type: rewards.Custom, CustomXP: &rewards.Award{Overall: 10, Split: rewards.CategoryXP{Meaning: 11}}}, ErrInvalidReward},
		{"negative energy cost", ActivityRequest{Type: rewards.Rest, EnergyCost: &neg}, ErrInvalidEnergyCost},
	}
	before := env.state(t, "u1")
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.engine.RecordActivity(ctx, "u1", tt.req, day0)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, before, env.state(t, "u1"))

	_, err := env.engine.RecordActivity(ctx, "nobody", work(), day0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRecordActivity_InvalidRequestLeavesTicksDue(t *testing.T) {
	env := newTestEnv(t, func(c *Config) { c.CatchUpOnAccess = true })
	env.onboard(t, "u1")
	ctx := context.Background()
	_, err := env.engine.RecordActivity(ctx, "u1", work(), day0)
	require.NoError(t, err)

	before := env.state(t, "u1")
	neg := -1
	for _, req := range []ActivityRequest{
		{Type: "bogus"},
		{Type: rewards.Custom, CustomXP: &rewards.Award{Overall: -1}},
		{Type: rewards.Rest, EnergyCost: &neg},
	} {
		_, err := env.engine.RecordActivity(ctx, "u1", req, days(8))
		require.Error(t, err)
	}
	assert.Equal(t, before, env.state(t, "u1"))

	// The week and the eight days are still there to apply.
	results, err := env.engine.CatchUp(ctx, "u1", days(8))
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, TickWeekly, results[0].Kind)
	assert.Equal(t, 8, results[1].Days)
	assert.Equal(t, 1, results[1].Snapshot.LastWeeklyPeriod)
}

func TestRecordActivity_CustomXPAndCost(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	cost := 5

	r, err := env.engine.RecordActivity(context.Background(), "u1", ActivityRequest{
		Type:            rewards.Custom,
		Description:     "side project",
		CustomXP:        &rewards.Award{Overall: 100, Split: rewards.CategoryXP{Meaning: 50}},
		EnergyCost:      &cost,
		ResourceChanges: map[string]int64{"savings": 200},
	}, day0)
	require.NoError(t, err)

	assert.Equal(t, int64(120), r.OverallXPGained)
	assert.Equal(t, int64(60), r.CategoryXPGained.Meaning)
	assert.Equal(t, 5, r.EnergySpent)
	assert.Equal(t, "side project", r.Description)
	assert.Equal(t, int64(200), r.ResourceChanges["savings"])
	assert.Equal(t, rewards.KindWork, r.Kind)
}

func TestRecordActivity_RecoveryCounters(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()

	_, err := env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: rewards.Rest}, day0)
	require.NoError(t, err)
	_, err = env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: rewards.SeasonCompletion}, day0)
	require.NoError(t, err)

	st := env.state(t, "u1")
	assert.Equal(t, 1, st.Effort.Recovery.ActionsThisWeek)
	require.NotNil(t, st.Effort.Recovery.LastRecoveryAt)
	assert.True(t, st.Effort.Recovery.LastRecoveryAt.Equal(day0))
	assert.Equal(t, 1, st.Effort.RollingTotal(), "system awards are not effort")
	assert.Equal(t, 52, st.Energy.Current)
}

func TestRecordActivity_PersistFailureLeavesStateUnchanged(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	before := env.state(t, "u1")

	env.snaps.failSave = true
	_, err := env.engine.RecordActivity(context.Background(), "u1", work(), day0)
	require.Error(t, err)
	assert.Equal(t, before, env.state(t, "u1"))
	assert.Empty(t, env.events.activities)
}

func TestRecordActivity_EventFailureDoesNotFail(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	env.events.fail = true

	_, err := env.engine.RecordActivity(context.Background(), "u1", work(), day0)
	require.NoError(t, err)
	assert.Equal(t, 40, env.state(t, "u1").Energy.Current)
}

func TestRecordActivity_MilestoneEvaluator(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []ledger.Standing
	)
	snaps := newMockSnapshotRepo()
	cfg := DefaultConfig()
	cfg.CatchUpOnAccess = false

	var e *Engine
	e, err := NewEngine(cfg, Deps{
		Snapshots: snaps,
		Seasons:   FixedSeason(rewards.Winter),
		Milestones: MilestoneFunc(func(ctx context.Context, userID string, totals ledger.Standing, now time.Time) error {
			mu.Lock()
			calls = append(calls, totals)
			mu.Unlock()
			if totals.OverallXP >= 1000 && totals.OverallXP < 2000 {
				// Re-entrant awards must not deadlock.
				_, err := e.RecordActivity(ctx, userID, ActivityRequest{Type: rewards.Milestone}, now)
				return err
			}
			return errors.New("milestone service down")
		}),
	})
	require.NoError(t, err)
	_, err = e.Onboard(context.Background(), "u1", day0)
	require.NoError(t, err)

	r, err := e.RecordActivity(context.Background(), "u1", ActivityRequest{Type: rewards.SaveExpenses}, day0)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), r.OverallXPGained)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Equal(t, int64(1100), calls[0].OverallXP)
	assert.Equal(t, int64(1100+2200), calls[1].OverallXP)
}

func TestRecordActivity_ConcurrentSpendSerialized(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: rewards.Rest}, day0)
			mu.Lock()
			defer mu.Unlock()
			var ie *InsufficientEnergyError
			switch {
			case err == nil:
				accepted++
			case errors.As(err, &ie):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 17, rejected)
	st := env.state(t, "u1")
	assert.Equal(t, 70-3*18, st.Energy.Current)
	assert.Equal(t, 3, st.Effort.Recovery.ActionsThisWeek)
}

func TestPreview_MatchesRecordAndDoesNotMutate(t *testing.T) {
	env := newTestEnv(t)
	env.onboard(t, "u1")
	ctx := context.Background()
	before := env.state(t, "u1")

	p, err := env.engine.Preview(ctx, "u1", ActivityRequest{Type: rewards.Learning}, day0)
	require.NoError(t, err)
	assert.True(t, p.Affordable)
	assert.False(t, p.Blocked)
	assert.Equal(t, 70, p.CurrentEnergy)
	assert.Equal(t, before, env.state(t, "u1"))

	r, err := env.engine.RecordActivity(ctx, "u1", ActivityRequest{Type: rewards.Learning}, day0)
	require.NoError(t, err)
	assert.Equal(t, p.Reward.Overall, r.OverallXPGained)
	assert.Equal(t, p.Reward.Split, r.CategoryXPGained)
	assert.Equal(t, p.EnergyCost, r.EnergySpent)
}

func TestComputeReward_CapacityBands(t *testing.T) {
	table := rewards.DefaultTable()
	rules := vitality.DefaultRules()

	tests := []struct {
		capacity int
		want     int64
	}{
		{10, 300},  // 500 * 0.6
		{25, 400},  // 500 * 0.8
		{50, 500},  // 500 * 1.0
		{75, 550},  // 500 * 1.1
		{95, 575},  // 500 * 1.15
	}
	for _, tt := range tests {
		q, err := ComputeReward(table, rules, work(), rewards.Season(""), vitality.Vitals{Capacity: tt.capacity})
		require.NoError(t, err)
		assert.Equal(t, tt.want, q.Reward.Overall, "capacity %d", tt.capacity)
	}
}
