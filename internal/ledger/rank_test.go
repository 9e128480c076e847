package ledger

import (
	"math"
	"testing"

	"github.com/abhisek/vitality/internal/rewards"
)

func TestProgressFor(t *testing.T) {
	tiers := rewards.DefaultRankTiers()

	tests := []struct {
		xp        int64
		rank      rewards.Rank
		percent   float64
		remaining int64
	}{
		{0, rewards.Recruit, 0, 1000},
		{1, rewards.Recruit, 0.1, 999},
		{500, rewards.Recruit, 50, 500},
		{1000, rewards.Private, 0, 4000},
		{1001, rewards.Private, 0.025, 3999},
		{12000, rewards.Sergeant, 20, 8000},
		{149_999, rewards.SergeantMajor, 99.9975, 1},
	}
	for _, tt := range tests {
		got := ProgressFor(tt.xp, tiers)
		if got.Rank != tt.rank {
			t.Errorf("ProgressFor(%d).Rank = %s, want %s", tt.xp, got.Rank, tt.rank)
		}
		if math.Abs(got.Percent-tt.percent) > 1e-9 {
			t.Errorf("ProgressFor(%d).Percent = %v, want %v", tt.xp, got.Percent, tt.percent)
		}
		if got.XPForNextRank == nil || *got.XPForNextRank != tt.remaining {
			t.Errorf("ProgressFor(%d).XPForNextRank = %v, want %d", tt.xp, got.XPForNextRank, tt.remaining)
		}
	}
}

func TestProgressFor_TopTier(t *testing.T) {
	got := ProgressFor(1_000_000, rewards.DefaultRankTiers())
	if got.Rank != rewards.CommandSergeantMajor {
		t.Errorf("Rank = %s, want %s", got.Rank, rewards.CommandSergeantMajor)
	}
	if got.Percent != 100 {
		t.Errorf("Percent = %v, want 100", got.Percent)
	}
	if got.XPForNextRank != nil {
		t.Errorf("XPForNextRank = %d, want nil", *got.XPForNextRank)
	}
}

func TestRankMonotonic(t *testing.T) {
	tiers := rewards.DefaultRankTiers()
	prevRank, prevLevel := RankFor(0, tiers), OverallLevel(0)
	for xp := int64(1); xp <= 200_000; xp += 97 {
		r, lvl := RankFor(xp, tiers), OverallLevel(xp)
		if r < prevRank {
			t.Fatalf("rank decreased at xp=%d: %d < %d", xp, r, prevRank)
		}
		if lvl < prevLevel {
			t.Fatalf("level decreased at xp=%d: %d < %d", xp, lvl, prevLevel)
		}
		prevRank, prevLevel = r, lvl
	}
}

func TestStanding(t *testing.T) {
	l := Ledger{Overall: 12000, Categories: rewards.CategoryXP{Engines: 3500}}
	s := l.Standing(rewards.DefaultRankTiers())

	if s.OverallLevel != 3 {
		t.Errorf("OverallLevel = %d, want 3", s.OverallLevel)
	}
	if s.Rank != rewards.Sergeant || s.RankTitle != "Sergeant" {
		t.Errorf("Rank = %s (%q), want Sergeant", s.Rank, s.RankTitle)
	}
	if s.CategoryLevels[rewards.Engines] != 4 {
		t.Errorf("engines level = %d, want 4", s.CategoryLevels[rewards.Engines])
	}
	if s.CategoryLevels[rewards.Meaning] != 1 {
		t.Errorf("meaning level = %d, want 1", s.CategoryLevels[rewards.Meaning])
	}
}
