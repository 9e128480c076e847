package ledger

import "github.com/abhisek/vitality/internal/rewards"

// RankProgress is the rank projection of an overall total.
type RankProgress struct {
	Rank rewards.Rank `json:"rank"`
	// Percent is progress from the current tier toward the next, in
	// [0,100]. It is not rounded.
	Percent float64 `json:"progressToNextRank"`
	// XPForNextRank is nil at the top tier.
	XPForNextRank *int64 `json:"xpForNextRank"`
}

// RankFor returns the highest tier whose threshold is at or below xp.
// tiers must be ascending.
func RankFor(xp int64, tiers []rewards.RankTier) int {
	idx := 0
	for i, t := range tiers {
		if t.MinXP <= xp {
			idx = i
		} else {
			break
		}
	}
	return idx
}

// ProgressFor computes rank, percent toward the next tier, and the XP
// still needed to reach it.
func ProgressFor(xp int64, tiers []rewards.RankTier) RankProgress {
	if len(tiers) == 0 {
		return RankProgress{Percent: 100}
	}

	idx := RankFor(xp, tiers)
	cur := tiers[idx]
	if idx == len(tiers)-1 {
		return RankProgress{Rank: cur.Rank, Percent: 100}
	}

	next := tiers[idx+1]
	span := next.MinXP - cur.MinXP
	frac := float64(xp-cur.MinXP) / float64(span)
	frac = max(0, min(1, frac))
	remaining := next.MinXP - xp

	return RankProgress{
		Rank:          cur.Rank,
		Percent:       frac * 100,
		XPForNextRank: &remaining,
	}
}
