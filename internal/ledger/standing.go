package ledger

import "github.com/abhisek/vitality/internal/rewards"

// Standing is the derived read model of a ledger: totals plus levels
// and rank. It is recomputed on demand and never stored.
type Standing struct {
	OverallXP      int64                    `json:"overallXP"`
	OverallLevel   int                      `json:"overallLevel"`
	CategoryXP     rewards.CategoryXP       `json:"categoryXP"`
	CategoryLevels map[rewards.Category]int `json:"categoryLevels"`
	Rank           rewards.Rank             `json:"rank"`
	RankTitle      string                   `json:"rankTitle"`
	Progress       float64                  `json:"progressToNextRank"`
	XPForNextRank  *int64                   `json:"xpForNextRank"`
}

// Standing derives levels and rank from the current totals.
func (l Ledger) Standing(tiers []rewards.RankTier) Standing {
	levels := make(map[rewards.Category]int, len(rewards.AllCategories()))
	for _, c := range rewards.AllCategories() {
		levels[c] = CategoryLevel(l.Categories.Get(c))
	}
	rp := ProgressFor(l.Overall, tiers)

	return Standing{
		OverallXP:      l.Overall,
		OverallLevel:   OverallLevel(l.Overall),
		CategoryXP:     l.Categories,
		CategoryLevels: levels,
		Rank:           rp.Rank,
		RankTitle:      rp.Rank.Title(),
		Progress:       rp.Percent,
		XPForNextRank:  rp.XPForNextRank,
	}
}
