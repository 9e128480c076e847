package rewards

// Rank is an overall progression tier, ordered from lowest to highest.
type Rank int

const (
	Recruit Rank = iota
	Private
	Corporal
	Sergeant
	StaffSergeant
	SergeantFirstClass
	MasterSergeant
	FirstSergeant
	SergeantMajor
	CommandSergeantMajor
)

// RankCount is the number of tiers in the rank table.
const RankCount = 10

// AllRanks returns every rank in ascending order.
func AllRanks() []Rank {
	out := make([]Rank, RankCount)
	for i := range out {
		out[i] = Rank(i)
	}
	return out
}

// Title returns the display title for the rank.
func (r Rank) Title() string {
	switch r {
	case Recruit:
		return "Recruit"
	case Private:
		return "Private"
	case Corporal:
		return "Corporal"
	case Sergeant:
		return "Sergeant"
	case StaffSergeant:
		return "Staff Sergeant"
	case SergeantFirstClass:
		return "Sergeant First Class"
	case MasterSergeant:
		return "Master Sergeant"
	case FirstSergeant:
		return "First Sergeant"
	case SergeantMajor:
		return "Sergeant Major"
	case CommandSergeantMajor:
		return "Command Sergeant Major"
	default:
		return "Unknown"
	}
}

func (r Rank) String() string { return r.Title() }

// RankTier pairs a rank with the overall XP needed to reach it.
type RankTier struct {
	Rank  Rank  `json:"rank"`
	MinXP int64 `json:"minXP"`
}

// DefaultRankTiers returns the standard rank ladder.
func DefaultRankTiers() []RankTier {
	return []RankTier{
		{Recruit, 0},
		{Private, 1_000},
		{Corporal, 5_000},
		{Sergeant, 10_000},
		{StaffSergeant, 20_000},
		{SergeantFirstClass, 35_000},
		{MasterSergeant, 55_000},
		{FirstSergeant, 80_000},
		{SergeantMajor, 110_000},
		{CommandSergeantMajor, 150_000},
	}
}
