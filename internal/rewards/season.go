package rewards

import "time"

// Season is the host-owned season value that scales rewards.
type Season string

const (
	Spring Season = "spring"
	Summer Season = "summer"
	Autumn Season = "autumn"
	Winter Season = "winter"
)

// AllSeasons returns the seasons in calendar order.
func AllSeasons() []Season {
	return []Season{Spring, Summer, Autumn, Winter}
}

// Valid reports whether s is a known season.
func (s Season) Valid() bool {
	switch s {
	case Spring, Summer, Autumn, Winter:
		return true
	default:
		return false
	}
}

// DisplayName returns a human-readable label for the season.
func (s Season) DisplayName() string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Autumn:
		return "Autumn"
	case Winter:
		return "Winter"
	default:
		return string(s)
	}
}

// SeasonForDate maps a date to its meteorological season
// (northern hemisphere).
func SeasonForDate(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}
