package vitality

// Band is the coarse classification of a capacity value.
type Band string

const (
	BandCritical Band = "critical"
	BandLow      Band = "low"
	BandMedium   Band = "medium"
	BandHigh     Band = "high"
	BandOptimal  Band = "optimal"
)

// AllBands returns the bands from lowest to highest.
func AllBands() []Band {
	return []Band{BandCritical, BandLow, BandMedium, BandHigh, BandOptimal}
}

// BandFor returns the band implied by capacity.
func BandFor(capacity int) Band {
	switch {
	case capacity < 20:
		return BandCritical
	case capacity < 30:
		return BandLow
	case capacity < 61:
		return BandMedium
	case capacity < 90:
		return BandHigh
	default:
		return BandOptimal
	}
}

// DisplayName returns a human-readable label for the band.
func (b Band) DisplayName() string {
	switch b {
	case BandCritical:
		return "Critical"
	case BandLow:
		return "Low"
	case BandMedium:
		return "Medium"
	case BandHigh:
		return "High"
	case BandOptimal:
		return "Optimal"
	default:
		return string(b)
	}
}

// Valid reports whether b is a known band.
func (b Band) Valid() bool {
	switch b {
	case BandCritical, BandLow, BandMedium, BandHigh, BandOptimal:
		return true
	default:
		return false
	}
}
