package rewards

import (
	"fmt"
	"math"
	"math/big"
)

// CategoryXP holds one counter per category.
type CategoryXP struct {
	Capacity    int64 `json:"capacity"`
	Engines     int64 `json:"engines"`
	Oxygen      int64 `json:"oxygen"`
	Meaning     int64 `json:"meaning"`
	Optionality int64 `json:"optionality"`
}

// Get returns the counter for c. Unknown categories read as zero.
func (x CategoryXP) Get(c Category) int64 {
	switch c {
	case Capacity:
		return x.Capacity
	case Engines:
		return x.Engines
	case Oxygen:
		return x.Oxygen
	case Meaning:
		return x.Meaning
	case Optionality:
		return x.Optionality
	default:
		return 0
	}
}

// Set assigns the counter for c. Unknown categories are ignored.
func (x *CategoryXP) Set(c Category, v int64) {
	switch c {
	case Capacity:
		x.Capacity = v
	case Engines:
		x.Engines = v
	case Oxygen:
		x.Oxygen = v
	case Meaning:
		x.Meaning = v
	case Optionality:
		x.Optionality = v
	}
}

// Add returns the component-wise sum.
func (x CategoryXP) Add(o CategoryXP) CategoryXP {
	var out CategoryXP
	for _, c := range AllCategories() {
		out.Set(c, x.Get(c)+o.Get(c))
	}
	return out
}

// Max returns the largest counter.
func (x CategoryXP) Max() int64 {
	var m int64
	for _, c := range AllCategories() {
		if v := x.Get(c); v > m {
			m = v
		}
	}
	return m
}

// Min returns the smallest counter.
func (x CategoryXP) Min() int64 {
	m := x.Get(Capacity)
	for _, c := range AllCategories()[1:] {
		if v := x.Get(c); v < m {
			m = v
		}
	}
	return m
}

// Award is an XP grant: an overall amount and its category split.
// Overall is not required to equal the sum of the split.
type Award struct {
	Overall int64      `json:"overall"`
	Split   CategoryXP `json:"split"`
}

// MaxAwardXP bounds any single award, including caller-supplied custom XP.
const MaxAwardXP = 1_000_000

// Validate checks that the award is non-negative, bounded, and that no
// category receives more than the overall amount.
func (a Award) Validate() error {
	if a.Overall < 0 || a.Split.Min() < 0 {
		return fmt.Errorf("award must not be negative")
	}
	if a.Overall > MaxAwardXP {
		return fmt.Errorf("overall %d exceeds maximum %d", a.Overall, MaxAwardXP)
	}
	for _, c := range AllCategories() {
		if v := a.Split.Get(c); v > a.Overall {
			return fmt.Errorf("category %s (%d) exceeds overall (%d)", c, v, a.Overall)
		}
	}
	return nil
}

// Multiplier is a scale factor in permille (1000 == 1.0x).
type Multiplier int64

// Unit is the identity multiplier.
const Unit Multiplier = 1000

// MultiplierFromFloat converts a factor like 1.2 into permille.
func MultiplierFromFloat(f float64) Multiplier {
	return Multiplier(math.Round(f * float64(Unit)))
}

// Float returns the factor as a float64.
func (m Multiplier) Float() float64 {
	return float64(m) / float64(Unit)
}

func (m Multiplier) String() string {
	return fmt.Sprintf("%.2fx", m.Float())
}

// Multipliers is the breakdown applied to an award.
type Multipliers struct {
	Season   Multiplier `json:"season"`
	Capacity Multiplier `json:"capacity"`
	Burnout  Multiplier `json:"burnout"`
}

// Combined returns the product of all factors as a float, for display.
func (m Multipliers) Combined() float64 {
	return m.Season.Float() * m.Capacity.Float() * m.Burnout.Float()
}

// Apply scales an award by every factor in the breakdown.
func (m Multipliers) Apply(a Award) Award {
	return Compute(a, m.Season, m.Capacity, m.Burnout)
}

// Compute scales each component of an award by the product of mults.
// Each category and the overall amount are rounded independently,
// half-up, on the exact product, so the result never depends on the
// order of factors or on floating point.
func Compute(a Award, mults ...Multiplier) Award {
	num := big.NewInt(1)
	den := big.NewInt(1)
	for _, m := range mults {
		num.Mul(num, big.NewInt(int64(m)))
		den.Mul(den, big.NewInt(int64(Unit)))
	}

	scale := func(v int64) int64 {
		// (2*v*num + den) / (2*den)
		n := new(big.Int).Mul(big.NewInt(v), num)
		n.Lsh(n, 1)
		n.Add(n, den)
		d := new(big.Int).Lsh(den, 1)
		return n.Quo(n, d).Int64()
	}

	out := Award{Overall: scale(a.Overall)}
	for _, c := range AllCategories() {
		out.Split.Set(c, scale(a.Split.Get(c)))
	}
	return out
}
