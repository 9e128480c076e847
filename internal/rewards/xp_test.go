package rewards

import "testing"

func TestCompute_SeasonMultiplier(t *testing.T) {
	base := Award{
		Overall: 500,
		Split:   CategoryXP{Capacity: 100, Engines: 300, Oxygen: 50},
	}
	got := Compute(base, 1200)

	want := Award{
		Overall: 600,
		Split:   CategoryXP{Capacity: 120, Engines: 360, Oxygen: 60},
	}
	if got != want {
		t.Errorf("Compute = %+v, want %+v", got, want)
	}
}

func TestCompute_RoundsHalfUpPerComponent(t *testing.T) {
	tests := []struct {
		name  string
		v     int64
		mults []Multiplier
		want  int64
	}{
		{"exact", 100, []Multiplier{1200}, 120},
		{"half rounds up", 125, []Multiplier{1100}, 138},
		{"below half rounds down", 101, []Multiplier{1100}, 111},
		{"burnout factor half", 5, []Multiplier{300}, 2},
		{"burnout factor below half", 4, []Multiplier{300}, 1},
		{"product before rounding", 333, []Multiplier{1300, 300}, 130},
		{"zero", 0, []Multiplier{1300, 1150, 300}, 0},
		{"no multipliers", 42, nil, 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(Award{Overall: tt.v}, tt.mults...)
			if got.Overall != tt.want {
				t.Errorf("Compute(%d, %v).Overall = %d, want %d", tt.v, tt.mults, got.Overall, tt.want)
			}
		})
	}
}

func TestCompute_OverallRoundedIndependently(t *testing.T) {
	// 0.5 + 0.5 would sum to 1, but each part rounds on its own.
	base := Award{Overall: 3, Split: CategoryXP{Capacity: 1, Engines: 1}}
	got := Compute(base, 500)
	if got.Overall != 2 {
		t.Errorf("Overall = %d, want 2", got.Overall)
	}
	if got.Split.Capacity != 1 || got.Split.Engines != 1 {
		t.Errorf("Split = %+v, want capacity=1 engines=1", got.Split)
	}
}

func TestCompute_KeepsSplitWithinOverall(t *testing.T) {
	base := Award{Overall: 250, Split: CategoryXP{Capacity: 250, Optionality: 50}}
	for _, m := range []Multiplier{300, 600, 1000, 1150, 1300} {
		got := Compute(base, m)
		if got.Split.Max() > got.Overall {
			t.Errorf("multiplier %v: split max %d > overall %d", m, got.Split.Max(), got.Overall)
		}
	}
}

func TestMultipliersApply(t *testing.T) {
	m := Multipliers{Season: 1200, Capacity: Unit, Burnout: Unit}
	got := m.Apply(Award{Overall: 500})
	if got.Overall != 600 {
		t.Errorf("Apply.Overall = %d, want 600", got.Overall)
	}
	if c := m.Combined(); c < 1.199 || c > 1.201 {
		t.Errorf("Combined = %v, want 1.2", c)
	}
}

func TestMultiplierFromFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want Multiplier
	}{
		{1.2, 1200},
		{0.3, 300},
		{1.15, 1150},
		{1, Unit},
	}
	for _, tt := range tests {
		if got := MultiplierFromFloat(tt.in); got != tt.want {
			t.Errorf("MultiplierFromFloat(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestAwardValidate(t *testing.T) {
	tests := []struct {
		name    string
		award   Award
		wantErr bool
	}{
		{"zero", Award{}, false},
		{"valid", Award{Overall: 100, Split: CategoryXP{Engines: 100}}, false},
		{"negative overall", Award{Overall: -1}, true},
		{"negative category", Award{Overall: 10, Split: CategoryXP{Meaning: -1}}, true},
		{"category above overall", Award{Overall: 10, Split: CategoryXP{Oxygen: 11}}, true},
		{"too large", Award{Overall: MaxAwardXP + 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.award.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCategoryXP_GetSetAdd(t *testing.T) {
	var x CategoryXP
	for i, c := range AllCategories() {
		x.Set(c, int64(i+1))
	}
	sum := x.Add(x)
	for i, c := range AllCategories() {
		if got := sum.Get(c); got != int64(2*(i+1)) {
			t.Errorf("Get(%s) = %d, want %d", c, got, 2*(i+1))
		}
	}
	if x.Max() != 5 || x.Min() != 1 {
		t.Errorf("Max/Min = %d/%d, want 5/1", x.Max(), x.Min())
	}
}
