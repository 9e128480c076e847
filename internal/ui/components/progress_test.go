package components

import (
	"strings"
	"testing"
)

func TestMeterFraction(t *testing.T) {
	tests := []struct {
		value, max int
		want       float64
	}{
		{0, 70, 0},
		{35, 70, 0.5},
		{70, 70, 1},
		{90, 70, 1},
		{-5, 70, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		got := NewMeter("", tt.value, tt.max, 10).Fraction()
		if got != tt.want {
			t.Errorf("Fraction(%d/%d) = %v, want %v", tt.value, tt.max, got, tt.want)
		}
	}
}

func TestMeterView(t *testing.T) {
	out := NewMeter("Energy", 40, 70, 20).View()
	if !strings.Contains(out, "Energy") {
		t.Errorf("View() missing label: %q", out)
	}
	if !strings.Contains(out, "40/70") {
		t.Errorf("View() missing value: %q", out)
	}
}
