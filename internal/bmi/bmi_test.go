package bmi

import (
	"math"
	"testing"
)

func TestCalculate(t *testing.T) {
	got, err := Calculate(170, 70)
	if err != nil {
		t.Fatalf("Calculate(170, 70): %v", err)
	}
	if math.Abs(got-24.22) > 0.01 {
		t.Errorf("Calculate(170, 70) = %.4f, want ≈24.22", got)
	}
}

func TestCalculateRejectsImplausibleInput(t *testing.T) {
	cases := []struct {
		name             string
		heightCm, weight float64
	}{
		{"zero height", 0, 70},
		{"negative weight", 170, -5},
		{"toddler height", 30, 70},
		{"implausible weight", 170, 600},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Calculate(tt.heightCm, tt.weight); err == nil {
				t.Errorf("Calculate(%v, %v) accepted implausible input", tt.heightCm, tt.weight)
			}
		})
	}
}

func TestCategory(t *testing.T) {
	tests := []struct {
		bmi  float64
		want string
	}{
		{17.0, "Underweight"},
		{18.5, "Normal Weight"},
		{22.0, "Normal Weight"},
		{24.9, "Normal Weight"},
		{27.5, "Overweight"},
	}
	for _, tt := range tests {
		if got := Category(tt.bmi); got != tt.want {
			t.Errorf("Category(%.1f) = %q, want %q", tt.bmi, got, tt.want)
		}
	}
}
