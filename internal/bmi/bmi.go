// Package bmi computes and labels Body Mass Index values for display. The
// backend remains the authority on stored BMI; these helpers only mirror its
// arithmetic for immediate feedback.
package bmi

import "errors"

// Calculate expects height in centimeters and weight in kilograms.
func Calculate(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 || weightKg <= 0 {
		return 0, errors.New("height and weight must be positive")
	}
	if heightCm < 50 || heightCm > 250 || weightKg < 10 || weightKg > 400 {
		return 0, errors.New("height/weight out of plausible range")
	}

	h := heightCm / 100.0 // to meters
	return weightKg / (h * h), nil
}

// Category labels a BMI value: under 18.5 is underweight, up to 24.9 is
// normal, everything above is overweight.
func Category(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi <= 24.9:
		return "Normal Weight"
	default:
		return "Overweight"
	}
}
