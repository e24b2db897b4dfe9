package util

import (
	"golang.org/x/exp/constraints"
	"math"
)

const (
	MinPwmValue = 0
	MaxPwmValue = 255
)

// Coerce returns a value that is at least min and at most max
func Coerce[T constraints.Integer | constraints.Float](value T, min T, max T) T {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

// Ratio calculates the ration that target has in comparison to rangeMin and rangeMax
// Make sure that:
// rangeMin <= target <= rangeMax
// rangeMax - rangeMin != 0
func Ratio(target float64, rangeMin float64, rangeMax float64) float64 {
	return (target - rangeMin) / (rangeMax - rangeMin)
}

// PercentToPwm converts a percentage to a pwm value, out of range inputs are clamped to [0..255]
func PercentToPwm(percent float64) float64 {
	if math.IsNaN(percent) {
		return MinPwmValue
	}
	return Coerce(percent*MaxPwmValue/100.0, MinPwmValue, MaxPwmValue)
}

// PwmToPercent converts a pwm value [0..255] to a percentage
func PwmToPercent(pwm float64) float64 {
	return Ratio(pwm, MinPwmValue, MaxPwmValue) * 100.0
}

// Avg calculates the average of all values in the given array
func Avg(values []float64) float64 {
	if len(values) <= 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < len(values); i++ {
		sum += values[i]
	}
	return sum / (float64(len(values)))
}
