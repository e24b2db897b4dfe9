package util

import (
	"github.com/stretchr/testify/assert"
	"math"
	"testing"
)

func TestCoerce(t *testing.T) {
	assert.Equal(t, 5, Coerce(5, 0, 10))
	assert.Equal(t, 0, Coerce(-3, 0, 10))
	assert.Equal(t, 10, Coerce(11, 0, 10))
	assert.Equal(t, 2.5, Coerce(2.5, 0.0, 10.0))
}

func TestRatio(t *testing.T) {
	// GIVEN
	a := 0.0
	b := 100.0
	c := 50.0

	expected := 0.5

	// WHEN
	result := Ratio(c, a, b)

	// THEN
	assert.Equal(t, expected, result)
}

func TestPercentToPwm(t *testing.T) {
	// GIVEN
	expectedInputOutput := map[float64]float64{
		-10.0: 0.0,
		0.0:   0.0,
		50.0:  127.5,
		85.0:  216.75,
		100.0: 255.0,
		120.0: 255.0,
	}

	for input, output := range expectedInputOutput {
		// WHEN
		result := PercentToPwm(input)

		// THEN
		assert.InDelta(t, output, result, 0.0000001, "input: %v", input)
	}
}

func TestPercentToPwm_NaN(t *testing.T) {
	// WHEN
	result := PercentToPwm(math.NaN())

	// THEN
	assert.Equal(t, 0.0, result)
}

func TestPwmToPercent(t *testing.T) {
	assert.Equal(t, 100.0, PwmToPercent(255))
	assert.Equal(t, 0.0, PwmToPercent(0))
	assert.InDelta(t, 50.0, PwmToPercent(127.5), 0.0000001)
}

func TestAvg(t *testing.T) {
	assert.Equal(t, 0.0, Avg(nil))
	assert.Equal(t, 2.0, Avg([]float64{1, 2, 3}))
}
