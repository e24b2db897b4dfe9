package configuration

import (
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/stretchr/testify/assert"
)

func TestParsePercent(t *testing.T) {
	// GIVEN
	expected := map[string]Percent{
		"85":     85,
		"85%":    85,
		" 90 % ": 90,
		"12.5":   12.5,
		"-5":     -5,
	}

	for input, output := range expected {
		// WHEN
		result, err := ParsePercent(input)

		// THEN
		assert.NoError(t, err, "input: %q", input)
		assert.Equal(t, output, result, "input: %q", input)
	}
}

func TestParsePercent_Invalid(t *testing.T) {
	// WHEN
	_, err := ParsePercent("fast")

	// THEN
	assert.Error(t, err)
}

func TestPercentHookFunc(t *testing.T) {
	// GIVEN
	type target struct {
		Speed Percent
		Other string
	}
	inputs := []map[string]interface{}{
		{"speed": "85%", "other": "x"},
		{"speed": 85, "other": "x"},
		{"speed": 85.0, "other": "x"},
	}

	for _, input := range inputs {
		var result target
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: percentHookFunc(),
			Result:     &result,
		})
		assert.NoError(t, err)

		// WHEN
		err = decoder.Decode(input)

		// THEN
		assert.NoError(t, err)
		assert.Equal(t, Percent(85), result.Speed)
		assert.Equal(t, "x", result.Other)
	}
}
