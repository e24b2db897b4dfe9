package configuration

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Percent is a value in percent, usually in [0..100].
// It can be given as a number or as a string with an optional "%" suffix.
type Percent float64

func (p Percent) Float() float64 {
	return float64(p)
}

// ParsePercent parses values like "85", "85.5" or "85%"
func ParsePercent(text string) (Percent, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "%")
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage '%s': %w", text, err)
	}
	return Percent(value), nil
}

// percentHookFunc returns a mapstructure decode hook that converts strings
// (from config files and environment variables) into Percent values.
func percentHookFunc() mapstructure.DecodeHookFuncType {
	percentType := reflect.TypeOf(Percent(0))

	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != percentType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParsePercent(v)
		case int:
			return Percent(v), nil
		case float64:
			return Percent(v), nil
		}
		return data, nil
	}
}
