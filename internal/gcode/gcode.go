package gcode

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/markusressel/epfa/internal/util"
)

type Kind int

const (
	KindUnclassified Kind = iota
	KindLayerChange
	KindFanSet
	KindFanStop
	KindType
)

const (
	CommandFanSet  = "M106"
	CommandFanStop = "M107"

	TypePrefix = ";TYPE:"

	// PrusaSlicer
	TypeExternalPerimeter = "External perimeter"
	// Cura
	TypeWallOuter = "WALL-OUTER"

	MarkerAdjust = "Adjust"
	MarkerReset  = "Reset"
)

var outerWallTypes = []string{TypeExternalPerimeter, TypeWallOuter}

var (
	layerChangeRe = regexp.MustCompile(`^;(LAYER_CHANGE|LAYER:)`)
	// parameters may follow the command without a separator, e.g. "M106S140"
	fanSetRe  = regexp.MustCompile(`^` + CommandFanSet + `(\s|;|[SsPp]|$)`)
	fanStopRe = regexp.MustCompile(`^` + CommandFanStop + `(\s|;|[SsPp]|$)`)

	ErrMissingSpeed = errors.New("missing S parameter")
)

func (k Kind) String() string {
	switch k {
	case KindLayerChange:
		return "Layer change"
	case KindFanSet:
		return "Fan set"
	case KindFanStop:
		return "Fan stop"
	case KindType:
		return "Type"
	default:
		return "Other"
	}
}

// Line is the classification of a single line of G-code.
type Line struct {
	Kind Kind
	// TypeName is the trimmed region name of a KindType line
	TypeName string
}

// IsOuterWall reports whether the line is a type annotation for the outermost perimeter
func (l Line) IsOuterWall() bool {
	return l.Kind == KindType && IsOuterWallType(l.TypeName)
}

func IsOuterWallType(name string) bool {
	return util.ContainsString(outerWallTypes, name)
}

// Classify maps a line to exactly one Kind.
func Classify(line string) Line {
	switch {
	case layerChangeRe.MatchString(line):
		return Line{Kind: KindLayerChange}
	case fanSetRe.MatchString(line):
		return Line{Kind: KindFanSet}
	case fanStopRe.MatchString(line):
		return Line{Kind: KindFanStop}
	case strings.HasPrefix(line, TypePrefix):
		name := strings.TrimPrefix(line, TypePrefix)
		// the slicer never uses ':' inside a type name, anything after it is not part of the name
		name, _, _ = strings.Cut(name, ":")
		return Line{Kind: KindType, TypeName: strings.TrimSpace(name)}
	default:
		return Line{Kind: KindUnclassified}
	}
}

// IsInjected reports whether the line was inserted by this tool, using the given tag.
func IsInjected(line string, tag string) bool {
	_, comment, found := strings.Cut(line, ";")
	if !found {
		return false
	}
	comment = strings.TrimSpace(comment)
	return comment == tag+":"+MarkerAdjust || comment == tag+":"+MarkerReset
}

// ParseFanSpeed extracts the value of the S word of a fan set command.
// Comments and other words (like the fan index P) are ignored.
func ParseFanSpeed(line string) (float64, error) {
	code, _, _ := strings.Cut(line, ";")
	code = strings.TrimSpace(code)
	if !fanSetRe.MatchString(code) {
		return 0, fmt.Errorf("not a %s command: %q", CommandFanSet, strings.TrimSpace(line))
	}

	for _, word := range splitWords(strings.TrimPrefix(code, CommandFanSet)) {
		if word[0] != 'S' && word[0] != 's' {
			continue
		}
		value, err := strconv.ParseFloat(word[1:], 64)
		if err != nil {
			return 0, fmt.Errorf("invalid S parameter %q: %w", word, err)
		}
		return value, nil
	}

	return 0, ErrMissingSpeed
}

// splitWords splits command parameters into words like "S255".
// Words may be separated by whitespace or directly follow each other ("P1S255").
func splitWords(params string) []string {
	var result []string
	for _, field := range strings.Fields(params) {
		start := 0
		for i := 1; i < len(field); i++ {
			if isWordStart(field, i) {
				result = append(result, field[start:i])
				start = i
			}
		}
		result = append(result, field[start:])
	}
	return result
}

// isWordStart reports whether field[i] starts a new word, the exponent of a number does not
func isWordStart(field string, i int) bool {
	c := field[i]
	if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
		return false
	}
	if (c == 'e' || c == 'E') && '0' <= field[i-1] && field[i-1] <= '9' {
		return false
	}
	return true
}

// FormatSpeed renders a fan speed value in its shortest decimal form
func FormatSpeed(speed float64) string {
	return strconv.FormatFloat(speed, 'f', -1, 64)
}

// FanCommand encodes the given native fan speed [0..255].
// A speed of zero is encoded as a fan stop command, not as a fan set command with S0.
func FanCommand(speed float64) string {
	if speed > 0 {
		return CommandFanSet + " S" + FormatSpeed(speed)
	}
	return CommandFanStop
}

// TaggedFanCommand creates a fan command line, marked with the given tag and marker, without line terminator
func TaggedFanCommand(speed float64, tag string, marker string) string {
	return fmt.Sprintf("%s ;%s:%s", FanCommand(speed), tag, marker)
}

// LineEnding returns the line terminator used by the given line, defaulting to "\n".
func LineEnding(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
