package transducer

import (
	"github.com/markusressel/epfa/internal/gcode"
	"github.com/markusressel/epfa/internal/util"
)

const (
	DefaultSpeedPercent = 100.0
	DefaultStartLayer   = 4
	DefaultTag          = "EPFA"
)

// Config is immutable for the duration of a run
type Config struct {
	// TargetSpeed is the native fan speed [0..255] used while printing the outer wall
	TargetSpeed float64
	// StartLayer is the first (1-based) layer that is adjusted
	StartLayer int
	// Tag marks inserted lines, e.g. "M106 S255 ;EPFA:Adjust"
	Tag string
	// StripInjected drops lines inserted by a previous run before they are classified.
	// Otherwise they are treated like any other fan command.
	StripInjected bool
}

// NewConfig creates a Config from a fan speed percentage, which is clamped to the native range
func NewConfig(speedPercent float64, startLayer int) Config {
	return Config{
		TargetSpeed: util.PercentToPwm(speedPercent),
		StartLayer:  startLayer,
		Tag:         DefaultTag,
	}
}

// ScanState is the state carried from one line to the next
type ScanState struct {
	CurrentLayer          int
	LastCommandedFanSpeed float64
	OverrideActive        bool
	ChangeCount           int
}

func NewScanState() ScanState {
	return ScanState{
		CurrentLayer:          1,
		LastCommandedFanSpeed: 0,
		OverrideActive:        false,
		ChangeCount:           0,
	}
}

type Result struct {
	Lines []string

	// Changes is the number of inserted lines
	Changes int
	Adjusts int
	Resets  int
	// Layers is the final value of the layer counter, which starts at 1
	Layers int

	// InjectedSeen counts lines tagged by a previous run, InjectedRemoved those dropped by StripInjected
	InjectedSeen    int
	InjectedRemoved int

	// OverrideOpenAtEnd is true if the input ended while the override was active.
	// No reset is appended in that case.
	OverrideOpenAtEnd bool
}

// Transducer rewrites a sequence of G-code lines so that the outer wall of each
// layer is printed with a fixed fan speed.
type Transducer struct {
	config Config
	state  ScanState
	result Result
}

func New(config Config) *Transducer {
	if len(config.Tag) <= 0 {
		config.Tag = DefaultTag
	}
	return &Transducer{
		config: config,
		state:  NewScanState(),
	}
}

// Process runs the transform over all lines and returns the output.
// On error no partial output is returned.
func Process(config Config, lines []string) (Result, error) {
	t := New(config)
	for i, line := range lines {
		if err := t.Feed(i+1, line); err != nil {
			return Result{}, err
		}
	}
	return t.Finish(), nil
}

// Feed consumes a single line. lineNumber is only used for error reporting.
// Lines of a previous run are classified like any other line, unless StripInjected drops them.
func (t *Transducer) Feed(lineNumber int, line string) error {
	if gcode.IsInjected(line, t.config.Tag) {
		t.result.InjectedSeen++
		if t.config.StripInjected {
			t.result.InjectedRemoved++
			return nil
		}
	}

	classified := gcode.Classify(line)
	switch classified.Kind {
	case gcode.KindLayerChange:
		t.state.CurrentLayer++
	case gcode.KindFanSet:
		speed, err := gcode.ParseFanSpeed(line)
		if err != nil {
			return &MalformedFanCommandError{LineNumber: lineNumber, Line: line, Err: err}
		}
		t.state.LastCommandedFanSpeed = speed
	case gcode.KindFanStop:
		t.state.LastCommandedFanSpeed = 0
	case gcode.KindType:
		if t.state.CurrentLayer >= t.config.StartLayer {
			t.handleType(classified, gcode.LineEnding(line))
		}
	}

	t.result.Lines = append(t.result.Lines, line)
	return nil
}

func (t *Transducer) handleType(line gcode.Line, lineEnding string) {
	if line.IsOuterWall() {
		if t.state.OverrideActive {
			return
		}
		t.insert(t.config.TargetSpeed, gcode.MarkerAdjust, lineEnding)
		t.state.OverrideActive = true
		t.result.Adjusts++
	} else if t.state.OverrideActive {
		t.insert(t.state.LastCommandedFanSpeed, gcode.MarkerReset, lineEnding)
		t.state.OverrideActive = false
		t.result.Resets++
	}
}

func (t *Transducer) insert(speed float64, marker string, lineEnding string) {
	t.result.Lines = append(t.result.Lines, gcode.TaggedFanCommand(speed, t.config.Tag, marker)+lineEnding)
	t.state.ChangeCount++
}

// State returns a copy of the current scan state
func (t *Transducer) State() ScanState {
	return t.state
}

// Finish ends the scan and returns the result. The transducer must not be fed afterwards.
func (t *Transducer) Finish() Result {
	result := t.result
	result.Changes = t.state.ChangeCount
	result.Layers = t.state.CurrentLayer
	result.OverrideOpenAtEnd = t.state.OverrideActive
	return result
}
