package internal

import (
	"fmt"

	"github.com/markusressel/epfa/internal/gcode"
	"github.com/markusressel/epfa/internal/transducer"
	"github.com/markusressel/epfa/internal/util"
)

// InspectReport summarizes a G-code file without modifying it
type InspectReport struct {
	Path  string
	Lines int
	// Layers is the final value of the layer counter, which starts at 1
	Layers int
	Kinds  map[gcode.Kind]int
	// Types counts the region type annotations by name
	Types map[string]int
	// OuterWalls is the number of outer wall annotations
	OuterWalls int
	// FanSpeedByLayer is the fan speed [0..255] at the start of each layer
	FanSpeedByLayer map[int]float64

	injected int
}

// Inspect classifies all lines of the given file
func Inspect(path string, tag string) (InspectReport, error) {
	resolved, err := util.ExpandPath(path)
	if err != nil {
		return InspectReport{}, fmt.Errorf("%w: %w", transducer.ErrSourceUnavailable, err)
	}
	lines, err := util.ReadLines(resolved)
	if err != nil {
		return InspectReport{}, fmt.Errorf("%w: %w", transducer.ErrSourceUnavailable, err)
	}
	report, err := InspectLines(lines, tag)
	report.Path = resolved
	return report, err
}

func InspectLines(lines []string, tag string) (InspectReport, error) {
	report := InspectReport{
		Lines:           len(lines),
		Kinds:           map[gcode.Kind]int{},
		Types:           map[string]int{},
		FanSpeedByLayer: map[int]float64{1: 0},
	}

	layer := 1
	fanSpeed := 0.0
	for i, line := range lines {
		if gcode.IsInjected(line, tag) {
			report.injected++
		}
		classified := gcode.Classify(line)
		report.Kinds[classified.Kind]++

		switch classified.Kind {
		case gcode.KindLayerChange:
			layer++
			report.FanSpeedByLayer[layer] = fanSpeed
		case gcode.KindFanSet:
			speed, err := gcode.ParseFanSpeed(line)
			if err != nil {
				return report, &transducer.MalformedFanCommandError{LineNumber: i + 1, Line: line, Err: err}
			}
			fanSpeed = speed
		case gcode.KindFanStop:
			fanSpeed = 0
		case gcode.KindType:
			report.Types[classified.TypeName]++
			if classified.IsOuterWall() {
				report.OuterWalls++
			}
		}
	}
	report.Layers = layer

	return report, nil
}

// Injected returns the number of lines inserted by a previous run
func (r InspectReport) Injected() int {
	return r.injected
}
