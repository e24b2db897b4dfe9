package internal

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/markusressel/epfa/internal/gcode"
	"github.com/markusressel/epfa/internal/transducer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	// GIVEN
	path := writeSample(t, sample)

	// WHEN
	report, err := Inspect(path, "EPFA")

	// THEN
	require.NoError(t, err)
	assert.Equal(t, path, report.Path)
	assert.Equal(t, 8, report.Lines)
	assert.Equal(t, 2, report.Layers)
	assert.Equal(t, 1, report.OuterWalls)
	assert.Equal(t, 0, report.Injected())
	assert.Equal(t, 3, report.Kinds[gcode.KindType])
	assert.Equal(t, 1, report.Types["External perimeter"])
	assert.Equal(t, 1, report.Types["Solid infill"])
	// the fan is set after the layer change
	assert.Equal(t, map[int]float64{1: 0, 2: 0}, report.FanSpeedByLayer)
}

func TestInspectLines_FanSpeedByLayer(t *testing.T) {
	// GIVEN
	lines := strings.SplitAfter(`;LAYER:0
M106 S100
;LAYER:1
M106 S200.5
;LAYER:2
M107
;LAYER:3
`, "\n")

	// WHEN
	report, err := InspectLines(lines, "EPFA")

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 5, report.Layers)
	assert.Equal(t, map[int]float64{1: 0, 2: 0, 3: 100, 4: 200.5, 5: 0}, report.FanSpeedByLayer)
}

func TestInspect_AlreadyAdjusted(t *testing.T) {
	// GIVEN
	path := writeSample(t, sampleAdjusted)

	// WHEN
	report, err := Inspect(path, "EPFA")

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 2, report.Injected())
	// injected lines are still fan commands
	assert.Equal(t, 3, report.Kinds[gcode.KindFanSet])
}

func TestInspect_Malformed(t *testing.T) {
	// GIVEN
	path := writeSample(t, "G28\nM106 Sabc\n")

	// WHEN
	_, err := Inspect(path, "EPFA")

	// THEN
	assert.True(t, transducer.IsMalformedFanCommand(err))
}

func TestInspect_Missing(t *testing.T) {
	// WHEN
	_, err := Inspect(filepath.Join(t.TempDir(), "missing.gcode"), "EPFA")

	// THEN
	assert.ErrorIs(t, err, transducer.ErrSourceUnavailable)
}
