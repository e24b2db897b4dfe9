package cmd

import (
	"os"
	"testing"

	"github.com/markusressel/epfa/cmd/global"
	"github.com/markusressel/epfa/internal"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Example_printText() {
	pterm.SetDefaultOutput(os.Stdout)
	pterm.DisableStyling()

	printText("Fan speed % by layer (1..5), average 50.0%")
	// Output:
	// Fan speed % by layer (1..5), average 50.0%
}

func TestRenderTable_KeepsPercent(t *testing.T) {
	// GIVEN
	global.NoColor = true
	defer func() { global.NoColor = false }()

	// WHEN
	text, err := renderTable(
		[]string{"File", "Speed"},
		[][]string{{"/tmp/100%_benchy.gcode", "85.0%"}},
	)

	// THEN
	require.NoError(t, err)
	assert.Contains(t, text, "/tmp/100%_benchy.gcode")
	assert.Contains(t, text, "85.0%")
}

func TestFanSpeedGraph_Caption(t *testing.T) {
	// GIVEN
	report := internal.InspectReport{
		Layers:          4,
		FanSpeedByLayer: map[int]float64{1: 0, 2: 0, 3: 255, 4: 255},
	}

	// WHEN
	graph := fanSpeedGraph(report)

	// THEN
	assert.Contains(t, graph, "Fan speed % by layer (1..4), average 50.0%")
}
