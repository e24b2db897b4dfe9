package cmd

import (
	"fmt"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/epfa/internal"
	"github.com/markusressel/epfa/internal/configuration"
	"github.com/markusressel/epfa/internal/gcode"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/markusressel/epfa/internal/util"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <source>",
	Short: "Print statistics about a G-code file without modifying it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()
		loadConfig()

		report, err := internal.Inspect(args[0], configuration.CurrentConfig.Tag)
		if err != nil {
			return err
		}

		err = printTable(
			[]string{"File", "Lines", "Layers", "External perimeters", "Injected"},
			[][]string{{
				report.Path,
				strconv.Itoa(report.Lines),
				strconv.Itoa(report.Layers),
				strconv.Itoa(report.OuterWalls),
				strconv.Itoa(report.Injected()),
			}},
		)
		if err != nil {
			return err
		}

		var kindRows [][]string
		for _, kind := range util.SortedKeys(report.Kinds) {
			kindRows = append(kindRows, []string{kind.String(), strconv.Itoa(report.Kinds[kind])})
		}
		if err = printTable([]string{"Kind", "Count"}, kindRows); err != nil {
			return err
		}

		if len(report.Types) > 0 {
			var typeRows [][]string
			for _, name := range util.SortedKeys(report.Types) {
				outer := ""
				if gcode.IsOuterWallType(name) {
					outer = "x"
				}
				typeRows = append(typeRows, []string{name, strconv.Itoa(report.Types[name]), outer})
			}
			if err = printTable([]string{"Type", "Count", "Outer wall"}, typeRows); err != nil {
				return err
			}
		}

		if report.Injected() > 0 {
			ui.Warning("This file has already been processed, use --strip to replace the previous adjustments")
		}

		if len(report.FanSpeedByLayer) < 2 {
			return nil
		}
		printText(fanSpeedGraph(report))

		return nil
	},
}

// fanSpeedGraph plots the fan speed in percent at the start of each layer
func fanSpeedGraph(report internal.InspectReport) string {
	var values []float64
	for _, pwm := range util.ValuesByKey(report.FanSpeedByLayer) {
		values = append(values, util.PwmToPercent(pwm))
	}
	caption := fmt.Sprintf("Fan speed %% by layer (1..%d), average %.1f%%", report.Layers, util.Avg(values))
	return asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
