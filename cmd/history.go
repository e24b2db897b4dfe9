package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/markusressel/epfa/internal"
	"github.com/markusressel/epfa/internal/configuration"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/spf13/cobra"
)

var historyLimit int
var historyClear bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the most recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()
		loadConfig()

		if !configuration.CurrentConfig.History.Enabled {
			return errors.New("run history is disabled, enable it using history.enabled")
		}

		history := internal.NewRecorderFromConfig().History()
		if history == nil {
			return fmt.Errorf("run history at %s is not available", configuration.CurrentConfig.History.DbPath)
		}

		if historyClear {
			if err := history.DeleteRuns(); err != nil {
				return err
			}
			ui.Success("Run history cleared")
			return nil
		}

		runs, err := history.LoadRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) <= 0 {
			ui.Info("No runs recorded yet")
			return nil
		}

		var rows [][]string
		for _, run := range runs {
			dryRun := ""
			if run.DryRun {
				dryRun = "x"
			}
			rows = append(rows, []string{
				strconv.FormatUint(run.Id, 10),
				run.Time.Format("2006-01-02 15:04:05"),
				run.Source,
				run.Path,
				fmt.Sprintf("%.1f%%", run.Speed),
				strconv.Itoa(run.StartLayer),
				strconv.Itoa(run.Layers),
				strconv.Itoa(run.Changes),
				strconv.Itoa(run.Stripped),
				dryRun,
			})
		}
		return printTable(
			[]string{"ID", "Time", "Source", "File", "Speed", "Start", "Layers", "Changes", "Stripped", "Dry run"},
			rows,
		)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to print, 0 prints all")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Delete all recorded runs")
	rootCmd.AddCommand(historyCmd)
}
