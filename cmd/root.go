package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/epfa/cmd/config"
	"github.com/markusressel/epfa/cmd/global"
	"github.com/markusressel/epfa/internal"
	"github.com/markusressel/epfa/internal/configuration"
	"github.com/markusressel/epfa/internal/gcode"
	"github.com/markusressel/epfa/internal/persistence"
	"github.com/markusressel/epfa/internal/transducer"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/markusressel/epfa/internal/util"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "epfa [flags] <source>",
	Short: "Adjusts the fan speed for external perimeters in G-code files.",
	Long: `epfa (External Perimeter Fan Adjust) post-processes G-code written by
PrusaSlicer or Cura and changes the part cooling fan speed while the
outermost wall of each layer is printed. The slicer fan speed is
restored right afterwards. The file is modified in place.

It can be used as a post-processing script, e.g. in PrusaSlicer:
  /path/to/epfa --speed 85 --start-layer 3;`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		setupUi()
		loadConfig()

		return adjust(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/epfa.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	flags := rootCmd.Flags()
	flags.Float64P("speed", "s", transducer.DefaultSpeedPercent, "Fan speed in percent for external perimeters")
	flags.IntP("start-layer", "l", transducer.DefaultStartLayer, "Layer at which to start injecting fan speed adjustments")
	flags.BoolP("interactive", "i", false, "Show settings and feedback, requiring user input")
	flags.BoolP("backup", "b", false, "Keep a copy of the original file")
	flags.BoolP("dry-run", "n", false, "Only report the changes, do not modify the file")
	flags.Bool("strip", false, "Remove fan speed adjustments of a previous run before processing")
	flags.String("tag", transducer.DefaultTag, "Tag used to mark inserted lines")
	flags.Bool("notify", false, "Show a desktop notification when done")

	bindFlag("speed", "speed")
	bindFlag("startLayer", "start-layer")
	bindFlag("interactive", "interactive")
	bindFlag("backup.enabled", "backup")
	bindFlag("dryRun", "dry-run")
	bindFlag("strip", "strip")
	bindFlag("tag", "tag")
	bindFlag("notify", "notify")

	rootCmd.AddCommand(config.Command)
}

func bindFlag(key string, flag string) {
	if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// loadConfig reads the optional config file and validates the result
func loadConfig() {
	configPath := configuration.DetectConfigFile()
	if len(configPath) > 0 {
		ui.Debug("Using configuration file at: %s", configPath)
	}
	configuration.LoadConfig()
	err := configuration.Validate()
	if err != nil {
		ui.FatalWithoutStacktrace("Config Validation Error: %v", err)
	}
}

func adjust(path string) error {
	config := configuration.CurrentConfig
	opts := internal.NewAdjustOptions(path)
	recorder := internal.NewRecorderFromConfig()

	if previous, found := recorder.PreviousRun(path); found && !previous.DryRun {
		ui.Warning("%s has already been processed at %s (%d changes)",
			previous.Path, previous.Time.Format("2006-01-02 15:04:05"), previous.Changes)
	}

	if config.Interactive {
		printSettings(opts)
		ok, err := ui.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ui.Info("Aborted, %s was not modified", path)
			return nil
		}
		ui.Info("working...")
	}

	report, err := internal.AdjustFile(opts)
	recorder.Record(persistence.SourceCli, opts, report, err)
	recorder.ExportStatistics()
	if err != nil {
		return reportError(path, err)
	}

	printReport(report)
	if config.Notify {
		if report.Result.OverrideOpenAtEnd {
			ui.NotifyWarn("epfa", "The file ends while the external perimeter fan speed is still active")
		}
		ui.NotifyInfo("epfa", fmt.Sprintf("Inserted %d lines for fan speed changes", report.Result.Changes))
	}
	if config.Interactive {
		ui.WaitForEnter("press enter to exit")
	}
	return nil
}

func printSettings(opts internal.AdjustOptions) {
	config := opts.TransducerConfig()
	ui.Section("Settings")
	ui.KeyValues([][2]string{
		{"External Perimeter Fan", fmt.Sprintf("%.1f%% (%s)", util.PwmToPercent(config.TargetSpeed), gcode.FanCommand(config.TargetSpeed))},
		{"Starting at layer", fmt.Sprintf("%d", config.StartLayer)},
		{"Source file", opts.Path},
		{"Backup", fmt.Sprintf("%t", opts.Backup)},
		{"Dry run", fmt.Sprintf("%t", opts.DryRun)},
	})
}

func printReport(report internal.AdjustReport) {
	result := report.Result
	tag := report.Config.Tag

	if result.InjectedSeen > 0 && result.InjectedRemoved == 0 {
		ui.Warning("%s already contains %d lines tagged with ;%s, use --strip to replace them", report.Path, result.InjectedSeen, tag)
	}
	if result.InjectedRemoved > 0 {
		ui.Info("Removed %d lines of a previous run", result.InjectedRemoved)
	}
	if result.OverrideOpenAtEnd {
		ui.Warning("The file ends while the external perimeter fan speed is still active")
	}
	if len(report.BackupPath) > 0 {
		ui.Info("Original saved as %s", report.BackupPath)
	}

	if report.Written {
		ui.Success("Inserted %d lines for fan speed changes", result.Changes)
	} else {
		ui.Success("Dry run: would insert %d lines for fan speed changes", result.Changes)
	}
	ui.Debug("Processed %d layers, %d lines", result.Layers, len(result.Lines))
}

func reportError(path string, err error) error {
	config := configuration.CurrentConfig
	if transducer.IsMalformedFanCommand(err) {
		err = fmt.Errorf("%w, %s was not modified", err, path)
	}
	if config.Notify {
		ui.NotifyError("epfa", err.Error())
	}
	return err
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		ui.Error("%v", err)
		os.Exit(1)
	}
}
