package internal

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/markusressel/epfa/internal/configuration"
	"github.com/markusressel/epfa/internal/persistence"
	"github.com/markusressel/epfa/internal/statistics"
	"github.com/markusressel/epfa/internal/transducer"
	"github.com/markusressel/epfa/internal/ui"
	"github.com/markusressel/epfa/internal/util"
)

type AdjustOptions struct {
	Path         string
	SpeedPercent float64
	StartLayer   int
	Tag          string
	Strip        bool
	DryRun       bool
	Backup       bool
	BackupSuffix string
}

// NewAdjustOptions creates options for the given file from the current configuration
func NewAdjustOptions(path string) AdjustOptions {
	config := configuration.CurrentConfig
	return AdjustOptions{
		Path:         path,
		SpeedPercent: config.Speed.Float(),
		StartLayer:   config.StartLayer,
		Tag:          config.Tag,
		Strip:        config.Strip,
		DryRun:       config.DryRun,
		Backup:       config.Backup.Enabled,
		BackupSuffix: config.Backup.Suffix,
	}
}

func (o AdjustOptions) TransducerConfig() transducer.Config {
	config := transducer.NewConfig(o.SpeedPercent, o.StartLayer)
	if len(o.Tag) > 0 {
		config.Tag = o.Tag
	}
	config.StripInjected = o.Strip
	return config
}

type AdjustReport struct {
	// Path is the resolved path of the processed file
	Path       string
	BackupPath string
	Config     transducer.Config
	Result     transducer.Result
	// Written is false for dry runs
	Written bool
}

// AdjustFile reads the whole file, runs the transducer and replaces the file with the result.
// The original file is only touched after the transform succeeded, and is replaced atomically.
func AdjustFile(opts AdjustOptions) (report AdjustReport, err error) {
	report.Config = opts.TransducerConfig()

	path, err := util.ExpandPath(opts.Path)
	if err != nil {
		return report, fmt.Errorf("%w: %w", transducer.ErrSourceUnavailable, err)
	}
	report.Path = path

	lines, err := util.ReadLines(path)
	if err != nil {
		return report, fmt.Errorf("%w: %w", transducer.ErrSourceUnavailable, err)
	}
	ui.Debug("Read %d lines from %s", len(lines), path)

	result, err := transducer.Process(report.Config, lines)
	if err != nil {
		return report, err
	}
	report.Result = result

	if opts.DryRun {
		return report, nil
	}

	if opts.Backup {
		report.BackupPath = path + opts.BackupSuffix
		err = util.CopyFileAtomic(path, report.BackupPath)
		if err != nil {
			return report, fmt.Errorf("%w: cannot create backup %s: %w", transducer.ErrSinkUnavailable, report.BackupPath, err)
		}
		ui.Debug("Created backup at %s", report.BackupPath)
	}

	err = util.WriteLinesAtomic(path, result.Lines)
	if err != nil {
		return report, fmt.Errorf("%w: %w", transducer.ErrSinkUnavailable, err)
	}
	report.Written = true

	return report, nil
}

// Recorder keeps track of runs in the history database and the prometheus statistics
type Recorder struct {
	history    persistence.Persistence
	statistics *statistics.AdjustStatistics
}

// NewRecorder creates a Recorder, history may be nil if disabled
func NewRecorder(history persistence.Persistence, stats *statistics.AdjustStatistics) *Recorder {
	return &Recorder{
		history:    history,
		statistics: stats,
	}
}

// NewRecorderFromConfig creates a Recorder based on the current configuration
func NewRecorderFromConfig() *Recorder {
	var history persistence.Persistence
	historyConfig := configuration.CurrentConfig.History
	if historyConfig.Enabled {
		dbPath, err := util.ExpandPath(historyConfig.DbPath)
		if err != nil {
			dbPath = historyConfig.DbPath
		}
		history = persistence.NewPersistence(dbPath)
		if err := history.Init(); err != nil {
			ui.Warning("Unable to initialize run history at %s: %v", dbPath, err)
			history = nil
		}
	}
	return NewRecorder(history, statistics.NewAdjustStatistics())
}

func (r *Recorder) History() persistence.Persistence {
	return r.history
}

func (r *Recorder) Statistics() *statistics.AdjustStatistics {
	return r.statistics
}

// PreviousRun returns the last recorded run of the given file, if any
func (r *Recorder) PreviousRun(path string) (persistence.RunRecord, bool) {
	if r.history == nil {
		return persistence.RunRecord{}, false
	}
	resolved, err := util.ExpandPath(path)
	if err != nil {
		resolved = path
	}
	record, err := r.history.LoadLastRun(resolved)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			ui.Warning("Unable to read run history: %v", err)
		}
		return record, false
	}
	return record, true
}

// Record stores the outcome of a run. Failures are only logged, a run is never failed because of them.
func (r *Recorder) Record(source string, opts AdjustOptions, report AdjustReport, runErr error) {
	if r.statistics != nil {
		r.statistics.Record(source, report.Result, runErr)
	}

	if r.history == nil || runErr != nil {
		return
	}

	record := persistence.RunRecord{
		Path:       report.Path,
		Time:       time.Now(),
		Speed:      opts.SpeedPercent,
		TargetPwm:  report.Config.TargetSpeed,
		StartLayer: report.Config.StartLayer,
		Lines:      len(report.Result.Lines),
		Layers:     report.Result.Layers,
		Changes:    report.Result.Changes,
		Stripped:   report.Result.InjectedRemoved,
		DryRun:     !report.Written,
		Source:     source,
	}
	if _, err := r.history.SaveRun(record); err != nil {
		ui.Warning("Unable to save run history: %v", err)
	}
}

// ExportStatistics writes the statistics to the configured textfile, if any
func (r *Recorder) ExportStatistics() {
	path := configuration.CurrentConfig.Statistics.Textfile
	if len(path) <= 0 || r.statistics == nil {
		return
	}
	path, err := util.ExpandPath(path)
	if err != nil {
		ui.Warning("Invalid statistics textfile path: %v", err)
		return
	}
	err = statistics.WriteTextfile(path, statistics.NewAdjustCollector(r.statistics))
	if err != nil {
		ui.Warning("Unable to write statistics to %s: %v", path, err)
	}
}
