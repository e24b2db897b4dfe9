package internal

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/markusressel/epfa/internal/persistence"
	"github.com/markusressel/epfa/internal/statistics"
	"github.com/markusressel/epfa/internal/transducer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `;LAYER_CHANGE
M106 S140
;TYPE:Perimeter
G1 X1 E1
;TYPE:External perimeter
G1 X2 E2
;TYPE:Solid infill
G1 X3 E3
`

const sampleAdjusted = `;LAYER_CHANGE
M106 S140
;TYPE:Perimeter
G1 X1 E1
M106 S255 ;EPFA:Adjust
;TYPE:External perimeter
G1 X2 E2
M106 S140 ;EPFA:Reset
;TYPE:Solid infill
G1 X3 E3
`

func writeSample(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "part.gcode")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func createOptions(path string) AdjustOptions {
	return AdjustOptions{
		Path:         path,
		SpeedPercent: 100,
		StartLayer:   2,
		Tag:          "EPFA",
		BackupSuffix: ".bak",
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAdjustFile(t *testing.T) {
	// GIVEN
	path := writeSample(t, sample)
	opts := createOptions(path)

	// WHEN
	report, err := AdjustFile(opts)

	// THEN
	require.NoError(t, err)
	assert.True(t, report.Written)
	assert.Equal(t, path, report.Path)
	assert.Equal(t, 2, report.Result.Changes)
	assert.Empty(t, report.BackupPath)
	assert.Equal(t, sampleAdjusted, readFile(t, path))
}

func TestAdjustFile_Backup(t *testing.T) {
	// GIVEN
	path := writeSample(t, sample)
	opts := createOptions(path)
	opts.Backup = true

	// WHEN
	report, err := AdjustFile(opts)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, path+".bak", report.BackupPath)
	assert.Equal(t, sample, readFile(t, report.BackupPath))
	assert.Equal(t, sampleAdjusted, readFile(t, path))
}

func TestAdjustFile_DryRun(t *testing.T) {
	// GIVEN
	path := writeSample(t, sample)
	opts := createOptions(path)
	opts.DryRun = true
	opts.Backup = true

	// WHEN
	report, err := AdjustFile(opts)

	// THEN
	require.NoError(t, err)
	assert.False(t, report.Written)
	assert.Equal(t, 2, report.Result.Changes)
	assert.Equal(t, sample, readFile(t, path))
	_, err = os.Stat(path + ".bak")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAdjustFile_SecondRunWithStrip(t *testing.T) {
	// GIVEN
	path := writeSample(t, sample)
	opts := createOptions(path)
	_, err := AdjustFile(opts)
	require.NoError(t, err)

	opts.Strip = true

	// WHEN
	report, err := AdjustFile(opts)

	// THEN
	require.NoError(t, err)
	assert.Equal(t, 2, report.Result.InjectedRemoved)
	assert.Equal(t, sampleAdjusted, readFile(t, path))
}

func TestAdjustFile_MalformedFanCommandKeepsOriginal(t *testing.T) {
	// GIVEN
	content := ";LAYER_CHANGE\nM106 S\n;TYPE:External perimeter\n"
	path := writeSample(t, content)
	opts := createOptions(path)
	opts.Backup = true

	// WHEN
	_, err := AdjustFile(opts)

	// THEN
	assert.True(t, transducer.IsMalformedFanCommand(err))
	assert.False(t, errors.Is(err, transducer.ErrSinkUnavailable))
	assert.Equal(t, content, readFile(t, path))
	_, err = os.Stat(path + ".bak")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAdjustFile_SourceUnavailable(t *testing.T) {
	// GIVEN
	opts := createOptions(filepath.Join(t.TempDir(), "missing.gcode"))

	// WHEN
	_, err := AdjustFile(opts)

	// THEN
	assert.ErrorIs(t, err, transducer.ErrSourceUnavailable)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, transducer.IsMalformedFanCommand(err))
}

func TestAdjustFile_SinkUnavailable(t *testing.T) {
	// GIVEN
	path := writeSample(t, sample)
	opts := createOptions(path)
	opts.Backup = true
	// a directory with the backup name cannot be replaced by a file
	require.NoError(t, os.Mkdir(path+".bak", 0755))
	require.NoError(t, os.WriteFile(filepath.Join(path+".bak", "keep"), []byte("x"), 0644))

	// WHEN
	_, err := AdjustFile(opts)

	// THEN
	assert.ErrorIs(t, err, transducer.ErrSinkUnavailable)
	assert.Equal(t, sample, readFile(t, path))
}

func TestAdjustOptions_TransducerConfig(t *testing.T) {
	// GIVEN
	opts := createOptions("part.gcode")
	opts.SpeedPercent = 130
	opts.Tag = ""
	opts.Strip = true

	// WHEN
	config := opts.TransducerConfig()

	// THEN
	assert.Equal(t, 255.0, config.TargetSpeed)
	assert.Equal(t, 2, config.StartLayer)
	assert.Equal(t, transducer.DefaultTag, config.Tag)
	assert.True(t, config.StripInjected)
}

func TestRecorder_Record(t *testing.T) {
	// GIVEN
	history := persistence.NewPersistence(filepath.Join(t.TempDir(), "epfa.db"))
	require.NoError(t, history.Init())
	recorder := NewRecorder(history, statistics.NewAdjustStatistics())

	path := writeSample(t, sample)
	opts := createOptions(path)
	report, err := AdjustFile(opts)
	require.NoError(t, err)

	// WHEN
	recorder.Record(persistence.SourceCli, opts, report, err)

	// THEN
	record, found := recorder.PreviousRun(path)
	assert.True(t, found)
	assert.Equal(t, path, record.Path)
	assert.Equal(t, 2, record.Changes)
	assert.Equal(t, 255.0, record.TargetPwm)
	assert.Equal(t, persistence.SourceCli, record.Source)
	assert.False(t, record.DryRun)
}

func TestRecorder_RecordFailedRun(t *testing.T) {
	// GIVEN
	history := persistence.NewPersistence(filepath.Join(t.TempDir(), "epfa.db"))
	require.NoError(t, history.Init())
	recorder := NewRecorder(history, statistics.NewAdjustStatistics())
	path := filepath.Join(t.TempDir(), "missing.gcode")
	opts := createOptions(path)
	report, err := AdjustFile(opts)
	require.Error(t, err)

	// WHEN
	recorder.Record(persistence.SourceCli, opts, report, err)

	// THEN
	_, found := recorder.PreviousRun(path)
	assert.False(t, found)
}

func TestRecorder_WithoutHistory(t *testing.T) {
	// GIVEN
	recorder := NewRecorder(nil, statistics.NewAdjustStatistics())

	// WHEN
	recorder.Record(persistence.SourceCli, createOptions("part.gcode"), AdjustReport{}, nil)
	_, found := recorder.PreviousRun("part.gcode")

	// THEN
	assert.False(t, found)
	assert.Nil(t, recorder.History())
}
