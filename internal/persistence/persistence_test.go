package persistence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPersistence(t *testing.T) Persistence {
	dbPath := filepath.Join(t.TempDir(), "history", "epfa.db")
	p := NewPersistence(dbPath)
	require.NoError(t, p.Init())
	return p
}

func createRecord(path string, changes int) RunRecord {
	return RunRecord{
		Path:       path,
		Time:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Speed:      100,
		TargetPwm:  255,
		StartLayer: 4,
		Lines:      1000,
		Layers:     50,
		Changes:    changes,
		Source:     "cli",
	}
}

func TestPersistence_Init_CreatesDirectory(t *testing.T) {
	// GIVEN
	dir := filepath.Join(t.TempDir(), "a", "b")
	p := NewPersistence(filepath.Join(dir, "epfa.db"))

	// WHEN
	err := p.Init()

	// THEN
	assert.NoError(t, err)
	info, err := os.Stat(dir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPersistence_SaveRun(t *testing.T) {
	// GIVEN
	p := createPersistence(t)

	// WHEN
	first, err := p.SaveRun(createRecord("/prints/a.gcode", 10))
	assert.NoError(t, err)
	second, err := p.SaveRun(createRecord("/prints/b.gcode", 20))
	assert.NoError(t, err)

	// THEN
	assert.Equal(t, uint64(1), first)
	assert.Equal(t, uint64(2), second)
}

func TestPersistence_LoadRuns_NewestFirst(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	for i := 1; i <= 3; i++ {
		_, err := p.SaveRun(createRecord("/prints/a.gcode", i))
		require.NoError(t, err)
	}

	// WHEN
	runs, err := p.LoadRuns(0)

	// THEN
	assert.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, uint64(3), runs[0].Id)
	assert.Equal(t, 3, runs[0].Changes)
	assert.Equal(t, uint64(1), runs[2].Id)
	assert.Equal(t, "cli", runs[2].Source)
	assert.True(t, runs[2].Time.Equal(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)))
}

func TestPersistence_LoadRuns_Limit(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	for i := 1; i <= 5; i++ {
		_, err := p.SaveRun(createRecord("/prints/a.gcode", i))
		require.NoError(t, err)
	}

	// WHEN
	runs, err := p.LoadRuns(2)

	// THEN
	assert.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 5, runs[0].Changes)
	assert.Equal(t, 4, runs[1].Changes)
}

func TestPersistence_LoadRuns_Empty(t *testing.T) {
	// GIVEN
	p := createPersistence(t)

	// WHEN
	runs, err := p.LoadRuns(10)

	// THEN
	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestPersistence_LoadLastRun(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	_, _ = p.SaveRun(createRecord("/prints/a.gcode", 1))
	_, _ = p.SaveRun(createRecord("/prints/b.gcode", 2))
	_, _ = p.SaveRun(createRecord("/prints/a.gcode", 3))

	// WHEN
	record, err := p.LoadLastRun("/prints/a.gcode")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), record.Id)
	assert.Equal(t, 3, record.Changes)
}

func TestPersistence_LoadLastRun_Unknown(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	_, _ = p.SaveRun(createRecord("/prints/a.gcode", 1))

	// WHEN
	_, err := p.LoadLastRun("/prints/unknown.gcode")

	// THEN
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPersistence_DeleteRuns(t *testing.T) {
	// GIVEN
	p := createPersistence(t)
	_, _ = p.SaveRun(createRecord("/prints/a.gcode", 1))

	// WHEN
	err := p.DeleteRuns()

	// THEN
	assert.NoError(t, err)
	runs, err := p.LoadRuns(0)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	_, err = p.LoadLastRun("/prints/a.gcode")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPersistence_DeleteRuns_Empty(t *testing.T) {
	// GIVEN
	p := createPersistence(t)

	// WHEN
	err := p.DeleteRuns()

	// THEN
	assert.NoError(t, err)
}
