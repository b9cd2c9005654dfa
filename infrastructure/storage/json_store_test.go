package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ui_automation/domain/entities"
)

func TestRunRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	store, err := NewJSONStore(dir)
	require.NoError(t, err)

	run, err := store.LoadRun()
	require.NoError(t, err)
	assert.Nil(t, run)

	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	want := &entities.RunRecord{
		ID:        "run-1",
		StartedAt: started,
		Steps: []*entities.StepRecord{{
			ID:        "s1",
			Name:      "Find 'Eagle' in list 'Birds'",
			Status:    entities.StepStatusFailed,
			StartedAt: started,
			StoppedAt: started.Add(time.Second),
			Children: []*entities.StepRecord{{
				ID: "s2", Name: "Count items of list 'Birds'", Status: entities.StepStatusPassed,
				StartedAt: started, StoppedAt: started,
			}},
			Attachments: []entities.Attachment{{Label: "screenshot", Path: "s1_screenshot.png", Size: 3}},
		}},
	}
	require.NoError(t, store.SaveRun(want))

	got, err := store.LoadRun()
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.True(t, got.Failed())
	assert.Equal(t, time.Second, got.Steps[0].Duration())
}

func TestHistory(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	require.NoError(t, err)

	history, err := store.LoadHistory()
	require.NoError(t, err)
	assert.Empty(t, history)

	want := []entities.ActionResult{
		{Action: entities.Action{Type: entities.ActionClick, Target: "login"}, Success: true},
		{Action: entities.Action{Type: entities.ActionGet, Target: "birds", Arg: "Dodo"}, Error: "not found"},
	}
	require.NoError(t, store.SaveHistory(want))

	history, err = store.LoadHistory()
	require.NoError(t, err)
	assert.Equal(t, want, history)
}

func TestLoadRunRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, runFile), []byte("{"), 0644))

	_, err = store.LoadRun()
	assert.Error(t, err)
}
