package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ui_automation/domain/entities"
)

const (
	runFile     = "run.json"
	historyFile = "history.json"
)

// JSONStore keeps the last run and the session history as JSON files in one
// directory.
type JSONStore struct {
	runPath     string
	historyPath string
}

// NewJSONStore - creates the results directory when missing
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create results directory: %w", err)
	}
	return &JSONStore{
		runPath:     filepath.Join(dir, runFile),
		historyPath: filepath.Join(dir, historyFile),
	}, nil
}

// SaveRun - writes the run tree
func (s *JSONStore) SaveRun(run *entities.RunRecord) error {
	return writeJSON(s.runPath, run)
}

// LoadRun - reads the last run, nil when none was saved
func (s *JSONStore) LoadRun() (*entities.RunRecord, error) {
	var run entities.RunRecord
	ok, err := readJSON(s.runPath, &run)
	if err != nil || !ok {
		return nil, err
	}
	return &run, nil
}

// SaveHistory - writes the session action history
func (s *JSONStore) SaveHistory(history []entities.ActionResult) error {
	return writeJSON(s.historyPath, history)
}

// LoadHistory - reads the session action history
func (s *JSONStore) LoadHistory() ([]entities.ActionResult, error) {
	history := []entities.ActionResult{}
	if _, err := readJSON(s.historyPath, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// writeJSON replaces path atomically.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return true, nil
}
