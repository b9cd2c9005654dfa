package interfaces

import "ui_automation/domain/entities"

// StepStore persists reported runs
type StepStore interface {
	// SaveRun stores a finished run, replacing the previous one
	SaveRun(run *entities.RunRecord) error

	// LoadRun loads the last stored run; nil when none was stored
	LoadRun() (*entities.RunRecord, error)
}

// HistoryStore persists the actions executed by a session
type HistoryStore interface {
	SaveHistory(history []entities.ActionResult) error
	LoadHistory() ([]entities.ActionResult, error)
}
