package entities

import "time"

// StepStatus represents the outcome of a report step
type StepStatus string

const (
	StepStatusRunning StepStatus = "running"
	StepStatusPassed  StepStatus = "passed"
	StepStatusFailed  StepStatus = "failed"
)

// Attachment is an artifact attached to a step.
type Attachment struct {
	Label string `json:"label"`
	Path  string `json:"path,omitempty"`
	Size  int    `json:"size"`
}

// StepRecord is one node of the reported step tree.
type StepRecord struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Status      StepStatus    `json:"status"`
	StartedAt   time.Time     `json:"started_at"`
	StoppedAt   time.Time     `json:"stopped_at,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
	Children    []*StepRecord `json:"children,omitempty"`
}

// Duration is zero while the step is still running.
func (s *StepRecord) Duration() time.Duration {
	if s.StoppedAt.IsZero() {
		return 0
	}
	return s.StoppedAt.Sub(s.StartedAt)
}

// RunRecord is the persisted result of one run.
type RunRecord struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Steps     []*StepRecord `json:"steps"`
}

// Failed reports whether any step in the run failed.
func (r *RunRecord) Failed() bool {
	var walk func([]*StepRecord) bool
	walk = func(steps []*StepRecord) bool {
		for _, s := range steps {
			if s.Status == StepStatusFailed || walk(s.Children) {
				return true
			}
		}
		return false
	}
	return walk(r.Steps)
}
