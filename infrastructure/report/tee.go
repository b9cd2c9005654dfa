package report

import (
	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Tee sends every event to each reporter in order.
type Tee []interfaces.Reporter

func (t Tee) StartStep(id, name string) {
	for _, r := range t {
		r.StartStep(id, name)
	}
}

func (t Tee) StopStep() {
	for _, r := range t {
		r.StopStep()
	}
}

func (t Tee) SetStatus(status entities.StepStatus) {
	for _, r := range t {
		r.SetStatus(status)
	}
}

func (t Tee) Attach(artifact []byte, label string) {
	for _, r := range t {
		r.Attach(artifact, label)
	}
}
