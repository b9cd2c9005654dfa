package interfaces

import "ui_automation/domain/entities"

// Reporter is the step-reporting sink.
type Reporter interface {
	// StartStep opens a step nested under the current one.
	StartStep(id, name string)

	// StopStep closes the current step.
	StopStep()

	// SetStatus sets the status of the current step.
	SetStatus(status entities.StepStatus)

	// Attach adds an artifact to the current step.
	Attach(artifact []byte, label string)
}
