package report

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Recorder builds the step tree of one run.
type Recorder struct {
	mu    sync.Mutex
	run   *entities.RunRecord
	stack []*entities.StepRecord
	now   func() time.Time
}

// NewRecorder - starts recording a new run
func NewRecorder() *Recorder {
	return &Recorder{
		run: &entities.RunRecord{ID: uuid.NewString(), StartedAt: time.Now()},
		now: time.Now,
	}
}

func (r *Recorder) StartStep(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	step := &entities.StepRecord{ID: id, Name: name, Status: entities.StepStatusRunning, StartedAt: r.now()}
	if len(r.stack) == 0 {
		r.run.Steps = append(r.run.Steps, step)
	} else {
		top := r.stack[len(r.stack)-1]
		top.Children = append(top.Children, step)
	}
	r.stack = append(r.stack, step)
}

func (r *Recorder) StopStep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	top.StoppedAt = r.now()
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) SetStatus(status entities.StepStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].Status = status
	}
}

func (r *Recorder) Attach(artifact []byte, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) == 0 {
		return
	}
	top := r.stack[len(r.stack)-1]
	top.Attachments = append(top.Attachments, entities.Attachment{
		Label: label,
		Path:  AttachmentName(top.ID, label, artifact),
		Size:  len(artifact),
	})
}

// Run returns the recorded run.
func (r *Recorder) Run() *entities.RunRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.run
}

// Save persists the recorded run.
func (r *Recorder) Save(store interfaces.StepStore) error {
	return store.SaveRun(r.Run())
}
