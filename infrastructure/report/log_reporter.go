// Package report implements step sinks: a logging reporter, a recorder that
// builds the step tree, an ordered asynchronous dispatcher and a fan-out.
package report

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
)

type frame struct {
	id      string
	name    string
	started time.Time
	status  entities.StepStatus
}

// LogReporter writes one log line per step start and stop, indented by
// nesting depth, and stores attachments under dir.
type LogReporter struct {
	mu     sync.Mutex
	logger *logrus.Logger
	dir    string
	stack  []*frame
}

// NewLogReporter - creates a reporter; attachments are dropped when dir is empty
func NewLogReporter(logger *logrus.Logger, dir string) *LogReporter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogReporter{logger: logger, dir: dir}
}

func (r *LogReporter) StartStep(id, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	depth := len(r.stack)
	r.stack = append(r.stack, &frame{id: id, name: name, started: time.Now(), status: entities.StepStatusRunning})
	r.logger.WithFields(logrus.Fields{
		"step_id": id,
		"depth":   depth,
	}).Info(strings.Repeat("  ", depth) + name)
}

func (r *LogReporter) StopStep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) == 0 {
		r.logger.Warn("stop without a running step")
		return
	}
	f := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	entry := r.logger.WithFields(logrus.Fields{
		"step_id":  f.id,
		"depth":    len(r.stack),
		"status":   f.status,
		"duration": time.Since(f.started).Round(time.Millisecond).String(),
	})
	msg := strings.Repeat("  ", len(r.stack)) + f.name
	if f.status == entities.StepStatusFailed {
		entry.Error(msg)
		return
	}
	entry.Debug(msg)
}

func (r *LogReporter) SetStatus(status entities.StepStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].status = status
	}
}

func (r *LogReporter) Attach(artifact []byte, label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.dir == "" || len(r.stack) == 0 {
		return
	}
	f := r.stack[len(r.stack)-1]
	path := filepath.Join(r.dir, AttachmentName(f.id, label, artifact))

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		r.logger.WithError(err).Warn("failed to create results directory")
		return
	}
	if err := os.WriteFile(path, artifact, 0644); err != nil {
		r.logger.WithError(err).WithField("step_id", f.id).Warn("failed to write attachment")
		return
	}
	r.logger.WithFields(logrus.Fields{"step_id": f.id, "path": path}).Info("attached " + label)
}

// AttachmentName is the file name an attachment is stored under.
func AttachmentName(stepID, label string, artifact []byte) string {
	return fmt.Sprintf("%s_%s%s", stepID, label, extension(artifact))
}

func extension(artifact []byte) string {
	switch ct := http.DetectContentType(artifact); {
	case strings.HasPrefix(ct, "image/png"):
		return ".png"
	case strings.HasPrefix(ct, "image/jpeg"):
		return ".jpg"
	case strings.HasPrefix(ct, "text/html"):
		return ".html"
	case strings.HasPrefix(ct, "text/"):
		return ".txt"
	default:
		return ".bin"
	}
}
