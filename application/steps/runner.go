// Package steps wraps interactions into named, hierarchical report steps.
package steps

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Screenshotter captures the current page for failed steps.
type Screenshotter interface {
	Screenshot(ctx context.Context) ([]byte, error)
}

// Runner opens and closes report steps around interactions.
type Runner struct {
	reporter interfaces.Reporter
	phrases  *Phrases
	shooter  Screenshotter
	logger   *logrus.Logger
}

// NewRunner - creates a step runner reporting into reporter
func NewRunner(reporter interfaces.Reporter, phrases *Phrases, logger *logrus.Logger) *Runner {
	return &Runner{
		reporter: reporter,
		phrases:  phrases,
		logger:   logger,
	}
}

// WithScreenshots attaches a screenshot to every failed step.
func (r *Runner) WithScreenshots(s Screenshotter) *Runner {
	r.shooter = s
	return r
}

// Phrases returns the phrase table used for step names.
func (r *Runner) Phrases() *Phrases {
	return r.phrases
}

// Name renders the step name for key.
func (r *Runner) Name(key string, vars Vars) string {
	if r == nil || r.phrases == nil {
		return key
	}
	return r.phrases.Format(key, vars)
}

// Do runs fn inside a step. The step is stopped exactly once, also when fn
// panics, and is marked failed before the error is handed back unchanged.
func (r *Runner) Do(ctx context.Context, key string, vars Vars, fn func(ctx context.Context) error) error {
	if r == nil || r.reporter == nil {
		return fn(ctx)
	}

	r.reporter.StartStep(uuid.NewString(), r.Name(key, vars))
	defer r.reporter.StopStep()
	defer func() {
		if p := recover(); p != nil {
			r.reporter.SetStatus(entities.StepStatusFailed)
			panic(p)
		}
	}()

	err := fn(ctx)
	if err != nil {
		r.reporter.SetStatus(entities.StepStatusFailed)
		r.attachScreenshot(ctx)
		return err
	}
	r.reporter.SetStatus(entities.StepStatusPassed)
	return nil
}

func (r *Runner) attachScreenshot(ctx context.Context) {
	if r.shooter == nil {
		return
	}
	shot, err := r.shooter.Screenshot(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Warn("failed to capture screenshot for failed step")
		}
		return
	}
	r.reporter.Attach(shot, "screenshot")
}

// Value runs fn inside a step and returns its result.
func Value[T any](ctx context.Context, r *Runner, key string, vars Vars, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := r.Do(ctx, key, vars, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
