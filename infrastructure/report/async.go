package report

import (
	"sync"

	"ui_automation/domain/entities"
	"ui_automation/domain/interfaces"
)

// Async forwards events to another reporter from a single goroutine, in the
// order they were reported. Callers never block on the wrapped reporter
// unless the buffer is full.
type Async struct {
	next   interfaces.Reporter
	events chan func(interfaces.Reporter)
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// NewAsync - starts the dispatch goroutine
func NewAsync(next interfaces.Reporter, buffer int) *Async {
	a := &Async{
		next:   next,
		events: make(chan func(interfaces.Reporter), buffer),
		done:   make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *Async) loop() {
	defer close(a.done)
	for ev := range a.events {
		ev(a.next)
	}
}

func (a *Async) send(ev func(interfaces.Reporter)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	a.events <- ev
}

func (a *Async) StartStep(id, name string) {
	a.send(func(r interfaces.Reporter) { r.StartStep(id, name) })
}

func (a *Async) StopStep() {
	a.send(func(r interfaces.Reporter) { r.StopStep() })
}

func (a *Async) SetStatus(status entities.StepStatus) {
	a.send(func(r interfaces.Reporter) { r.SetStatus(status) })
}

func (a *Async) Attach(artifact []byte, label string) {
	data := append([]byte(nil), artifact...)
	a.send(func(r interfaces.Reporter) { r.Attach(data, label) })
}

// Close stops accepting events and waits until every queued event has been
// delivered.
func (a *Async) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.events)
	}
	a.mu.Unlock()
	<-a.done
	return nil
}
