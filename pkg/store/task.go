package store

import (
	"context"

	"github.com/google/uuid"
)

// Task is the handle for one asynchronous request.
type Task struct {
	id     string
	field  Field
	url    string
	done   chan struct{}
	err    error
	cancel context.CancelFunc
}

func newTask(field Field, url string, cancel context.CancelFunc) *Task {
	return &Task{
		id:     uuid.New().String(),
		field:  field,
		url:    url,
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// finishedTask returns a task that has already settled with err.
func finishedTask(field Field, url string, err error) *Task {
	t := newTask(field, url, func() {})
	t.finish(err)
	return t
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// ID returns the task's unique id.
func (t *Task) ID() string { return t.id }

// Field returns the state field the task populates.
func (t *Task) Field() Field { return t.field }

// URL returns the requested URL.
func (t *Task) URL() string { return t.url }

// Done is closed once the task has settled and loading has been updated.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task settles and returns its result.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Err returns the task's result, or nil while it is still running.
func (t *Task) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Cancel aborts the request. A cancelled task never commits.
func (t *Task) Cancel() { t.cancel() }
