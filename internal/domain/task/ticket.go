// Package task provides the completion signal of an asynchronous background task.
package task

import (
	"context"
	"sync"
)

// Ticket is handed out for a detached task. Done closes once the task finished.
type Ticket struct {
	done chan struct{}
	once sync.Once
	err  error
}

// NewTicket creates a pending ticket.
func NewTicket() *Ticket {
	return &Ticket{done: make(chan struct{})}
}

// Completed returns an already finished ticket.
func Completed(err error) *Ticket {
	t := NewTicket()
	t.Finish(err)
	return t
}

// Finish records the outcome. Only the first call has effect.
func (t *Ticket) Finish(err error) {
	t.once.Do(func() {
		t.err = err
		close(t.done)
	})
}

// Done is closed when the task has finished.
func (t *Ticket) Done() <-chan struct{} { return t.done }

// Err returns the task error. Valid after Done is closed.
func (t *Ticket) Err() error {
	select {
	case <-t.done:
		return t.err
	default:
		return nil
	}
}

// Wait blocks until the task finishes or ctx is done.
func (t *Ticket) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
