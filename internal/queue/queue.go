// Package queue is the bounded handoff between the webhook receiver and the
// downstream consumer. The receiver never blocks on it: a full queue is
// backpressure, reported to the provider as 503 so its retry machinery takes
// over.
package queue

import (
	"context"

	"triggerd/internal/model"
	"triggerd/internal/trigger"
)

type Queue struct {
	ch chan model.TriggerMessage
}

func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 256
	}
	return &Queue{ch: make(chan model.TriggerMessage, capacity)}
}

// Enqueue hands a message off without blocking. Returns ErrQueueFull when the
// consumer has fallen behind.
func (q *Queue) Enqueue(msg model.TriggerMessage) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		return trigger.ErrQueueFull
	}
}

// Dequeue blocks until a message is available or ctx is done.
func (q *Queue) Dequeue(ctx context.Context) (model.TriggerMessage, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	case <-ctx.Done():
		return model.TriggerMessage{}, ctx.Err()
	}
}

func (q *Queue) Len() int { return len(q.ch) }
func (q *Queue) Cap() int { return cap(q.ch) }
