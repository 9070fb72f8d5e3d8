package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"triggerd/internal/model"
	"triggerd/internal/trigger"
)

func TestEnqueueDequeue(t *testing.T) {
	q := New(2)
	if err := q.Enqueue(model.TriggerMessage{ID: "a"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(model.TriggerMessage{ID: "b"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("len got %d", q.Len())
	}

	msg, err := q.Dequeue(context.Background())
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if msg.ID != "a" {
		t.Fatalf("order got %s want a", msg.ID)
	}
}

func TestEnqueueFullNeverBlocks(t *testing.T) {
	q := New(1)
	if err := q.Enqueue(model.TriggerMessage{ID: "a"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- q.Enqueue(model.TriggerMessage{ID: "b"}) }()
	select {
	case err := <-done:
		if !errors.Is(err, trigger.ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on full queue")
	}
}

func TestDequeueHonorsContext(t *testing.T) {
	q := New(1)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := q.Dequeue(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
}

func TestDefaultCapacity(t *testing.T) {
	if got := New(0).Cap(); got != 256 {
		t.Fatalf("default capacity got %d", got)
	}
}
