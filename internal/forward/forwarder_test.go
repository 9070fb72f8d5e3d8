package forward

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-logr/logr"

	"triggerd/internal/model"
	"triggerd/internal/queue"
)

func TestForwarderDeliversCloudEvent(t *testing.T) {
	received := make(chan *http.Request, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clone := r.Clone(context.Background())
		select {
		case received <- clone:
		default:
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	q := queue.New(4)
	f, err := New(q, srv.URL, logr.Discard())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	msg := model.TriggerMessage{
		ID:        "01DELIVERY",
		Platform:  "pagerduty",
		ChannelID: "PXYZ123",
		User:      model.SystemUser(),
		Text:      "DB down",
		Timestamp: time.Now().UTC(),
	}
	if err := q.Enqueue(msg); err != nil {
		t.Fatal(err)
	}

	select {
	case r := <-received:
		if got := r.Header.Get("Ce-Id"); got != "01DELIVERY" {
			t.Fatalf("ce-id got %q", got)
		}
		if got := r.Header.Get("Ce-Type"); got != "io.triggerd.trigger" {
			t.Fatalf("ce-type got %q", got)
		}
		if got := r.Header.Get("Ce-Platform"); got != "pagerduty" {
			t.Fatalf("ce-platform got %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sink never received the event")
	}
}

func TestForwarderWithoutSinkDrains(t *testing.T) {
	q := queue.New(2)
	f, err := New(q, "", logr.Discard())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	if err := q.Enqueue(model.TriggerMessage{ID: "a", Platform: "pagerduty"}); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for q.Len() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("queue never drained without a sink")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
