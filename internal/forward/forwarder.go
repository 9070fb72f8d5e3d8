// Package forward drains the handoff queue and pushes accepted trigger
// messages to the downstream consumer as CloudEvents over HTTP.
package forward

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/go-logr/logr"

	"triggerd/internal/queue"
)

type Forwarder struct {
	queue  *queue.Queue
	client cloudevents.Client
	sink   string
	logger logr.Logger
}

// New builds a forwarder for sinkURL. With an empty sinkURL the forwarder
// still drains the queue but only logs each message, which keeps the receiver
// from backing up in deployments without a consumer.
func New(q *queue.Queue, sinkURL string, logger logr.Logger) (*Forwarder, error) {
	f := &Forwarder{queue: q, sink: sinkURL, logger: logger}
	if sinkURL != "" {
		client, err := cloudevents.NewClientHTTP()
		if err != nil {
			return nil, err
		}
		f.client = client
	}
	return f, nil
}

// Run consumes the queue until ctx is cancelled. Delivery failures are logged
// and the message dropped; the upstream provider already got its 200 and
// replaying is the consumer's concern.
func (f *Forwarder) Run(ctx context.Context) error {
	for {
		msg, err := f.queue.Dequeue(ctx)
		if err != nil {
			return err
		}
		if f.client == nil {
			f.logger.V(1).Info("no sink configured, dropping message",
				"platform", msg.Platform, "event_id", msg.ID)
			continue
		}
		ce, err := msg.ToCloudEvent()
		if err != nil {
			f.logger.Error(err, "cloudevent conversion failed", "event_id", msg.ID)
			continue
		}
		sendCtx := cloudevents.ContextWithTarget(ctx, f.sink)
		if result := f.client.Send(sendCtx, ce); cloudevents.IsUndelivered(result) {
			f.logger.Error(result, "sink delivery failed",
				"platform", msg.Platform, "event_id", msg.ID, "sink", f.sink)
			continue
		}
		f.logger.V(1).Info("forwarded to sink", "platform", msg.Platform, "event_id", msg.ID)
	}
}
