package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"triggerd/internal/store"
	"triggerd/internal/trigger"
)

const journalTimeout = 2 * time.Second

// handleWebhook runs the ingest pipeline for one delivery:
// verify -> parse/normalize -> filter -> enqueue. Accepted and filtered
// deliveries both acknowledge with 200; providers retry aggressively on
// anything else, so only genuine processing failures return 4xx/5xx.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", false)
		return
	}
	platform := strings.Trim(strings.TrimPrefix(r.URL.Path, "/webhooks/"), "/")
	if platform == "" || strings.Contains(platform, "/") {
		writeError(w, http.StatusNotFound, "UNKNOWN_PLATFORM", "missing platform in path", false)
		return
	}
	start := time.Now()

	adapter, err := s.snapshot.Adapter(platform)
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_PLATFORM", err.Error(), false)
		return
	}

	body, err := readBodyLimited(w, r, maxWebhookBodyBytes)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body is too large", false)
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "unable to read body", false)
		return
	}

	// The body is fully read; from here the delivery is processed to a
	// terminal state even if the provider disconnects.
	if err := adapter.Verify(headerReader{r.Header}, body); err != nil {
		s.logger.Info("webhook signature rejected", "platform", platform, "error", err.Error())
		s.finish(platform, store.Delivery{Outcome: store.OutcomeRejected, Reason: "invalid signature"}, start)
		writeError(w, http.StatusUnauthorized, "INVALID_SIGNATURE", "signature verification failed", false)
		return
	}

	msg, err := adapter.Parse(headerReader{r.Header}, body)
	if err != nil {
		s.logger.Error(err, "webhook payload unparseable", "platform", platform)
		s.finish(platform, store.Delivery{Outcome: store.OutcomeError, Reason: err.Error()}, start)
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error(), false)
		return
	}

	eventType := msg.MetaString("event_type")
	if ok, reason := trigger.ShouldProcess(msg, adapter.Criteria()); !ok {
		s.logger.V(1).Info("webhook filtered out",
			"platform", platform, "event_id", msg.ID, "reason", reason)
		s.finish(platform, store.Delivery{
			EventID: msg.ID, EventType: eventType,
			Outcome: store.OutcomeFiltered, Reason: reason,
		}, start)
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": msg.ID, "status": "filtered", "reason": reason})
		return
	}

	if err := s.queue.Enqueue(msg); err != nil {
		s.logger.Info("handoff queue full, shedding delivery", "platform", platform, "event_id", msg.ID)
		s.finish(platform, store.Delivery{
			EventID: msg.ID, EventType: eventType,
			Outcome: store.OutcomeOverloaded, Reason: "handoff queue full",
		}, start)
		w.Header().Set("Retry-After", "5")
		writeError(w, http.StatusServiceUnavailable, "OVERLOADED", "handoff queue full", true)
		return
	}

	s.finish(platform, store.Delivery{
		EventID: msg.ID, EventType: eventType, Outcome: store.OutcomeAccepted,
	}, start)
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": msg.ID, "status": "accepted"})
}

// finish journals the terminal state and feeds metrics. Journal writes are
// best-effort on a detached context: the HTTP response owed to the provider
// is already decided.
func (s *Server) finish(platform string, d store.Delivery, start time.Time) {
	elapsed := time.Since(start)
	s.metrics.ObserveEvent(platform, string(d.Outcome), elapsed.Seconds())

	d.ID = uuid.NewString()
	d.Platform = platform
	d.ReceivedAt = start.UTC()
	d.DurationMS = elapsed.Milliseconds()

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := s.journal.RecordDelivery(ctx, d); err != nil {
		s.logger.Error(err, "journal write failed", "platform", platform, "outcome", string(d.Outcome))
	}
}

type headerReader struct {
	h http.Header
}

func (r headerReader) Get(key string) string { return r.h.Get(key) }
