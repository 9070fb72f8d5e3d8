package pagerduty

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"
)

const incidentTriggeredPayload = `{
	"event": {
		"id": "01DELIVERY",
		"event_type": "incident.triggered",
		"resource_type": "incident",
		"occurred_at": "2026-03-01T12:00:00Z",
		"agent": {"id": "PUSER1", "type": "user_reference", "summary": "Ada Admin"},
		"data": {
			"id": "Q2KURS8RXYZ123",
			"type": "incident",
			"number": 42,
			"title": "DB down",
			"description": "primary unreachable",
			"status": "triggered",
			"urgency": "high",
			"html_url": "https://acme.pagerduty.com/incidents/Q2KURS8RXYZ123",
			"service": {"id": "PXYZ123", "summary": "payments"},
			"priority": {"id": "PPRI1", "summary": "P1"},
			"teams": [{"id": "PTEAM1"}],
			"alerts": [{"id": "A1", "severity": "critical"}]
		}
	}
}`

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(trigger.SubscriptionConfig{WebhookSecret: "whsec_test"})
	if err != nil {
		t.Fatal(err)
	}
	return a.(*Adapter)
}

func TestParseIncidentTriggered(t *testing.T) {
	a := newTestAdapter(t)
	msg, err := a.Parse(http.Header{}, []byte(incidentTriggeredPayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if msg.ID != "01DELIVERY" {
		t.Fatalf("id got %s", msg.ID)
	}
	if msg.Platform != "pagerduty" {
		t.Fatalf("platform got %s", msg.Platform)
	}
	if msg.ChannelID != "PXYZ123" {
		t.Fatalf("channel_id got %s", msg.ChannelID)
	}
	if msg.ThreadID != "Q2KURS8RXYZ123" {
		t.Fatalf("thread_id got %s", msg.ThreadID)
	}
	if msg.Text != "DB down" {
		t.Fatalf("text got %q", msg.Text)
	}
	if msg.User.ID != "PUSER1" || msg.User.IsBot {
		t.Fatalf("user got %+v", msg.User)
	}
	if want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC); !msg.Timestamp.Equal(want) {
		t.Fatalf("timestamp got %s", msg.Timestamp)
	}

	for key, want := range map[string]string{
		"event_type":   "incident.triggered",
		"status":       "triggered",
		"urgency":      "high",
		"priority":     "P1",
		"service_id":   "PXYZ123",
		"service_name": "payments",
		"html_url":     "https://acme.pagerduty.com/incidents/Q2KURS8RXYZ123",
		"description":  "primary unreachable",
	} {
		if got := msg.MetaString(key); got != want {
			t.Fatalf("metadata[%s] got %q want %q", key, got, want)
		}
	}
	if got := msg.MetaStrings("team_ids"); len(got) != 1 || got[0] != "PTEAM1" {
		t.Fatalf("team_ids got %v", got)
	}
}

func TestParseWithoutAgentUsesSystemUser(t *testing.T) {
	a := newTestAdapter(t)
	body := []byte(`{"event":{"id":"E1","event_type":"incident.resolved","data":{"id":"I1","title":"done"}}}`)
	msg, err := a.Parse(http.Header{}, body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.User.ID != "system" || !msg.User.IsBot {
		t.Fatalf("expected system user, got %+v", msg.User)
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("missing occurred_at must fall back to now")
	}
	if _, ok := msg.Metadata["priority"]; ok {
		t.Fatal("absent priority must not appear in metadata")
	}
}

func TestParseRejectsMalformedPayloads(t *testing.T) {
	a := newTestAdapter(t)
	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"event":`},
		{"missing event id", `{"event":{"event_type":"incident.triggered","data":{"id":"I1"}}}`},
		{"missing event_type", `{"event":{"id":"E1","data":{"id":"I1"}}}`},
		{"missing incident id", `{"event":{"id":"E1","event_type":"incident.triggered","data":{}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Parse(http.Header{}, []byte(tt.body))
			var parseErr *trigger.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestVerify(t *testing.T) {
	a := newTestAdapter(t)
	body := []byte(incidentTriggeredPayload)
	timestamp := "1735689600"

	headers := http.Header{}
	headers.Set("X-PagerDuty-Timestamp", timestamp)
	headers.Set("X-PagerDuty-Signature", shared.SignTimestamped("whsec_test", timestamp, body))
	if err := a.Verify(headers, body); err != nil {
		t.Fatalf("verify: %v", err)
	}

	headers.Set("X-PagerDuty-Signature", shared.SignTimestamped("wrong", timestamp, body))
	if err := a.Verify(headers, body); !errors.Is(err, trigger.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}

	headers.Del("X-PagerDuty-Signature")
	if err := a.Verify(headers, body); !errors.Is(err, trigger.ErrInvalidSignature) {
		t.Fatalf("missing header: expected ErrInvalidSignature, got %v", err)
	}
}

func TestResponderOnlyWithToken(t *testing.T) {
	a := newTestAdapter(t)
	if a.Responder() != nil {
		t.Fatal("responder must be nil without api_token")
	}
	withToken, err := NewAdapter(trigger.SubscriptionConfig{WebhookSecret: "s", APIToken: "tok", From: "ops@example.com"})
	if err != nil {
		t.Fatal(err)
	}
	if withToken.Responder() == nil {
		t.Fatal("responder missing despite api_token")
	}
}
