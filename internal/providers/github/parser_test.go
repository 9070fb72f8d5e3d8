package github

import (
	"errors"
	"net/http"
	"testing"

	"triggerd/internal/trigger"
)

const workflowRunPayload = `{
	"action": "completed",
	"workflow_run": {
		"id": 987654,
		"name": "ci",
		"status": "completed",
		"conclusion": "failure",
		"head_branch": "main",
		"run_attempt": 2,
		"html_url": "https://github.com/acme/payments/actions/runs/987654",
		"updated_at": "2026-04-01T08:30:00Z"
	},
	"repository": {"full_name": "acme/payments"},
	"sender": {"login": "release-bot", "type": "Bot"}
}`

const issuesPayload = `{
	"action": "opened",
	"issue": {
		"number": 123,
		"title": "payments intermittently failing",
		"state": "open",
		"html_url": "https://github.com/acme/payments/issues/123",
		"labels": [{"name": "bug"}, {"name": "p1"}],
		"created_at": "2026-04-01T09:00:00Z",
		"updated_at": "2026-04-01T09:05:00Z"
	},
	"repository": {"full_name": "acme/payments"},
	"sender": {"login": "casey", "type": "User"}
}`

func ghHeaders(event, delivery string) http.Header {
	h := http.Header{}
	h.Set("X-GitHub-Event", event)
	h.Set("X-GitHub-Delivery", delivery)
	return h
}

func newTestAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(trigger.SubscriptionConfig{WebhookSecret: "gh-secret"})
	if err != nil {
		t.Fatal(err)
	}
	return a.(*Adapter)
}

func TestParseWorkflowRun(t *testing.T) {
	a := newTestAdapter(t)
	msg, err := a.Parse(ghHeaders("workflow_run", "d-1"), []byte(workflowRunPayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.ID != "d-1" {
		t.Fatalf("id got %s", msg.ID)
	}
	if msg.ChannelID != "acme/payments" {
		t.Fatalf("channel_id got %s", msg.ChannelID)
	}
	if msg.ThreadID != "acme/payments#run-987654" {
		t.Fatalf("thread_id got %s", msg.ThreadID)
	}
	if msg.Text != "ci" {
		t.Fatalf("text got %q", msg.Text)
	}
	if !msg.User.IsBot || msg.User.Username != "release-bot" {
		t.Fatalf("user got %+v", msg.User)
	}
	for key, want := range map[string]string{
		"event_type": "workflow_run.completed",
		"service_id": "acme/payments",
		"conclusion": "failure",
		"status":     "completed",
		"branch":     "main",
	} {
		if got := msg.MetaString(key); got != want {
			t.Fatalf("metadata[%s] got %q want %q", key, got, want)
		}
	}
}

func TestParseIssues(t *testing.T) {
	a := newTestAdapter(t)
	msg, err := a.Parse(ghHeaders("issues", "d-2"), []byte(issuesPayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.ThreadID != "acme/payments#123" {
		t.Fatalf("thread_id got %s", msg.ThreadID)
	}
	if msg.User.IsBot {
		t.Fatal("human sender flagged as bot")
	}
	if got := msg.MetaString("event_type"); got != "issues.opened" {
		t.Fatalf("event_type got %q", got)
	}
	if got := msg.MetaStrings("tags"); len(got) != 2 || got[0] != "bug" {
		t.Fatalf("tags got %v", got)
	}
}

func TestParseGeneratesIDWithoutDeliveryHeader(t *testing.T) {
	a := newTestAdapter(t)
	h := http.Header{}
	h.Set("X-GitHub-Event", "issues")
	msg, err := a.Parse(h, []byte(issuesPayload))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected generated id")
	}
}

func TestParseRejections(t *testing.T) {
	a := newTestAdapter(t)
	tests := []struct {
		name  string
		event string
		body  string
	}{
		{"unsupported event", "push", `{}`},
		{"invalid json", "issues", `{"issue"`},
		{"missing issue", "issues", `{"action":"opened"}`},
		{"missing workflow run", "workflow_run", `{"action":"completed"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Parse(ghHeaders(tt.event, "d-x"), []byte(tt.body))
			var parseErr *trigger.ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}
