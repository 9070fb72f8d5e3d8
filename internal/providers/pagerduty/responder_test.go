package pagerduty

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"triggerd/internal/model"
	"triggerd/internal/trigger"
)

func TestResponderRespond(t *testing.T) {
	type captured struct {
		method string
		path   string
		body   map[string]interface{}
	}
	var got captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		got = captured{method: r.Method, path: r.URL.Path}
		_ = json.Unmarshal(raw, &got.body)
		if auth := r.Header.Get("Authorization"); auth != "Token token=tok" {
			t.Errorf("authorization got %q", auth)
		}
		if from := r.Header.Get("From"); from != "ops@example.com" {
			t.Errorf("from got %q", from)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := &Responder{BaseURL: srv.URL, Token: "tok", From: "ops@example.com", Client: srv.Client()}

	tests := []struct {
		name       string
		intent     model.ResponseIntent
		wantMethod string
		wantPath   string
		check      func(t *testing.T, body map[string]interface{})
	}{
		{
			name:       "acknowledge",
			intent:     model.Acknowledge(),
			wantMethod: http.MethodPut,
			wantPath:   "/incidents/I1",
			check: func(t *testing.T, body map[string]interface{}) {
				incident := body["incident"].(map[string]interface{})
				if incident["status"] != "acknowledged" {
					t.Fatalf("status got %v", incident["status"])
				}
			},
		},
		{
			name:       "resolve",
			intent:     model.Resolve(),
			wantMethod: http.MethodPut,
			wantPath:   "/incidents/I1",
			check: func(t *testing.T, body map[string]interface{}) {
				incident := body["incident"].(map[string]interface{})
				if incident["status"] != "resolved" {
					t.Fatalf("status got %v", incident["status"])
				}
			},
		},
		{
			name:       "add note",
			intent:     model.AddNote("on it"),
			wantMethod: http.MethodPost,
			wantPath:   "/incidents/I1/notes",
			check: func(t *testing.T, body map[string]interface{}) {
				note := body["note"].(map[string]interface{})
				if note["content"] != "on it" {
					t.Fatalf("note got %v", note["content"])
				}
			},
		},
		{
			name:       "create",
			intent:     model.Create(map[string]interface{}{"title": "new incident"}),
			wantMethod: http.MethodPost,
			wantPath:   "/incidents",
			check: func(t *testing.T, body map[string]interface{}) {
				incident := body["incident"].(map[string]interface{})
				if incident["title"] != "new incident" {
					t.Fatalf("title got %v", incident["title"])
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Respond(context.Background(), "I1", tt.intent); err != nil {
				t.Fatalf("respond: %v", err)
			}
			if got.method != tt.wantMethod || got.path != tt.wantPath {
				t.Fatalf("request got %s %s want %s %s", got.method, got.path, tt.wantMethod, tt.wantPath)
			}
			tt.check(t, got.body)
		})
	}
}

func TestResponderSurfacesStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	r := &Responder{BaseURL: srv.URL, Token: "tok", Client: srv.Client()}
	err := r.Respond(context.Background(), "I1", model.Acknowledge())
	var statusErr *trigger.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status got %d", statusErr.Status)
	}
}

func TestResponderRejectsUnknownIntent(t *testing.T) {
	r := &Responder{BaseURL: "http://unused", Token: "tok", Client: http.DefaultClient}
	if err := r.Respond(context.Background(), "I1", model.ResponseIntent{Kind: "page_everyone"}); err == nil {
		t.Fatal("expected error for unsupported intent")
	}
}
