package shared

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"triggerd/internal/trigger"
)

func TestCallJSONSuccessAndFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusNoContent)
		case "/throttled":
			w.Header().Set("Retry-After", "7")
			http.Error(w, "slow down", http.StatusTooManyRequests)
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	if err := CallJSON(ctx, srv.Client(), http.MethodPost, srv.URL+"/ok", nil, map[string]string{"a": "b"}); err != nil {
		t.Fatalf("ok call: %v", err)
	}

	err := CallJSON(ctx, srv.Client(), http.MethodPost, srv.URL+"/throttled", nil, nil)
	var statusErr *trigger.HTTPStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected HTTPStatusError, got %v", err)
	}
	if statusErr.Status != http.StatusTooManyRequests {
		t.Fatalf("status got %d", statusErr.Status)
	}
	if statusErr.RetryAfter != 7*time.Second {
		t.Fatalf("retry-after got %s", statusErr.RetryAfter)
	}

	err = CallJSON(ctx, srv.Client(), http.MethodPost, srv.URL+"/fail", nil, nil)
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected 500 HTTPStatusError, got %v", err)
	}
	if statusErr.RetryAfter != 0 {
		t.Fatalf("5xx must carry no retry-after hint, got %s", statusErr.RetryAfter)
	}
}

func TestRetryAfterHint(t *testing.T) {
	resp := func(status int, header string) *http.Response {
		h := http.Header{}
		if header != "" {
			h.Set("Retry-After", header)
		}
		return &http.Response{StatusCode: status, Header: h}
	}

	if got := RetryAfterHint(resp(429, "30")); got != 30*time.Second {
		t.Fatalf("delta-seconds got %s", got)
	}
	if got := RetryAfterHint(resp(429, "")); got != 0 {
		t.Fatalf("missing header got %s", got)
	}
	if got := RetryAfterHint(resp(500, "30")); got != 0 {
		t.Fatalf("non-429 got %s", got)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if got := RetryAfterHint(resp(429, future)); got <= 0 || got > time.Minute {
		t.Fatalf("http-date got %s", got)
	}
	past := time.Now().Add(-time.Minute).UTC().Format(http.TimeFormat)
	if got := RetryAfterHint(resp(429, past)); got != 0 {
		t.Fatalf("past http-date got %s", got)
	}
}
