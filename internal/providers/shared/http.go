package shared

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"triggerd/internal/trigger"
)

const maxErrorBodyBytes = 4096

// CallJSON performs one JSON request against a provider API. Non-2xx
// responses come back as *trigger.HTTPStatusError so the dispatcher can
// classify them; transport failures are returned as-is.
func CallJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, payload interface{}) error {
	var reader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &trigger.HTTPStatusError{
		Status:     resp.StatusCode,
		Body:       string(respBody),
		RetryAfter: RetryAfterHint(resp),
	}
}

// RetryAfterHint reads a 429 response's Retry-After header, supporting both
// delta-seconds and HTTP-date forms. Zero means no usable hint.
func RetryAfterHint(resp *http.Response) time.Duration {
	if resp.StatusCode != http.StatusTooManyRequests {
		return 0
	}
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.ParseInt(header, 10, 64); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
