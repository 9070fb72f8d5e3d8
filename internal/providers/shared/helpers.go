package shared

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NonEmpty(a, b string) string {
	a = strings.TrimSpace(a)
	if a != "" {
		return a
	}
	return strings.TrimSpace(b)
}

func ParseTimeOrNow(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Now().UTC()
	}
	formats := []string{time.RFC3339Nano, time.RFC3339}
	for _, f := range formats {
		if t, err := time.Parse(f, v); err == nil {
			return t.UTC()
		}
	}
	return time.Now().UTC()
}

// MillisOrNow converts a millisecond epoch into UTC time, falling back to now
// for zero/negative values.
func MillisOrNow(ms int64) time.Time {
	if ms <= 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(ms).UTC()
}

func NormalizeEventType(in string) string {
	return strings.TrimSpace(strings.ToLower(in))
}

// FallbackID returns the provider-supplied id when present, otherwise a
// random id so the event stays addressable downstream.
func FallbackID(id string) string {
	id = strings.TrimSpace(id)
	if id != "" {
		return id
	}
	return uuid.NewString()
}
