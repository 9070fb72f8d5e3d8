package trigger

import (
	"context"

	"triggerd/internal/model"
)

// HeaderReader abstracts http.Header for verification.
type HeaderReader interface {
	Get(key string) string
}

// Responder sends a response intent to the provider's REST API for the given
// resource (incident id, alert id, ...). A single call, no retries; the
// dispatcher owns the retry policy.
type Responder interface {
	Respond(ctx context.Context, resourceID string, intent model.ResponseIntent) error
}

// PlatformAdapter bundles a provider's verification, parsing/normalization,
// filter criteria and optional responder. Built once per configured
// subscription, immutable afterwards.
type PlatformAdapter interface {
	Platform() string
	// Verify authenticates the raw request. Returns ErrInvalidSignature
	// (possibly wrapped) when the request cannot be trusted.
	Verify(headers HeaderReader, body []byte) error
	// Parse deserializes and normalizes the payload into the canonical
	// message. Malformed payloads return a *ParseError.
	Parse(headers HeaderReader, body []byte) (model.TriggerMessage, error)
	// Criteria returns the subscription's filter configuration.
	Criteria() FilterCriteria
	// Responder returns nil when the subscription has no API token.
	Responder() Responder
}
