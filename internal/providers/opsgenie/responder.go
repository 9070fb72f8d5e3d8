package opsgenie

import (
	"context"
	"fmt"
	"net/http"

	"triggerd/internal/model"
	"triggerd/internal/providers/shared"
)

// Responder maps response intents onto the Opsgenie alert API using the
// GenieKey authorization scheme.
type Responder struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

func (r *Responder) Respond(ctx context.Context, resourceID string, intent model.ResponseIntent) error {
	switch intent.Kind {
	case model.IntentAcknowledge:
		return r.call(ctx, http.MethodPost, "/alerts/"+resourceID+"/acknowledge", map[string]interface{}{})
	case model.IntentResolve:
		return r.call(ctx, http.MethodPost, "/alerts/"+resourceID+"/close", map[string]interface{}{})
	case model.IntentAddNote:
		return r.call(ctx, http.MethodPost, "/alerts/"+resourceID+"/notes", map[string]interface{}{
			"note": intent.Text,
		})
	case model.IntentCreate:
		return r.call(ctx, http.MethodPost, "/alerts", intent.Fields)
	default:
		return fmt.Errorf("opsgenie: unsupported intent %q", intent.Kind)
	}
}

func (r *Responder) call(ctx context.Context, method, path string, payload interface{}) error {
	headers := map[string]string{
		"Authorization": "GenieKey " + r.Token,
	}
	return shared.CallJSON(ctx, r.Client, method, r.BaseURL+path, headers, payload)
}
