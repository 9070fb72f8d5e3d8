package pagerduty

import (
	"context"
	"fmt"
	"net/http"

	"triggerd/internal/model"
	"triggerd/internal/providers/shared"
)

// Responder maps response intents onto the PagerDuty REST API. One HTTP call
// per Respond; retries belong to the dispatcher.
type Responder struct {
	BaseURL string
	Token   string
	// From is the email PagerDuty requires on incident writes.
	From   string
	Client *http.Client
}

func (r *Responder) Respond(ctx context.Context, resourceID string, intent model.ResponseIntent) error {
	switch intent.Kind {
	case model.IntentAcknowledge:
		return r.setStatus(ctx, resourceID, "acknowledged")
	case model.IntentResolve:
		return r.setStatus(ctx, resourceID, "resolved")
	case model.IntentAddNote:
		payload := map[string]interface{}{
			"note": map[string]interface{}{"content": intent.Text},
		}
		return r.call(ctx, http.MethodPost, "/incidents/"+resourceID+"/notes", payload)
	case model.IntentCreate:
		payload := map[string]interface{}{"incident": intent.Fields}
		return r.call(ctx, http.MethodPost, "/incidents", payload)
	default:
		return fmt.Errorf("pagerduty: unsupported intent %q", intent.Kind)
	}
}

func (r *Responder) setStatus(ctx context.Context, incidentID, status string) error {
	payload := map[string]interface{}{
		"incident": map[string]interface{}{
			"type":   "incident_reference",
			"status": status,
		},
	}
	return r.call(ctx, http.MethodPut, "/incidents/"+incidentID, payload)
}

func (r *Responder) call(ctx context.Context, method, path string, payload interface{}) error {
	headers := map[string]string{
		"Accept":        "application/vnd.pagerduty+json;version=2",
		"Authorization": "Token token=" + r.Token,
	}
	if r.From != "" {
		headers["From"] = r.From
	}
	return shared.CallJSON(ctx, r.Client, method, r.BaseURL+path, headers, payload)
}
