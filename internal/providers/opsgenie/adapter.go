package opsgenie

import (
	"fmt"
	"net/http"
	"strings"

	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"
)

const (
	defaultSignatureHeader = "X-Opsgenie-Signature"

	apiBaseURL = "https://api.opsgenie.com/v2"
)

type Adapter struct {
	secret    string
	criteria  trigger.FilterCriteria
	responder trigger.Responder
}

func NewAdapter(cfg trigger.SubscriptionConfig) (trigger.PlatformAdapter, error) {
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("opsgenie: webhook_secret is required")
	}
	a := &Adapter{
		secret:   cfg.WebhookSecret,
		criteria: cfg.Filter,
	}
	if strings.TrimSpace(cfg.APIToken) != "" {
		a.responder = &Responder{
			BaseURL: apiBaseURL,
			Token:   cfg.APIToken,
			Client:  http.DefaultClient,
		}
	}
	return a, nil
}

func (a *Adapter) Platform() string { return "opsgenie" }

func (a *Adapter) Verify(headers trigger.HeaderReader, body []byte) error {
	header := strings.TrimSpace(headers.Get(defaultSignatureHeader))
	if header == "" {
		return fmt.Errorf("%w: missing %s header", trigger.ErrInvalidSignature, defaultSignatureHeader)
	}
	if !shared.ValidBodySignature(a.secret, body, header) {
		return trigger.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Criteria() trigger.FilterCriteria { return a.criteria }
func (a *Adapter) Responder() trigger.Responder     { return a.responder }
