package pagerduty

import (
	"fmt"
	"net/http"
	"strings"

	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"
)

const (
	defaultSignatureHeader = "X-PagerDuty-Signature"
	timestampHeader        = "X-PagerDuty-Timestamp"

	apiBaseURL = "https://api.pagerduty.com"
)

type Adapter struct {
	secret    string
	criteria  trigger.FilterCriteria
	responder trigger.Responder
}

func NewAdapter(cfg trigger.SubscriptionConfig) (trigger.PlatformAdapter, error) {
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("pagerduty: webhook_secret is required")
	}
	a := &Adapter{
		secret:   cfg.WebhookSecret,
		criteria: cfg.Filter,
	}
	if strings.TrimSpace(cfg.APIToken) != "" {
		a.responder = &Responder{
			BaseURL: apiBaseURL,
			Token:   cfg.APIToken,
			From:    cfg.From,
			Client:  http.DefaultClient,
		}
	}
	return a, nil
}

func (a *Adapter) Platform() string { return "pagerduty" }

func (a *Adapter) Verify(headers trigger.HeaderReader, body []byte) error {
	header := strings.TrimSpace(headers.Get(defaultSignatureHeader))
	if header == "" {
		return fmt.Errorf("%w: missing %s header", trigger.ErrInvalidSignature, defaultSignatureHeader)
	}
	timestamp := strings.TrimSpace(headers.Get(timestampHeader))
	if !shared.ValidTimestampedSignature(a.secret, timestamp, body, header) {
		return trigger.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Criteria() trigger.FilterCriteria { return a.criteria }
func (a *Adapter) Responder() trigger.Responder     { return a.responder }
