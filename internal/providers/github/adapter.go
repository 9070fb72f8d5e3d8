package github

import (
	"fmt"
	"strings"

	"triggerd/internal/providers/shared"
	"triggerd/internal/trigger"
)

const (
	defaultSignatureHeader = "X-Hub-Signature-256"
	eventTypeHeader        = "X-GitHub-Event"
	eventIDHeader          = "X-GitHub-Delivery"
)

type Adapter struct {
	secret    string
	criteria  trigger.FilterCriteria
	responder trigger.Responder
}

func NewAdapter(cfg trigger.SubscriptionConfig) (trigger.PlatformAdapter, error) {
	if strings.TrimSpace(cfg.WebhookSecret) == "" {
		return nil, fmt.Errorf("github: webhook_secret is required")
	}
	a := &Adapter{
		secret:   cfg.WebhookSecret,
		criteria: cfg.Filter,
	}
	if strings.TrimSpace(cfg.APIToken) != "" {
		a.responder = NewResponder(cfg.APIToken)
	}
	return a, nil
}

func (a *Adapter) Platform() string { return "github" }

func (a *Adapter) Verify(headers trigger.HeaderReader, body []byte) error {
	header := strings.TrimSpace(headers.Get(defaultSignatureHeader))
	if header == "" {
		return fmt.Errorf("%w: missing %s header", trigger.ErrInvalidSignature, defaultSignatureHeader)
	}
	if !shared.ValidPrefixedSignature(a.secret, body, header) {
		return trigger.ErrInvalidSignature
	}
	return nil
}

func (a *Adapter) Criteria() trigger.FilterCriteria { return a.criteria }
func (a *Adapter) Responder() trigger.Responder     { return a.responder }
