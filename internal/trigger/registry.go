package trigger

import (
	"fmt"
	"strings"
)

// SubscriptionConfig is the typed per-subscription configuration every
// adapter factory receives. WebhookSecret authenticates inbound deliveries;
// APIToken, when present, enables the outbound responder.
type SubscriptionConfig struct {
	WebhookSecret string
	APIToken      string
	// From identifies the acting operator on providers that require one for
	// outbound writes (PagerDuty's From header).
	From   string
	Filter FilterCriteria
}

// Factory builds an adapter for one configured subscription.
type Factory func(cfg SubscriptionConfig) (PlatformAdapter, error)

// Registry maps platform names to adapter factories. Populated once at
// startup, read-only afterwards.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

func (r *Registry) Register(name string, factory Factory) {
	if r == nil || factory == nil {
		return
	}
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[canonicalName(name)] = factory
}

// Build constructs an adapter for one subscription. Called at config-load
// time, never per-request; an unknown platform is a configuration error.
func (r *Registry) Build(name string, cfg SubscriptionConfig) (PlatformAdapter, error) {
	if r == nil {
		return nil, fmt.Errorf("nil registry")
	}
	factory, ok := r.factories[canonicalName(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, name)
	}
	return factory(cfg)
}

// BuildSnapshot builds the frozen adapter set for all configured
// subscriptions. The snapshot is what request handling reads, lock-free; a
// config reload builds a replacement snapshot and discards this one.
func (r *Registry) BuildSnapshot(cfgs map[string]SubscriptionConfig) (*Snapshot, error) {
	adapters := make(map[string]PlatformAdapter, len(cfgs))
	for name, cfg := range cfgs {
		adapter, err := r.Build(name, cfg)
		if err != nil {
			return nil, fmt.Errorf("subscription %q: %w", name, err)
		}
		adapters[canonicalName(name)] = adapter
	}
	return &Snapshot{adapters: adapters}, nil
}

// Snapshot is an immutable set of built adapters.
type Snapshot struct {
	adapters map[string]PlatformAdapter
}

func (s *Snapshot) Adapter(platform string) (PlatformAdapter, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	a, ok := s.adapters[canonicalName(platform)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlatform, platform)
	}
	return a, nil
}

func (s *Snapshot) Platforms() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.adapters))
	for name := range s.adapters {
		out = append(out, name)
	}
	return out
}

func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
