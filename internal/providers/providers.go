// Package providers registers the built-in platform adapters.
package providers

import (
	"triggerd/internal/providers/github"
	"triggerd/internal/providers/opsgenie"
	"triggerd/internal/providers/pagerduty"
	"triggerd/internal/trigger"
)

// RegisterDefaults installs every built-in adapter factory. Called once at
// process start, before any snapshot is built.
func RegisterDefaults(registry *trigger.Registry) {
	registry.Register("pagerduty", pagerduty.NewAdapter)
	registry.Register("opsgenie", opsgenie.NewAdapter)
	registry.Register("github", github.NewAdapter)
}
