package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"triggerd/internal/trigger"
)

type Config struct {
	Addr          string `mapstructure:"addr"`
	QueueCapacity int    `mapstructure:"queue_capacity"`
	SinkURL       string `mapstructure:"sink_url"`
	DevInsecure   bool   `mapstructure:"dev_insecure"`

	DBDriver  string `mapstructure:"db_driver"`
	DBDSN     string `mapstructure:"db_dsn"`
	DBDialect string `mapstructure:"db_dialect"`

	Auth      AuthConfig     `mapstructure:"auth"`
	Dispatch  DispatchConfig `mapstructure:"dispatch"`
	Providers ProviderConfig `mapstructure:"providers"`
}

type AuthConfig struct {
	Read BearerAuth `mapstructure:"read"`
	JWT  JWTAuth    `mapstructure:"jwt"`
}

type BearerAuth struct {
	Token string `mapstructure:"token"`
}

type JWTAuth struct {
	Enabled     bool   `mapstructure:"enabled"`
	Issuer      string `mapstructure:"issuer"`
	Audience    string `mapstructure:"audience"`
	HS256Secret string `mapstructure:"hs256_secret"`
}

type DispatchConfig struct {
	RatePerMinute int `mapstructure:"rate_per_min"`
	MaxAttempts   int `mapstructure:"max_attempts"`
}

type ProviderConfig struct {
	PagerDuty Subscription `mapstructure:"pagerduty"`
	Opsgenie  Subscription `mapstructure:"opsgenie"`
	GitHub    Subscription `mapstructure:"github"`
}

// Subscription configures one platform adapter. A subscription with no
// webhook secret is considered disabled and is never registered.
type Subscription struct {
	WebhookSecret string       `mapstructure:"webhook_secret"`
	APIToken      string       `mapstructure:"api_token"`
	From          string       `mapstructure:"from"`
	Filter        FilterConfig `mapstructure:"filter"`
}

// FilterConfig is the env-friendly rendering of filter criteria: list fields
// are comma-separated.
type FilterConfig struct {
	EventTypes      string `mapstructure:"event_types"`
	AllowedServices string `mapstructure:"allowed_services"`
	AllowedTeams    string `mapstructure:"allowed_teams"`
	MinPriority     string `mapstructure:"min_priority"`
	MinUrgency      string `mapstructure:"min_urgency"`
}

func (s Subscription) Enabled() bool {
	return strings.TrimSpace(s.WebhookSecret) != ""
}

// ToSubscriptionConfig translates the env shape into the registry's config.
func (s Subscription) ToSubscriptionConfig() trigger.SubscriptionConfig {
	return trigger.SubscriptionConfig{
		WebhookSecret: strings.TrimSpace(s.WebhookSecret),
		APIToken:      strings.TrimSpace(s.APIToken),
		From:          strings.TrimSpace(s.From),
		Filter: trigger.FilterCriteria{
			EventTypes:      splitCSV(s.Filter.EventTypes),
			AllowedServices: splitCSV(s.Filter.AllowedServices),
			AllowedTeams:    splitCSV(s.Filter.AllowedTeams),
			MinPriority:     strings.TrimSpace(s.Filter.MinPriority),
			MinUrgency:      strings.TrimSpace(s.Filter.MinUrgency),
		},
	}
}

// Subscriptions returns the enabled platform subscriptions keyed by platform
// name, ready for the registry snapshot build.
func (c Config) Subscriptions() map[string]trigger.SubscriptionConfig {
	out := map[string]trigger.SubscriptionConfig{}
	if c.Providers.PagerDuty.Enabled() {
		out["pagerduty"] = c.Providers.PagerDuty.ToSubscriptionConfig()
	}
	if c.Providers.Opsgenie.Enabled() {
		out["opsgenie"] = c.Providers.Opsgenie.ToSubscriptionConfig()
	}
	if c.Providers.GitHub.Enabled() {
		out["github"] = c.Providers.GitHub.ToSubscriptionConfig()
	}
	return out
}

func LoadFromEnv() Config {
	v := viper.New()
	v.SetEnvPrefix("TRIGGERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("addr", ":8080")
	v.SetDefault("queue_capacity", 256)
	v.SetDefault("dev_insecure", false)
	v.SetDefault("auth.jwt.enabled", false)
	v.SetDefault("dispatch.rate_per_min", 60)
	v.SetDefault("dispatch.max_attempts", 3)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/triggerd/")

	_ = v.ReadInConfig() // ignore if not found

	// Nested struct keys need explicit binds for env-only deployments.
	bindings := map[string]string{
		"auth.read.token":                     "TRIGGERD_READ_TOKEN",
		"auth.jwt.enabled":                    "TRIGGERD_AUTH_JWT_ENABLED",
		"auth.jwt.issuer":                     "TRIGGERD_AUTH_JWT_ISSUER",
		"auth.jwt.audience":                   "TRIGGERD_AUTH_JWT_AUDIENCE",
		"auth.jwt.hs256_secret":               "TRIGGERD_AUTH_JWT_HS256_SECRET",
		"dispatch.rate_per_min":               "TRIGGERD_DISPATCH_RATE_PER_MIN",
		"dispatch.max_attempts":               "TRIGGERD_DISPATCH_MAX_ATTEMPTS",
	}
	for _, platform := range []string{"pagerduty", "opsgenie", "github"} {
		env := strings.ToUpper(platform)
		bindings["providers."+platform+".webhook_secret"] = "TRIGGERD_" + env + "_WEBHOOK_SECRET"
		bindings["providers."+platform+".api_token"] = "TRIGGERD_" + env + "_API_TOKEN"
		bindings["providers."+platform+".from"] = "TRIGGERD_" + env + "_FROM"
		bindings["providers."+platform+".filter.event_types"] = "TRIGGERD_" + env + "_FILTER_EVENT_TYPES"
		bindings["providers."+platform+".filter.allowed_services"] = "TRIGGERD_" + env + "_FILTER_ALLOWED_SERVICES"
		bindings["providers."+platform+".filter.allowed_teams"] = "TRIGGERD_" + env + "_FILTER_ALLOWED_TEAMS"
		bindings["providers."+platform+".filter.min_priority"] = "TRIGGERD_" + env + "_FILTER_MIN_PRIORITY"
		bindings["providers."+platform+".filter.min_urgency"] = "TRIGGERD_" + env + "_FILTER_MIN_URGENCY"
	}
	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		fmt.Printf("Warning: failed to unmarshal config: %v\n", err)
	}

	if cfg.DBDialect == "" {
		cfg.DBDialect = cfg.DBDriver
	}
	return cfg
}

func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Addr) == "" {
		problems = append(problems, "TRIGGERD_ADDR must not be empty")
	}
	if c.QueueCapacity < 1 {
		problems = append(problems, "TRIGGERD_QUEUE_CAPACITY must be a positive integer")
	}
	if c.DBDSN != "" && c.DBDriver == "" {
		problems = append(problems, "TRIGGERD_DB_DRIVER is required when TRIGGERD_DB_DSN is set")
	}
	if c.DBDriver != "" && c.DBDSN == "" {
		problems = append(problems, "TRIGGERD_DB_DSN is required when TRIGGERD_DB_DRIVER is set")
	}
	if len(c.Subscriptions()) == 0 {
		problems = append(problems, "no platform subscription is configured; set at least one of TRIGGERD_PAGERDUTY_WEBHOOK_SECRET, TRIGGERD_OPSGENIE_WEBHOOK_SECRET, TRIGGERD_GITHUB_WEBHOOK_SECRET")
	}
	if !c.DevInsecure {
		readAuthConfigured := strings.TrimSpace(c.Auth.Read.Token) != "" || c.Auth.JWT.Enabled
		if !readAuthConfigured {
			problems = append(problems, "read auth is not configured; set TRIGGERD_READ_TOKEN or enable JWT, or explicitly set TRIGGERD_DEV_INSECURE=true for local development only")
		}
	}
	if c.Auth.JWT.Enabled {
		if strings.TrimSpace(c.Auth.JWT.Issuer) == "" {
			problems = append(problems, "TRIGGERD_AUTH_JWT_ISSUER is required when TRIGGERD_AUTH_JWT_ENABLED=true")
		}
		if strings.TrimSpace(c.Auth.JWT.Audience) == "" {
			problems = append(problems, "TRIGGERD_AUTH_JWT_AUDIENCE is required when TRIGGERD_AUTH_JWT_ENABLED=true")
		}
		if strings.TrimSpace(c.Auth.JWT.HS256Secret) == "" {
			problems = append(problems, "TRIGGERD_AUTH_JWT_HS256_SECRET is required when TRIGGERD_AUTH_JWT_ENABLED=true")
		}
	}
	for _, sub := range []struct {
		name string
		cfg  Subscription
	}{
		{"PAGERDUTY", c.Providers.PagerDuty},
		{"OPSGENIE", c.Providers.Opsgenie},
		{"GITHUB", c.Providers.GitHub},
	} {
		if !sub.cfg.Enabled() {
			continue
		}
		if p := strings.ToUpper(strings.TrimSpace(sub.cfg.Filter.MinPriority)); p != "" {
			if len(p) != 2 || p[0] != 'P' || p[1] < '1' || p[1] > '5' {
				problems = append(problems, "TRIGGERD_"+sub.name+"_FILTER_MIN_PRIORITY must be one of P1..P5")
			}
		}
		if u := strings.ToLower(strings.TrimSpace(sub.cfg.Filter.MinUrgency)); u != "" && u != "high" && u != "low" {
			problems = append(problems, "TRIGGERD_"+sub.name+"_FILTER_MIN_URGENCY must be high or low")
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.New(strings.Join(problems, "; "))
}

type StartupSummary struct {
	RepositoryMode string
	Platforms      []string
	QueueCapacity  int
	SinkConfigured bool
	JWTEnabled     bool
	DevInsecure    bool
}

func (c Config) Summary() StartupSummary {
	mode := "memory"
	if c.DBDriver != "" && c.DBDSN != "" {
		mode = "sql:" + c.DBDialect
	}
	var platforms []string
	for name := range c.Subscriptions() {
		platforms = append(platforms, name)
	}
	return StartupSummary{
		RepositoryMode: mode,
		Platforms:      platforms,
		QueueCapacity:  c.QueueCapacity,
		SinkConfigured: strings.TrimSpace(c.SinkURL) != "",
		JWTEnabled:     c.Auth.JWT.Enabled,
		DevInsecure:    c.DevInsecure,
	}
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
