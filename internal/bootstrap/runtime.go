package bootstrap

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"triggerd/internal/api"
	"triggerd/internal/config"
	"triggerd/internal/dispatch"
	"triggerd/internal/forward"
	"triggerd/internal/observability"
	"triggerd/internal/providers"
	"triggerd/internal/queue"
	"triggerd/internal/store"
	"triggerd/internal/trigger"

	_ "github.com/jackc/pgx/v5/stdlib"

	_ "modernc.org/sqlite"
)

type Runtime struct {
	Handler    http.Handler
	Dispatcher *dispatch.Dispatcher
	Cleanup    func()
}

// NewRuntime wires the full pipeline: registry snapshot, handoff queue,
// delivery journal, ingress server, metrics and the sink forwarder. The
// forwarder goroutine stops with ctx.
func NewRuntime(ctx context.Context, cfg config.Config, logger logr.Logger) (*Runtime, error) {
	registry := trigger.NewRegistry()
	providers.RegisterDefaults(registry)
	snapshot, err := registry.BuildSnapshot(cfg.Subscriptions())
	if err != nil {
		return nil, err
	}

	q := queue.New(cfg.QueueCapacity)
	journal, cleanup := buildJournal(ctx, cfg)
	metrics := observability.NewWebhookMetrics(func() float64 { return float64(q.Len()) })

	server := api.NewServer(snapshot, q, journal, logger.WithName("api"), api.ServerOptions{
		Read: api.ReadPolicy{
			Token: cfg.Auth.Read.Token,
			JWT: api.JWTPolicy{
				Enabled:     cfg.Auth.JWT.Enabled,
				Issuer:      cfg.Auth.JWT.Issuer,
				Audience:    cfg.Auth.JWT.Audience,
				HS256Secret: cfg.Auth.JWT.HS256Secret,
			},
		},
		Metrics: metrics,
	})

	forwarder, err := forward.New(q, cfg.SinkURL, logger.WithName("forward"))
	if err != nil {
		cleanup()
		return nil, err
	}
	go func() { _ = forwarder.Run(ctx) }()

	dispatcher := dispatch.NewDispatcher(snapshot, logger.WithName("dispatch"), dispatch.Options{
		MaxAttempts:   cfg.Dispatch.MaxAttempts,
		RatePerMinute: cfg.Dispatch.RatePerMinute,
		Metrics:       metrics,
	})

	httpMetrics := observability.NewHTTPMetrics()
	rootMux := http.NewServeMux()
	rootMux.Handle("/metrics", promhttp.Handler())
	rootMux.Handle("/", httpMetrics.Wrap(server.Routes()))

	return &Runtime{
		Handler:    rootMux,
		Dispatcher: dispatcher,
		Cleanup:    cleanup,
	}, nil
}

func buildJournal(ctx context.Context, cfg config.Config) (store.Repository, func()) {
	if cfg.DBDriver == "" || cfg.DBDSN == "" {
		log.Printf("running with in-memory delivery journal")
		return store.NewMemoryRepository(), func() {}
	}

	db, err := sql.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		log.Printf("db open failed (%v), falling back to in-memory journal", err)
		return store.NewMemoryRepository(), func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("db ping failed (%v), falling back to in-memory journal", err)
		_ = db.Close()
		return store.NewMemoryRepository(), func() {}
	}

	repo, err := store.NewSQLRepository(db, cfg.DBDialect)
	if err != nil {
		log.Printf("sql journal init failed (%v), falling back to in-memory journal", err)
		_ = db.Close()
		return store.NewMemoryRepository(), func() {}
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Printf("schema apply failed (%v), falling back to in-memory journal", err)
		_ = db.Close()
		return store.NewMemoryRepository(), func() {}
	}
	log.Printf("running with SQL delivery journal: dialect=%s", cfg.DBDialect)
	return repo, func() { _ = db.Close() }
}
