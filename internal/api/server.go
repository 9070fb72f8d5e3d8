package api

import (
	"github.com/go-logr/logr"

	"triggerd/internal/observability"
	"triggerd/internal/queue"
	"triggerd/internal/store"
	"triggerd/internal/trigger"
)

// ReadPolicy guards the operator read surface. Empty token and disabled JWT
// leave it open (dev mode).
type ReadPolicy struct {
	Token string
	JWT   JWTPolicy
}

type JWTPolicy struct {
	Enabled     bool
	Issuer      string
	Audience    string
	HS256Secret string
}

type ServerOptions struct {
	Read    ReadPolicy
	Metrics *observability.WebhookMetrics
}

// Server is the webhook ingress. All request handling reads the frozen
// snapshot; nothing here mutates shared state.
type Server struct {
	snapshot *trigger.Snapshot
	queue    *queue.Queue
	journal  store.Repository
	logger   logr.Logger
	read     ReadPolicy
	metrics  *observability.WebhookMetrics
}

func NewServer(snapshot *trigger.Snapshot, q *queue.Queue, journal store.Repository, logger logr.Logger, opts ServerOptions) *Server {
	if journal == nil {
		journal = store.NewMemoryRepository()
	}
	return &Server{
		snapshot: snapshot,
		queue:    q,
		journal:  journal,
		logger:   logger,
		read:     opts.Read,
		metrics:  opts.Metrics,
	}
}
