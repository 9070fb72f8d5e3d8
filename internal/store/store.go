// Package store is the delivery journal: a best-effort record of every
// webhook delivery this process handled and how it terminated. It never
// suppresses deliveries; de-duplication stays with the downstream consumer.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Outcome is the terminal state of one webhook delivery.
type Outcome string

const (
	OutcomeAccepted   Outcome = "accepted"
	OutcomeFiltered   Outcome = "filtered"
	OutcomeRejected   Outcome = "rejected"
	OutcomeError      Outcome = "error"
	OutcomeOverloaded Outcome = "overloaded"
)

// Delivery is one journal row.
type Delivery struct {
	ID         string    `json:"id"`
	Platform   string    `json:"platform"`
	EventID    string    `json:"event_id,omitempty"`
	EventType  string    `json:"event_type,omitempty"`
	Outcome    Outcome   `json:"outcome"`
	Reason     string    `json:"reason,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
	DurationMS int64     `json:"duration_ms"`
}

// Query restricts ListDeliveries. Zero values impose nothing.
type Query struct {
	Platform string
	Outcome  Outcome
	Limit    int
}

type Repository interface {
	RecordDelivery(ctx context.Context, d Delivery) error
	ListDeliveries(ctx context.Context, q Query) ([]Delivery, error)
}

const defaultMemoryCapacity = 1024

// MemoryRepository keeps the most recent deliveries in a bounded ring.
type MemoryRepository struct {
	mu       sync.Mutex
	capacity int
	rows     []Delivery
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{capacity: defaultMemoryCapacity}
}

func (m *MemoryRepository) RecordDelivery(_ context.Context, d Delivery) error {
	if err := validateDelivery(d); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, d)
	if len(m.rows) > m.capacity {
		m.rows = m.rows[len(m.rows)-m.capacity:]
	}
	return nil
}

func (m *MemoryRepository) ListDeliveries(_ context.Context, q Query) ([]Delivery, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, 0, limit)
	for i := len(m.rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := m.rows[i]
		if q.Platform != "" && !strings.EqualFold(row.Platform, q.Platform) {
			continue
		}
		if q.Outcome != "" && row.Outcome != q.Outcome {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func validateDelivery(d Delivery) error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.Join(ErrInvalidInput, errors.New("empty delivery id"))
	}
	if strings.TrimSpace(d.Platform) == "" {
		return errors.Join(ErrInvalidInput, errors.New("empty platform"))
	}
	if d.Outcome == "" {
		return errors.Join(ErrInvalidInput, errors.New("empty outcome"))
	}
	return nil
}
