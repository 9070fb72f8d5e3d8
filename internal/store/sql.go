package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLRepository journals deliveries into postgres (pgx stdlib driver) or
// sqlite (modernc).
type SQLRepository struct {
	db      *sql.DB
	dialect string
}

func NewSQLRepository(db *sql.DB, dialect string) (*SQLRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("nil db")
	}
	d := strings.ToLower(strings.TrimSpace(dialect))
	if d != "postgres" && d != "sqlite" {
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	return &SQLRepository{db: db, dialect: d}, nil
}

// EnsureSchema creates the deliveries table when missing. The schema is small
// enough that a migration runner would be ceremony.
func (s *SQLRepository) EnsureSchema(ctx context.Context) error {
	ts := "TIMESTAMPTZ"
	if s.dialect == "sqlite" {
		ts = "TEXT"
	}
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS deliveries (
		id TEXT PRIMARY KEY,
		platform TEXT NOT NULL,
		event_id TEXT,
		event_type TEXT,
		outcome TEXT NOT NULL,
		reason TEXT,
		received_at %s NOT NULL,
		duration_ms BIGINT NOT NULL DEFAULT 0
	)`, ts))
	return err
}

func (s *SQLRepository) RecordDelivery(ctx context.Context, d Delivery) error {
	if err := validateDelivery(d); err != nil {
		return err
	}
	query := "INSERT INTO deliveries (id, platform, event_id, event_type, outcome, reason, received_at, duration_ms) VALUES (" +
		s.ph(1) + "," + s.ph(2) + "," + s.ph(3) + "," + s.ph(4) + "," + s.ph(5) + "," + s.ph(6) + "," + s.ph(7) + "," + s.ph(8) + ")"
	_, err := s.db.ExecContext(ctx, query,
		d.ID, d.Platform, nullable(d.EventID), nullable(d.EventType),
		string(d.Outcome), nullable(d.Reason), s.tsValue(d.ReceivedAt), d.DurationMS)
	return err
}

func (s *SQLRepository) ListDeliveries(ctx context.Context, q Query) ([]Delivery, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}
	var (
		conds []string
		args  []interface{}
	)
	if q.Platform != "" {
		args = append(args, strings.ToLower(q.Platform))
		conds = append(conds, "platform = "+s.ph(len(args)))
	}
	if q.Outcome != "" {
		args = append(args, string(q.Outcome))
		conds = append(conds, "outcome = "+s.ph(len(args)))
	}
	query := "SELECT id, platform, event_id, event_type, outcome, reason, received_at, duration_ms FROM deliveries"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit)
	query += " ORDER BY received_at DESC LIMIT " + s.ph(len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Delivery, 0, limit)
	for rows.Next() {
		var (
			d          Delivery
			eventID    sql.NullString
			eventType  sql.NullString
			reason     sql.NullString
			receivedAt string
			outcome    string
		)
		if s.dialect == "postgres" {
			var ts sql.NullTime
			if err := rows.Scan(&d.ID, &d.Platform, &eventID, &eventType, &outcome, &reason, &ts, &d.DurationMS); err != nil {
				return nil, err
			}
			d.ReceivedAt = ts.Time.UTC()
		} else {
			if err := rows.Scan(&d.ID, &d.Platform, &eventID, &eventType, &outcome, &reason, &receivedAt, &d.DurationMS); err != nil {
				return nil, err
			}
			d.ReceivedAt = parseSQLiteTime(receivedAt)
		}
		d.EventID = eventID.String
		d.EventType = eventType.String
		d.Reason = reason.String
		d.Outcome = Outcome(outcome)
		out = append(out, d)
	}
	return out, rows.Err()
}
