package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type sqlSink struct {
	db *sql.DB
}

// NewSQLSink persists events to the shared events table.
func NewSQLSink(db *sql.DB) Sink {
	return &sqlSink{db: db}
}

func (s *sqlSink) Save(ctx context.Context, e Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, event_type, event_data, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Type, string(data), e.CreatedAt.Unix(),
	)
	return err
}

func (s *sqlSink) GetByType(ctx context.Context, eventType string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_type, event_data, created_at FROM events WHERE event_type = ? ORDER BY created_at`,
		eventType,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var e Event
		var data string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.Type, &data, &createdAt); err != nil {
			return events, err
		}
		if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
			return events, err
		}
		e.CreatedAt = time.Unix(createdAt, 0).UTC()
		events = append(events, e)
	}
	return events, rows.Err()
}
