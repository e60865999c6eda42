// Package events is the optional audit journal. The store writes one row per
// mutation; the actor and request ids come from the logging context.
package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"rcadesk/internal/logging"
)

type EventPayload map[string]any

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   int64  `json:"entity_id,omitempty"`
	ActorID    int64  `json:"actor_id,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
	Payload    string `json:"payload_json"`
}

type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

func (w Writer) Append(ctx context.Context, evtType, entityKind string, entityID int64, payload EventPayload) error {
	if w.Now == nil {
		w.Now = time.Now
	}
	ts := w.Now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = EventPayload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = w.DB.ExecContext(ctx, `INSERT INTO events(ts,type,entity_kind,entity_id,actor_id,request_id,payload_json) VALUES (?,?,?,?,?,?,?)`,
		ts, evtType, entityKind, nullableInt(entityID), nullableInt(logging.ActorID(ctx)), nullable(logging.RequestID(ctx)), string(data))
	if err != nil {
		return fmt.Errorf("insert event %s: %w", evtType, err)
	}
	return nil
}

// Tail returns the newest n events, optionally filtered by type, newest first.
func (w Writer) Tail(ctx context.Context, n int, evtType string) ([]Event, error) {
	if n <= 0 {
		n = 20
	}
	query := `SELECT id,ts,type,entity_kind,COALESCE(entity_id,0),COALESCE(actor_id,0),COALESCE(request_id,''),payload_json FROM events`
	args := []any{}
	if evtType != "" {
		query += ` WHERE type=?`
		args = append(args, evtType)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, n)
	rows, err := w.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.EntityKind, &e.EntityID, &e.ActorID, &e.RequestID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
