package security

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const insertEventSQL = `
	INSERT INTO security_events (
		event_type, level, subject_type, subject_value,
		ip_address, user_agent, request_id, details, created_at
	) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)`

// SecurityEventRepository stores security events for later auditing.
type SecurityEventRepository struct {
	db *pgxpool.Pool
}

func NewSecurityEventRepository(db *pgxpool.Pool) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// PersistEvent matches SecurityLogger.SetPersistFunc.
func (r *SecurityEventRepository) PersistEvent(ctx context.Context, event SecurityEvent) error {
	var details []byte
	if len(event.Details) > 0 {
		b, err := json.Marshal(event.Details)
		if err != nil {
			return fmt.Errorf("marshal security event details: %w", err)
		}
		details = b
	}

	_, err := r.db.Exec(ctx, insertEventSQL,
		string(event.Event), event.Level, event.SubjectType, event.SubjectValue,
		event.IP, event.UserAgent, event.RequestID, details, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("persist security event %s: %w", event.Event, err)
	}
	return nil
}

// PurgeBefore removes events older than before and reports how many went.
func (r *SecurityEventRepository) PurgeBefore(ctx context.Context, before time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM security_events WHERE created_at < $1`, before)
	if err != nil {
		return 0, fmt.Errorf("purge security events: %w", err)
	}
	return tag.RowsAffected(), nil
}
