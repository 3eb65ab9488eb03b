package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	id "memberport/pkg/domain"
	txcontext "memberport/pkg/platform/tx"
)

// PostgresStore persists audit entries. Each Append writes the entry and a
// matching outbox row in one transaction so the Kafka publisher never sees
// an event that is not durably stored.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_events (id, event, actor_id, target_id, details, source_ip, user_agent, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, entry.ID, entry.Event, memberIDOrNil(entry.ActorID), memberIDOrNil(entry.TargetID),
		details, entry.SourceIP, entry.UserAgent, entry.RequestID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}

	payload, err := json.Marshal(outboxPayload(entry))
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_outbox (event_id, payload, created_at)
		VALUES ($1, $2, $3)
	`, entry.ID, payload, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit tx: %w", err)
	}
	return nil
}

// Query builds the WHERE clause dynamically from whichever filters are set.
func (s *PostgresStore) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	filter = filter.Normalize()

	query := `
		SELECT id, event, actor_id, target_id, details, source_ip, user_agent, request_id, created_at
		FROM audit_events
		WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Event != "" {
		query += " AND event = " + arg(filter.Event)
	}
	if filter.MemberID != nil {
		p := arg(uuid.UUID(*filter.MemberID))
		query += " AND (target_id = " + p + " OR actor_id = " + p + ")"
	}
	if !filter.Start.IsZero() {
		query += " AND created_at >= " + arg(filter.Start)
	}
	if !filter.End.IsZero() {
		query += " AND created_at <= " + arg(filter.End)
	}
	query += " ORDER BY created_at DESC LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e          Entry
			actor      uuid.NullUUID
			target     uuid.NullUUID
			rawDetails []byte
		)
		err := rows.Scan(&e.ID, &e.Event, &actor, &target, &rawDetails,
			&e.SourceIP, &e.UserAgent, &e.RequestID, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if actor.Valid {
			a := id.MemberID(actor.UUID)
			e.ActorID = &a
		}
		if target.Valid {
			t := id.MemberID(target.UUID)
			e.TargetID = &t
		}
		if len(rawDetails) > 0 {
			if err := json.Unmarshal(rawDetails, &e.Details); err != nil {
				return nil, fmt.Errorf("decode audit details: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func memberIDOrNil(m *id.MemberID) any {
	if m == nil {
		return nil
	}
	return uuid.UUID(*m)
}

// outboxPayload is the wire shape published to Kafka.
func outboxPayload(e Entry) map[string]any {
	p := map[string]any{
		"id":         e.ID.String(),
		"event":      e.Event,
		"created_at": e.CreatedAt.Format(time.RFC3339Nano),
	}
	if e.ActorID != nil {
		p["actor_id"] = e.ActorID.String()
	}
	if e.TargetID != nil {
		p["target_id"] = e.TargetID.String()
	}
	if len(e.Details) > 0 {
		p["details"] = e.Details
	}
	return p
}
