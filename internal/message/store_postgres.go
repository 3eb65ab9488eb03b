package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "memberport/pkg/domain"
	"memberport/pkg/platform/sentinel"
	txcontext "memberport/pkg/platform/tx"
)

// Postgres persists messages in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const messageColumns = `id, sender_id, recipient_id, subject, body, sent_at, read_at`

func (s *Postgres) Create(ctx context.Context, m *Message) error {
	query := `INSERT INTO messages (` + messageColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(m.ID), uuid.UUID(m.SenderID), uuid.UUID(m.RecipientID),
		m.Subject, m.Body, m.SentAt, m.ReadAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Postgres) ListAll(ctx context.Context) ([]*Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages ORDER BY sent_at, id`
	return s.query(ctx, query)
}

func (s *Postgres) ListSentBefore(ctx context.Context, cutoff time.Time) ([]*Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE sent_at < $1 ORDER BY sent_at, id`
	return s.query(ctx, query, cutoff)
}

func (s *Postgres) ListByMember(ctx context.Context, memberID id.MemberID) ([]*Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY sent_at, id
	`
	return s.query(ctx, query, uuid.UUID(memberID))
}

func (s *Postgres) Delete(ctx context.Context, msgID id.MessageID) error {
	res, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM messages WHERE id = $1`, uuid.UUID(msgID))
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*Message, error) {
	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var (
			m           Message
			rawID       uuid.UUID
			senderID    uuid.UUID
			recipientID uuid.UUID
			readAt      sql.NullTime
		)
		if err := rows.Scan(&rawID, &senderID, &recipientID, &m.Subject, &m.Body, &m.SentAt, &readAt); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, sentinel.ErrNotFound
			}
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.ID = id.MessageID(rawID)
		m.SenderID = id.MemberID(senderID)
		m.RecipientID = id.MemberID(recipientID)
		if readAt.Valid {
			t := readAt.Time
			m.ReadAt = &t
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
