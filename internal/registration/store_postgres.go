package registration

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

// Postgres persists registrations in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const registrationColumns = `id, event_id, member_id, attendee_email, payment_status, amount_cents, created_at`

func (s *Postgres) Create(ctx context.Context, r *Registration) error {
	query := `
		INSERT INTO event_registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	var memberID any
	if r.MemberID != nil {
		memberID = uuid.UUID(*r.MemberID)
	}
	_, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.EventID), memberID, r.AttendeeEmail,
		string(r.PaymentStatus), r.AmountCents, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, regID id.RegistrationID) (*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE id = $1`
	row := txcontext.RunnerFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(regID))
	return scanRegistration(row)
}

func (s *Postgres) ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE created_at < $1 ORDER BY id`
	return s.query(ctx, query, cutoff)
}

func (s *Postgres) ListByMember(ctx context.Context, memberID id.MemberID) ([]*Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM event_registrations WHERE member_id = $1 ORDER BY created_at`
	return s.query(ctx, query, uuid.UUID(memberID))
}

func (s *Postgres) Delete(ctx context.Context, regID id.RegistrationID) error {
	res, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM event_registrations WHERE id = $1`, uuid.UUID(regID))
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*Registration, error) {
	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	var out []*Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*Registration, error) {
	var (
		r        Registration
		rawID    uuid.UUID
		eventID  uuid.UUID
		memberID uuid.NullUUID
		status   string
	)
	err := row.Scan(&rawID, &eventID, &memberID, &r.AttendeeEmail, &status, &r.AmountCents, &r.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan registration: %w", err)
	}
	r.ID = id.RegistrationID(rawID)
	r.EventID = id.EventID(eventID)
	if memberID.Valid {
		mid := id.MemberID(memberID.UUID)
		r.MemberID = &mid
	}
	r.PaymentStatus = PaymentStatus(status)
	return &r, nil
}
