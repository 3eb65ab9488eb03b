package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"memberport/internal/member/models"
	id "memberport/pkg/domain"
	"memberport/pkg/platform/sentinel"
	txcontext "memberport/pkg/platform/tx"
)

// Postgres persists members in PostgreSQL. Queries join an enclosing
// transaction when one is present in the context.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const memberColumns = `id, email, first_name, last_name, phone, address, registration_number,
	status, role, marketing_consent, data_processing_consent, password_hash,
	created_at, updated_at, deleted_at`

func (s *Postgres) Create(ctx context.Context, m *models.Member) error {
	query := `
		INSERT INTO members (` + memberColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(m.ID), m.Email, m.FirstName, m.LastName, m.Phone, m.Address, m.RegistrationNumber,
		string(m.Status), string(m.Role), m.MarketingConsent, m.DataProcessingConsent, m.PasswordHash,
		m.CreatedAt, m.UpdatedAt, m.DeletedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	row := txcontext.RunnerFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(memberID))
	return scanMember(row)
}

func (s *Postgres) Update(ctx context.Context, m *models.Member) error {
	query := `
		UPDATE members
		SET email = $2, first_name = $3, last_name = $4, phone = $5, address = $6,
			registration_number = $7, status = $8, role = $9, marketing_consent = $10,
			data_processing_consent = $11, password_hash = $12, updated_at = $13, deleted_at = $14
		WHERE id = $1
	`
	res, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(m.ID), m.Email, m.FirstName, m.LastName, m.Phone, m.Address,
		m.RegistrationNumber, string(m.Status), string(m.Role), m.MarketingConsent,
		m.DataProcessingConsent, m.PasswordHash, m.UpdatedAt, m.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) ListSoftDeleteCandidates(ctx context.Context, cutoff time.Time) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE deleted_at IS NULL AND status != 'active' AND updated_at < $1
		ORDER BY id
	`
	return s.queryMembers(ctx, query, cutoff)
}

func (s *Postgres) ListAnonymizeCandidates(ctx context.Context, cutoff time.Time) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE deleted_at IS NOT NULL AND deleted_at < $1 AND first_name != $2
		ORDER BY id
	`
	return s.queryMembers(ctx, query, cutoff, models.AnonymizedFirstName)
}

func (s *Postgres) ListDeleted(ctx context.Context) ([]*models.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE deleted_at IS NOT NULL
		ORDER BY deleted_at DESC
	`
	return s.queryMembers(ctx, query)
}

func (s *Postgres) FindStaffRecipient(ctx context.Context) (*models.Member, error) {
	query := `
		SELECT ` + memberColumns + ` FROM members
		WHERE deleted_at IS NULL AND role IN ('staff', 'admin')
		ORDER BY id
		LIMIT 1
	`
	row := txcontext.RunnerFor(ctx, s.db).QueryRowContext(ctx, query)
	return scanMember(row)
}

func (s *Postgres) RetentionCounts(ctx context.Context) (models.RetentionCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE deleted_at IS NULL AND status = 'active'),
			COUNT(*) FILTER (WHERE deleted_at IS NOT NULL AND first_name != $1),
			COUNT(*) FILTER (WHERE first_name = $1)
		FROM members
	`
	var counts models.RetentionCounts
	err := txcontext.RunnerFor(ctx, s.db).QueryRowContext(ctx, query, models.AnonymizedFirstName).
		Scan(&counts.Total, &counts.Active, &counts.SoftDeleted, &counts.Anonymized)
	if err != nil {
		return models.RetentionCounts{}, fmt.Errorf("count members: %w", err)
	}
	return counts, nil
}

func (s *Postgres) ConsentCounts(ctx context.Context) (models.ConsentCounts, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE marketing_consent),
			COUNT(*) FILTER (WHERE data_processing_consent)
		FROM members
		WHERE deleted_at IS NULL
	`
	var counts models.ConsentCounts
	err := txcontext.RunnerFor(ctx, s.db).QueryRowContext(ctx, query).
		Scan(&counts.Total, &counts.MarketingConsent, &counts.ProcessingConsent)
	if err != nil {
		return models.ConsentCounts{}, fmt.Errorf("count consents: %w", err)
	}
	return counts, nil
}

func (s *Postgres) queryMembers(ctx context.Context, query string, args ...any) ([]*models.Member, error) {
	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query members: %w", err)
	}
	defer rows.Close()

	var out []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	var (
		m       models.Member
		rawID   uuid.UUID
		status  string
		role    string
		deleted sql.NullTime
	)
	err := row.Scan(
		&rawID, &m.Email, &m.FirstName, &m.LastName, &m.Phone, &m.Address, &m.RegistrationNumber,
		&status, &role, &m.MarketingConsent, &m.DataProcessingConsent, &m.PasswordHash,
		&m.CreatedAt, &m.UpdatedAt, &deleted,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan member: %w", err)
	}
	m.ID = id.MemberID(rawID)
	m.Status = id.MembershipStatus(status)
	m.Role = id.Role(role)
	if deleted.Valid {
		t := deleted.Time
		m.DeletedAt = &t
	}
	return &m, nil
}
