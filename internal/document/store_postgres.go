package document

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

// Postgres persists documents in PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const documentColumns = `id, member_id, file_name, file_key, status, uploaded_at`

func (s *Postgres) Create(ctx context.Context, d *Document) error {
	query := `INSERT INTO documents (` + documentColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(d.ID), uuid.UUID(d.MemberID), d.FileName, d.FileKey, string(d.Status), d.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, docID id.DocumentID) (*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	row := txcontext.RunnerFor(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(docID))
	return scanDocument(row)
}

func (s *Postgres) ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE uploaded_at < $1 ORDER BY id`
	return s.query(ctx, query, cutoff)
}

func (s *Postgres) ListByMember(ctx context.Context, memberID id.MemberID) ([]*Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE member_id = $1 ORDER BY uploaded_at`
	return s.query(ctx, query, uuid.UUID(memberID))
}

func (s *Postgres) UpdateStatus(ctx context.Context, docID id.DocumentID, status VerificationStatus) error {
	res, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx,
		`UPDATE documents SET status = $2 WHERE id = $1`, uuid.UUID(docID), string(status))
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, docID id.DocumentID) error {
	res, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM documents WHERE id = $1`, uuid.UUID(docID))
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) query(ctx context.Context, query string, args ...any) ([]*Document, error) {
	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var out []*Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Document, error) {
	var (
		d        Document
		rawID    uuid.UUID
		memberID uuid.UUID
		status   string
	)
	err := row.Scan(&rawID, &memberID, &d.FileName, &d.FileKey, &status, &d.UploadedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	d.ID = id.DocumentID(rawID)
	d.MemberID = id.MemberID(memberID)
	d.Status = VerificationStatus(status)
	return &d, nil
}
