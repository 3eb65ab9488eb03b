package billing

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "memberport/pkg/domain"
	txcontext "memberport/pkg/platform/tx"
)

// Postgres persists financial records. Append and read only: no UPDATE or
// DELETE statement exists in this file, which is how the legal-hold
// invariant is enforced.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) RecordPayment(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, member_id, registration_id, amount_cents, currency, status, created_at, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	var regID any
	if p.RegistrationID != nil {
		regID = uuid.UUID(*p.RegistrationID)
	}
	_, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(p.ID), uuid.UUID(p.MemberID), regID,
		p.AmountCents, p.Currency, string(p.Status), p.CreatedAt, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *Postgres) RecordInvoice(ctx context.Context, inv *Invoice) error {
	query := `
		INSERT INTO invoices (id, member_id, number, amount_cents, currency, status, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := txcontext.RunnerFor(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(inv.ID), uuid.UUID(inv.MemberID), inv.Number,
		inv.AmountCents, inv.Currency, string(inv.Status), inv.IssuedAt,
	)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

func (s *Postgres) ListPaymentsByMember(ctx context.Context, memberID id.MemberID) ([]*Payment, error) {
	query := `
		SELECT id, member_id, registration_id, amount_cents, currency, status, created_at, paid_at
		FROM payments WHERE member_id = $1 ORDER BY created_at
	`
	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, uuid.UUID(memberID))
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		var (
			p      Payment
			rawID  uuid.UUID
			member uuid.UUID
			regID  uuid.NullUUID
			status string
			paidAt sql.NullTime
		)
		if err := rows.Scan(&rawID, &member, &regID, &p.AmountCents, &p.Currency, &status, &p.CreatedAt, &paidAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.ID = id.PaymentID(rawID)
		p.MemberID = id.MemberID(member)
		if regID.Valid {
			rid := id.RegistrationID(regID.UUID)
			p.RegistrationID = &rid
		}
		p.Status = PaymentStatus(status)
		if paidAt.Valid {
			t := paidAt.Time
			p.PaidAt = &t
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (s *Postgres) ListInvoicesByMember(ctx context.Context, memberID id.MemberID) ([]*Invoice, error) {
	query := `
		SELECT id, member_id, number, amount_cents, currency, status, issued_at
		FROM invoices WHERE member_id = $1 ORDER BY issued_at
	`
	rows, err := txcontext.RunnerFor(ctx, s.db).QueryContext(ctx, query, uuid.UUID(memberID))
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	var out []*Invoice
	for rows.Next() {
		var (
			inv    Invoice
			rawID  uuid.UUID
			member uuid.UUID
			status string
		)
		if err := rows.Scan(&rawID, &member, &inv.Number, &inv.AmountCents, &inv.Currency, &status, &inv.IssuedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		inv.ID = id.InvoiceID(rawID)
		inv.MemberID = id.MemberID(member)
		inv.Status = InvoiceStatus(status)
		out = append(out, &inv)
	}
	return out, rows.Err()
}
