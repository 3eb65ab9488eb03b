package billing

import (
	"context"
	"sort"
	"sync"

	id "memberport/pkg/domain"
)

// InMemory keeps financial records in mutex-guarded maps. Append and read
// only; there is intentionally no delete or update surface.
type InMemory struct {
	mu       sync.RWMutex
	payments map[id.PaymentID]*Payment
	invoices map[id.InvoiceID]*Invoice
}

func NewInMemory() *InMemory {
	return &InMemory{
		payments: make(map[id.PaymentID]*Payment),
		invoices: make(map[id.InvoiceID]*Invoice),
	}
}

func (s *InMemory) RecordPayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.payments[p.ID] = &cp
	return nil
}

func (s *InMemory) RecordInvoice(_ context.Context, inv *Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *inv
	s.invoices[inv.ID] = &cp
	return nil
}

// ListPaymentsByMember returns a member's payments, oldest first.
func (s *InMemory) ListPaymentsByMember(_ context.Context, memberID id.MemberID) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Payment
	for _, p := range s.payments {
		if p.MemberID == memberID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListInvoicesByMember returns a member's invoices, oldest first.
func (s *InMemory) ListInvoicesByMember(_ context.Context, memberID id.MemberID) ([]*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Invoice
	for _, inv := range s.invoices {
		if inv.MemberID == memberID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.Before(out[j].IssuedAt) })
	return out, nil
}

// AllPayments returns every payment row. Used by invariant tests to verify
// the retention engine never touches financial records.
func (s *InMemory) AllPayments(_ context.Context) ([]*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Payment
	for _, p := range s.payments {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// AllInvoices returns every invoice row.
func (s *InMemory) AllInvoices(_ context.Context) ([]*Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Invoice
	for _, inv := range s.invoices {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}
