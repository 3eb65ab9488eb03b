package dsr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"memberport/internal/audit"
	"memberport/internal/billing"
	"memberport/internal/document"
	"memberport/internal/member/models"
	"memberport/internal/message"
	"memberport/internal/platform/metrics"
	"memberport/internal/registration"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/platform/sentinel"
	"memberport/pkg/requestcontext"
)

// MemberStore provides member lookup and the staff recipient search used for
// request submission.
type MemberStore interface {
	FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	FindStaffRecipient(ctx context.Context) (*models.Member, error)
}

// MessageStore provides the message corpus for classification and export,
// and message creation for request submission.
type MessageStore interface {
	Create(ctx context.Context, m *message.Message) error
	ListAll(ctx context.Context) ([]*message.Message, error)
	ListByMember(ctx context.Context, memberID id.MemberID) ([]*message.Message, error)
}

type DocumentStore interface {
	ListByMember(ctx context.Context, memberID id.MemberID) ([]*document.Document, error)
}

type RegistrationStore interface {
	ListByMember(ctx context.Context, memberID id.MemberID) ([]*registration.Registration, error)
}

type BillingStore interface {
	ListPaymentsByMember(ctx context.Context, memberID id.MemberID) ([]*billing.Payment, error)
	ListInvoicesByMember(ctx context.Context, memberID id.MemberID) ([]*billing.Invoice, error)
}

type Recorder interface {
	Record(ctx context.Context, event string, target *id.MemberID, details map[string]any)
}

type Service struct {
	members       MemberStore
	messages      MessageStore
	documents     DocumentStore
	registrations RegistrationStore
	billing       BillingStore
	recorder      Recorder
	logger        *slog.Logger
	metrics       *metrics.Metrics
}

func NewService(
	members MemberStore,
	messages MessageStore,
	documents DocumentStore,
	registrations RegistrationStore,
	billingStore BillingStore,
	recorder Recorder,
	logger *slog.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		members:       members,
		messages:      messages,
		documents:     documents,
		registrations: registrations,
		billing:       billingStore,
		recorder:      recorder,
		logger:        logger,
		metrics:       m,
	}
}

// ListRequests returns all messages classified as data subject requests.
func (s *Service) ListRequests(ctx context.Context) ([]*message.Message, error) {
	msgs, err := s.messages.ListAll(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load messages")
	}
	return Classify(msgs), nil
}

// Export assembles the member's personal data bundle. The per-entity reads
// are independent, so they run concurrently; any failure makes the whole
// export fail since an incomplete bundle is non-compliant.
func (s *Service) Export(ctx context.Context, memberID id.MemberID) (*ExportBundle, error) {
	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "member lookup failed")
	}

	var (
		mu     sync.Mutex
		bundle = ExportBundle{
			GeneratedAt: requestcontext.Now(ctx).UTC(),
			Profile:     exportProfile(m),
		}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := s.documents.ListByMember(gctx, memberID)
		if err != nil {
			return fmt.Errorf("documents: %w", err)
		}
		mu.Lock()
		bundle.Documents = exportDocuments(docs)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		regs, err := s.registrations.ListByMember(gctx, memberID)
		if err != nil {
			return fmt.Errorf("registrations: %w", err)
		}
		mu.Lock()
		bundle.Registrations = exportRegistrations(regs)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		payments, err := s.billing.ListPaymentsByMember(gctx, memberID)
		if err != nil {
			return fmt.Errorf("payments: %w", err)
		}
		mu.Lock()
		bundle.Payments = exportPayments(payments)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		invoices, err := s.billing.ListInvoicesByMember(gctx, memberID)
		if err != nil {
			return fmt.Errorf("invoices: %w", err)
		}
		mu.Lock()
		bundle.Invoices = exportInvoices(invoices)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		msgs, err := s.messages.ListByMember(gctx, memberID)
		if err != nil {
			return fmt.Errorf("messages: %w", err)
		}
		mu.Lock()
		bundle.Messages = exportMessages(msgs, memberID)
		mu.Unlock()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to assemble data export")
	}

	s.recorder.Record(ctx, audit.EventDataExportServed, &memberID, map[string]any{
		"documents":     len(bundle.Documents),
		"registrations": len(bundle.Registrations),
		"payments":      len(bundle.Payments),
		"invoices":      len(bundle.Invoices),
		"messages":      len(bundle.Messages),
	})
	return &bundle, nil
}

// Submit files a correction or deletion request on behalf of the member. The
// member's own record is not mutated; the request becomes a message to an
// available staff account plus an audit entry. A missing staff recipient is
// a deployment misconfiguration and fails the request loudly, because a
// silently dropped legal request is a compliance incident.
func (s *Service) Submit(ctx context.Context, memberID id.MemberID, kind Kind, detail string) error {
	if kind != KindCorrection && kind != KindDeletion {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown request kind")
	}

	m, err := s.members.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "member not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "member lookup failed")
	}

	recipient, err := s.members.FindStaffRecipient(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnavailable, "no staff account available to receive data requests")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "staff recipient lookup failed")
	}

	now := requestcontext.Now(ctx).UTC()
	msg := &message.Message{
		ID:          id.MessageID(uuid.New()),
		SenderID:    memberID,
		RecipientID: recipient.ID,
		Subject:     subjectFor(kind),
		Body:        bodyFor(kind, m.Email, detail),
		SentAt:      now,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to file data request")
	}

	s.recorder.Record(ctx, audit.EventDSRRequestSubmitted, &memberID, map[string]any{
		"kind":       string(kind),
		"message_id": msg.ID.String(),
	})
	if s.metrics != nil {
		s.metrics.DSRSubmissions.WithLabelValues(string(kind)).Inc()
	}
	s.logger.InfoContext(ctx, "data subject request submitted",
		"kind", kind, "member_id", memberID, "recipient_id", recipient.ID)
	return nil
}

func subjectFor(kind Kind) string {
	if kind == KindDeletion {
		return "Account deletion request"
	}
	return "Data correction request"
}

func bodyFor(kind Kind, email, detail string) string {
	var action string
	if kind == KindDeletion {
		action = "requested deletion of their account and personal data"
	} else {
		action = "requested a correction of their personal data"
	}
	body := fmt.Sprintf("Member %s has %s.", email, action)
	if detail != "" {
		body += "\n\nMember note: " + detail
	}
	return body
}
