package dsr

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"memberport/internal/audit"
	"memberport/internal/billing"
	"memberport/internal/document"
	"memberport/internal/member/models"
	memberstore "memberport/internal/member/store"
	"memberport/internal/message"
	"memberport/internal/registration"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/requestcontext"
)

// =============================================================================
// DSR Service Test Suite
// =============================================================================

type DSRServiceSuite struct {
	suite.Suite
	now           time.Time
	members       *memberstore.InMemory
	messages      *message.InMemory
	documents     *document.InMemory
	registrations *registration.InMemory
	billing       *billing.InMemory
	auditStore    *audit.InMemoryStore
	service       *Service
}

func TestDSRServiceSuite(t *testing.T) {
	suite.Run(t, new(DSRServiceSuite))
}

func (s *DSRServiceSuite) SetupTest() {
	s.now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.members = memberstore.NewInMemory()
	s.messages = message.NewInMemory()
	s.documents = document.NewInMemory()
	s.registrations = registration.NewInMemory()
	s.billing = billing.NewInMemory()
	s.auditStore = audit.NewInMemoryStore()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := audit.NewRecorder(s.auditStore, logger, nil)
	s.service = NewService(s.members, s.messages, s.documents, s.registrations, s.billing, recorder, logger, nil)
}

func (s *DSRServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(), s.now)
}

func (s *DSRServiceSuite) addMember(email string, role id.Role) *models.Member {
	s.T().Helper()
	m := &models.Member{
		ID:        id.NewMemberID(),
		Email:     email,
		FirstName: "Anna",
		LastName:  "Korhonen",
		Status:    id.MembershipActive,
		Role:      role,
		CreatedAt: s.now.Add(-400 * 24 * time.Hour),
		UpdatedAt: s.now,
	}
	s.Require().NoError(s.members.Create(context.Background(), m))
	return m
}

func (s *DSRServiceSuite) addMessage(sender, recipient id.MemberID, subject, body string) *message.Message {
	s.T().Helper()
	m := &message.Message{
		ID:          id.MessageID(uuid.New()),
		SenderID:    sender,
		RecipientID: recipient,
		Subject:     subject,
		Body:        body,
		SentAt:      s.now,
	}
	s.Require().NoError(s.messages.Create(context.Background(), m))
	return m
}

// =============================================================================
// Classification
// =============================================================================

func (s *DSRServiceSuite) TestClassification() {
	member := s.addMember("member@example.com", id.RoleMember)
	staff := s.addMember("staff@example.com", id.RoleStaff)

	matching := []struct {
		subject string
		body    string
	}{
		{"Please delete my account", "thanks"},
		{"question", "data correction requested for my address"},
		{"DEACTIVATE MY ACCOUNT", ""},
		{"re: deletion", "as discussed"},
		{"Correction needed", "my phone number changed"},
	}
	for _, tc := range matching {
		s.addMessage(member.ID, staff.ID, tc.subject, tc.body)
	}
	s.addMessage(member.ID, staff.ID, "event registration", "see you there")
	s.addMessage(member.ID, staff.ID, "invoice question", "about the amount")

	requests, err := s.service.ListRequests(s.ctx())
	s.Require().NoError(err)
	s.Len(requests, len(matching))
	for _, r := range requests {
		s.NotEqual("event registration", r.Subject)
		s.NotEqual("invoice question", r.Subject)
	}
}

func (s *DSRServiceSuite) TestClassificationEmptyCorpus() {
	requests, err := s.service.ListRequests(s.ctx())
	s.NoError(err)
	s.Empty(requests)
}

// =============================================================================
// Export
// =============================================================================

func (s *DSRServiceSuite) TestExportBundleIsComplete() {
	member := s.addMember("export@example.com", id.RoleMember)
	member.PasswordHash = "$2a$10$secret"
	s.Require().NoError(s.members.Update(context.Background(), member))
	other := s.addMember("other@example.com", id.RoleMember)

	s.Require().NoError(s.documents.Create(context.Background(), &document.Document{
		ID: id.DocumentID(uuid.New()), MemberID: member.ID,
		FileName: "license.pdf", FileKey: "docs/x", Status: document.VerificationApproved,
		UploadedAt: s.now,
	}))
	s.Require().NoError(s.registrations.Create(context.Background(), &registration.Registration{
		ID: id.RegistrationID(uuid.New()), EventID: id.EventID(uuid.New()),
		MemberID: &member.ID, PaymentStatus: registration.PaymentPaid, AmountCents: 5000,
		CreatedAt: s.now,
	}))
	s.Require().NoError(s.billing.RecordPayment(context.Background(), &billing.Payment{
		ID: id.PaymentID(uuid.New()), MemberID: member.ID,
		AmountCents: 5000, Currency: "EUR", Status: billing.PaymentSucceeded, CreatedAt: s.now,
	}))
	s.Require().NoError(s.billing.RecordInvoice(context.Background(), &billing.Invoice{
		ID: id.InvoiceID(uuid.New()), MemberID: member.ID, Number: "INV-1",
		AmountCents: 5000, Currency: "EUR", Status: billing.InvoicePaid, IssuedAt: s.now,
	}))
	s.addMessage(member.ID, other.ID, "hello", "sent by me")
	s.addMessage(other.ID, member.ID, "reply", "sent to me")

	bundle, err := s.service.Export(s.ctx(), member.ID)
	s.Require().NoError(err)

	s.Equal(member.Email, bundle.Profile.Email)
	s.Len(bundle.Documents, 1)
	s.Len(bundle.Registrations, 1)
	s.Len(bundle.Payments, 1)
	s.Len(bundle.Invoices, 1)
	s.Len(bundle.Messages, 2)
	s.True(bundle.GeneratedAt.Equal(s.now))

	// direction flag instead of counterparty identifiers
	var sent, received int
	for _, m := range bundle.Messages {
		if m.Sent {
			sent++
		} else {
			received++
		}
	}
	s.Equal(1, sent)
	s.Equal(1, received)
}

func (s *DSRServiceSuite) TestExportUnknownMember() {
	_, err := s.service.Export(s.ctx(), id.NewMemberID())
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *DSRServiceSuite) TestExportRecordsAuditEntry() {
	member := s.addMember("audit-export@example.com", id.RoleMember)

	_, err := s.service.Export(s.ctx(), member.ID)
	s.Require().NoError(err)

	entries, err := s.auditStore.Query(context.Background(), audit.Filter{Event: audit.EventDataExportServed})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(member.ID, *entries[0].TargetID)
}

// =============================================================================
// Request Submission
// =============================================================================

func (s *DSRServiceSuite) TestSubmitCreatesMessageToStaff() {
	member := s.addMember("requester@example.com", id.RoleMember)
	staff := s.addMember("staff@example.com", id.RoleStaff)

	err := s.service.Submit(s.ctx(), member.ID, KindDeletion, "please remove everything")
	s.Require().NoError(err)

	msgs, err := s.messages.ListByMember(context.Background(), staff.ID)
	s.Require().NoError(err)
	s.Require().Len(msgs, 1)
	s.Equal(member.ID, msgs[0].SenderID)
	s.Contains(msgs[0].Subject, "deletion")
	s.Contains(msgs[0].Body, "requester@example.com")
	s.Contains(msgs[0].Body, "please remove everything")

	// the filed request itself classifies as a DSR candidate
	requests, err := s.service.ListRequests(s.ctx())
	s.Require().NoError(err)
	s.Len(requests, 1)

	entries, err := s.auditStore.Query(context.Background(), audit.Filter{Event: audit.EventDSRRequestSubmitted})
	s.Require().NoError(err)
	s.Len(entries, 1)
}

func (s *DSRServiceSuite) TestSubmitFailsWithoutStaffRecipient() {
	member := s.addMember("lonely@example.com", id.RoleMember)

	err := s.service.Submit(s.ctx(), member.ID, KindCorrection, "")
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	// the request must not be silently dropped into the message store
	all, listErr := s.messages.ListAll(context.Background())
	s.Require().NoError(listErr)
	s.Empty(all)
}

func (s *DSRServiceSuite) TestSubmitRejectsUnknownKind() {
	member := s.addMember("kind@example.com", id.RoleMember)
	s.addMember("staff@example.com", id.RoleStaff)

	err := s.service.Submit(s.ctx(), member.ID, Kind("export"), "")
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
