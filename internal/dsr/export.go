package dsr

import (
	"time"

	"memberport/internal/billing"
	"memberport/internal/document"
	"memberport/internal/member/models"
	"memberport/internal/message"
	"memberport/internal/registration"
	id "memberport/pkg/domain"
)

// ExportBundle is the structured personal data bundle served for a "right to
// access" request. Every entity type the member owns appears; internal-only
// fields (password hashes, other members' identifiers beyond direction) are
// redacted at the type level by simply not having a field for them.
type ExportBundle struct {
	GeneratedAt   time.Time            `json:"generatedAt"`
	Profile       ExportProfile        `json:"profile"`
	Documents     []ExportDocument     `json:"documents"`
	Registrations []ExportRegistration `json:"eventRegistrations"`
	Payments      []ExportPayment      `json:"payments"`
	Invoices      []ExportInvoice      `json:"invoices"`
	Messages      []ExportMessage      `json:"messages"`
}

// ExportProfile is the redacted profile subset. No password hash, no role.
type ExportProfile struct {
	ID                    string  `json:"id"`
	Email                 string  `json:"email"`
	FirstName             string  `json:"firstName"`
	LastName              string  `json:"lastName"`
	Phone                 *string `json:"phone"`
	Address               *string `json:"address"`
	RegistrationNumber    *string `json:"registrationNumber"`
	MembershipStatus      string  `json:"membershipStatus"`
	MarketingConsent      bool    `json:"marketingConsent"`
	DataProcessingConsent bool    `json:"dataProcessingConsent"`
	CreatedAt             time.Time `json:"createdAt"`
}

type ExportDocument struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type ExportRegistration struct {
	ID            string    `json:"id"`
	EventID       string    `json:"eventId"`
	PaymentStatus string    `json:"paymentStatus"`
	AmountCents   int64     `json:"amountCents"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ExportPayment struct {
	ID          string     `json:"id"`
	AmountCents int64      `json:"amountCents"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	PaidAt      *time.Time `json:"paidAt"`
}

type ExportInvoice struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	AmountCents int64     `json:"amountCents"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	IssuedAt    time.Time `json:"issuedAt"`
}

// ExportMessage carries the member's messages. The counterparty is reduced
// to a direction flag; exposing the other member's identifier would leak
// their data into this member's export.
type ExportMessage struct {
	ID       string     `json:"id"`
	Subject  string     `json:"subject"`
	Body     string     `json:"body"`
	Sent     bool       `json:"sentByMe"`
	SentAt   time.Time  `json:"sentAt"`
	ReadAt   *time.Time `json:"readAt"`
}

func exportProfile(m *models.Member) ExportProfile {
	return ExportProfile{
		ID:                    m.ID.String(),
		Email:                 m.Email,
		FirstName:             m.FirstName,
		LastName:              m.LastName,
		Phone:                 m.Phone,
		Address:               m.Address,
		RegistrationNumber:    m.RegistrationNumber,
		MembershipStatus:      string(m.Status),
		MarketingConsent:      m.MarketingConsent,
		DataProcessingConsent: m.DataProcessingConsent,
		CreatedAt:             m.CreatedAt,
	}
}

func exportDocuments(docs []*document.Document) []ExportDocument {
	out := make([]ExportDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, ExportDocument{
			ID:         d.ID.String(),
			FileName:   d.FileName,
			Status:     string(d.Status),
			UploadedAt: d.UploadedAt,
		})
	}
	return out
}

func exportRegistrations(regs []*registration.Registration) []ExportRegistration {
	out := make([]ExportRegistration, 0, len(regs))
	for _, r := range regs {
		out = append(out, ExportRegistration{
			ID:            r.ID.String(),
			EventID:       r.EventID.String(),
			PaymentStatus: string(r.PaymentStatus),
			AmountCents:   r.AmountCents,
			CreatedAt:     r.CreatedAt,
		})
	}
	return out
}

func exportPayments(payments []*billing.Payment) []ExportPayment {
	out := make([]ExportPayment, 0, len(payments))
	for _, p := range payments {
		out = append(out, ExportPayment{
			ID:          p.ID.String(),
			AmountCents: p.AmountCents,
			Currency:    p.Currency,
			Status:      string(p.Status),
			CreatedAt:   p.CreatedAt,
			PaidAt:      p.PaidAt,
		})
	}
	return out
}

func exportInvoices(invoices []*billing.Invoice) []ExportInvoice {
	out := make([]ExportInvoice, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, ExportInvoice{
			ID:          inv.ID.String(),
			Number:      inv.Number,
			AmountCents: inv.AmountCents,
			Currency:    inv.Currency,
			Status:      string(inv.Status),
			IssuedAt:    inv.IssuedAt,
		})
	}
	return out
}

func exportMessages(msgs []*message.Message, owner id.MemberID) []ExportMessage {
	out := make([]ExportMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ExportMessage{
			ID:      m.ID.String(),
			Subject: m.Subject,
			Body:    m.Body,
			Sent:    m.SenderID == owner,
			SentAt:  m.SentAt,
			ReadAt:  m.ReadAt,
		})
	}
	return out
}
