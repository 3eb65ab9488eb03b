// Package billing holds payment and invoice records.
//
// These are financial records under legal hold: tax retention law overrides
// the general retention policy. The store surface is deliberately read/write-
// once; no update or delete methods exist, so no retention pass can touch
// these tables. Physical removal is a manual legal-review process outside
// this service.
package billing

import (
	"time"

	id "memberport/pkg/domain"
)

// PaymentStatus is the settlement state of a payment.
type PaymentStatus string

const (
	PaymentInitiated PaymentStatus = "initiated"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment records money received from a member, optionally tied to an event
// registration.
type Payment struct {
	ID       id.PaymentID
	MemberID id.MemberID
	// RegistrationID links event fee payments; nil for membership dues.
	RegistrationID *id.RegistrationID

	AmountCents int64
	Currency    string
	Status      PaymentStatus
	CreatedAt   time.Time
	// PaidAt is nil until settlement.
	PaidAt *time.Time
}

// InvoiceStatus is the billing state of an invoice.
type InvoiceStatus string

const (
	InvoiceIssued InvoiceStatus = "issued"
	InvoicePaid   InvoiceStatus = "paid"
	InvoiceVoid   InvoiceStatus = "void"
)

// Invoice is a numbered billing document issued to a member.
type Invoice struct {
	ID       id.InvoiceID
	MemberID id.MemberID
	Number   string

	AmountCents int64
	Currency    string
	Status      InvoiceStatus
	IssuedAt    time.Time
}
