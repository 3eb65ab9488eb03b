// Package domain holds the typed identifiers and small value objects shared
// across features. Typed IDs prevent cross-entity mixups at compile time.
package domain

import "github.com/google/uuid"

type (
	// MemberID identifies a member account.
	MemberID uuid.UUID
	// RegistrationID identifies an event registration.
	RegistrationID uuid.UUID
	// EventID identifies an event.
	EventID uuid.UUID
	// DocumentID identifies an uploaded document.
	DocumentID uuid.UUID
	// MessageID identifies an internal message.
	MessageID uuid.UUID
	// PaymentID identifies a payment record.
	PaymentID uuid.UUID
	// InvoiceID identifies an invoice.
	InvoiceID uuid.UUID
)

func (id MemberID) String() string       { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id DocumentID) String() string     { return uuid.UUID(id).String() }
func (id MessageID) String() string      { return uuid.UUID(id).String() }
func (id PaymentID) String() string      { return uuid.UUID(id).String() }
func (id InvoiceID) String() string      { return uuid.UUID(id).String() }

func (id MemberID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id MessageID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

// NewMemberID generates a fresh member ID.
func NewMemberID() MemberID { return MemberID(uuid.New()) }

// ParseMemberID parses external input into a MemberID.
func ParseMemberID(s string) (MemberID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, err
	}
	return MemberID(u), nil
}

// ParseDocumentID parses external input into a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}
