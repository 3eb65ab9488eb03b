// Package registration holds event registration records. These are
// historical/audit records: the retention engine purges them purely by age,
// regardless of the member's state.
package registration

import (
	"time"

	id "memberport/pkg/domain"
)

// PaymentStatus tracks whether a registration has been paid.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
	PaymentWaived   PaymentStatus = "waived"
)

// Registration links a member (or anonymous registrant) to an event.
type Registration struct {
	ID      id.RegistrationID
	EventID id.EventID
	// MemberID is nil for anonymous registrants.
	MemberID *id.MemberID
	// AttendeeEmail is kept for anonymous registrants only.
	AttendeeEmail string

	PaymentStatus PaymentStatus
	AmountCents   int64
	CreatedAt     time.Time
}
