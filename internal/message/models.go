// Package message holds internal messages between members and staff.
// Messages past the retention threshold are purged unconditionally; before
// purge they may surface as data subject request candidates.
package message

import (
	"time"

	id "memberport/pkg/domain"
)

// Message is a directed communication between a member and staff.
type Message struct {
	ID          id.MessageID
	SenderID    id.MemberID
	RecipientID id.MemberID
	Subject     string
	Body        string
	SentAt      time.Time
	// ReadAt is nil until the recipient opens the message.
	ReadAt *time.Time
}
