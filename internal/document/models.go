// Package document holds uploaded document references. Retention is
// conditional: a document past the age threshold is only purged when its
// owner is missing, soft-deleted, or not an active member.
package document

import (
	"fmt"
	"time"

	id "memberport/pkg/domain"
)

// VerificationStatus is the staff review state of an uploaded document.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationApproved VerificationStatus = "approved"
	VerificationRejected VerificationStatus = "rejected"
)

// ParseDecision validates a staff decision. Only the two terminal states are
// decisions; a document cannot be moved back to pending.
func ParseDecision(s string) (VerificationStatus, error) {
	switch VerificationStatus(s) {
	case VerificationApproved:
		return VerificationApproved, nil
	case VerificationRejected:
		return VerificationRejected, nil
	default:
		return "", fmt.Errorf("invalid document decision %q", s)
	}
}

// Document is a stored file reference owned by a member. The bytes live in
// the external file store; only the key is recorded here.
type Document struct {
	ID       id.DocumentID
	MemberID id.MemberID
	FileName string
	// FileKey addresses the blob in the external file store.
	FileKey string

	Status     VerificationStatus
	UploadedAt time.Time
}
