// Package audit provides durable, append-only recording of sensitive
// actions. Entries are immutable once written; no update or delete surface
// exists anywhere in this package, and audit retention is deliberately not
// automated (audit trails outlive the data they describe).
package audit

import (
	"time"

	"github.com/google/uuid"

	id "memberport/pkg/domain"
)

// Event names follow the dotted <entity>.<action> convention.
const (
	EventUserDeactivated       = "user.deactivated"
	EventUserRestored          = "user.restored"
	EventUserStatusChanged     = "member.status.changed"
	EventDocumentDecided       = "document.decided"
	EventRetentionPurge        = "retention.purge.executed"
	EventDSRRequestSubmitted   = "dsr.request.submitted"
	EventDataExportServed      = "dsr.export.served"
	EventRetentionLockConflict = "retention.purge.conflict"
)

// Entry is an immutable audit record. ActorID is nil for automated actions
// such as scheduled retention runs.
type Entry struct {
	ID       uuid.UUID
	Event    string
	ActorID  *id.MemberID
	TargetID *id.MemberID
	// Details is an arbitrary structured payload, serialized as JSON.
	Details   map[string]any
	SourceIP  string
	UserAgent string
	RequestID string
	CreatedAt time.Time
}

// Filter narrows audit log queries. Zero values mean "no constraint".
type Filter struct {
	Event    string
	MemberID *id.MemberID
	Start    time.Time
	End      time.Time
	Limit    int
	Offset   int
}

// DefaultLimit caps unpaginated audit queries.
const DefaultLimit = 100

// Normalize applies pagination defaults.
func (f Filter) Normalize() Filter {
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
