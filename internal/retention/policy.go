// Package retention implements the policy-driven purge and anonymization
// engine. A run walks five passes over members, registrations, documents and
// messages; financial records are never referenced by any pass.
package retention

import (
	"time"

	"memberport/internal/platform/config"
)

// Policy holds the retention thresholds as durations. Values are fixed at
// deploy time and never mutated by the engine.
type Policy struct {
	MemberSoftDeleteAfter        time.Duration
	MemberAnonymizeAfter         time.Duration
	EventRegistrationDeleteAfter time.Duration
	DocumentDeleteAfter          time.Duration
	MessageDeleteAfter           time.Duration
}

// PolicyFromConfig converts day-denominated configuration into durations.
func PolicyFromConfig(cfg config.RetentionConfig) Policy {
	days := func(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }
	return Policy{
		MemberSoftDeleteAfter:        days(cfg.MemberSoftDeleteAfterDays),
		MemberAnonymizeAfter:         days(cfg.MemberAnonymizeAfterDays),
		EventRegistrationDeleteAfter: days(cfg.EventRegistrationDeleteAfterDays),
		DocumentDeleteAfter:          days(cfg.DocumentDeleteAfterDays),
		MessageDeleteAfter:           days(cfg.MessageDeleteAfterDays),
	}
}

// Stats aggregates the per-category counts of one retention run.
type Stats struct {
	UsersSoftDeleted          int `json:"usersSoftDeleted"`
	UsersAnonymised           int `json:"usersAnonymised"`
	EventRegistrationsDeleted int `json:"eventRegistrationsDeleted"`
	DocumentsDeleted          int `json:"documentsDeleted"`
	MessagesDeleted           int `json:"messagesDeleted"`
}
