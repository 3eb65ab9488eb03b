// Package compliance provides the read-only aggregates behind the admin
// dashboard: retention counts, consent distributions, and filtered audit log
// queries. It has no write paths.
package compliance

import (
	"context"
	"log/slog"

	"memberport/internal/audit"
	"memberport/internal/member/models"
	dErrors "memberport/pkg/domain-errors"
)

// MemberCounter exposes the aggregate count queries of the member store.
type MemberCounter interface {
	RetentionCounts(ctx context.Context) (models.RetentionCounts, error)
	ConsentCounts(ctx context.Context) (models.ConsentCounts, error)
}

// AuditReader queries stored audit entries.
type AuditReader interface {
	List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error)
}

type Service struct {
	members MemberCounter
	auditor AuditReader
	logger  *slog.Logger
}

func NewService(members MemberCounter, auditor AuditReader, logger *slog.Logger) *Service {
	return &Service{members: members, auditor: auditor, logger: logger}
}

// RetentionStats returns point-in-time member lifecycle counts. Distinct
// from the per-run purge stats, which describe one run's mutations.
func (s *Service) RetentionStats(ctx context.Context) (models.RetentionCounts, error) {
	counts, err := s.members.RetentionCounts(ctx)
	if err != nil {
		return models.RetentionCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute retention stats")
	}
	return counts, nil
}

// ConsentStats returns the consent flag distribution over live accounts.
func (s *Service) ConsentStats(ctx context.Context) (models.ConsentCounts, error) {
	counts, err := s.members.ConsentCounts(ctx)
	if err != nil {
		return models.ConsentCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to compute consent stats")
	}
	return counts, nil
}

// AuditLogs returns filtered, paginated audit entries, newest first. An
// empty result is a valid outcome, not an error.
func (s *Service) AuditLogs(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	entries, err := s.auditor.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to query audit log")
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return entries, nil
}
