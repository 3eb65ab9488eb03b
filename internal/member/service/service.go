// Package service implements administrative member lifecycle operations:
// manual deactivation, restore of soft-deleted accounts, and membership
// status changes. Automatic soft-deletion lives in the retention engine.
package service

import (
	"context"
	"errors"
	"log/slog"

	"memberport/internal/audit"
	"memberport/internal/member/models"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/platform/sentinel"
	"memberport/pkg/requestcontext"
)

// Store is the member persistence the service needs.
type Store interface {
	FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	Update(ctx context.Context, m *models.Member) error
	ListDeleted(ctx context.Context) ([]*models.Member, error)
}

// Recorder records audit entries for administrative actions.
type Recorder interface {
	Record(ctx context.Context, event string, target *id.MemberID, details map[string]any)
}

type Service struct {
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

func New(store Store, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, recorder: recorder, logger: logger}
}

// Deactivate soft-deletes a specific account on admin request. Admins cannot
// deactivate themselves; locking yourself out of the admin surface is never
// the intended action.
func (s *Service) Deactivate(ctx context.Context, target id.MemberID) error {
	if actor := requestcontext.MemberID(ctx); actor == target {
		return dErrors.New(dErrors.CodeConflict, "cannot deactivate your own account")
	}

	m, err := s.store.FindByID(ctx, target)
	if err != nil {
		return translateLookup(err)
	}
	if m.IsSoftDeleted() {
		return dErrors.New(dErrors.CodeConflict, "account is already deactivated")
	}

	m.SoftDelete(requestcontext.Now(ctx).UTC())
	if err := s.store.Update(ctx, m); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate account")
	}

	s.recorder.Record(ctx, audit.EventUserDeactivated, &target, map[string]any{
		"email": m.Email,
	})
	s.logger.InfoContext(ctx, "account deactivated", "member_id", target)
	return nil
}

// Restore clears the soft-delete marker. Anonymized accounts are rejected;
// their original data is gone and a restore would resurrect sentinel values.
func (s *Service) Restore(ctx context.Context, target id.MemberID) (*models.Member, error) {
	m, err := s.store.FindByID(ctx, target)
	if err != nil {
		return nil, translateLookup(err)
	}
	if err := m.CanRestore(); err != nil {
		return nil, err
	}

	m.Restore(requestcontext.Now(ctx).UTC())
	if err := s.store.Update(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to restore account")
	}

	s.recorder.Record(ctx, audit.EventUserRestored, &target, map[string]any{
		"email": m.Email,
	})
	s.logger.InfoContext(ctx, "account restored", "member_id", target)
	return m, nil
}

// ListDeleted returns all soft-deleted accounts, anonymized ones included.
func (s *Service) ListDeleted(ctx context.Context) ([]*models.Member, error) {
	members, err := s.store.ListDeleted(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list deleted accounts")
	}
	return members, nil
}

// SetMembershipStatus transitions a member's status on admin request.
func (s *Service) SetMembershipStatus(ctx context.Context, target id.MemberID, status id.MembershipStatus) (*models.Member, error) {
	parsed, err := id.ParseMembershipStatus(string(status))
	if err != nil {
		return nil, err
	}

	m, err := s.store.FindByID(ctx, target)
	if err != nil {
		return nil, translateLookup(err)
	}
	if m.IsSoftDeleted() {
		return nil, dErrors.New(dErrors.CodeConflict, "cannot change status of a deactivated account")
	}

	previous := m.Status
	m.Status = parsed
	m.UpdatedAt = requestcontext.Now(ctx).UTC()
	if err := s.store.Update(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update membership status")
	}

	s.recorder.Record(ctx, audit.EventUserStatusChanged, &target, map[string]any{
		"from": string(previous),
		"to":   string(parsed),
	})
	return m, nil
}

func translateLookup(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "member not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "member lookup failed")
}
