package retention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"memberport/internal/audit"
	"memberport/internal/document"
	"memberport/internal/member/models"
	"memberport/internal/message"
	"memberport/internal/platform/metrics"
	"memberport/internal/registration"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/platform/sentinel"
	"memberport/pkg/requestcontext"
)

// MemberStore is the member access the engine needs. Note the absence of any
// hard-delete method; member rows are anonymized in place, never removed.
type MemberStore interface {
	ListSoftDeleteCandidates(ctx context.Context, cutoff time.Time) ([]*models.Member, error)
	ListAnonymizeCandidates(ctx context.Context, cutoff time.Time) ([]*models.Member, error)
	FindByID(ctx context.Context, memberID id.MemberID) (*models.Member, error)
	Update(ctx context.Context, m *models.Member) error
}

// RegistrationStore lists and purges event registrations by age.
type RegistrationStore interface {
	ListCreatedBefore(ctx context.Context, cutoff time.Time) ([]*registration.Registration, error)
	Delete(ctx context.Context, regID id.RegistrationID) error
}

// DocumentStore lists and purges uploaded document references by age.
type DocumentStore interface {
	ListUploadedBefore(ctx context.Context, cutoff time.Time) ([]*document.Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
}

// MessageStore lists and purges messages by age.
type MessageStore interface {
	ListSentBefore(ctx context.Context, cutoff time.Time) ([]*message.Message, error)
	Delete(ctx context.Context, msgID id.MessageID) error
}

// Recorder records audit entries for completed runs.
type Recorder interface {
	Record(ctx context.Context, event string, target *id.MemberID, details map[string]any)
}

// Engine applies the retention policy across entity stores. It deliberately
// has no reference to payment or invoice storage; financial records are
// outside its reach by construction, not by a runtime check.
type Engine struct {
	policy        Policy
	members       MemberStore
	registrations RegistrationStore
	documents     DocumentStore
	messages      MessageStore
	recorder      Recorder
	lock          RunLock
	logger        *slog.Logger
	metrics       *metrics.Metrics
	emailDomain   string
	tracer        trace.Tracer
}

func NewEngine(
	policy Policy,
	members MemberStore,
	registrations RegistrationStore,
	documents DocumentStore,
	messages MessageStore,
	recorder Recorder,
	lock RunLock,
	logger *slog.Logger,
	m *metrics.Metrics,
	emailDomain string,
) *Engine {
	return &Engine{
		policy:        policy,
		members:       members,
		registrations: registrations,
		documents:     documents,
		messages:      messages,
		recorder:      recorder,
		lock:          lock,
		logger:        logger,
		metrics:       m,
		emailDomain:   emailDomain,
		tracer:        otel.Tracer("memberport/retention"),
	}
}

// Run executes one full retention sweep. A single "now" is computed up front
// and used by every pass so a long run cannot skew cutoffs between passes.
// Passes commit independently; a failed pass leaves earlier passes' effects
// in place, and re-running is safe because every pass re-evaluates current
// state instead of consuming a work queue.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	acquired, err := e.lock.TryLock(ctx)
	if err != nil {
		return Stats{}, dErrors.Wrap(err, dErrors.CodeInternal, "retention lock unavailable")
	}
	if !acquired {
		e.recorder.Record(ctx, audit.EventRetentionLockConflict, nil, nil)
		return Stats{}, dErrors.New(dErrors.CodeConflict, "retention run already in progress")
	}
	defer func() {
		if err := e.lock.Unlock(ctx); err != nil {
			e.logger.WarnContext(ctx, "failed to release retention lock", "error", err)
		}
	}()

	ctx, span := e.tracer.Start(ctx, "retention.run")
	defer span.End()

	now := requestcontext.Now(ctx).UTC()
	e.logger.InfoContext(ctx, "retention run started", "now", now)

	var stats Stats
	var firstErr error
	record := func(pass string, n int, err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s pass: %w", pass, err)
		}
		span.SetAttributes(attribute.Int("retention."+pass, n))
	}

	n, err := e.softDeletePass(ctx, now)
	stats.UsersSoftDeleted = n
	record("soft_delete", n, err)

	n, err = e.anonymizePass(ctx, now)
	stats.UsersAnonymised = n
	record("anonymize", n, err)

	n, err = e.registrationPass(ctx, now)
	stats.EventRegistrationsDeleted = n
	record("registrations", n, err)

	n, err = e.documentPass(ctx, now)
	stats.DocumentsDeleted = n
	record("documents", n, err)

	n, err = e.messagePass(ctx, now)
	stats.MessagesDeleted = n
	record("messages", n, err)

	outcome := "success"
	if firstErr != nil {
		outcome = "failure"
	}
	if e.metrics != nil {
		e.metrics.RetentionRuns.WithLabelValues(outcome).Inc()
	}

	e.recorder.Record(ctx, audit.EventRetentionPurge, nil, map[string]any{
		"usersSoftDeleted":          stats.UsersSoftDeleted,
		"usersAnonymised":           stats.UsersAnonymised,
		"eventRegistrationsDeleted": stats.EventRegistrationsDeleted,
		"documentsDeleted":          stats.DocumentsDeleted,
		"messagesDeleted":           stats.MessagesDeleted,
		"outcome":                   outcome,
	})
	e.logger.InfoContext(ctx, "retention run finished",
		"outcome", outcome,
		"users_soft_deleted", stats.UsersSoftDeleted,
		"users_anonymised", stats.UsersAnonymised,
		"registrations_deleted", stats.EventRegistrationsDeleted,
		"documents_deleted", stats.DocumentsDeleted,
		"messages_deleted", stats.MessagesDeleted,
	)
	return stats, firstErr
}

// softDeletePass marks members inactive past the threshold as deleted. The
// candidate query excludes active members and already-deleted rows.
func (e *Engine) softDeletePass(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-e.policy.MemberSoftDeleteAfter)
	candidates, err := e.members.ListSoftDeleteCandidates(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range candidates {
		m.SoftDelete(now)
		if err := e.members.Update(ctx, m); err != nil {
			e.logger.WarnContext(ctx, "soft delete skipped", "member_id", m.ID, "error", err)
			continue
		}
		count++
	}
	e.countRemoved("member", "soft_delete", count)
	return count, nil
}

// anonymizePass irreversibly scrubs members whose soft-delete grace window
// has lapsed. The candidate query excludes already-anonymized rows, so the
// pass is idempotent.
func (e *Engine) anonymizePass(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-e.policy.MemberAnonymizeAfter)
	candidates, err := e.members.ListAnonymizeCandidates(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range candidates {
		m.Anonymize(now, e.emailDomain)
		if err := e.members.Update(ctx, m); err != nil {
			e.logger.WarnContext(ctx, "anonymization skipped", "member_id", m.ID, "error", err)
			continue
		}
		count++
	}
	e.countRemoved("member", "anonymize", count)
	return count, nil
}

// registrationPass purges registrations purely by age.
func (e *Engine) registrationPass(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-e.policy.EventRegistrationDeleteAfter)
	old, err := e.registrations.ListCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, r := range old {
		if err := e.registrations.Delete(ctx, r.ID); err != nil {
			e.logger.WarnContext(ctx, "registration purge skipped", "registration_id", r.ID, "error", err)
			continue
		}
		count++
	}
	e.countRemoved("registration", "delete", count)
	return count, nil
}

// documentPass purges old documents whose owner is missing, soft-deleted, or
// not active. The owner is re-fetched per row rather than joined in bulk;
// document volume is moderate and the per-row skip policy stays simple.
func (e *Engine) documentPass(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-e.policy.DocumentDeleteAfter)
	old, err := e.documents.ListUploadedBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, d := range old {
		owner, err := e.members.FindByID(ctx, d.MemberID)
		switch {
		case err == nil:
			if owner.Status == id.MembershipActive && !owner.IsSoftDeleted() {
				continue
			}
		case errors.Is(err, sentinel.ErrNotFound):
			// owner gone, document is orphaned and removable
		default:
			e.logger.WarnContext(ctx, "document owner lookup failed, skipping", "document_id", d.ID, "error", err)
			continue
		}

		if err := e.documents.Delete(ctx, d.ID); err != nil {
			e.logger.WarnContext(ctx, "document purge skipped", "document_id", d.ID, "error", err)
			continue
		}
		count++
	}
	e.countRemoved("document", "delete", count)
	return count, nil
}

// messagePass purges messages purely by sent age, regardless of either
// party's membership status.
func (e *Engine) messagePass(ctx context.Context, now time.Time) (int, error) {
	cutoff := now.Add(-e.policy.MessageDeleteAfter)
	old, err := e.messages.ListSentBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, m := range old {
		if err := e.messages.Delete(ctx, m.ID); err != nil {
			e.logger.WarnContext(ctx, "message purge skipped", "message_id", m.ID, "error", err)
			continue
		}
		count++
	}
	e.countRemoved("message", "delete", count)
	return count, nil
}

func (e *Engine) countRemoved(entity, action string, n int) {
	if e.metrics != nil && n > 0 {
		e.metrics.RetentionRowsRemoved.WithLabelValues(entity, action).Add(float64(n))
	}
}
