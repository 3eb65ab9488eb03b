package audit

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"memberport/internal/platform/metrics"
	id "memberport/pkg/domain"
	"memberport/pkg/requestcontext"
)

// Store is the persistence surface the recorder writes to. Append-only.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

// Recorder captures audit entries on a best-effort basis. Record never
// returns an error and never panics: an audit write failure must not block
// the primary action it was recording. Failures are logged once and counted.
type Recorder struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRecorder(store Store, logger *slog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{store: store, logger: logger, metrics: m}
}

// Record appends an entry for the given event. Actor, source address and
// request ID are read from the request context; automated callers (the
// retention scheduler) simply have none, leaving ActorID nil.
func (r *Recorder) Record(ctx context.Context, event string, target *id.MemberID, details map[string]any) {
	entry := Entry{
		ID:        uuid.New(),
		Event:     event,
		TargetID:  target,
		Details:   details,
		SourceIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
		RequestID: requestcontext.RequestID(ctx),
		CreatedAt: requestcontext.Now(ctx).UTC(),
	}
	if actor := requestcontext.MemberID(ctx); !actor.IsNil() {
		entry.ActorID = &actor
	}

	if err := r.store.Append(ctx, entry); err != nil {
		r.logger.WarnContext(ctx, "audit write failed, entry dropped",
			"event", event,
			"error", err,
			"request_id", entry.RequestID,
		)
		if r.metrics != nil {
			r.metrics.AuditWriteFailures.Inc()
		}
		return
	}
	if r.metrics != nil {
		r.metrics.AuditEntriesWritten.Inc()
	}
}

// List queries stored entries with filters and pagination.
func (r *Recorder) List(ctx context.Context, filter Filter) ([]Entry, error) {
	return r.store.Query(ctx, filter.Normalize())
}
