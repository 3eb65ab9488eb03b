package document

import (
	"context"
	"errors"
	"log/slog"

	"memberport/internal/audit"
	id "memberport/pkg/domain"
	dErrors "memberport/pkg/domain-errors"
	"memberport/pkg/platform/sentinel"
)

// Store is the document persistence the decision service needs.
type Store interface {
	FindByID(ctx context.Context, docID id.DocumentID) (*Document, error)
	UpdateStatus(ctx context.Context, docID id.DocumentID, status VerificationStatus) error
}

// Recorder records audit entries for document decisions.
type Recorder interface {
	Record(ctx context.Context, event string, target *id.MemberID, details map[string]any)
}

// Service carries out staff verification decisions on uploaded documents.
type Service struct {
	store    Store
	recorder Recorder
	logger   *slog.Logger
}

func NewService(store Store, recorder Recorder, logger *slog.Logger) *Service {
	return &Service{store: store, recorder: recorder, logger: logger}
}

// Decide marks a pending document approved or rejected. Decisions are
// terminal: a document that already carries a decision cannot be re-decided.
func (s *Service) Decide(ctx context.Context, docID id.DocumentID, decision VerificationStatus) (*Document, error) {
	doc, err := s.store.FindByID(ctx, docID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}

	if doc.Status != VerificationPending {
		return nil, dErrors.New(dErrors.CodeConflict, "document already decided")
	}

	if err := s.store.UpdateStatus(ctx, docID, decision); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update document status")
	}
	doc.Status = decision

	s.recorder.Record(ctx, audit.EventDocumentDecided, &doc.MemberID, map[string]any{
		"documentId": docID.String(),
		"fileName":   doc.FileName,
		"decision":   string(decision),
	})
	return doc, nil
}
