package document

import (
	"context"
	"sort"
	"sync"
	"time"

	id "memberport/pkg/domain"
	"memberport/pkg/platform/sentinel"
)

// InMemory keeps documents in a mutex-guarded map for tests and development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[id.DocumentID]*Document
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[id.DocumentID]*Document)}
}

func (s *InMemory) Create(_ context.Context, d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *d
	s.rows[d.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, docID id.DocumentID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.rows[docID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

// ListUploadedBefore returns documents older than the cutoff.
func (s *InMemory) ListUploadedBefore(_ context.Context, cutoff time.Time) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Document
	for _, d := range s.rows {
		if d.UploadedAt.Before(cutoff) {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// ListByMember returns a member's documents, oldest upload first.
func (s *InMemory) ListByMember(_ context.Context, memberID id.MemberID) ([]*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Document
	for _, d := range s.rows {
		if d.MemberID == memberID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (s *InMemory) UpdateStatus(_ context.Context, docID id.DocumentID, status VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.rows[docID]
	if !ok {
		return sentinel.ErrNotFound
	}
	d.Status = status
	return nil
}

func (s *InMemory) Delete(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[docID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rows, docID)
	return nil
}
