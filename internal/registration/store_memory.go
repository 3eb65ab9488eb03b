package registration

import (
	"context"
	"sort"
	"sync"
	"time"

	id "memberport/pkg/domain"
	"memberport/pkg/platform/sentinel"
)

// InMemory keeps registrations in a mutex-guarded map for tests and
// development mode.
type InMemory struct {
	mu   sync.RWMutex
	rows map[id.RegistrationID]*Registration
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[id.RegistrationID]*Registration)}
}

func (s *InMemory) Create(_ context.Context, r *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.rows[r.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, regID id.RegistrationID) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rows[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// ListCreatedBefore returns registrations older than the cutoff.
func (s *InMemory) ListCreatedBefore(_ context.Context, cutoff time.Time) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Registration
	for _, r := range s.rows {
		if r.CreatedAt.Before(cutoff) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// ListByMember returns a member's registrations, oldest first.
func (s *InMemory) ListByMember(_ context.Context, memberID id.MemberID) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Registration
	for _, r := range s.rows {
		if r.MemberID != nil && *r.MemberID == memberID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, regID id.RegistrationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[regID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rows, regID)
	return nil
}
