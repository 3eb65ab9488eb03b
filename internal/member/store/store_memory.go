package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"memberport/internal/member/models"
	id "memberport/pkg/domain"
	"memberport/pkg/platform/sentinel"
)

// InMemory keeps member state in a mutex-guarded map. It intentionally
// favors clarity over performance and backs unit tests and development mode.
type InMemory struct {
	mu      sync.RWMutex
	members map[id.MemberID]*models.Member
}

func NewInMemory() *InMemory {
	return &InMemory{members: make(map[id.MemberID]*models.Member)}
}

func (s *InMemory) Create(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.members {
		if existing.Email == m.Email {
			return sentinel.ErrConflict
		}
	}
	cp := *m
	s.members[m.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, memberID id.MemberID) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[memberID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, m *models.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[m.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *m
	s.members[m.ID] = &cp
	return nil
}

// ListSoftDeleteCandidates returns live, non-active members whose last
// activity predates the cutoff.
func (s *InMemory) ListSoftDeleteCandidates(_ context.Context, cutoff time.Time) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Member
	for _, m := range s.members {
		if m.DeletedAt == nil && m.Status != id.MembershipActive && m.UpdatedAt.Before(cutoff) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortByID(out)
	return out, nil
}

// ListAnonymizeCandidates returns soft-deleted members past the grace period
// that have not already been anonymized.
func (s *InMemory) ListAnonymizeCandidates(_ context.Context, cutoff time.Time) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Member
	for _, m := range s.members {
		if m.DeletedAt != nil && m.DeletedAt.Before(cutoff) && m.FirstName != models.AnonymizedFirstName {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortByID(out)
	return out, nil
}

// ListDeleted returns all soft-deleted members, newest deletion first.
func (s *InMemory) ListDeleted(_ context.Context) ([]*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Member
	for _, m := range s.members {
		if m.DeletedAt != nil {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].DeletedAt.After(*out[j].DeletedAt)
	})
	return out, nil
}

// FindStaffRecipient returns any live staff or admin account able to receive
// data subject requests.
func (s *InMemory) FindStaffRecipient(_ context.Context) (*models.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var candidates []*models.Member
	for _, m := range s.members {
		if m.DeletedAt == nil && m.Role.IsStaff() {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, sentinel.ErrNotFound
	}
	sortByID(candidates)
	cp := *candidates[0]
	return &cp, nil
}

// RetentionCounts aggregates the member base by retention state.
func (s *InMemory) RetentionCounts(_ context.Context) (models.RetentionCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts models.RetentionCounts
	for _, m := range s.members {
		counts.Total++
		switch {
		case m.IsAnonymized():
			counts.Anonymized++
		case m.DeletedAt != nil:
			counts.SoftDeleted++
		case m.Status == id.MembershipActive:
			counts.Active++
		}
	}
	return counts, nil
}

// ConsentCounts aggregates consent flags across live members.
func (s *InMemory) ConsentCounts(_ context.Context) (models.ConsentCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var counts models.ConsentCounts
	for _, m := range s.members {
		if m.DeletedAt != nil {
			continue
		}
		counts.Total++
		if m.MarketingConsent {
			counts.MarketingConsent++
		}
		if m.DataProcessingConsent {
			counts.ProcessingConsent++
		}
	}
	return counts, nil
}

func sortByID(members []*models.Member) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].ID.String() < members[j].ID.String()
	})
}
