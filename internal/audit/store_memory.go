package audit

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps audit entries in memory. Used in tests and in
// deployments without a database configured.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Query returns matching entries, newest first.
func (s *InMemoryStore) Query(_ context.Context, filter Filter) ([]Entry, error) {
	filter = filter.Normalize()

	s.mu.RLock()
	var matched []Entry
	for _, e := range s.entries {
		if filter.Event != "" && e.Event != filter.Event {
			continue
		}
		if filter.MemberID != nil {
			targetMatch := e.TargetID != nil && *e.TargetID == *filter.MemberID
			actorMatch := e.ActorID != nil && *e.ActorID == *filter.MemberID
			if !targetMatch && !actorMatch {
				continue
			}
		}
		if !filter.Start.IsZero() && e.CreatedAt.Before(filter.Start) {
			continue
		}
		if !filter.End.IsZero() && e.CreatedAt.After(filter.End) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if filter.Offset >= len(matched) {
		return []Entry{}, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	out := make([]Entry, len(matched))
	copy(out, matched)
	return out, nil
}
