package message

import (
	"context"
	"sort"
	"sync"
	"time"

	id "memberport/pkg/domain"
	"memberport/pkg/platform/sentinel"
)

// InMemory keeps messages in a mutex-guarded map for tests and development.
type InMemory struct {
	mu   sync.RWMutex
	rows map[id.MessageID]*Message
}

func NewInMemory() *InMemory {
	return &InMemory{rows: make(map[id.MessageID]*Message)}
}

func (s *InMemory) Create(_ context.Context, m *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *m
	s.rows[m.ID] = &cp
	return nil
}

// ListAll returns every message, oldest first. The DSR classifier scans the
// full corpus.
func (s *InMemory) ListAll(_ context.Context) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Message
	for _, m := range s.rows {
		cp := *m
		out = append(out, &cp)
	}
	sortBySentAt(out)
	return out, nil
}

// ListSentBefore returns messages older than the cutoff.
func (s *InMemory) ListSentBefore(_ context.Context, cutoff time.Time) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Message
	for _, m := range s.rows {
		if m.SentAt.Before(cutoff) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortBySentAt(out)
	return out, nil
}

// ListByMember returns messages a member sent or received, oldest first.
func (s *InMemory) ListByMember(_ context.Context, memberID id.MemberID) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Message
	for _, m := range s.rows {
		if m.SenderID == memberID || m.RecipientID == memberID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortBySentAt(out)
	return out, nil
}

func (s *InMemory) Delete(_ context.Context, msgID id.MessageID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[msgID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rows, msgID)
	return nil
}

func sortBySentAt(messages []*Message) {
	sort.Slice(messages, func(i, j int) bool {
		if messages[i].SentAt.Equal(messages[j].SentAt) {
			return messages[i].ID.String() < messages[j].ID.String()
		}
		return messages[i].SentAt.Before(messages[j].SentAt)
	})
}
