package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	id "memberport/pkg/domain"
	"memberport/pkg/requestcontext"
)

// =============================================================================
// Audit Recorder Test Suite
// =============================================================================

type RecorderSuite struct {
	suite.Suite
	store    *InMemoryStore
	recorder *Recorder
}

func TestRecorderSuite(t *testing.T) {
	suite.Run(t, new(RecorderSuite))
}

func (s *RecorderSuite) SetupTest() {
	s.store = NewInMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.recorder = NewRecorder(s.store, logger, nil)
}

func (s *RecorderSuite) TestRecordCapturesRequestContext() {
	actor := id.NewMemberID()
	target := id.NewMemberID()
	now := time.Date(2026, 2, 1, 8, 30, 0, 0, time.UTC)

	ctx := requestcontext.WithMemberID(context.Background(), actor)
	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Firefox/142.0 (Linux)")
	ctx = requestcontext.WithRequestID(ctx, "req-123")
	ctx = requestcontext.WithTime(ctx, now)

	s.recorder.Record(ctx, EventUserDeactivated, &target, map[string]any{"email": "x@example.com"})

	entries, err := s.store.Query(context.Background(), Filter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)

	e := entries[0]
	s.Equal(EventUserDeactivated, e.Event)
	s.Equal(actor, *e.ActorID)
	s.Equal(target, *e.TargetID)
	s.Equal("203.0.113.9", e.SourceIP)
	s.Equal("req-123", e.RequestID)
	s.True(e.CreatedAt.Equal(now))
}

func (s *RecorderSuite) TestRecordWithoutActingUser() {
	s.recorder.Record(context.Background(), EventRetentionPurge, nil, nil)

	entries, err := s.store.Query(context.Background(), Filter{})
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Nil(entries[0].ActorID)
	s.Nil(entries[0].TargetID)
}

func (s *RecorderSuite) TestWriteFailureIsSwallowed() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recorder := NewRecorder(&failingStore{}, logger, nil)

	// must not panic and must not propagate the failure
	recorder.Record(context.Background(), EventUserRestored, nil, nil)
}

// =============================================================================
// Query Filtering and Pagination
// =============================================================================

func (s *RecorderSuite) TestQueryFilters() {
	member := id.NewMemberID()
	other := id.NewMemberID()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		ctx := requestcontext.WithTime(context.Background(), base.Add(time.Duration(i)*time.Hour))
		target := other
		event := EventUserDeactivated
		if i%2 == 0 {
			target = member
			event = EventUserRestored
		}
		s.recorder.Record(ctx, event, &target, nil)
	}

	s.Run("by event", func() {
		entries, err := s.store.Query(context.Background(), Filter{Event: EventUserRestored})
		s.Require().NoError(err)
		s.Len(entries, 3)
	})

	s.Run("by member", func() {
		entries, err := s.store.Query(context.Background(), Filter{MemberID: &member})
		s.Require().NoError(err)
		s.Len(entries, 3)
	})

	s.Run("by date range", func() {
		entries, err := s.store.Query(context.Background(), Filter{
			Start: base.Add(1 * time.Hour),
			End:   base.Add(3 * time.Hour),
		})
		s.Require().NoError(err)
		s.Len(entries, 3)
	})

	s.Run("newest first with limit and offset", func() {
		entries, err := s.store.Query(context.Background(), Filter{Limit: 2})
		s.Require().NoError(err)
		s.Require().Len(entries, 2)
		s.True(entries[0].CreatedAt.After(entries[1].CreatedAt))

		rest, err := s.store.Query(context.Background(), Filter{Limit: 10, Offset: 4})
		s.Require().NoError(err)
		s.Len(rest, 1)
	})

	s.Run("offset past the end yields empty result", func() {
		entries, err := s.store.Query(context.Background(), Filter{Offset: 50})
		s.Require().NoError(err)
		s.Empty(entries)
	})
}

func (s *RecorderSuite) TestDefaultLimitApplied() {
	f := Filter{}.Normalize()
	s.Equal(DefaultLimit, f.Limit)
	s.Equal(0, f.Offset)
}

type failingStore struct{}

func (f *failingStore) Append(context.Context, Entry) error {
	return errors.New("disk full")
}

func (f *failingStore) Query(context.Context, Filter) ([]Entry, error) {
	return nil, errors.New("disk full")
}
