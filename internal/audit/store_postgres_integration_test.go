//go:build integration

package audit_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"memberport/internal/audit"
	id "memberport/pkg/domain"
	"memberport/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
}

func (s *AuditPostgresSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *AuditPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background()))
}

func (s *AuditPostgresSuite) entry(event string, target *id.MemberID, at time.Time) audit.Entry {
	return audit.Entry{
		ID:        uuid.New(),
		Event:     event,
		TargetID:  target,
		Details:   map[string]any{"source": "integration"},
		SourceIP:  "198.51.100.7",
		RequestID: uuid.NewString(),
		CreatedAt: at,
	}
}

func (s *AuditPostgresSuite) TestAppendWritesOutboxRowInSameTransaction() {
	ctx := context.Background()
	target := id.NewMemberID()
	s.Require().NoError(s.store.Append(ctx, s.entry(audit.EventUserDeactivated, &target, time.Now().UTC())))

	var auditCount, outboxCount int
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_events`).Scan(&auditCount))
	s.Require().NoError(s.postgres.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_outbox`).Scan(&outboxCount))
	s.Equal(1, auditCount)
	s.Equal(1, outboxCount)
}

func (s *AuditPostgresSuite) TestQueryFiltersAndPagination() {
	ctx := context.Background()
	target := id.NewMemberID()
	other := id.NewMemberID()
	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Microsecond)

	for i := 0; i < 6; i++ {
		event := audit.EventUserDeactivated
		who := &target
		if i%2 == 1 {
			event = audit.EventUserRestored
			who = &other
		}
		s.Require().NoError(s.store.Append(ctx, s.entry(event, who, base.Add(time.Duration(i)*time.Minute))))
	}

	s.Run("by event newest first", func() {
		got, err := s.store.Query(ctx, audit.Filter{Event: audit.EventUserDeactivated})
		s.Require().NoError(err)
		s.Require().Len(got, 3)
		s.True(got[0].CreatedAt.After(got[1].CreatedAt))
	})

	s.Run("by member", func() {
		got, err := s.store.Query(ctx, audit.Filter{MemberID: &other})
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("by date range", func() {
		got, err := s.store.Query(ctx, audit.Filter{
			Start: base.Add(1 * time.Minute),
			End:   base.Add(3 * time.Minute),
		})
		s.Require().NoError(err)
		s.Len(got, 3)
	})

	s.Run("limit and offset", func() {
		page, err := s.store.Query(ctx, audit.Filter{Limit: 4})
		s.Require().NoError(err)
		s.Len(page, 4)

		rest, err := s.store.Query(ctx, audit.Filter{Limit: 4, Offset: 4})
		s.Require().NoError(err)
		s.Len(rest, 2)
	})

	s.Run("details payload round trips", func() {
		got, err := s.store.Query(ctx, audit.Filter{Limit: 1})
		s.Require().NoError(err)
		s.Require().Len(got, 1)
		s.Equal("integration", got[0].Details["source"])
	})
}
