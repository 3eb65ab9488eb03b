package compliance

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"memberport/internal/audit"
	"memberport/internal/member/models"
	memberstore "memberport/internal/member/store"
	id "memberport/pkg/domain"
)

func newService(t *testing.T) (*Service, *memberstore.InMemory, *audit.Recorder) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	members := memberstore.NewInMemory()
	recorder := audit.NewRecorder(audit.NewInMemoryStore(), logger, nil)
	return NewService(members, recorder, logger), members, recorder
}

func seedMember(t *testing.T, store *memberstore.InMemory, email string, marketing bool, deletedAt *time.Time, anonymized bool) {
	t.Helper()
	m := &models.Member{
		ID:                    id.NewMemberID(),
		Email:                 email,
		FirstName:             "Sanna",
		LastName:              "Heikkinen",
		Status:                id.MembershipActive,
		Role:                  id.RoleMember,
		MarketingConsent:      marketing,
		DataProcessingConsent: true,
		CreatedAt:             time.Now(),
		UpdatedAt:             time.Now(),
		DeletedAt:             deletedAt,
	}
	if anonymized {
		m.FirstName = models.AnonymizedFirstName
		m.LastName = models.AnonymizedLastName
	}
	require.NoError(t, store.Create(context.Background(), m))
}

func TestRetentionStats(t *testing.T) {
	svc, members, _ := newService(t)
	deletedAt := time.Now().Add(-time.Hour)

	seedMember(t, members, "a@example.com", true, nil, false)
	seedMember(t, members, "b@example.com", false, nil, false)
	seedMember(t, members, "c@example.com", false, &deletedAt, false)
	seedMember(t, members, "d@example.com", false, &deletedAt, true)

	counts, err := svc.RetentionStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, counts.Total)
	require.Equal(t, 2, counts.Active)
	require.Equal(t, 1, counts.SoftDeleted)
	require.Equal(t, 1, counts.Anonymized)
}

func TestConsentStatsExcludeDeletedAccounts(t *testing.T) {
	svc, members, _ := newService(t)
	deletedAt := time.Now().Add(-time.Hour)

	seedMember(t, members, "a@example.com", true, nil, false)
	seedMember(t, members, "b@example.com", false, nil, false)
	seedMember(t, members, "c@example.com", true, &deletedAt, false)

	counts, err := svc.ConsentStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, counts.Total)
	require.Equal(t, 1, counts.MarketingConsent)
	require.Equal(t, 2, counts.ProcessingConsent)
}

func TestAuditLogsEmptyResultIsNotAnError(t *testing.T) {
	svc, _, _ := newService(t)

	entries, err := svc.AuditLogs(context.Background(), audit.Filter{})
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestAuditLogsPassThroughFilter(t *testing.T) {
	svc, _, recorder := newService(t)
	target := id.NewMemberID()

	recorder.Record(context.Background(), audit.EventUserDeactivated, &target, nil)
	recorder.Record(context.Background(), audit.EventUserRestored, &target, nil)

	entries, err := svc.AuditLogs(context.Background(), audit.Filter{Event: audit.EventUserRestored})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, audit.EventUserRestored, entries[0].Event)
}
