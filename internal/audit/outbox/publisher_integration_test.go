//go:build integration

package outbox_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"memberport/internal/audit"
	"memberport/internal/audit/outbox"
	id "memberport/pkg/domain"
	"memberport/pkg/testutil/containers"
)

func TestOutboxDeliversAuditEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	pg := containers.NewPostgresContainer(t)
	defer func() {
		_ = pg.DB.Close()
		_ = pg.Container.Terminate(ctx)
	}()
	rp := containers.NewRedpandaContainer(t)
	defer func() { _ = rp.Container.Terminate(ctx) }()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	topic := "memberport.audit.test"

	publisher, err := outbox.New(ctx, pg.DB, []string{rp.Broker}, topic, logger)
	require.NoError(t, err)
	defer publisher.Close()

	store := audit.NewPostgresStore(pg.DB)
	target := id.NewMemberID()
	entry := audit.Entry{
		ID:        uuid.New(),
		Event:     audit.EventUserDeactivated,
		TargetID:  &target,
		Details:   map[string]any{"reason": "test"},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Append(ctx, entry))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = publisher.Run(runCtx) }()

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(rp.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		pollCtx, pollCancel := context.WithTimeout(ctx, 2*time.Second)
		fetches := consumer.PollFetches(pollCtx)
		pollCancel()

		var got *kgo.Record
		fetches.EachRecord(func(r *kgo.Record) {
			if string(r.Key) == entry.ID.String() {
				got = r
			}
		})
		if got != nil {
			require.Contains(t, string(got.Value), audit.EventUserDeactivated)

			// delivered rows are cleared from the outbox
			require.Eventually(t, func() bool {
				var n int
				if err := pg.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_outbox`).Scan(&n); err != nil {
					return false
				}
				return n == 0
			}, 10*time.Second, 200*time.Millisecond)
			return
		}
	}
	t.Fatal("audit event never arrived on the topic")
}
