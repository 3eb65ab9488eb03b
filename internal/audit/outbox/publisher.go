// Package outbox relays committed audit events to Kafka. Events land in the
// audit_outbox table in the same transaction as the audit entry; this
// publisher drains that table, so a Kafka outage delays delivery but never
// loses events.
package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"memberport/pkg/platform/circuit"
)

const (
	defaultTopic        = "memberport.audit.v1"
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100

	// While the breaker is open, only every Nth tick probes Kafka.
	probeEveryNTicks = 5
)

// Publisher drains the audit outbox table into a Kafka topic.
type Publisher struct {
	db      *sql.DB
	client  *kgo.Client
	logger  *slog.Logger
	topic   string
	breaker *circuit.Breaker

	pollInterval time.Duration
	batchSize    int
	skippedTicks int
}

// New connects to the given brokers and ensures the audit topic exists.
func New(ctx context.Context, db *sql.DB, brokers []string, topic string, logger *slog.Logger) (*Publisher, error) {
	if topic == "" {
		topic = defaultTopic
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{
		db:           db,
		client:       client,
		logger:       logger,
		topic:        topic,
		breaker:      circuit.New("audit-outbox"),
		pollInterval: defaultPollInterval,
		batchSize:    defaultBatchSize,
	}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, -1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, resp.Err)
	}
	return nil
}

// Run polls the outbox until ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// An open breaker means Kafka is down; rows keep accumulating
			// in the outbox table, so back off to occasional probes.
			if p.breaker.IsOpen() {
				p.skippedTicks++
				if p.skippedTicks%probeEveryNTicks != 0 {
					continue
				}
			}
			if err := p.drainOnce(ctx); err != nil {
				p.logger.WarnContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// drainOnce publishes one batch of pending rows and deletes the delivered
// ones. Delivery is at-least-once; consumers dedupe on the event ID key.
func (p *Publisher) drainOnce(ctx context.Context) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT seq, event_id, payload FROM audit_outbox
		ORDER BY seq
		LIMIT $1
	`, p.batchSize)
	if err != nil {
		return fmt.Errorf("select outbox: %w", err)
	}
	defer rows.Close()

	type pending struct {
		seq     int64
		eventID string
		payload []byte
	}
	var batch []pending
	for rows.Next() {
		var row pending
		if err := rows.Scan(&row.seq, &row.eventID, &row.payload); err != nil {
			return fmt.Errorf("scan outbox row: %w", err)
		}
		batch = append(batch, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	records := make([]*kgo.Record, len(batch))
	for i, row := range batch {
		records[i] = &kgo.Record{
			Topic: p.topic,
			Key:   []byte(row.eventID),
			Value: row.payload,
		}
	}
	if err := p.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.WarnContext(ctx, "audit outbox circuit opened", "breaker", p.breaker.Name())
		}
		return fmt.Errorf("produce audit batch: %w", err)
	}
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.skippedTicks = 0
		p.logger.InfoContext(ctx, "audit outbox circuit closed", "breaker", p.breaker.Name())
	}

	delivered := make([]int64, len(batch))
	for i, row := range batch {
		delivered[i] = row.seq
	}
	if _, err := p.db.ExecContext(ctx,
		`DELETE FROM audit_outbox WHERE seq = ANY($1)`, pq.Array(delivered)); err != nil {
		return fmt.Errorf("clear outbox: %w", err)
	}

	p.logger.DebugContext(ctx, "audit events published", "count", len(batch))
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
