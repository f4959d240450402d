// Package worker drains the audit outbox into Kafka. It runs as a single
// background goroutine next to the HTTP server and shuts down with it.
package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultBatchSize    = 100
)

// Worker polls the outbox table and publishes unpublished entries to Kafka.
// Rows are marked published only after the produce succeeds, so a crash
// between produce and mark can duplicate events; consumers must be
// idempotent on the event id.
type Worker struct {
	db       *sql.DB
	client   *kgo.Client
	topic    string
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// New builds an outbox worker. The kgo client is owned by the caller.
func New(db *sql.DB, client *kgo.Client, topic string, logger *slog.Logger) *Worker {
	return &Worker{
		db:       db,
		client:   client,
		topic:    topic,
		logger:   logger,
		interval: defaultPollInterval,
		batch:    defaultBatchSize,
	}
}

// EnsureTopic creates the audit topic when it does not exist yet.
func (w *Worker) EnsureTopic(ctx context.Context, partitions int32, replicas int16) error {
	adm := kadm.NewClient(w.client)
	resp, err := adm.CreateTopic(ctx, partitions, replicas, nil, w.topic)
	if err != nil {
		return fmt.Errorf("ensure topic %s: %w", w.topic, err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("ensure topic %s: %w", w.topic, resp.Err)
	}
	return nil
}

// Run polls until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				// Transient failures (broker down, db hiccup) are logged and
				// retried on the next tick; the outbox keeps the backlog.
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

type outboxRow struct {
	id      uuid.UUID
	key     string
	payload []byte
}

func (w *Worker) drain(ctx context.Context) error {
	rows, err := w.db.QueryContext(ctx, `
		SELECT id, aggregate_id, payload
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1`, w.batch)
	if err != nil {
		return fmt.Errorf("select outbox: %w", err)
	}
	defer rows.Close()

	var pending []outboxRow
	for rows.Next() {
		var row outboxRow
		if err := rows.Scan(&row.id, &row.key, &row.payload); err != nil {
			return fmt.Errorf("scan outbox: %w", err)
		}
		pending = append(pending, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("select outbox: %w", err)
	}

	for _, row := range pending {
		record := &kgo.Record{
			Topic: w.topic,
			Key:   []byte(row.key),
			Value: row.payload,
		}
		if err := w.client.ProduceSync(ctx, record).FirstErr(); err != nil {
			return fmt.Errorf("produce outbox entry %s: %w", row.id, err)
		}
		if _, err := w.db.ExecContext(ctx,
			`UPDATE outbox SET published_at = $2 WHERE id = $1`,
			row.id, time.Now()); err != nil {
			return fmt.Errorf("mark outbox entry %s: %w", row.id, err)
		}
	}
	return nil
}
