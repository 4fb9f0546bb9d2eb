package reminders

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/plvieira/agendabarber/libs/db"
	otelx "github.com/plvieira/agendabarber/libs/otel"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/outbox"
)

// Worker moves due reminder jobs into the outbox, where the publisher ships
// them to the notification service. Moving the job and writing the event
// happen in one transaction, so a reminder is either due or emitted, never
// lost in between.
type Worker struct {
	pool      *db.Pool
	repo      *Repository
	outbox    *outbox.Repository
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	backoff   time.Duration
}

type WorkerConfig struct {
	Interval  time.Duration
	BatchSize int
	Backoff   time.Duration
}

func NewWorker(pool *db.Pool, repo *Repository, outboxRepo *outbox.Repository, logger *slog.Logger, cfg WorkerConfig) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 1 * time.Minute
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		outbox:    outboxRepo,
		logger:    logger,
		interval:  cfg.Interval,
		batchSize: cfg.BatchSize,
		backoff:   cfg.Backoff,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("reminder batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	jobs, err := w.repo.FetchDue(ctx, tx, w.batchSize)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return tx.Commit(ctx)
	}

	var ids []int64
	var malformed []Job
	for _, job := range jobs {
		jobCtx := otelx.ContextWithTraceContext(ctx, job.Traceparent, job.Tracestate)
		payload, err := json.Marshal(map[string]any{
			"reservation_id": job.ReservationID,
			"recipient":      job.Recipient,
			"remind_at":      job.RemindAt.UTC().Format(time.RFC3339),
			"template_data":  job.TemplateData,
		})
		if err != nil {
			malformed = append(malformed, job)
			continue
		}

		if err := w.outbox.Insert(jobCtx, tx, outbox.Event{
			AggregateType: "reminder_job",
			AggregateID:   job.ReservationID,
			EventType:     outbox.EventReminderDue,
			Payload:       payload,
		}); err != nil {
			// The batch transaction is aborted now; nothing else can be
			// written on it. Drop the batch, record this job's failure on a
			// fresh transaction, and let the rest come around next tick.
			_ = tx.Rollback(ctx)
			if recErr := w.recordFailure(ctx, job, "outbox enqueue failed"); recErr != nil {
				w.logger.Error("failed to record reminder failure", "job_id", job.ID, "err", recErr)
			}
			return err
		}
		ids = append(ids, job.ID)
	}

	if err := w.repo.MarkProcessed(ctx, tx, ids); err != nil {
		return err
	}

	// Marshal failures leave the transaction healthy, so their bookkeeping
	// rides in the same commit as the batch.
	for _, job := range malformed {
		if err := w.markFailed(ctx, tx, job, "payload marshal failed"); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// recordFailure marks one job failed on its own transaction, used when the
// batch transaction died underneath it.
func (w *Worker) recordFailure(ctx context.Context, job Job, reason string) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := w.markFailed(ctx, tx, job, reason); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (w *Worker) markFailed(ctx context.Context, tx pgx.Tx, job Job, reason string) error {
	attempts, nextRunAt, dead := nextAttempt(job, w.backoff, time.Now().UTC())
	if err := w.repo.MarkFailed(ctx, tx, job.ID, attempts, job.MaxAttempts, nextRunAt, reason); err != nil {
		return err
	}
	if dead {
		jobCtx := otelx.ContextWithTraceContext(ctx, job.Traceparent, job.Tracestate)
		return w.enqueueDLQ(jobCtx, tx, job, "max attempts reached")
	}
	return nil
}

// nextAttempt computes the retry bookkeeping for a failed job: the bumped
// attempt count, when to run again, and whether the job is out of attempts
// and belongs on the DLQ.
func nextAttempt(job Job, backoff time.Duration, now time.Time) (attempts int, nextRunAt time.Time, dead bool) {
	attempts = job.Attempts + 1
	return attempts, now.Add(backoff), attempts >= job.MaxAttempts
}

func (w *Worker) enqueueDLQ(ctx context.Context, tx pgx.Tx, job Job, reason string) error {
	payload, err := json.Marshal(map[string]any{
		"reservation_id": job.ReservationID,
		"recipient":      job.Recipient,
		"remind_at":      job.RemindAt.UTC().Format(time.RFC3339),
		"template_data":  job.TemplateData,
		"error_reason":   reason,
		"failed_at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return w.outbox.Insert(ctx, tx, outbox.Event{
		AggregateType: "reminder_job",
		AggregateID:   job.ReservationID,
		EventType:     "agenda.reminder.dlq.v1",
		Payload:       payload,
	})
}
