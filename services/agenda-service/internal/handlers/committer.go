package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/outbox"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/reminders"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
)

// Committer owns the transactional booking path shared by the public API and
// the admin agenda: claim the slot, write the outbox event, and schedule
// reminders, all in one transaction. Losing the slot race surfaces as
// storage.ErrSlotTaken with nothing else persisted.
type Committer struct {
	reservations *storage.ReservationRepository
	clients      *storage.ClientRepository
	outbox       *outbox.Repository
	reminders    *reminders.Repository
	logger       *slog.Logger
	loc          *time.Location
	offsets      []time.Duration
}

func NewCommitter(
	reservations *storage.ReservationRepository,
	clients *storage.ClientRepository,
	outboxRepo *outbox.Repository,
	reminderRepo *reminders.Repository,
	logger *slog.Logger,
	loc *time.Location,
	offsets []time.Duration,
) *Committer {
	return &Committer{
		reservations: reservations,
		clients:      clients,
		outbox:       outboxRepo,
		reminders:    reminderRepo,
		logger:       logger,
		loc:          loc,
		offsets:      offsets,
	}
}

func (c *Committer) CommitBooking(ctx context.Context, res *model.Reservation, settings model.Settings) error {
	tx, err := c.reservations.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := c.reservations.Commit(ctx, tx, res); err != nil {
		return err
	}

	evt, err := outbox.NewBookingCreated(*res, settings.WhatsAppPhone)
	if err != nil {
		return err
	}
	if err := c.outbox.Insert(ctx, tx, evt); err != nil {
		return err
	}

	if res.Kind == schedule.KindBooking && res.ClientPhone != "" {
		startAt := slotInstant(res.Day, res.Start, c.loc)
		for _, offset := range c.offsets {
			remindAt := startAt.Add(-offset)
			if !remindAt.After(time.Now()) {
				continue
			}
			job := reminders.Job{
				IdempotencyKey: fmt.Sprintf("%s:%d", res.ID, int(offset.Minutes())),
				ReservationID:  res.ID,
				Recipient:      res.ClientPhone,
				RemindAt:       remindAt,
				TemplateData: map[string]any{
					"client_name":  res.ClientName,
					"service_name": res.ServiceName,
					"day":          res.Day.String(),
					"start":        res.Start.String(),
				},
			}
			if err := c.reminders.Insert(ctx, tx, job); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// The client record is bookkeeping, not part of the commit contract.
	if res.ClientPhone != "" {
		if err := c.clients.Upsert(ctx, model.Client{Phone: res.ClientPhone, Name: res.ClientName}); err != nil {
			c.logger.Warn("client upsert failed", "phone", res.ClientPhone, "err", err)
		}
	}
	return nil
}

// Remove deletes the reservation at (day, start), cancels its pending
// reminders, and emits a removal event. Removing an empty slot returns
// storage.ErrNotFound.
func (c *Committer) Remove(ctx context.Context, day schedule.Date, start schedule.TimeOfDay, shopPhone string) (model.Reservation, error) {
	tx, err := c.reservations.Begin(ctx)
	if err != nil {
		return model.Reservation{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	res, err := c.reservations.Remove(ctx, tx, day, start)
	if err != nil {
		return model.Reservation{}, err
	}

	if err := c.reminders.CancelByReservation(ctx, tx, res.ID); err != nil {
		return model.Reservation{}, err
	}

	if res.Kind == schedule.KindBooking {
		evt, err := outbox.NewReservationRemoved(res, shopPhone)
		if err != nil {
			return model.Reservation{}, err
		}
		if err := c.outbox.Insert(ctx, tx, evt); err != nil {
			return model.Reservation{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}
