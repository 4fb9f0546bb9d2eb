package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/schedule"
)

const reservationColumns = `
	id::text, day, start_minute, duration_minutes, kind,
	client_name, client_phone, service_name, service_price::float8, created_at`

type ReservationRepository struct {
	pool *db.Pool
}

func NewReservationRepository(pool *db.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// Commit inserts the reservation inside the caller's transaction. The insert
// is the atomic slot claim: if another reservation holds the same start or an
// overlapping span, the database rejects it and Commit returns ErrSlotTaken.
func (r *ReservationRepository) Commit(ctx context.Context, tx pgx.Tx, res *model.Reservation) error {
	if res.DurationMinutes <= 0 {
		return ErrInvalidDuration
	}
	err := tx.QueryRow(ctx, `
		INSERT INTO reservations
			(id, day, start_minute, duration_minutes, kind, client_name, client_phone, service_name, service_price)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`, res.ID, res.Day.String(), int(res.Start), res.DurationMinutes, string(res.Kind),
		res.ClientName, res.ClientPhone, res.ServiceName, res.ServicePrice).Scan(&res.CreatedAt)
	if slotConflict(err) {
		return ErrSlotTaken
	}
	return err
}

// Remove deletes the reservation at (day, start) and returns the deleted row
// so callers can emit a cancellation event. ErrNotFound when nothing was
// there.
func (r *ReservationRepository) Remove(ctx context.Context, tx pgx.Tx, day schedule.Date, start schedule.TimeOfDay) (model.Reservation, error) {
	row := tx.QueryRow(ctx, `
		DELETE FROM reservations
		WHERE day = $1::date AND start_minute = $2
		RETURNING `+reservationColumns,
		day.String(), int(start))
	res, err := scanReservation(row)
	if noRows(err) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

// ToggleBlock flips the blocked state of one slot. An existing block is
// lifted; an empty slot gains a block of one granularity step. A slot holding
// a booking is refused with ErrSlotBooked, whether the booking starts there
// or merely covers it.
func (r *ReservationRepository) ToggleBlock(ctx context.Context, day schedule.Date, start schedule.TimeOfDay, granularityMinutes int, newID string) (blocked bool, err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var kind string
	err = tx.QueryRow(ctx, `
		SELECT kind
		FROM reservations
		WHERE day = $1::date AND start_minute = $2
		FOR UPDATE
	`, day.String(), int(start)).Scan(&kind)

	switch {
	case err == nil && kind == string(schedule.KindBooking):
		return false, ErrSlotBooked
	case err == nil:
		if _, err := tx.Exec(ctx, `
			DELETE FROM reservations
			WHERE day = $1::date AND start_minute = $2
		`, day.String(), int(start)); err != nil {
			return false, err
		}
		return false, tx.Commit(ctx)
	case !noRows(err):
		return false, err
	}

	// The slot has no reservation starting on it; claim it with a block. A
	// booking covering the slot from an earlier start trips the span
	// exclusion constraint here.
	_, err = tx.Exec(ctx, `
		INSERT INTO reservations (id, day, start_minute, duration_minutes, kind)
		VALUES ($1, $2::date, $3, $4, $5)
	`, newID, day.String(), int(start), granularityMinutes, string(schedule.KindBlock))
	if slotConflict(err) {
		return false, ErrSlotBooked
	}
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (r *ReservationRepository) Get(ctx context.Context, day schedule.Date, start schedule.TimeOfDay) (model.Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE day = $1::date AND start_minute = $2
	`, day.String(), int(start))
	res, err := scanReservation(row)
	if noRows(err) {
		return model.Reservation{}, ErrNotFound
	}
	return res, err
}

func (r *ReservationRepository) ListByDay(ctx context.Context, day schedule.Date) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE day = $1::date
		ORDER BY start_minute ASC
	`, day.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepository) ListRange(ctx context.Context, from, to schedule.Date) ([]model.Reservation, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE day >= $1::date AND day <= $2::date
		ORDER BY day ASC, start_minute ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (r *ReservationRepository) CountBookingsOnDay(ctx context.Context, day schedule.Date) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT count(*)
		FROM reservations
		WHERE day = $1::date AND kind = 'booking'
	`, day.String()).Scan(&n)
	return n, err
}

// UpcomingBookings lists the next bookings on a day from the given minute,
// for the dashboard's "next clients" panel.
func (r *ReservationRepository) UpcomingBookings(ctx context.Context, day schedule.Date, from schedule.TimeOfDay, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE day = $1::date AND kind = 'booking' AND start_minute >= $2
		ORDER BY start_minute ASC
		LIMIT $3
	`, day.String(), int(from), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReservations(rows)
}

// RevenueBetween sums booking revenue over [from, to] inclusive.
func (r *ReservationRepository) RevenueBetween(ctx context.Context, from, to schedule.Date) (total float64, bookings int, err error) {
	err = r.pool.QueryRow(ctx, `
		SELECT COALESCE(sum(service_price), 0)::float8, count(*)
		FROM reservations
		WHERE day >= $1::date AND day <= $2::date AND kind = 'booking'
	`, from.String(), to.String()).Scan(&total, &bookings)
	return total, bookings, err
}

type DayRevenue struct {
	Day      schedule.Date
	Bookings int
	Revenue  float64
}

func (r *ReservationRepository) RevenueByDay(ctx context.Context, from, to schedule.Date) ([]DayRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT day, count(*), COALESCE(sum(service_price), 0)::float8
		FROM reservations
		WHERE day >= $1::date AND day <= $2::date AND kind = 'booking'
		GROUP BY day
		ORDER BY day ASC
	`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DayRevenue
	for rows.Next() {
		var d DayRevenue
		var day time.Time
		if err := rows.Scan(&day, &d.Bookings, &d.Revenue); err != nil {
			return nil, err
		}
		d.Day = dateFromTime(day)
		out = append(out, d)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type ServiceRevenue struct {
	ServiceName string
	Bookings    int
	Revenue     float64
}

func (r *ReservationRepository) RevenueByService(ctx context.Context, from, to schedule.Date) ([]ServiceRevenue, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service_name, count(*), COALESCE(sum(service_price), 0)::float8
		FROM reservations
		WHERE day >= $1::date AND day <= $2::date AND kind = 'booking'
		GROUP BY service_name
		ORDER BY sum(service_price) DESC
	`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ServiceRevenue
	for rows.Next() {
		var s ServiceRevenue
		if err := rows.Scan(&s.ServiceName, &s.Bookings, &s.Revenue); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var res model.Reservation
	var day time.Time
	var start int
	var kind string
	err := row.Scan(
		&res.ID,
		&day,
		&start,
		&res.DurationMinutes,
		&kind,
		&res.ClientName,
		&res.ClientPhone,
		&res.ServiceName,
		&res.ServicePrice,
		&res.CreatedAt,
	)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Day = dateFromTime(day)
	res.Start = schedule.TimeOfDay(start)
	res.Kind = schedule.Kind(kind)
	return res, nil
}

func collectReservations(rows pgx.Rows) ([]model.Reservation, error) {
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func dateFromTime(t time.Time) schedule.Date {
	return schedule.Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}
