package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSlotTaken means the reservation lost the race for its slot: another
	// reservation already holds the same start or overlaps the span.
	ErrSlotTaken = errors.New("slot already taken")

	// ErrSlotBooked means a block was requested on a slot that holds a
	// client booking. Blocks never displace bookings.
	ErrSlotBooked = errors.New("slot holds a booking")

	// ErrInvalidDuration rejects a reservation whose duration is not a
	// positive number of minutes before it ever reaches the database.
	ErrInvalidDuration = errors.New("invalid duration")

	ErrNotFound = errors.New("not found")
)

// slotConflict recognizes the two constraint violations the reservations
// table can raise: 23505 on the (day, start_minute) key and 23P01 on the
// span exclusion constraint.
func slotConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01")
}

func noRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
