package schedule

// Kind distinguishes client bookings from administrative blocks. Both occupy
// time identically; they differ only in how the agenda presents them.
type Kind string

const (
	KindBooking Kind = "booking"
	KindBlock   Kind = "block"
)

// Reservation is the engine's view of a committed reservation: where it
// starts and how long it runs. DurationMinutes <= 0 means the duration was
// never recorded and the reservation occupies one granularity step.
type Reservation struct {
	Start           TimeOfDay
	DurationMinutes int
	Kind            Kind
}

func (r Reservation) end(defaultDurationMinutes int) TimeOfDay {
	d := r.DurationMinutes
	if d <= 0 {
		d = defaultDurationMinutes
	}
	return r.Start + TimeOfDay(d)
}

// Slot is one candidate start time in the booking view.
type Slot struct {
	Start     TimeOfDay
	Available bool
}

// SlotState classifies a grid cell in the admin occupancy view.
type SlotState string

const (
	SlotEmpty   SlotState = "empty"
	SlotBooked  SlotState = "booked"
	SlotBlocked SlotState = "blocked"
)

// OccupiedSlot is one grid cell in the admin view. Reservation points into
// the slice passed to Occupancy when the cell is covered by one; StartsHere
// marks the cell where that reservation begins.
type OccupiedSlot struct {
	Start       TimeOfDay
	State       SlotState
	Reservation *Reservation
	StartsHere  bool
}

// Overlaps reports whether the half-open interval [candidateStart,
// candidateEnd) intersects the reservation. Touching endpoints do not
// overlap: a booking ending at 10:00 does not conflict with one starting at
// 10:00.
func Overlaps(candidateStart, candidateEnd TimeOfDay, r Reservation, defaultDurationMinutes int) bool {
	return candidateStart < r.end(defaultDurationMinutes) && r.Start < candidateEnd
}

// BookingSlots computes the public booking view for one date: every
// granularity-aligned start inside the day's window, each marked available or
// not for a service of the given duration. The full day grid is always
// returned so clients can render taken slots; an empty result means the day
// is closed, blocked, or misconfigured.
//
// A slot is unavailable when the service would run past closing, when it
// starts inside the lead-time window of a same-day request, or when it would
// overlap an existing reservation. Dates in the past relative to now are
// fully unavailable.
func BookingSlots(date Date, hours OperatingHours, policy Policy, existing []Reservation, serviceDurationMinutes int, now Now) []Slot {
	g := policy.SlotGranularityMinutes
	if g <= 0 || serviceDurationMinutes <= 0 {
		return nil
	}
	if policy.DateBlocked(date) {
		return nil
	}
	day, ok := hours[date.Weekday()]
	if !ok || !day.Open || day.End <= day.Start {
		return nil
	}

	pastDay := date.Before(now.Date)

	var slots []Slot
	for start := day.Start; start < day.End; start += TimeOfDay(g) {
		end := start + TimeOfDay(serviceDurationMinutes)
		leadOK := true
		if date == now.Date {
			leadOK = start >= now.Time+TimeOfDay(policy.MinLeadTimeMinutes)
		}
		available := !pastDay && end <= day.End && leadOK
		if available {
			for _, r := range existing {
				if Overlaps(start, end, r, g) {
					available = false
					break
				}
			}
		}
		slots = append(slots, Slot{Start: start, Available: available})
	}
	return slots
}

// Occupancy computes the admin grid for one date: one cell per granularity
// step, classified as empty, booked, or blocked. Unlike BookingSlots it
// ignores lead time and the current instant; admins see the whole day,
// including the past. A blocked date has no grid, same as a closed weekday.
func Occupancy(date Date, hours OperatingHours, policy Policy, existing []Reservation) []OccupiedSlot {
	g := policy.SlotGranularityMinutes
	if g <= 0 {
		return nil
	}
	if policy.DateBlocked(date) {
		return nil
	}
	day, ok := hours[date.Weekday()]
	if !ok || !day.Open || day.End <= day.Start {
		return nil
	}

	var cells []OccupiedSlot
	for start := day.Start; start < day.End; start += TimeOfDay(g) {
		cell := OccupiedSlot{Start: start, State: SlotEmpty}
		for i := range existing {
			r := &existing[i]
			if start >= r.Start && start < r.end(g) {
				cell.Reservation = r
				cell.StartsHere = start == r.Start
				if r.Kind == KindBlock {
					cell.State = SlotBlocked
				} else {
					cell.State = SlotBooked
				}
				break
			}
		}
		cells = append(cells, cell)
	}
	return cells
}
