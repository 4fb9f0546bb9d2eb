package schedule

import "testing"

func mustDate(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	if err != nil {
		t.Fatalf("ParseDate(%q) failed: %v", s, err)
	}
	return d
}

func mustClock(t *testing.T, s string) TimeOfDay {
	t.Helper()
	tod, err := ParseClock(s)
	if err != nil {
		t.Fatalf("ParseClock(%q) failed: %v", s, err)
	}
	return tod
}

// weekdayHours opens every day of the week with the same window.
func weekdayHours(start, end TimeOfDay) OperatingHours {
	hours := OperatingHours{}
	for w := Monday; w <= Sunday; w++ {
		hours[w] = DayHours{Open: true, Start: start, End: end}
	}
	return hours
}

func slotByStart(t *testing.T, slots []Slot, start TimeOfDay) Slot {
	t.Helper()
	for _, s := range slots {
		if s.Start == start {
			return s
		}
	}
	t.Fatalf("no slot at %s", start)
	return Slot{}
}

func TestOverlapsHalfOpen(t *testing.T) {
	r := Reservation{Start: mustClock(t, "10:00"), DurationMinutes: 30}

	cases := []struct {
		name       string
		start, end string
		want       bool
	}{
		{"identical", "10:00", "10:30", true},
		{"starts inside", "10:15", "10:45", true},
		{"ends inside", "09:45", "10:15", true},
		{"contains", "09:30", "11:00", true},
		{"touches end", "10:30", "11:00", false},
		{"touches start", "09:30", "10:00", false},
		{"disjoint", "11:00", "11:30", false},
	}
	for _, tc := range cases {
		got := Overlaps(mustClock(t, tc.start), mustClock(t, tc.end), r, 30)
		if got != tc.want {
			t.Errorf("%s: Overlaps = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOverlapsDefaultsMissingDuration(t *testing.T) {
	// Reservations with no recorded duration occupy one granularity step.
	r := Reservation{Start: mustClock(t, "10:00")}
	if !Overlaps(mustClock(t, "10:00"), mustClock(t, "10:30"), r, 30) {
		t.Fatal("expected overlap inside defaulted duration")
	}
	if Overlaps(mustClock(t, "10:30"), mustClock(t, "11:00"), r, 30) {
		t.Fatal("expected no overlap past defaulted duration")
	}
}

func TestBookingSlotsGrid(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	policy := Policy{SlotGranularityMinutes: 30, MinLeadTimeMinutes: 60}
	now := Now{Date: mustDate(t, "2024-06-01"), Time: mustClock(t, "08:00")}

	slots := BookingSlots(date, hours, policy, nil, 30, now)
	if len(slots) != 6 {
		t.Fatalf("got %d slots, want 6", len(slots))
	}
	if slots[0].Start != mustClock(t, "09:00") || slots[5].Start != mustClock(t, "11:30") {
		t.Fatalf("unexpected grid bounds: %v .. %v", slots[0].Start, slots[5].Start)
	}
	for _, s := range slots {
		if !s.Available {
			t.Errorf("slot %s should be available on an empty future day", s.Start)
		}
	}
}

func TestBookingSlotsLeadTimeBoundary(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "18:00"))
	policy := Policy{SlotGranularityMinutes: 30, MinLeadTimeMinutes: 60}

	// At 09:00 with a 60-minute lead, 10:00 is the first bookable start.
	now := Now{Date: date, Time: mustClock(t, "09:00")}
	slots := BookingSlots(date, hours, policy, nil, 30, now)
	if slotByStart(t, slots, mustClock(t, "09:30")).Available {
		t.Error("09:30 inside lead window should be unavailable")
	}
	if !slotByStart(t, slots, mustClock(t, "10:00")).Available {
		t.Error("10:00 exactly at lead boundary should be available")
	}

	// One minute later the boundary slot falls inside the window.
	now.Time = mustClock(t, "09:01")
	slots = BookingSlots(date, hours, policy, nil, 30, now)
	if slotByStart(t, slots, mustClock(t, "10:00")).Available {
		t.Error("10:00 should be unavailable at 09:01 with 60-minute lead")
	}
}

func TestBookingSlotsPastDateFullyUnavailable(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	policy := Policy{SlotGranularityMinutes: 30, MinLeadTimeMinutes: 60}
	now := Now{Date: mustDate(t, "2024-06-11"), Time: mustClock(t, "00:00")}

	slots := BookingSlots(date, hours, policy, nil, 30, now)
	if len(slots) == 0 {
		t.Fatal("past date should still render its grid")
	}
	for _, s := range slots {
		if s.Available {
			t.Errorf("slot %s on a past date should be unavailable", s.Start)
		}
	}
}

func TestBookingSlotsClosedAndBlockedDays(t *testing.T) {
	hours := OperatingHours{
		Monday: {Open: true, Start: mustClock(t, "09:00"), End: mustClock(t, "12:00")},
	}
	policy := Policy{SlotGranularityMinutes: 30, MinLeadTimeMinutes: 60}
	now := Now{Date: mustDate(t, "2024-06-01"), Time: mustClock(t, "08:00")}

	// 2024-06-11 is a Tuesday with no entry.
	if slots := BookingSlots(mustDate(t, "2024-06-11"), hours, policy, nil, 30, now); slots != nil {
		t.Fatalf("closed weekday should yield no slots, got %d", len(slots))
	}

	monday := mustDate(t, "2024-06-10")
	policy.BlockedDates = map[Date]struct{}{monday: {}}
	if slots := BookingSlots(monday, hours, policy, nil, 30, now); slots != nil {
		t.Fatalf("blocked date should yield no slots, got %d", len(slots))
	}
}

func TestBookingSlotsServiceRunsPastClosing(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "10:00"))
	policy := Policy{SlotGranularityMinutes: 30}
	now := Now{Date: mustDate(t, "2024-06-01"), Time: mustClock(t, "08:00")}

	// A 45-minute service fits at 09:00 but would overrun from 09:30.
	slots := BookingSlots(date, hours, policy, nil, 45, now)
	if !slotByStart(t, slots, mustClock(t, "09:00")).Available {
		t.Error("09:00 should fit a 45-minute service before 10:00 close")
	}
	if slotByStart(t, slots, mustClock(t, "09:30")).Available {
		t.Error("09:30 would overrun closing and should be unavailable")
	}
}

func TestBookingSlotsConflicts(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	policy := Policy{SlotGranularityMinutes: 30, MinLeadTimeMinutes: 60}
	now := Now{Date: mustDate(t, "2024-06-01"), Time: mustClock(t, "08:00")}

	existing := []Reservation{
		{Start: mustClock(t, "10:00"), DurationMinutes: 60, Kind: KindBooking},
		{Start: mustClock(t, "11:30"), DurationMinutes: 30, Kind: KindBlock},
	}
	slots := BookingSlots(date, hours, policy, existing, 30, now)

	want := map[string]bool{
		"09:00": true,
		"09:30": true,
		"10:00": false,
		"10:30": false,
		"11:00": true,
		"11:30": false,
	}
	for clock, avail := range want {
		if got := slotByStart(t, slots, mustClock(t, clock)).Available; got != avail {
			t.Errorf("%s: available = %v, want %v", clock, got, avail)
		}
	}
}

func TestBookingSlotsLongServiceConflictsAcrossSteps(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	policy := Policy{SlotGranularityMinutes: 30}
	now := Now{Date: mustDate(t, "2024-06-01"), Time: mustClock(t, "08:00")}

	existing := []Reservation{{Start: mustClock(t, "10:00"), DurationMinutes: 30, Kind: KindBooking}}

	// A 60-minute service starting 09:30 would run into the 10:00 booking.
	slots := BookingSlots(date, hours, policy, existing, 60, now)
	if !slotByStart(t, slots, mustClock(t, "09:00")).Available {
		t.Error("09:00 should be available: the service ends exactly at 10:00")
	}
	if slotByStart(t, slots, mustClock(t, "09:30")).Available {
		t.Error("09:30 should conflict with the 10:00 booking")
	}
	if !slotByStart(t, slots, mustClock(t, "10:30")).Available {
		t.Error("10:30 should be available after the booking ends")
	}
}

func TestBookingSlotsInvalidInputs(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	now := Now{Date: mustDate(t, "2024-06-01")}

	if slots := BookingSlots(date, hours, Policy{SlotGranularityMinutes: 0}, nil, 30, now); slots != nil {
		t.Error("zero granularity should yield no slots")
	}
	if slots := BookingSlots(date, hours, Policy{SlotGranularityMinutes: 30}, nil, 0, now); slots != nil {
		t.Error("non-positive service duration should yield no slots")
	}
}

func TestBookingSlotsIsPure(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	policy := Policy{SlotGranularityMinutes: 30}
	now := Now{Date: mustDate(t, "2024-06-01"), Time: mustClock(t, "08:00")}
	existing := []Reservation{{Start: mustClock(t, "09:00"), DurationMinutes: 30, Kind: KindBooking}}

	first := BookingSlots(date, hours, policy, existing, 30, now)
	second := BookingSlots(date, hours, policy, existing, 30, now)
	if len(first) != len(second) {
		t.Fatalf("length differs across calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("slot %d differs across calls: %+v vs %+v", i, first[i], second[i])
		}
	}
	if existing[0].Start != mustClock(t, "09:00") || existing[0].DurationMinutes != 30 {
		t.Fatal("input reservations were mutated")
	}
}

func TestOccupancyGrid(t *testing.T) {
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "11:00"))
	policy := Policy{SlotGranularityMinutes: 30}

	existing := []Reservation{
		{Start: mustClock(t, "09:00"), DurationMinutes: 60, Kind: KindBooking},
		{Start: mustClock(t, "10:30"), DurationMinutes: 30, Kind: KindBlock},
	}
	cells := Occupancy(date, hours, policy, existing)
	if len(cells) != 4 {
		t.Fatalf("got %d cells, want 4", len(cells))
	}

	if cells[0].State != SlotBooked || !cells[0].StartsHere {
		t.Errorf("09:00: got %+v, want booked start", cells[0])
	}
	if cells[1].State != SlotBooked || cells[1].StartsHere {
		t.Errorf("09:30: got %+v, want booked continuation", cells[1])
	}
	if cells[1].Reservation == nil || cells[1].Reservation.Start != mustClock(t, "09:00") {
		t.Errorf("09:30 should reference the 09:00 booking")
	}
	if cells[2].State != SlotEmpty || cells[2].Reservation != nil {
		t.Errorf("10:00: got %+v, want empty", cells[2])
	}
	if cells[3].State != SlotBlocked || !cells[3].StartsHere {
		t.Errorf("10:30: got %+v, want blocked start", cells[3])
	}
}

func TestOccupancyIgnoresLeadTime(t *testing.T) {
	// The admin view renders the whole day even when every slot is in the
	// past for booking purposes.
	date := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "10:00"))
	policy := Policy{SlotGranularityMinutes: 30, MinLeadTimeMinutes: 60}

	cells := Occupancy(date, hours, policy, nil)
	if len(cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(cells))
	}
	for _, c := range cells {
		if c.State != SlotEmpty {
			t.Errorf("cell %s: got %s, want empty", c.Start, c.State)
		}
	}
}

func TestOccupancyBlockedDate(t *testing.T) {
	// A blocked date closes the admin grid too, even inside an open weekday
	// window and even when reservations were committed before the block.
	monday := mustDate(t, "2024-06-10")
	hours := weekdayHours(mustClock(t, "09:00"), mustClock(t, "12:00"))
	policy := Policy{
		SlotGranularityMinutes: 30,
		BlockedDates:           map[Date]struct{}{monday: {}},
	}
	existing := []Reservation{{Start: mustClock(t, "09:00"), DurationMinutes: 30, Kind: KindBooking}}

	if cells := Occupancy(monday, hours, policy, existing); cells != nil {
		t.Fatalf("blocked date should yield no cells, got %d", len(cells))
	}
	if cells := Occupancy(mustDate(t, "2024-06-17"), hours, policy, existing); len(cells) != 6 {
		t.Fatalf("unblocked Monday should render its grid, got %d cells", len(cells))
	}
}

func TestOccupancyClosedDay(t *testing.T) {
	hours := OperatingHours{
		Monday: {Open: false, Start: mustClock(t, "09:00"), End: mustClock(t, "12:00")},
	}
	policy := Policy{SlotGranularityMinutes: 30}
	if cells := Occupancy(mustDate(t, "2024-06-10"), hours, policy, nil); cells != nil {
		t.Fatalf("closed day should yield no cells, got %d", len(cells))
	}
}
