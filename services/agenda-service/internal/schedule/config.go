package schedule

// DayHours is one weekday's opening window. Closed days either have no entry
// in OperatingHours or carry Open=false.
type DayHours struct {
	Open  bool
	Start TimeOfDay
	End   TimeOfDay
}

// OperatingHours is the weekly template: one optional window per weekday.
type OperatingHours map[Weekday]DayHours

// Policy is the scheduling policy applied on top of the weekly hours.
type Policy struct {
	// SlotGranularityMinutes is the step between candidate slot starts.
	// Must be positive; a non-positive value yields no slots.
	SlotGranularityMinutes int

	// MinLeadTimeMinutes is how far in the future a same-day booking must be.
	MinLeadTimeMinutes int

	// BlockedDates are whole days removed from booking (holidays, time off).
	BlockedDates map[Date]struct{}
}

// DateBlocked reports whether the policy closes the whole day.
func (p Policy) DateBlocked(d Date) bool {
	_, ok := p.BlockedDates[d]
	return ok
}

// Now is the caller-supplied current instant, expressed in the same
// timezone-free terms as the rest of the engine. All slot computations take
// it as an argument so they stay deterministic.
type Now struct {
	Date Date
	Time TimeOfDay
}
