package schedule

import "fmt"

// Date is a calendar date in the shop's single fixed locale. It deliberately
// carries no timezone: "2024-06-10" means the same business day everywhere
// the system runs.
type Date struct {
	Year  int
	Month int
	Day   int
}

func ParseDate(s string) (Date, error) {
	var d Date
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	if _, err := fmt.Sscanf(s, "%04d-%02d-%02d", &d.Year, &d.Month, &d.Day); err != nil {
		return Date{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > daysInMonth(d.Year, d.Month) {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Before reports whether d falls strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.civilDays() < other.civilDays()
}

// Weekday derives the day of week from the proleptic Gregorian calendar
// (days-from-civil), with no locale or timezone API involved.
func (d Date) Weekday() Weekday {
	wd := (d.civilDays() + 3) % 7 // day 0 (1970-01-01) was a Thursday
	if wd < 0 {
		wd += 7
	}
	return Weekday(wd)
}

// civilDays counts days since 1970-01-01 in the proleptic Gregorian calendar.
func (d Date) civilDays() int {
	y := d.Year
	m := d.Month
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	var doy int
	if m > 2 {
		doy = (153*(m-3)+2)/5 + d.Day - 1
	} else {
		doy = (153*(m+9)+2)/5 + d.Day - 1
	}
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	case 2:
		if isLeap(year) {
			return 29
		}
		return 28
	default:
		return 0
	}
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [7]string{
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
}

func (w Weekday) String() string {
	if w < Monday || w > Sunday {
		return "unknown"
	}
	return weekdayNames[w]
}

// ParseWeekday maps a lowercase English weekday name to its Weekday. These
// names are the keys of the operating-hours configuration.
func ParseWeekday(name string) (Weekday, bool) {
	for i, n := range weekdayNames {
		if n == name {
			return Weekday(i), true
		}
	}
	return 0, false
}
