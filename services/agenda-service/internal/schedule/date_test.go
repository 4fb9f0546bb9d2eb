package schedule

import "testing"

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-10")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d != (Date{2024, 6, 10}) {
		t.Fatalf("unexpected date: %+v", d)
	}
	if d.String() != "2024-06-10" {
		t.Fatalf("unexpected String: %s", d.String())
	}

	for _, bad := range []string{"", "2024-6-10", "10/06/2024", "2024-13-01", "2024-02-30", "2023-02-29", "2024-06-00"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) accepted invalid input", bad)
		}
	}

	if _, err := ParseDate("2024-02-29"); err != nil {
		t.Errorf("leap day rejected: %v", err)
	}
}

func TestWeekday(t *testing.T) {
	cases := []struct {
		date string
		want Weekday
	}{
		{"1970-01-01", Thursday},
		{"2024-06-10", Monday},
		{"2024-06-16", Sunday},
		{"2024-02-29", Thursday},
		{"2000-01-01", Saturday},
		{"1900-01-01", Monday},
		{"2100-03-01", Monday},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.date)
		if err != nil {
			t.Fatalf("ParseDate(%q) failed: %v", tc.date, err)
		}
		if got := d.Weekday(); got != tc.want {
			t.Errorf("%s: got %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	w, ok := ParseWeekday("saturday")
	if !ok || w != Saturday {
		t.Fatalf("ParseWeekday(saturday) = %v, %v", w, ok)
	}
	if _, ok := ParseWeekday("Saturday"); ok {
		t.Fatal("ParseWeekday should be case sensitive")
	}
	if _, ok := ParseWeekday("someday"); ok {
		t.Fatal("ParseWeekday accepted unknown name")
	}
}

func TestParseClock(t *testing.T) {
	tod, err := ParseClock("09:30")
	if err != nil {
		t.Fatalf("ParseClock failed: %v", err)
	}
	if tod != 570 {
		t.Fatalf("got %d minutes, want 570", tod)
	}
	if tod.String() != "09:30" {
		t.Fatalf("unexpected String: %s", tod.String())
	}

	for _, bad := range []string{"9:30", "09:60", "24:00", "0930", "09-30", ""} {
		if _, err := ParseClock(bad); err == nil {
			t.Errorf("ParseClock(%q) accepted invalid input", bad)
		}
	}
}
