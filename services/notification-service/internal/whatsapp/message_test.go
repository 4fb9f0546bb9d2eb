package whatsapp

import (
	"strings"
	"testing"
)

func TestBookingConfirmation(t *testing.T) {
	msg := BookingConfirmation(MessageData{
		ShopName:    "Corner Barbershop",
		ClientName:  "Pedro",
		ServiceName: "Haircut",
		Day:         "2024-06-10",
		Start:       "10:00",
	})
	for _, want := range []string{"[Corner Barbershop]", "Pedro", "Haircut", "2024-06-10", "10:00"} {
		if !strings.Contains(msg, want) {
			t.Errorf("confirmation missing %q: %s", want, msg)
		}
	}
}

func TestReminderWithoutShopName(t *testing.T) {
	msg := Reminder(MessageData{ClientName: "Pedro", Day: "2024-06-10", Start: "10:00"})
	if strings.HasPrefix(msg, "[") {
		t.Errorf("unexpected shop prefix: %s", msg)
	}
	if !strings.Contains(msg, "your appointment") {
		t.Errorf("missing service fallback: %s", msg)
	}
}

func TestPhoneDigits(t *testing.T) {
	if got := PhoneDigits("+55 (11) 99999-0000"); got != "5511999990000" {
		t.Fatalf("got %q", got)
	}
}

func TestLink(t *testing.T) {
	link := Link("+55 11 99999-0000", "see you at 10:00")
	if !strings.HasPrefix(link, "https://wa.me/5511999990000?text=") {
		t.Fatalf("unexpected link: %s", link)
	}
	if strings.Contains(link, " ") {
		t.Fatalf("link not escaped: %s", link)
	}
}
