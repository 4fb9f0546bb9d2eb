package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
)

// MessageData is the template input shared by the confirmation and reminder
// messages.
type MessageData struct {
	ShopName    string
	ClientName  string
	ServiceName string
	Day         string
	Start       string
}

func BookingConfirmation(d MessageData) string {
	var b strings.Builder
	if d.ShopName != "" {
		fmt.Fprintf(&b, "[%s] ", d.ShopName)
	}
	fmt.Fprintf(&b, "Hi %s! Your booking is confirmed: %s on %s at %s.",
		fallback(d.ClientName, "there"), fallback(d.ServiceName, "your appointment"), d.Day, d.Start)
	return b.String()
}

func Reminder(d MessageData) string {
	var b strings.Builder
	if d.ShopName != "" {
		fmt.Fprintf(&b, "[%s] ", d.ShopName)
	}
	fmt.Fprintf(&b, "Reminder for %s: %s on %s at %s. See you there!",
		fallback(d.ClientName, "you"), fallback(d.ServiceName, "your appointment"), d.Day, d.Start)
	return b.String()
}

// Link builds a wa.me click-to-chat URL for the given phone and message.
func Link(phone string, message string) string {
	return "https://wa.me/" + PhoneDigits(phone) + "?text=" + url.QueryEscape(message)
}

// PhoneDigits strips formatting from a phone number, keeping digits only.
func PhoneDigits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func fallback(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
