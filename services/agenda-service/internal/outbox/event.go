package outbox

import (
	"encoding/json"

	"github.com/plvieira/agendabarber/services/agenda-service/internal/model"
)

// Event types double as Kafka topic names: one topic per event type.
const (
	EventBookingCreated      = "agenda.booking.created.v1"
	EventReservationRemoved  = "agenda.reservation.removed.v1"
	EventReminderDue         = "agenda.reminder.due.v1"
	aggregateTypeReservation = "reservation"
)

// Event is the domain event envelope written to the outbox table inside the
// same transaction as the state change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// ReservationPayload is the wire payload shared by the reservation events.
type ReservationPayload struct {
	ReservationID   string  `json:"reservation_id"`
	Day             string  `json:"day"`
	Start           string  `json:"start"`
	DurationMinutes int     `json:"duration_minutes"`
	Kind            string  `json:"kind"`
	ClientName      string  `json:"client_name,omitempty"`
	ClientPhone     string  `json:"client_phone,omitempty"`
	ServiceName     string  `json:"service_name,omitempty"`
	ServicePrice    float64 `json:"service_price,omitempty"`
	WhatsAppPhone   string  `json:"whatsapp_phone,omitempty"`
}

func reservationPayload(res model.Reservation, shopPhone string) ReservationPayload {
	return ReservationPayload{
		ReservationID:   res.ID,
		Day:             res.Day.String(),
		Start:           res.Start.String(),
		DurationMinutes: res.DurationMinutes,
		Kind:            string(res.Kind),
		ClientName:      res.ClientName,
		ClientPhone:     res.ClientPhone,
		ServiceName:     res.ServiceName,
		ServicePrice:    res.ServicePrice,
		WhatsAppPhone:   shopPhone,
	}
}

func NewBookingCreated(res model.Reservation, shopPhone string) (Event, error) {
	return newReservationEvent(EventBookingCreated, res, shopPhone)
}

func NewReservationRemoved(res model.Reservation, shopPhone string) (Event, error) {
	return newReservationEvent(EventReservationRemoved, res, shopPhone)
}

func newReservationEvent(eventType string, res model.Reservation, shopPhone string) (Event, error) {
	payload, err := json.Marshal(reservationPayload(res, shopPhone))
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: aggregateTypeReservation,
		AggregateID:   res.ID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
