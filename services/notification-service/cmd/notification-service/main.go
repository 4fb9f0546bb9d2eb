package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/plvieira/agendabarber/libs/config"
	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/libs/httpx"
	"github.com/plvieira/agendabarber/libs/kafkax"
	otelx "github.com/plvieira/agendabarber/libs/otel"
	"github.com/plvieira/agendabarber/libs/runtime"
	"github.com/plvieira/agendabarber/services/notification-service/internal/consumer"
	"github.com/plvieira/agendabarber/services/notification-service/internal/inbox"
	"github.com/plvieira/agendabarber/services/notification-service/internal/storage"
	"github.com/plvieira/agendabarber/services/notification-service/internal/whatsapp"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// bookingPayload mirrors agenda.booking.created.v1 /
// agenda.reservation.removed.v1.
type bookingPayload struct {
	ReservationID string `json:"reservation_id"`
	Day           string `json:"day"`
	Start         string `json:"start"`
	Kind          string `json:"kind"`
	ClientName    string `json:"client_name"`
	ClientPhone   string `json:"client_phone"`
	ServiceName   string `json:"service_name"`
}

// reminderPayload mirrors agenda.reminder.due.v1.
type reminderPayload struct {
	ReservationID string         `json:"reservation_id"`
	Recipient     string         `json:"recipient"`
	RemindAt      string         `json:"remind_at"`
	TemplateData  map[string]any `json:"template_data"`
}

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8081")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	notificationsRepo := storage.NewRepository(pool)

	shopName := config.String("SHOP_NAME", "")
	sender := buildSender(logger)

	deliver := func(ctx context.Context, reservationID, recipient, body string, payload map[string]any) {
		if payload == nil {
			payload = map[string]any{}
		}
		status := "sent"
		if err := sender.Send(ctx, recipient, body); err != nil {
			status = "failed"
			logger.Error("whatsapp send failed", "err", err, "recipient", recipient)
		}
		// The click-to-chat link lets the admin panel resend by hand when the
		// provider fails or is the noop sender.
		payload["wa_link"] = whatsapp.Link(recipient, body)
		if err := notificationsRepo.Insert(ctx, storage.Notification{
			ReservationID: reservationID,
			Channel:       "whatsapp",
			Recipient:     recipient,
			Payload:       payload,
			Status:        status,
		}); err != nil {
			logger.Error("failed to persist notification", "err", err)
		}
		logger.Info("notification processed",
			"reservation_id", reservationID,
			"provider", sender.ProviderID(),
			"status", status,
		)
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")

	bookingConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_BOOKING_TOPIC", "agenda.booking.created.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload bookingPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid booking payload", "err", err)
			return nil
		}
		if payload.ReservationID == "" || payload.ClientPhone == "" {
			// Blocks and walk-ins without a phone have nobody to message.
			return nil
		}

		body := whatsapp.BookingConfirmation(whatsapp.MessageData{
			ShopName:    shopName,
			ClientName:  payload.ClientName,
			ServiceName: payload.ServiceName,
			Day:         payload.Day,
			Start:       payload.Start,
		})
		deliver(ctx, payload.ReservationID, payload.ClientPhone, body, map[string]any{
			"day":          payload.Day,
			"start":        payload.Start,
			"service_name": payload.ServiceName,
		})
		return nil
	})
	go bookingConsumer.Run(ctx)

	reminderConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_REMINDER_TOPIC", "agenda.reminder.due.v1"),
	}, func(ctx context.Context, msg kafka.Message) error {
		var payload reminderPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid reminder payload", "err", err)
			return nil
		}
		if payload.ReservationID == "" || payload.Recipient == "" {
			logger.Error("missing reminder fields")
			return nil
		}

		data := whatsapp.MessageData{ShopName: shopName}
		if v, ok := payload.TemplateData["client_name"].(string); ok {
			data.ClientName = v
		}
		if v, ok := payload.TemplateData["service_name"].(string); ok {
			data.ServiceName = v
		}
		if v, ok := payload.TemplateData["day"].(string); ok {
			data.Day = v
		}
		if v, ok := payload.TemplateData["start"].(string); ok {
			data.Start = v
		}

		deliver(ctx, payload.ReservationID, payload.Recipient, whatsapp.Reminder(data), payload.TemplateData)
		return nil
	})
	go reminderConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func buildSender(logger *slog.Logger) whatsapp.Sender {
	provider := strings.ToLower(config.String("WHATSAPP_PROVIDER", "noop"))
	url := config.String("WHATSAPP_WEBHOOK_URL", "")
	token := config.String("WHATSAPP_WEBHOOK_TOKEN", "")

	switch provider {
	case "webhook":
		return whatsapp.NewWebhookSender(url, token)
	case "noop":
		logger.Warn("whatsapp sender is noop; messages will be dropped")
		return whatsapp.NewNoopSender()
	default:
		return whatsapp.NewWebhookSender(url, token)
	}
}
