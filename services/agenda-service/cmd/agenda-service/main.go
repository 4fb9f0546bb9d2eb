package main

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/plvieira/agendabarber/libs/config"
	"github.com/plvieira/agendabarber/libs/db"
	"github.com/plvieira/agendabarber/libs/httpx"
	"github.com/plvieira/agendabarber/libs/kafkax"
	otelx "github.com/plvieira/agendabarber/libs/otel"
	"github.com/plvieira/agendabarber/libs/runtime"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/handlers"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/outbox"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/reminders"
	"github.com/plvieira/agendabarber/services/agenda-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	service := config.String("SERVICE_NAME", "agenda-service")
	port, err := config.Port("PORT", "8080")
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
	jwtSecret, err := config.RequiredString("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	loc, err := time.LoadLocation(config.String("SHOP_TIMEZONE", "Local"))
	if err != nil {
		logger.Error("invalid timezone; falling back to Local", "err", err)
		loc = time.Local
	}

	reservationRepo := storage.NewReservationRepository(pool)
	settingsRepo := storage.NewSettingsRepository(pool)
	serviceRepo := storage.NewServiceRepository(pool)
	clientRepo := storage.NewClientRepository(pool)
	adminRepo := storage.NewAdminRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	reminderRepo := reminders.NewRepository()

	seedAdmin(ctx, adminRepo, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	reminderWorker := reminders.NewWorker(pool, reminderRepo, outboxRepo, logger, reminders.WorkerConfig{
		Interval:  5 * time.Second,
		BatchSize: 50,
		Backoff:   time.Minute,
	})
	go reminderWorker.Run(ctx)

	offsets := parseReminderOffsets(config.String("REMINDER_OFFSETS_MINUTES", "1440,60"), logger)
	committer := handlers.NewCommitter(reservationRepo, clientRepo, outboxRepo, reminderRepo, logger, loc, offsets)

	publicHandler := handlers.NewPublicHandler(serviceRepo, settingsRepo, reservationRepo, committer, logger, loc)
	agendaHandler := handlers.NewAgendaHandler(serviceRepo, settingsRepo, reservationRepo, committer, logger, loc)
	settingsHandler := handlers.NewSettingsHandler(settingsRepo, logger)
	servicesHandler := handlers.NewServicesHandler(serviceRepo, logger)
	clientsHandler := handlers.NewClientsHandler(clientRepo, logger)
	dashboardHandler := handlers.NewDashboardHandler(reservationRepo, logger, loc)
	reportsHandler := handlers.NewReportsHandler(reservationRepo, logger)
	authHandler := handlers.NewAuthHandler(adminRepo, logger, jwtSecret, 12*time.Hour)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	rateLimitMW := publicRateLimiter(logger)
	public := func(h http.HandlerFunc) http.Handler {
		return rateLimitMW(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return authHandler.RequireAdmin(h)
	}

	mux.Handle("/api/v1/public/services", public(publicHandler.Services))
	mux.Handle("/api/v1/public/slots", public(publicHandler.Slots))
	mux.Handle("/api/v1/public/book", public(publicHandler.Book))

	mux.HandleFunc("/api/v1/admin/login", authHandler.Login)
	mux.Handle("/api/v1/admin/agenda", admin(agendaHandler.Grid))
	mux.Handle("/api/v1/admin/agenda/book", admin(agendaHandler.ManualBook))
	mux.Handle("/api/v1/admin/agenda/toggle-block", admin(agendaHandler.ToggleBlock))
	mux.Handle("/api/v1/admin/agenda/reservation", admin(agendaHandler.Remove))
	mux.Handle("/api/v1/admin/settings", admin(settingsHandler.Handle))
	mux.Handle("/api/v1/admin/settings/blocked-dates", admin(settingsHandler.BlockedDates))
	mux.Handle("/api/v1/admin/services", admin(servicesHandler.Handle))
	mux.Handle("/api/v1/admin/clients", admin(clientsHandler.Handle))
	mux.Handle("/api/v1/admin/dashboard", admin(dashboardHandler.Handle))
	mux.Handle("/api/v1/admin/reports", admin(reportsHandler.Handle))

	requestTimeout := 10 * time.Second
	if v := config.Int("REQUEST_TIMEOUT_SECONDS", 0); v > 0 {
		requestTimeout = time.Duration(v) * time.Second
	}
	bodyLimit := int64(config.Int("MAX_BODY_BYTES", 1<<20))

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: parseList(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: parseList(config.String("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")),
			AllowedHeaders: parseList(config.String("CORS_ALLOWED_HEADERS", "Authorization,Content-Type,X-Request-Id")),
			MaxAge:         10 * time.Minute,
		}),
		httpx.WithBodyLimit(bodyLimit),
		httpx.WithTimeout(requestTimeout),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "agenda")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
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

// publicRateLimiter guards the unauthenticated booking surface. With a Redis
// address configured the window is shared across instances; otherwise a
// per-instance in-memory limiter still stops casual abuse.
func publicRateLimiter(logger *slog.Logger) httpx.Middleware {
	limitPerMinute := config.Int("RATE_LIMIT_PER_MINUTE", 60)

	if addr := strings.TrimSpace(config.String("REDIS_ADDR", "")); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		rl := httpx.NewRedisRateLimiter(rdb, limitPerMinute, time.Minute, config.String("RATE_LIMIT_PREFIX", "agenda"))
		logger.Info("rate limiting enabled (redis)", "per_minute", limitPerMinute, "redis_addr", addr)
		return rl.Middleware(logger, isTruthy(config.String("RATE_LIMIT_FAIL_OPEN", "true")))
	}

	rl := httpx.NewRateLimiter(limitPerMinute, time.Minute)
	logger.Info("rate limiting enabled (in-memory)", "per_minute", limitPerMinute)
	return rl.Middleware()
}

func seedAdmin(ctx context.Context, admins *storage.AdminRepository, logger *slog.Logger) {
	email := strings.ToLower(strings.TrimSpace(config.String("ADMIN_EMAIL", "")))
	password := config.String("ADMIN_PASSWORD", "")
	if email == "" || password == "" {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("admin seed hash failed", "err", err)
		return
	}
	if err := admins.EnsureAdmin(ctx, email, string(hash)); err != nil {
		logger.Error("admin seed failed", "err", err)
		return
	}
	logger.Info("admin account ensured", "email", email)
}

func parseReminderOffsets(raw string, logger *slog.Logger) []time.Duration {
	var offsets []time.Duration
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		mins, err := strconv.Atoi(part)
		if err != nil || mins <= 0 {
			logger.Warn("invalid reminder offset", "value", part)
			continue
		}
		offsets = append(offsets, time.Duration(mins)*time.Minute)
	}
	if len(offsets) == 0 {
		offsets = []time.Duration{24 * time.Hour}
	}
	return offsets
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
