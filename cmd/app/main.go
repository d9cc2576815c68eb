package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightbot/api"
	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/airport"
	"github.com/Domenick1991/flightbot/internal/amadeus"
	"github.com/Domenick1991/flightbot/internal/bootstrap"
	"github.com/Domenick1991/flightbot/internal/cache"
	"github.com/Domenick1991/flightbot/internal/chat"
	"github.com/Domenick1991/flightbot/internal/dialog"
	"github.com/Domenick1991/flightbot/internal/kafka"
	"github.com/Domenick1991/flightbot/internal/logger"
	"github.com/Domenick1991/flightbot/internal/repository"
	"github.com/Domenick1991/flightbot/internal/service/booking"
	"github.com/Domenick1991/flightbot/internal/service/flights"
	"github.com/Domenick1991/flightbot/internal/service/payments"
	"github.com/Domenick1991/flightbot/internal/service/translation"
	"github.com/Domenick1991/flightbot/internal/service/users"
	"github.com/Domenick1991/flightbot/internal/stripeclient"
	"github.com/Domenick1991/flightbot/internal/translate"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()
	if err := bootstrap.WaitFor(ctx, "postgres", lg, pool.Ping); err != nil {
		lg.Fatal("postgres", zap.Error(err))
	}

	sessions := cache.NewSessionStore(cfg.Redis, cfg.Chat.SessionTTL(), cfg.Chat.LockTTL())
	defer sessions.Close()
	if err := bootstrap.WaitFor(ctx, "redis", lg, sessions.Ping); err != nil {
		lg.Fatal("redis", zap.Error(err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()
	if err := bootstrap.WaitFor(ctx, "kafka", lg, producer.CheckConnection); err != nil {
		// bookings still work without events
		lg.Warn("kafka", zap.Error(err))
	}

	vendor := amadeus.NewClient(cfg.Amadeus, lg)
	resolver, err := airport.NewResolver(vendor, lg)
	if err != nil {
		lg.Fatal("load airport table", zap.Error(err))
	}

	var translator translation.Backend
	if cfg.Translate.APIKey != "" {
		google, err := translate.NewGoogle(ctx, cfg.Translate.APIKey)
		if err != nil {
			lg.Fatal("init translation", zap.Error(err))
		}
		translator = google
	}

	flightService := flights.NewFlightService(vendor, resolver, lg)
	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		producer,
		cfg.Kafka.BookingEventsTopic,
		cfg.Booking.PaymentTTL(),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithLogger(lg),
	)
	paymentService := payments.NewPaymentService(
		stripeclient.New(cfg.Stripe),
		bookingService,
		repository.NewTransactionRepository(pool),
		lg,
	)
	userService := users.NewUserService(repository.NewUserRepository(pool), lg)
	translationService := translation.NewTranslationService(translator, lg)

	controller := dialog.NewController(flightService, bookingService, paymentService, cfg.HTTP.BaseURL,
		dialog.WithLogger(lg),
		dialog.WithLanguagePreferences(userService),
	)
	chatService := chat.NewService(controller, sessions, translationService, userService, lg)

	router := bootstrap.NewRouter(cfg, bootstrap.Handlers{
		Flights:  api.NewFlightHandler(flightService),
		Bookings: api.NewBookingHandler(bookingService),
		Payments: api.NewPaymentHandler(paymentService),
		Users:    api.NewUserHandler(userService),
		Chat:     api.NewChatHandler(chatService),
	}, lg)

	if err := bootstrap.Run(ctx, cfg, router, lg); err != nil {
		lg.Fatal("server error", zap.Error(err))
	}
}
