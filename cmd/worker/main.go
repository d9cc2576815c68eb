package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightbot/config"
	"github.com/Domenick1991/flightbot/internal/bootstrap"
	"github.com/Domenick1991/flightbot/internal/email"
	"github.com/Domenick1991/flightbot/internal/kafka"
	"github.com/Domenick1991/flightbot/internal/logger"
	"github.com/Domenick1991/flightbot/internal/repository"
	"github.com/Domenick1991/flightbot/internal/service/booking"
	"github.com/jackc/pgx/v5/pgxpool"
	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const publishRetries = 3

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

	producer := kafka.NewProducer(cfg.Kafka.Brokers, lg)
	defer producer.Close()
	if err := bootstrap.WaitFor(ctx, "kafka", lg, producer.CheckConnection); err != nil {
		lg.Fatal("kafka", zap.Error(err))
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		producer,
		cfg.Kafka.BookingEventsTopic,
		cfg.Booking.PaymentTTL(),
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithPublishRetries(publishRetries),
		booking.WithLogger(lg),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender(cfg.Mailgun, lg)

	go func() {
		err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
			event, err := kafka.DecodeBookingEvent(msg)
			if err != nil {
				lg.Warn("skip malformed event", zap.Error(err))
				return nil
			}
			if err := sender.Send(ctx, event); err != nil {
				// a mail outage must not stall the partition
				lg.Error("send notification", zap.String("reference", event.Reference), zap.Error(err))
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			lg.Error("consumer stopped", zap.Error(err))
			stop()
		}
	}()

	sweep := time.NewTicker(cfg.Worker.SweepInterval())
	defer sweep.Stop()

	lg.Info("worker started", zap.Duration("sweep_interval", cfg.Worker.SweepInterval()))
	for {
		select {
		case <-sweep.C:
			if _, err := bookingService.ExpireUnpaidBookings(ctx); err != nil {
				lg.Error("expire unpaid bookings", zap.Error(err))
			}
		case <-ctx.Done():
			lg.Info("shutting down worker")
			return
		}
	}
}
