package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/travelwithsue/travelapi/config"
	"github.com/travelwithsue/travelapi/internal/email"
	"github.com/travelwithsue/travelapi/internal/kafka"
	"go.uber.org/zap"
)

// The worker consumes booking events and sends confirmation emails. Delivery
// is fire-and-forget: a failed send is logged and the booking is unaffected.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	sender := email.NewSender(cfg.SMTP)

	logger.Info("notification worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.NotificationsTopic),
	)

	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			logger.Error("send confirmation email",
				zap.String("reference", event.Reference),
				zap.Error(err),
			)
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
	logger.Info("notification worker shut down")
}
