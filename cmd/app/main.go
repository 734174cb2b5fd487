package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travelwithsue/travelapi/api"
	"github.com/travelwithsue/travelapi/config"
	"github.com/travelwithsue/travelapi/internal/auth"
	"github.com/travelwithsue/travelapi/internal/bootstrap"
	"github.com/travelwithsue/travelapi/internal/cache"
	"github.com/travelwithsue/travelapi/internal/clients/aviationstack"
	"github.com/travelwithsue/travelapi/internal/clients/osm"
	"github.com/travelwithsue/travelapi/internal/clients/pexels"
	"github.com/travelwithsue/travelapi/internal/kafka"
	"github.com/travelwithsue/travelapi/internal/qr"
	"github.com/travelwithsue/travelapi/internal/repository"
	"github.com/travelwithsue/travelapi/internal/service/booking"
	"github.com/travelwithsue/travelapi/internal/service/flights"
	"github.com/travelwithsue/travelapi/internal/service/places"
	"github.com/travelwithsue/travelapi/internal/service/users"
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

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis,
		time.Duration(cfg.Booking.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Places.LookupCacheTTL)*time.Second,
	)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	aviationClient := aviationstack.NewClient(cfg.AviationStack)
	osmClient := osm.NewClient(cfg.Places)
	pexelsClient := pexels.NewClient(cfg.Places)
	codes := qr.NewGenerator(cfg.Media.Dir)
	tokens := auth.NewManager(cfg.Auth.Secret,
		time.Duration(cfg.Auth.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTTLHours)*time.Hour,
	)

	flightRepo := repository.NewFlightRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	hotelRepo := repository.NewHotelRepository(pool)
	restaurantRepo := repository.NewRestaurantRepository(pool)
	attractionRepo := repository.NewAttractionRepository(pool)

	flightService := flights.NewFlightService(flightRepo, redisCache, aviationClient, cfg.Booking.DefaultSeats, logger)
	bookingService := booking.NewBookingService(
		bookingRepo,
		flightRepo,
		codes,
		producer,
		logger,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithReferenceAttempts(cfg.Booking.ReferenceAttempts),
		booking.WithLookupRetry(cfg.Booking.LookupRetryAttempts, time.Duration(cfg.Booking.LookupRetryBackoffMS)*time.Millisecond),
	)
	userService := users.NewUserService(userRepo, restaurantRepo, tokens, redisCache, logger)
	placeService := places.NewPlaceService(
		hotelRepo, restaurantRepo, attractionRepo,
		osmClient, pexelsClient, redisCache,
		cfg.Places.DefaultLat, cfg.Places.DefaultLon, cfg.Places.RadiusMeters,
		logger,
	)

	handlers := bootstrap.Handlers{
		Flights:     api.NewFlightHandler(flightService),
		Bookings:    api.NewBookingHandler(bookingService),
		Users:       api.NewUserHandler(userService),
		Hotels:      api.NewHotelHandler(placeService),
		Restaurants: api.NewRestaurantHandler(placeService, userService),
		Attractions: api.NewAttractionHandler(placeService),
	}

	if err := bootstrap.Run(ctx, cfg, logger, handlers); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	}
	return cfg.Build()
}
