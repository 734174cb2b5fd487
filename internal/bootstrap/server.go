package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/travelwithsue/travelapi/api"
	"github.com/travelwithsue/travelapi/config"
	"go.uber.org/zap"
)

type Handlers struct {
	Flights     *api.FlightHandler
	Bookings    *api.BookingHandler
	Users       *api.UserHandler
	Hotels      *api.HotelHandler
	Restaurants *api.RestaurantHandler
	Attractions *api.AttractionHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger, handlers Handlers) error {
	engine := newEngine(cfg, log, handlers)

	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", cfg.HTTP.Address))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(cfg *config.Config, log *zap.Logger, handlers Handlers) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(log))

	group := engine.Group("/api")
	handlers.Flights.Register(group)
	handlers.Bookings.Register(group)
	handlers.Users.Register(group)
	handlers.Hotels.Register(group)
	handlers.Restaurants.Register(group)
	handlers.Attractions.Register(group)

	if cfg.Media.Dir != "" {
		engine.Static("/media", cfg.Media.Dir)
	}

	if cfg.HTTP.SwaggerDir != "" {
		engine.Static("/swagger-spec", cfg.HTTP.SwaggerDir)
		engine.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger-spec/openapi.json"),
		)))
	}

	return engine
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
