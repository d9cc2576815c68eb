package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/Domenick1991/flightbot/api"
	"github.com/Domenick1991/flightbot/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

const (
	swaggerFile     = "flightbot.swagger.json"
	shutdownTimeout = 5 * time.Second
)

type Handlers struct {
	Flights  *api.FlightHandler
	Bookings *api.BookingHandler
	Payments *api.PaymentHandler
	Users    *api.UserHandler
	Chat     *api.ChatHandler
}

// NewRouter mounts every handler under /api. Only the chat endpoint is rate
// limited.
func NewRouter(cfg *config.Config, h Handlers, logger *zap.Logger) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(Recovery(logger), AccessLog(logger), cors.New(corsConfig(cfg.HTTP.CORSOrigins)))

	root := router.Group("/api")
	root.GET("/health", health)

	h.Flights.Register(root.Group("/flights"))
	h.Bookings.Register(root.Group("/bookings"))
	h.Payments.Register(root.Group("/payments"))
	h.Users.Register(root.Group("/users"))
	h.Chat.Register(root.Group("/messages", RateLimit(cfg.Chat.RatePerMinute, cfg.Chat.Burst, logger)))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerFile))))
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Stripe-Signature"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

// Run serves router and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, router http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	}
}
