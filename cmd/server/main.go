package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cleaning-booking/internal/config"
	"github.com/iliyamo/cleaning-booking/internal/database"
	"github.com/iliyamo/cleaning-booking/internal/handler"
	"github.com/iliyamo/cleaning-booking/internal/logger"
	"github.com/iliyamo/cleaning-booking/internal/metrics"
	"github.com/iliyamo/cleaning-booking/internal/middleware"
	"github.com/iliyamo/cleaning-booking/internal/queue"
	"github.com/iliyamo/cleaning-booking/internal/repository"
	"github.com/iliyamo/cleaning-booking/internal/router"
	"github.com/iliyamo/cleaning-booking/internal/service"
)

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFile)
	cfg.RequireServer()
	log := logrus.StandardLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := config.NewRedisClient() // nil when unreachable; the rate limiter then passes through
	store, closeStore, err := database.OpenStore(cfg, rdb, log)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	auth := service.NewAuthService(store, service.AuthConfig{
		AdminEmail: cfg.AdminEmail,
		BcryptCost: cfg.BcryptCost,
		Location:   cfg.Location(),
	}, log)
	var events service.EventPublisher
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.RabbitURL, log)
		go func() {
			if err := queue.NewConsumer(cfg.RabbitURL, cfg.BookingLogFile, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorf("booking consumer stopped: %v", err)
			}
		}()
	}
	bookings := service.NewBookingService(store, events, log)
	calendar := service.NewCalendar(store, cfg.Location())

	if fixed, err := auth.EnsureAdminUser(ctx); err != nil {
		log.Warnf("admin role check failed: %v", err)
	} else if fixed {
		log.Infof("restored admin role for %s", cfg.AdminEmail)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		metrics.NewCollector(bookings, auth, log),
	)
	httpMetrics := metrics.NewHTTPMetrics(reg)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(httpMetrics.Middleware())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.WithFields(logrus.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			}).Info("request")
			return nil
		},
	}))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	settings := handler.NewSettingsHandler(repository.NewFormConfigRepo(store), repository.NewNavigationRepo(store))
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	router.RegisterRoutes(e, store, settings)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, auth), auth, cfg.JWTSecret, limiter)
	router.RegisterBookings(e, handler.NewBookingHandler(bookings, calendar), auth, cfg.JWTSecret)
	router.RegisterAdmin(e, handler.NewAdminHandler(auth, bookings, calendar), settings, auth, cfg.JWTSecret)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		}).Handler(e),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Infof("listening on %s (env=%s, store=%s)", srv.Addr, cfg.Env, cfg.StoreBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
