package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/scheduling-api/internal/config"
	"github.com/jwalitptl/scheduling-api/internal/handler"
	appointmentHandler "github.com/jwalitptl/scheduling-api/internal/handler/appointment"
	availabilityHandler "github.com/jwalitptl/scheduling-api/internal/handler/availability"
	"github.com/jwalitptl/scheduling-api/internal/middleware"
	"github.com/jwalitptl/scheduling-api/internal/repository/postgres"
	"github.com/jwalitptl/scheduling-api/internal/router"
	appointmentService "github.com/jwalitptl/scheduling-api/internal/service/appointment"
	availabilityService "github.com/jwalitptl/scheduling-api/internal/service/availability"
	clinicService "github.com/jwalitptl/scheduling-api/internal/service/clinic"
	"github.com/jwalitptl/scheduling-api/pkg/logger"
	"github.com/jwalitptl/scheduling-api/pkg/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})
	gin.SetMode(gin.ReleaseMode)

	m := metrics.NewMetrics(cfg.Metrics.Namespace, "", prometheus.DefaultRegisterer)

	// Initialize database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := postgres.NewDB(ctx, cfg.Database)
	cancel()
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, m)

	// Initialize services
	clinicSvc := clinicService.NewService(repos.Clinics, repos.Professionals, cfg.Cache.ClinicTTL, cfg.Cache.CleanupInterval, m)
	availabilitySvc := availabilityService.NewService(repos.Availability, repos.Appointments, log, m)
	appointmentSvc := appointmentService.NewService(repos.Appointments, log, m)

	// Initialize handlers
	h := handler.NewHandler(map[string]handler.Pinger{"database": db}, prometheus.DefaultGatherer)
	availabilityH := availabilityHandler.NewHandler(availabilitySvc, clinicSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)

	metricsPath := ""
	if cfg.Metrics.Enabled {
		metricsPath = cfg.Metrics.Path
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Issuer),
		h,
		log,
		router.RouterConfig{
			RateLimitEnabled: cfg.RateLimit.Enabled,
			RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:        cfg.RateLimit.Burst,
			CORSConfig:       middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins),
			RequestTimeout:   cfg.Server.RequestTimeout,
			MetricsPath:      metricsPath,
			MetricsPrefix:    cfg.Metrics.Namespace,
		},
		availabilityH,
		appointmentH,
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
