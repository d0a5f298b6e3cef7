package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sentrylog"
	"github.com/dmitrymomot/sentrylog/middlewares"
	"github.com/dmitrymomot/sentrylog/pkg/ambient"
	"github.com/dmitrymomot/sentrylog/pkg/health"
	"github.com/dmitrymomot/sentrylog/pkg/logger"
)

var errCardDeclined = errors.New("card declined")

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	extractors := []logger.ContextExtractor{
		logger.RequestIDExtractor(),
		logger.TraceExtractor(),
	}

	console := logger.New(logger.Output{File: os.Getenv("LOG_FILE")}, extractors...)
	var (
		log *slog.Logger
		app *sentrylog.Appender
	)
	if cfg.DSN == "" {
		log = console
	} else {
		app, err = sentrylog.Build(cfg,
			sentrylog.WithStatusLogger(console),
			sentrylog.WithDiagnostics(extractors...),
			sentrylog.WithRegisterer(reg),
		)
		if err != nil {
			return err
		}
		log = slog.New(logger.Fanout(console.Handler(), app.Handler()))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(ambient.Middleware(ambient.WithRequestBreadcrumb()))
	r.Use(middlewares.Recover(logger.Named(log, "http")))

	checks := health.Checks{}
	if app != nil {
		checks["sentry"] = app.Healthcheck()
	}
	r.Get("/health/live", health.LivenessHandler())
	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(console)))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Post("/checkout", checkout(logger.Named(log, "shop.checkout")))

	srv := &http.Server{
		Addr:              getEnv("ADDRESS", ":8080"),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server starting", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return errors.Join(srv.Shutdown(shutdownCtx), app.Stop(shutdownCtx))
	})
	return g.Wait()
}

func checkout(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			userID = uuid.NewString()
		}
		ambient.SetUser(ctx, sentry.User{ID: userID})
		ambient.SetTag(ctx, "flow", "checkout")
		ambient.AddBreadcrumb(ctx, &sentry.Breadcrumb{Category: "cart", Message: "cart validated"})

		log.InfoContext(ctx, "charging card", slog.String("user_id", userID))
		log.ErrorContext(ctx, "payment failed", slog.Any("error", errCardDeclined))

		http.Error(w, errCardDeclined.Error(), http.StatusPaymentRequired)
	}
}

func loadConfig() (sentrylog.Config, error) {
	if path := os.Getenv("SENTRY_CONFIG"); path != "" {
		return sentrylog.LoadConfig(path)
	}
	return sentrylog.ParseConfig(nil)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
