package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/peterbourgon/ff/v4"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/receiptsplit/docs"
	"github.com/fkhayef/receiptsplit/internal/config"
	"github.com/fkhayef/receiptsplit/internal/parser"
	"github.com/fkhayef/receiptsplit/internal/receipt"
	"github.com/fkhayef/receiptsplit/internal/receipt/split"
	"github.com/fkhayef/receiptsplit/internal/report"
	"github.com/fkhayef/receiptsplit/internal/settlement"
	mw "github.com/fkhayef/receiptsplit/pkg/middleware"
)

// @title        Receipt Split API
// @version      1.0
// @description  Split shared receipts and settle the balances. Stateless: nothing is stored.
// @BasePath     /api/v1
// @securityDefinitions.apikey BearerAuth
// @in           header
// @name         Authorization
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var usageErr *config.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "%s\n", usageErr.Help)
		}
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger := cfg.NewLogger(stderr)

	// Split Strategy Factory (Factory Pattern)
	splitFactory := split.NewSplitStrategyFactory()
	receiptService := receipt.NewService(splitFactory)
	settlementService := settlement.NewService(receiptService, logger)

	switch cfg.Command {
	case config.CommandServe:
		return serve(ctx, cfg, logger, receiptService, settlementService)
	default:
		return splitFile(cfg, stdout, settlementService)
	}
}

func splitFile(cfg *config.Config, w io.Writer, service *settlement.Service) error {
	doc, err := parser.ParseFile(cfg.File)
	if err != nil {
		return err
	}

	result, err := service.Run(doc)
	if err != nil {
		return err
	}

	return report.Write(w, result, cfg.Format, report.Options{Style: cfg.Style, Width: cfg.Width})
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger, receipts *receipt.Service, settlements *settlement.Service) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logger, receipts, settlements),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", "address", srv.Addr, "auth", cfg.APIKey != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg *config.Config, logger *slog.Logger, receipts *receipt.Service, settlements *settlement.Service) http.Handler {
	receiptHandler := receipt.NewHandler(receipts, logger)
	settlementHandler := settlement.NewHandler(settlements, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.APIKey(cfg.APIKey))
		r.Use(mw.MaxBytes(cfg.MaxBodyBytes))

		r.Mount("/receipts", receiptHandler.Routes())
		r.Mount("/settlements", settlementHandler.Routes())
	})

	if len(cfg.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
