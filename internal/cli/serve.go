package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pkordes/club-ledger/internal/config"
	"github.com/pkordes/club-ledger/internal/handler"
	"github.com/pkordes/club-ledger/internal/metrics"
	"github.com/pkordes/club-ledger/internal/middleware"
	"github.com/pkordes/club-ledger/internal/receipt"
	"github.com/pkordes/club-ledger/internal/repo"
	"github.com/pkordes/club-ledger/internal/service"
	"github.com/pkordes/club-ledger/migrations"
)

// shutdownTimeout bounds how long in-flight requests may run after a signal.
const shutdownTimeout = 15 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API until SIGINT or SIGTERM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	// --- Database ---------------------------------------------------------
	// pgxpool.New does not open connections immediately; the ping does.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("create database pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	logger.Info("database connection established")

	if cfg.MigrateOnStart {
		db := stdlib.OpenDBFromPool(pool)
		err := migrateUp(ctx, db, logger)
		db.Close()
		if err != nil {
			return err
		}
	}

	// --- Services ---------------------------------------------------------
	// The receipt sequencer lives exactly as long as this process.
	m := metrics.New()
	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithLocale(cfg.ReportLocale),
	}
	athleteRepo := repo.NewAthleteRepo(pool)
	paymentRepo := repo.NewPaymentRepo(pool)

	athletes := service.NewAthleteService(athleteRepo, opts...)
	payments := service.NewPaymentService(athleteRepo, paymentRepo, opts...)
	reports := service.NewReportService(athletes, payments, opts...)
	receipts := service.NewReceiptService(athletes, payments, receipt.New(), opts...)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, logger, m, handler.NewServer(athletes, payments, reports, receipts, logger)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Run --------------------------------------------------------------
	// One goroutine serves, the other waits for the signal and drains.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRouter applies the middleware stack in order:
// RequestID → RealIP → SlogLogger → Metrics → Recoverer → CORS → MaxBodySize.
// Recoverer sits inside the logger and metrics so a panic is still recorded as a 500.
func newRouter(cfg config.Config, logger *slog.Logger, m *metrics.Metrics, api *handler.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetrics(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", m.Handler())
	r.Mount("/", api.Routes())
	return r
}

// migrateUp applies every pending migration.
func migrateUp(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	provider, err := migrations.NewProvider(db)
	if err != nil {
		return err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "path", res.Source.Path, "duration", res.Duration)
	}
	return nil
}
