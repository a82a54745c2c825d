// Package cli implements the clubledger command tree: serve runs the HTTP
// API, migrate manages the database schema.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/pkordes/club-ledger/internal/config"
)

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:          "clubledger",
		Short:        "Athlete and payment ledger for a sports club",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return config.LoadFile(envFile)
		},
	}
	cmd.SetErrPrefix("clubledger:")
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment (missing file is ignored)")

	cmd.AddCommand(serveCmd(), migrateCmd())
	return cmd
}

// loadConfig reads the configuration and builds the JSON logger it asks for.
func loadConfig(w io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration error", "error", err)
		return config.Config{}, nil, err
	}
	logger := newLogger(w, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newLogger returns a JSON logger at level. Unknown levels fall back to info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
