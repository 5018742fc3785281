package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tordrt/pgscaffold"
	"github.com/tordrt/pgscaffold/internal/config"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pgscaffold",
		Short: "Reverse-engineer a PostgreSQL schema",
		Long: `pgscaffold reads the PostgreSQL system catalog and dumps the structural model
(tables, columns, keys, indexes, sequences, enums and extensions) it builds for
code generation. Settings come from flags, PGSCAFFOLD_* environment variables
or a pgscaffold.yaml / pgscaffold.toml file.`,
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "Config file (default: ./pgscaffold.yaml, .yml or .toml)")
	flags.String("db-url", "", "PostgreSQL connection string")
	flags.StringSliceP("schemas", "s", nil, "Schemas to include (comma-separated, optional)")
	flags.StringArrayP("tables", "t", nil, `Tables to include, as table, schema.table or "Quoted"."Name" (repeatable or comma-separated, optional)`)
	flags.StringP("format", "f", config.DefaultFormat, "Output format: text, markdown or yaml")
	flags.StringP("output", "o", "", "Output file (default: stdout)")
	flags.StringP("output-dir", "d", "", "Output directory for multi-file output")
	flags.String("log-level", config.DefaultLogLevel, "Diagnostics level: debug, info, warn or error")
	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("loaded config file", slog.String("path", cfg.File))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	model, err := pgscaffold.Introspect(ctx, cfg.Connection, &pgscaffold.Options{
		Tables:  cfg.Tables,
		Schemas: cfg.Schemas,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("failed to extract schema: %w", err)
	}

	return writeOutput(cmd.OutOrStdout(), model, cfg)
}

func writeOutput(stdout io.Writer, model *pgscaffold.Model, cfg *config.Config) error {
	// Multi-file output
	if cfg.OutputDir != "" {
		if err := pgscaffold.FormatModel(model, &pgscaffold.OutputOptions{OutputDir: cfg.OutputDir, Format: cfg.Format}); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return nil
	}

	// Single-file output
	writer := stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to close output file: %v\n", err)
			}
		}()
		writer = f
	}

	if err := pgscaffold.FormatModel(model, &pgscaffold.OutputOptions{Writer: writer, Format: cfg.Format}); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

// newLogger builds the stderr text logger for diagnostics
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
