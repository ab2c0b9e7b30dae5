package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/bulkload/internal/catalog"
	"github.com/JonMunkholm/bulkload/internal/config"
	"github.com/JonMunkholm/bulkload/internal/core"
	"github.com/JonMunkholm/bulkload/internal/logging"
	"github.com/JonMunkholm/bulkload/internal/source"
	"github.com/JonMunkholm/bulkload/internal/store"
)

var (
	envFile     string
	catalogFile string

	cfg       *config.Config
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:           "bulkload",
	Short:         "Batch import of spreadsheet exports into a relational database",
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return boot(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

func init() {
	rootCmd.AddCommand(
		importCmd,
		serveCmd,
		tablesCmd,
		entitiesCmd,
	)
	rootCmd.PersistentFlags().StringVarP(&envFile, "env", "e", "", "Environment file (default: .env)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "YAML entity catalogue replacing the built-in entities")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// boot loads .env and configuration, sets up logging and installs the
// entity catalogue.
func boot(cmd *cobra.Command) error {
	// Overload lets the .env file win over the inherited environment
	if envFile != "" {
		if err := godotenv.Overload(envFile); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Overload(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.Import.CatalogFile = catalogFile
	}

	logCloser = logging.Setup(cfg.Logging.Level, cfg.Logging.Format, logging.FileOutput{
		Path:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	slog.Debug("configuration loaded", "config", cfg.String())

	if cfg.Import.CatalogFile != "" {
		n, err := catalog.Install(cfg.Import.CatalogFile)
		if err != nil {
			return err
		}
		slog.Info("entity catalogue loaded", "path", cfg.Import.CatalogFile, "entities", n)
	}

	slog.Debug("entities registered",
		"count", core.EntityCount(),
		"groups", len(core.Groups()),
	)
	return nil
}

// newService builds the import service from the loaded configuration.
func newService() *core.Service {
	return core.NewService(
		store.Opener(cfg.Database),
		source.NewDir(cfg.Import.DataDir),
		core.ServiceConfig{
			BatchSize:          cfg.Import.BatchSize,
			MaxRetries:         cfg.Import.MaxRetries,
			RetryUnit:          cfg.Import.RetryUnit,
			ReportDir:          cfg.Import.ReportDir,
			CreateTables:       cfg.Import.CreateTables,
			FallbackTextLength: cfg.Import.FallbackTextLength,
			RunWait:            cfg.Import.RunWait,
		},
		slog.Default(),
	)
}
