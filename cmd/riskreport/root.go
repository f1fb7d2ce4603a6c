package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aigoflow/risk-reporter/internal/config"
	"github.com/aigoflow/risk-reporter/internal/reporter"
	"github.com/aigoflow/risk-reporter/internal/repository"
	"github.com/aigoflow/risk-reporter/internal/store"
	"github.com/aigoflow/risk-reporter/pkg/client"
)

var (
	envFile    string
	projection string
	timeout    time.Duration
	natsURL    string

	cfg *config.Config
)

// errArgs is returned before any connection or file is opened
var errArgs = errors.New("expecting output CSV filename as argument")

var rootCmd = &cobra.Command{
	Use:   "riskreport <output.csv>",
	Short: "Fetch a risk table snapshot and save it as CSV",
	Long: `riskreport sends one risk table snapshot request for a projection and writes
every row of the response stream to the given CSV file. The header comes from
the condition and limit names of the first successful response.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errArgs
		}
		return nil
	},
	PersistentPreRunE: setup,
	RunE:              runReport,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "Optional .env file to load")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats-url", "", "NATS server URL (overrides NATS_URL)")
	rootCmd.Flags().StringVar(&projection, "projection", "", "Risk projection to request (overrides PROJECTION)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 0, "How long to wait for the last response (overrides RESPONSE_TIMEOUT)")

	rootCmd.AddCommand(historyCmd, projectionsCmd)
}

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the JSON logger. It runs after
// argument validation, so a bad command line never touches the environment.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if natsURL != "" {
		cfg.NatsURL = natsURL
	}
	if projection != "" {
		cfg.Projection = projection
	}
	if timeout > 0 {
		cfg.ResponseTimeout = timeout
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	outputPath := args[0]

	repo, closeJournal := openJournal(cfg)
	defer closeJournal()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli, err := client.NewNATSClient(client.Options{
		NatsURL:          cfg.NatsURL,
		ClientID:         cfg.ClientID,
		RequestSubject:   cfg.RequestSubject,
		DiscoverySubject: cfg.DiscoverySubject,
	})
	if err != nil {
		logEvent(repo, "error", "nats.failed", "NATS connection failed", map[string]interface{}{
			"nats_url": cfg.NatsURL,
			"error":    err.Error(),
		})
		return err
	}
	defer cli.Close()

	rep := reporter.New(cli, repo, reporter.Options{
		Projection:     cfg.Projection,
		ClientID:       cfg.ClientID,
		ResponsePrefix: cfg.ResponsePrefix,
		Timeout:        cfg.ResponseTimeout,
	})

	res, err := rep.Run(ctx, outputPath)
	if err != nil {
		return err
	}

	slog.Info("Risk table saved",
		"req_id", res.RequestID,
		"path", res.OutputPath,
		"rows", res.RowsWritten,
		"rejections", res.Rejections,
		"duration_ms", res.Duration.Milliseconds())
	return nil
}

// openJournal opens the run journal. The report still runs without it.
func openJournal(cfg *config.Config) (repository.Repository, func()) {
	_ = os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Warn("Run journal unavailable", "db_path", cfg.DBPath, "error", err)
		return nil, func() {}
	}
	return repository.NewSQLiteRepository(db), func() { db.Close() }
}

func logEvent(repo repository.Repository, level, code, msg string, meta map[string]interface{}) {
	if repo == nil {
		return
	}
	if err := repo.Event().LogEvent(context.Background(), level, code, msg, meta); err != nil {
		slog.Warn("Failed to journal event", "code", code, "error", err)
	}
}
