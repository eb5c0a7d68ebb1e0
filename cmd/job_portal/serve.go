package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-portal/internal/db"
	"github.com/jonathan/job-portal/internal/recommend"
	"github.com/jonathan/job-portal/internal/server"
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes the skill analysis and job matching endpoints.
Job posting and application endpoints are enabled when DATABASE_URL is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply database migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(os.Stderr)
	if err != nil {
		return err
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := server.NewMetrics(nil)
	rec, err := buildRecommender(ctx, cfg, logger, recommend.WithFailureHook(metrics.SourceFailure))
	if err != nil {
		return fmt.Errorf("failed to configure recommendations: %w", err)
	}
	defer rec.Close() //nolint:errcheck // best effort on shutdown

	svc, err := newAnalysisService(cfg, rec.fetcher, logger)
	if err != nil {
		return err
	}

	deps := server.Deps{Analysis: svc, Metrics: metrics, Logger: logger}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()

		if serveMigrate {
			if err := migrate(ctx, database, cmd.OutOrStdout()); err != nil {
				return err
			}
		}

		jwtConfig, err := cfg.JWT()
		if err != nil {
			return err
		}
		deps.Store = database
		deps.JWT = server.NewJWTService(jwtConfig)
	}

	srv, err := server.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}
