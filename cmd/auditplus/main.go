package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/auditplus/internal/cli"
	"github.com/example/auditplus/internal/config"
	"github.com/example/auditplus/internal/logger"
	"github.com/example/auditplus/internal/version"
	"github.com/example/auditplus/internal/wire"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	wire.Configure(cfg, zapLogger)
	defer func() {
		if err := wire.Close(); err != nil {
			zapLogger.Warn("failed to close database", logger.ZapError(err))
		}
	}()

	rootCmd := &cobra.Command{
		Use:           "auditplus",
		Short:         "auditplus - internal audit management",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `auditplus manages the auditable universe, annual audit plans, fieldwork
findings and their follow-up, and the criticality ranking that drives planning.`,
	}
	cli.BindActorFlag(rootCmd, cfg.App.Actor)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	// Administration
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.CatalogCmd())
	rootCmd.AddCommand(cli.WeightCmd())
	rootCmd.AddCommand(cli.LogCmd())

	// Audit work
	rootCmd.AddCommand(cli.UniverseCmd())
	rootCmd.AddCommand(cli.EvaluationCmd())
	rootCmd.AddCommand(cli.PlanCmd())
	rootCmd.AddCommand(cli.ProjectCmd())
	rootCmd.AddCommand(cli.FindingCmd())
	rootCmd.AddCommand(cli.SweepCmd())
	rootCmd.AddCommand(cli.DashboardCmd())
	rootCmd.AddCommand(cli.ExportCmd())

	return rootCmd.Execute()
}
