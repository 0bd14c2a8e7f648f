package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Binusha25Liyanage/MoneyMate/internal/cli"
	"github.com/Binusha25Liyanage/MoneyMate/internal/config"
	applog "github.com/Binusha25Liyanage/MoneyMate/internal/log"
)

var (
	version = "dev"

	cfg    *config.Config
	logger *applog.Logger

	rootCmd = &cobra.Command{
		Use:   "moneymate",
		Short: "MoneyMate personal finance reports",
		Long: `moneymate serves monthly, yearly and analytical finance reports over an
authenticated JSON API, and can generate the same reports from the command line.

Configuration is read from the environment and from a .env file when present.`,
		Version:           version,
		PersistentPreRunE: initConfig,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error); overrides LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text, json); overrides LOG_FORMAT")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(tokenCmd())
}

func main() {
	ctx, stop := cli.SignalContext(context.Background(), slog.Default())
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}

	cfg = config.Load()
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		cfg.LogFormat = v
	}

	// Logs go to stderr so that report output on stdout stays parseable.
	var err error
	logger, err = cli.SetupLogger(cfg, os.Stderr)
	return err
}
