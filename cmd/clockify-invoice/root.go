package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jordanamos/clockify-invoice/internal/adapter/sqlite"
	"github.com/jordanamos/clockify-invoice/internal/app"
	"github.com/jordanamos/clockify-invoice/internal/config"
)

var (
	flagVerbose  bool
	flagStoreDir string
)

var rootCmd = &cobra.Command{
	Use:   "clockify-invoice",
	Short: "Mirror Clockify time entries locally and generate invoices",
	Long: "clockify-invoice mirrors a Clockify account's user, workspaces and time\n" +
		"entries into a local store, then derives rounded, billable invoices from\n" +
		"the mirrored data.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show debug messaging")
	rootCmd.PersistentFlags().StringVar(&flagStoreDir, "store-dir", "", "Override the store directory")
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newInvoicesCmd())
	rootCmd.AddCommand(newServeCmd())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// setup constructs the config, store and app once per command invocation.
func setup(log *slog.Logger) (*app.App, config.Config, error) {
	dir := flagStoreDir
	if dir == "" {
		dir = config.DefaultDirectory()
	}
	cfgPath, err := config.EnsureDirectory(dir)
	if err != nil {
		return nil, config.Config{}, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, config.Config{}, err
	}
	store, err := sqlite.Open(filepath.Join(dir, "db.db"), log)
	if err != nil {
		return nil, config.Config{}, err
	}
	a, err := app.New(log, cfg, store, "")
	if err != nil {
		return nil, config.Config{}, err
	}
	return a, cfg, nil
}
