package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/codewithboateng/storytest/internal/ir"
	"github.com/codewithboateng/storytest/internal/shared"
	"github.com/codewithboateng/storytest/internal/storage"
)

var version = "dev"

var (
	rootCmd = &cobra.Command{
		Use:           "storytest",
		Short:         "Narrative completeness checks for compiled units",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
)

// errViolations makes the process exit 1 without logging an error.
var errViolations = errors.New("violations found")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errViolations) {
			slog.Error("storytest failed", "err", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config (optional)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")

	rootCmd.AddCommand(analyzeCmd(), reportCmd(), diffCmd(), rulesCmd(), exemptCmd(), serveCmd(), watchCmd())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "storytest %s IR: %s\n", version, ir.Version)
		},
	})
}

// loadConfig reads the config and sets up logging. Flags win over config.
func loadConfig() (shared.Config, error) {
	cfg, err := shared.LoadConfig(configPath)
	if err != nil {
		return cfg, err
	}
	shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if dbPath != "" {
		cfg.Database.DSN = dbPath
	}
	return cfg, nil
}

func openDB(cfg shared.Config) (*storage.DB, error) {
	if cfg.Database.Driver != "" && cfg.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	db, err := storage.OpenSQLite(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
