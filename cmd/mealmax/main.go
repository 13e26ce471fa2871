package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/maloquacious/mealmax/internal/config"
	"github.com/maloquacious/mealmax/internal/logger"
	"github.com/maloquacious/mealmax/internal/store/sqlite"
	"github.com/maloquacious/semver"
	"github.com/spf13/cobra"
)

var (
	version       = semver.Version{Minor: 1, PreRelease: "alpha", Build: semver.Commit()}
	schemaVersion = "0.1"
	buildDate     = ""
)

var (
	cfg       config.Config
	log       logger.Logger = logger.Default
	exitAfter time.Duration
)

func main() {
	var err error
	cfg, err = loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the environment without validating it. Flags may still
// override bad values, and serve validates the result before listening.
func loadConfig() (config.Config, error) {
	var c config.Config
	if err := config.ParseEnv(&c); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mealmax",
		Short:         "Meal catalogue server and admin CLI",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logger.New(logger.Config{
				Level:       cfg.LogLevel,
				Environment: cfg.Environment,
				ServiceName: "mealmax",
			})
			if err != nil {
				return fmt.Errorf("logger: %w", err)
			}
			log = l
			return nil
		},
	}

	// Global flags; defaults come from the environment.
	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", cfg.DBPath, "path to the SQLite database file")
	rootCmd.PersistentFlags().StringVar(&cfg.CreateTablePath, "create-table-script", cfg.CreateTablePath, "path to the meals table DDL used by reset")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the meal catalogue server",
		RunE:  runServe,
	}
	serveCmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "public HTTP port (JSON API)")
	serveCmd.Flags().IntVar(&cfg.AdminPort, "admin-port", cfg.AdminPort, "admin HTTP port (JSON, loopback only)")
	serveCmd.Flags().DurationVar(&exitAfter, "exit-after", 0, "optional runtime; if set, server exits after this duration (testing)")

	rootCmd.AddCommand(serveCmd, newDBCmd(), newMealCmd())
	return rootCmd
}

// openStore opens the configured database. Callers must Close it.
func openStore() (*sqlite.SQLiteStore, error) {
	s := sqlite.New(cfg.DBPath, schemaVersion, cfg.CreateTablePath, log)
	if err := s.Open(); err != nil {
		return nil, err
	}
	return s, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
