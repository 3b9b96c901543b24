package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ytakagi/excelquiz/internal/config"
	"github.com/ytakagi/excelquiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "excelquiz",
	Short: "Excel skill quiz in the terminal",
	Long:  "Excelquiz: fill-in-the-blank Excel skill quizzes with score history, an admin console, and AI review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EXCELQUIZ_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.config/excelquiz/config.yaml)")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(adminCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(adviceCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads the config file named by --config, or the default
// location when the flag is unset.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// resolveDBPath returns the database path using --db (highest
// priority), then the config file, then EXCELQUIZ_DB, then the default
// XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB.Path != "" {
		return cfg.DB.Path, store.EnsureDir(cfg.DB.Path)
	}
	return store.DefaultDBPath()
}

// openStore resolves configuration and opens the database in one step
// for the non-TUI subcommands.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, cfg, fmt.Errorf("load config: %w", err)
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, cfg, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, cfg, fmt.Errorf("open database: %w", err)
	}
	return st, cfg, nil
}
