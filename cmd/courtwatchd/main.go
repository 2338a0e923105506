// courtwatchd is the match-tracking daemon and control CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"courtwatch/internal/config"
	"courtwatch/internal/logging"
)

var version = "dev"

var (
	configPath string
	cfg        *config.Config
	logger     *logging.Logger
)

func main() {
	root := &cobra.Command{
		Use:           "courtwatchd",
		Short:         "Wrist-worn racket-sport match tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err = buildLogger(cfg)
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				logger.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file")

	root.AddCommand(newRunCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newInsightsCmd())
	root.AddCommand(newExportCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("courtwatchd", version)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return home + "/.courtwatch/config.toml"
}

func buildLogger(cfg *config.Config) (*logging.Logger, error) {
	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	lc := logging.DefaultConfig()
	lc.Level = level
	lc.Format = format
	if cfg.Logging.FilePath != "" {
		lc.Output = "file"
		lc.FilePath = cfg.Logging.FilePath
	}
	return logging.New(lc)
}
