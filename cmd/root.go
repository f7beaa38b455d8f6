package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kfiore/perfpulse/config"
	"github.com/kfiore/perfpulse/internal"
	"github.com/kfiore/perfpulse/logging"
)

var (
	cfgFile      string
	logLevel     string
	logFile      string
	refresh      time.Duration
	demo         bool
	memoryBudget uint64
	watchConfig  bool
)

var rootCmd = &cobra.Command{
	Use:   "perfpulse",
	Short: "In-process performance monitoring and caching engine",
	Long: `perfpulse is a live dashboard over an in-process performance engine:
a namespace-scoped TTL cache with hit/miss accounting, a metrics recorder
with percentile statistics and histograms, and an optimizer that turns
cache, metrics, and resource signals into prioritized recommendations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd)
		if err != nil {
			return err
		}

		app := internal.NewApplication(cfg)

		if watchConfig && cfgFile != "" {
			watcher, err := config.NewWatcher(cfgFile, app.ApplyConfig)
			if err != nil {
				return fmt.Errorf("failed to create config watcher: %w", err)
			}
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("failed to start config watcher: %w", err)
			}
			defer watcher.Stop()
		}

		return app.Run()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./perfpulse.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "log file (default stderr)")
	rootCmd.PersistentFlags().Uint64Var(&memoryBudget, "memory-budget", 0, "memory budget in bytes for pressure analysis")

	rootCmd.Flags().DurationVarP(&refresh, "refresh", "r", 0, "dashboard refresh interval (e.g. 1s, 500ms)")
	rootCmd.Flags().BoolVar(&demo, "demo", false, "generate synthetic traffic for the dashboard")
	rootCmd.Flags().BoolVarP(&watchConfig, "watch", "w", false, "reload optimizer thresholds when the config file changes")
}

// loadConfiguration loads the config file with flag overrides applied and
// initializes the global logger.
func loadConfiguration(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.InitGlobalLogger(cfg.App.LogLevel, cfg.App.LogFile)
	return cfg, nil
}
