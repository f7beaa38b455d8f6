package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load reads the configuration file at path on top of the defaults. An
// empty path, or a missing file at the default location, yields the
// defaults unchanged. Flags, when non-nil, override file values.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(os.ExpandEnv(path))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("perfpulse")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/perfpulse")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("app.name", def.App.Name)
	v.SetDefault("app.log_level", def.App.LogLevel)
	v.SetDefault("app.log_file", def.App.LogFile)
	v.SetDefault("app.refresh_rate", def.App.RefreshRate)
	v.SetDefault("app.demo", def.App.Demo)

	v.SetDefault("cache.default_ttl", def.Cache.DefaultTTL)
	v.SetDefault("cache.cleanup_interval", def.Cache.CleanupInterval)

	v.SetDefault("metrics.retention", def.Metrics.Retention)
	v.SetDefault("metrics.prune_interval", def.Metrics.PruneInterval)

	v.SetDefault("monitor.goroutine_budget", def.Monitor.GoroutineBudget)

	v.SetDefault("optimizer.memory_budget", def.Optimizer.MemoryBudget)
	v.SetDefault("optimizer.target_hit_rate", def.Optimizer.TargetHitRate)
	v.SetDefault("optimizer.min_requests", def.Optimizer.MinRequests)
	v.SetDefault("optimizer.bottleneck_p95_ms", def.Optimizer.BottleneckP95Ms)
	v.SetDefault("optimizer.bottleneck_mean_ms", def.Optimizer.BottleneckMeanMs)
	v.SetDefault("optimizer.prune_threshold", def.Optimizer.PruneThreshold)
}

// bindFlags maps the CLI flags that alias configuration keys. Only flags
// the user actually set override file values.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	aliases := map[string]string{
		"log-level":     "app.log_level",
		"log-file":      "app.log_file",
		"refresh":       "app.refresh_rate",
		"demo":          "app.demo",
		"memory-budget": "optimizer.memory_budget",
	}

	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := aliases[f.Name]
		if !ok {
			return
		}
		if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("failed to bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}
