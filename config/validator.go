package config

import "fmt"

// Validate checks a configuration for values the stores cannot operate
// with. Zero intervals are allowed (they disable the background tasks).
func Validate(cfg *Config) error {
	if cfg.App.RefreshRate <= 0 {
		return fmt.Errorf("app.refresh_rate must be positive, got %v", cfg.App.RefreshRate)
	}
	if cfg.Cache.DefaultTTL < 0 {
		return fmt.Errorf("cache.default_ttl must not be negative, got %v", cfg.Cache.DefaultTTL)
	}
	if cfg.Metrics.Retention <= 0 {
		return fmt.Errorf("metrics.retention must be positive, got %v", cfg.Metrics.Retention)
	}
	if cfg.Optimizer.MemoryBudget == 0 {
		return fmt.Errorf("optimizer.memory_budget must be positive")
	}
	if cfg.Optimizer.TargetHitRate <= 0 || cfg.Optimizer.TargetHitRate > 1 {
		return fmt.Errorf("optimizer.target_hit_rate must be in (0, 1], got %v", cfg.Optimizer.TargetHitRate)
	}
	if cfg.Optimizer.BottleneckP95Ms <= 0 || cfg.Optimizer.BottleneckMeanMs <= 0 {
		return fmt.Errorf("optimizer bottleneck thresholds must be positive")
	}
	if cfg.Optimizer.PruneThreshold < 0 {
		return fmt.Errorf("optimizer.prune_threshold must not be negative, got %d", cfg.Optimizer.PruneThreshold)
	}
	return nil
}
