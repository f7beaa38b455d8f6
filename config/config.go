package config

import "time"

// Config is the complete application configuration
type Config struct {
	App       AppConfig       `yaml:"app" json:"app" mapstructure:"app"`
	Cache     CacheConfig     `yaml:"cache" json:"cache" mapstructure:"cache"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics" mapstructure:"metrics"`
	Monitor   MonitorConfig   `yaml:"monitor" json:"monitor" mapstructure:"monitor"`
	Optimizer OptimizerConfig `yaml:"optimizer" json:"optimizer" mapstructure:"optimizer"`
}

// AppConfig contains general application settings
type AppConfig struct {
	Name        string        `yaml:"name" json:"name" mapstructure:"name"`
	LogLevel    string        `yaml:"log_level" json:"log_level" mapstructure:"log_level"`
	LogFile     string        `yaml:"log_file" json:"log_file" mapstructure:"log_file"`
	RefreshRate time.Duration `yaml:"refresh_rate" json:"refresh_rate" mapstructure:"refresh_rate"`
	Demo        bool          `yaml:"demo" json:"demo" mapstructure:"demo"`
}

// CacheConfig contains cache store settings
type CacheConfig struct {
	DefaultTTL      time.Duration `yaml:"default_ttl" json:"default_ttl" mapstructure:"default_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" json:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// MetricsConfig contains metrics recorder settings
type MetricsConfig struct {
	Retention     time.Duration `yaml:"retention" json:"retention" mapstructure:"retention"`
	PruneInterval time.Duration `yaml:"prune_interval" json:"prune_interval" mapstructure:"prune_interval"`
}

// MonitorConfig contains resource monitor settings
type MonitorConfig struct {
	GoroutineBudget int `yaml:"goroutine_budget" json:"goroutine_budget" mapstructure:"goroutine_budget"`
}

// OptimizerConfig contains analyzer thresholds
type OptimizerConfig struct {
	MemoryBudget     uint64  `yaml:"memory_budget" json:"memory_budget" mapstructure:"memory_budget"`
	TargetHitRate    float64 `yaml:"target_hit_rate" json:"target_hit_rate" mapstructure:"target_hit_rate"`
	MinRequests      int64   `yaml:"min_requests" json:"min_requests" mapstructure:"min_requests"`
	BottleneckP95Ms  float64 `yaml:"bottleneck_p95_ms" json:"bottleneck_p95_ms" mapstructure:"bottleneck_p95_ms"`
	BottleneckMeanMs float64 `yaml:"bottleneck_mean_ms" json:"bottleneck_mean_ms" mapstructure:"bottleneck_mean_ms"`
	PruneThreshold   int     `yaml:"prune_threshold" json:"prune_threshold" mapstructure:"prune_threshold"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "perfpulse",
			LogLevel:    "info",
			RefreshRate: time.Second,
		},
		Cache: CacheConfig{
			DefaultTTL:      5 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Metrics: MetricsConfig{
			Retention:     time.Hour,
			PruneInterval: time.Minute,
		},
		Monitor: MonitorConfig{
			GoroutineBudget: 10000,
		},
		Optimizer: OptimizerConfig{
			MemoryBudget:     512 << 20,
			TargetHitRate:    0.8,
			MinRequests:      100,
			BottleneckP95Ms:  500,
			BottleneckMeanMs: 200,
			PruneThreshold:   1000,
		},
	}
}
