// Package config loads application configuration from config.yaml and
// RECON_-prefixed environment variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/petrosul/recon-cli/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Divergence DivergenceConfig `yaml:"divergence" mapstructure:"divergence"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Scheduler  SchedulerConfig  `yaml:"scheduler" mapstructure:"scheduler"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-log database backend.
type StoreConfig struct {
	Driver      string            `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string            `yaml:"database_url" mapstructure:"database_url"`
	Pool        *store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PathsConfig locates the workbooks this tool reads and writes. Transport
// workbooks are listed one per depot; all share the same column layout.
type PathsConfig struct {
	TransportWorkbooks []string `yaml:"transport_workbooks" mapstructure:"transport_workbooks"`
	InvoiceReport      string   `yaml:"invoice_report" mapstructure:"invoice_report"`
	DivergenceReport   string   `yaml:"divergence_report" mapstructure:"divergence_report"`
	DivergenceRunLog   string   `yaml:"divergence_run_log" mapstructure:"divergence_run_log"`
	LayoutFile         string   `yaml:"layout_file" mapstructure:"layout_file"`
}

// MatchConfig tunes the reconciliation matcher.
type MatchConfig struct {
	// CollisionPolicy is one of first-wins, last-wins, reject.
	CollisionPolicy string `yaml:"collision_policy" mapstructure:"collision_policy"`
	// WritesPerSecond paces cell writes against the synced share.
	WritesPerSecond float64 `yaml:"writes_per_second" mapstructure:"writes_per_second"`
}

// DivergenceConfig narrows the divergence report.
type DivergenceConfig struct {
	Products        []string `yaml:"products" mapstructure:"products"`
	RecencyDays     int      `yaml:"recency_days" mapstructure:"recency_days"`
	VolumeCapLiters float64  `yaml:"volume_cap_liters" mapstructure:"volume_cap_liters"`
}

// RetryConfig configures the shared retry policy for workbook I/O.
type RetryConfig struct {
	MaxAttempts       int           `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoff    time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff        time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" mapstructure:"backoff_multiplier"`
}

// SchedulerConfig configures the orchestrate command.
type SchedulerConfig struct {
	// Every is the cron spec between full cycles, e.g. "@every 50m".
	Every string `yaml:"every" mapstructure:"every"`
	// Jobs is the ordered list of jobs one cycle runs.
	Jobs []string `yaml:"jobs" mapstructure:"jobs"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml (optional) and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "recon.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("match.collision_policy", "last-wins")
	v.SetDefault("match.writes_per_second", 4.0)
	v.SetDefault("divergence.recency_days", 3)
	v.SetDefault("divergence.volume_cap_liters", 66000)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff", "500ms")
	v.SetDefault("retry.max_backoff", "30s")
	v.SetDefault("retry.backoff_multiplier", 2.0)
	v.SetDefault("scheduler.every", "@every 50m")
	v.SetDefault("scheduler.jobs", []string{"transito", "descarga", "divergencia"})

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
