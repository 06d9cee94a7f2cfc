// Package config loads application configuration from config.yaml and
// TARP_* environment variables, and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	ML      MLConfig      `yaml:"ml" mapstructure:"ml"`
	Scan    ScanConfig    `yaml:"scan" mapstructure:"scan"`
	Traffic TrafficConfig `yaml:"traffic" mapstructure:"traffic"`
	Seed    SeedConfig    `yaml:"seed" mapstructure:"seed"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// MLConfig points at the upstream prediction service.
type MLConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ScanConfig sets the grid scan parameters.
type ScanConfig struct {
	GridSize    int     `yaml:"grid_size" mapstructure:"grid_size"`
	Threshold   float64 `yaml:"threshold" mapstructure:"threshold"`
	MaxZones    int     `yaml:"max_zones" mapstructure:"max_zones"`
	Concurrency int     `yaml:"concurrency" mapstructure:"concurrency"`
}

// TrafficConfig configures the congestion index refresher. RedisAddr is
// optional; when set the snapshot is mirrored for other consumers.
type TrafficConfig struct {
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	RedisAddr       string        `yaml:"redis_addr" mapstructure:"redis_addr"`
}

// SeedConfig points at the bundled risk location seed file.
type SeedConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Load reads config.yaml from the working directory (optional) and
// overrides from TARP_* environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TARP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "tarp.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("ml.base_url", "http://localhost:10000")
	v.SetDefault("scan.grid_size", 6)
	v.SetDefault("scan.threshold", 40)
	v.SetDefault("scan.max_zones", 20)
	v.SetDefault("scan.concurrency", 8)
	v.SetDefault("traffic.refresh_interval", 5*time.Minute)
	v.SetDefault("seed.path", "seed/locations.yaml")

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
