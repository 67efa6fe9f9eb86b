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
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Design  DesignConfig  `yaml:"design" mapstructure:"design"`
	Routing RoutingConfig `yaml:"routing" mapstructure:"routing"`
	Budget  BudgetConfig  `yaml:"budget" mapstructure:"budget"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	MaxUploadMB int      `yaml:"max_upload_mb" mapstructure:"max_upload_mb"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 { return int64(s.MaxUploadMB) << 20 }

// DesignConfig bounds design ingestion.
type DesignConfig struct {
	MaxArchiveMB int `yaml:"max_archive_mb" mapstructure:"max_archive_mb"`
}

// MaxArchiveBytes returns the archive and payload limit in bytes.
func (d DesignConfig) MaxArchiveBytes() int64 { return int64(d.MaxArchiveMB) << 20 }

// RoutingConfig configures the street routing service.
type RoutingConfig struct {
	Enabled          bool    `yaml:"enabled" mapstructure:"enabled"`
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	Profile          string  `yaml:"profile" mapstructure:"profile"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec       float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Concurrency      int     `yaml:"concurrency" mapstructure:"concurrency"`
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	FailureThreshold int     `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int     `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// Timeout returns the per-lookup timeout.
func (r RoutingConfig) Timeout() time.Duration { return time.Duration(r.TimeoutSecs) * time.Second }

// ResetTimeout returns how long the circuit stays open.
func (r RoutingConfig) ResetTimeout() time.Duration {
	return time.Duration(r.ResetTimeoutSecs) * time.Second
}

// BudgetConfig holds the default link inputs for the budget command.
type BudgetConfig struct {
	OLTToNAPKm         float64 `yaml:"olt_to_nap_km" mapstructure:"olt_to_nap_km"`
	NAPToCTOKm         float64 `yaml:"nap_to_cto_km" mapstructure:"nap_to_cto_km"`
	CTOToONTKm         float64 `yaml:"cto_to_ont_km" mapstructure:"cto_to_ont_km"`
	TxPowerDbm         float64 `yaml:"tx_power_dbm" mapstructure:"tx_power_dbm"`
	RxSensitivityDbm   float64 `yaml:"rx_sensitivity_dbm" mapstructure:"rx_sensitivity_dbm"`
	AttenuationDbPerKm float64 `yaml:"attenuation_db_per_km" mapstructure:"attenuation_db_per_km"`
	SpliceCount        int     `yaml:"splice_count" mapstructure:"splice_count"`
	ConnectorCount     int     `yaml:"connector_count" mapstructure:"connector_count"`
	SpliceLossDb       float64 `yaml:"splice_loss_db" mapstructure:"splice_loss_db"`
	ConnectorLossDb    float64 `yaml:"connector_loss_db" mapstructure:"connector_loss_db"`
	SplitterNAP        string  `yaml:"splitter_nap" mapstructure:"splitter_nap"`
	SplitterCTO        string  `yaml:"splitter_cto" mapstructure:"splitter_cto"`
}

// Load reads configuration from config.yaml (if present) and FTTH_* env
// vars, on top of the built-in defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("FTTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_mb", 64)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("design.max_archive_mb", 64)
	v.SetDefault("routing.enabled", false)
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.profile", "driving")
	v.SetDefault("routing.timeout_secs", 10)
	v.SetDefault("routing.rate_per_sec", 1.0)
	v.SetDefault("routing.concurrency", 4)
	v.SetDefault("routing.max_attempts", 2)
	v.SetDefault("routing.failure_threshold", 5)
	v.SetDefault("routing.reset_timeout_secs", 30)
	v.SetDefault("budget.olt_to_nap_km", 3.0)
	v.SetDefault("budget.nap_to_cto_km", 0.8)
	v.SetDefault("budget.cto_to_ont_km", 0.15)
	v.SetDefault("budget.tx_power_dbm", 3.0)
	v.SetDefault("budget.rx_sensitivity_dbm", -27.0)
	v.SetDefault("budget.attenuation_db_per_km", 0.21)
	v.SetDefault("budget.splice_count", 8)
	v.SetDefault("budget.connector_count", 6)
	v.SetDefault("budget.splice_loss_db", 0.05)
	v.SetDefault("budget.connector_loss_db", 0.25)
	v.SetDefault("budget.splitter_nap", "1:4")
	v.SetDefault("budget.splitter_cto", "none")

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

// Validate checks the settings a command mode depends on. Modes: "design",
// "budget", "route", "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "budget":
	case "design":
		if c.Design.MaxArchiveMB <= 0 {
			problems = append(problems, "design.max_archive_mb must be > 0")
		}
	case "route":
		problems = append(problems, c.validateRouting()...)
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.MaxUploadMB <= 0 {
			problems = append(problems, "server.max_upload_mb must be > 0")
		}
		problems = append(problems, c.validateRouting()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) validateRouting() []string {
	if !c.Routing.Enabled {
		return nil
	}
	var problems []string
	if c.Routing.BaseURL == "" {
		problems = append(problems, "routing.base_url is required when routing is enabled")
	}
	if c.Routing.TimeoutSecs <= 0 {
		problems = append(problems, "routing.timeout_secs must be > 0")
	}
	if c.Routing.RatePerSec <= 0 {
		problems = append(problems, "routing.rate_per_sec must be > 0")
	}
	if c.Routing.Concurrency < 1 || c.Routing.Concurrency > 64 {
		problems = append(problems, "routing.concurrency must be between 1 and 64")
	}
	return problems
}

// InitLogger configures the global zap logger.
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
