// Package config loads screener settings from a YAML file, a .env file and
// the process environment, in that order of increasing precedence.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rxtech-lab/argo-screener/internal/indicator"
	"github.com/rxtech-lab/argo-screener/internal/notification"
	"github.com/rxtech-lab/argo-screener/internal/types"
	"github.com/rxtech-lab/argo-screener/internal/version"
	"github.com/rxtech-lab/argo-screener/pkg/errors"
	"github.com/rxtech-lab/argo-screener/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the file.
const (
	EnvProvider       = "SCREENER_PROVIDER"
	EnvPolygonAPIKey  = "POLYGON_API_KEY"
	EnvBinanceBaseURL = "BINANCE_BASE_URL"
	EnvParquetDir     = "SCREENER_PARQUET_DIR"
	EnvTelegramToken  = "TELEGRAM_BOT_TOKEN"
	EnvTelegramChatID = "TELEGRAM_CHAT_ID"
	EnvRedisAddr      = "REDIS_ADDR"
	EnvLogLevel       = "LOG_LEVEL"
	EnvMetricsAddr    = "METRICS_ADDR"
	EnvWorkers        = "SCREENER_WORKERS"
)

// ProviderConfig selects where bars come from.
type ProviderConfig struct {
	Name           string `yaml:"name" json:"name" validate:"required,oneof=polygon binance parquet" jsonschema:"enum=polygon,enum=binance,enum=parquet,default=binance"`
	PolygonAPIKey  string `yaml:"polygon_api_key" json:"polygon_api_key,omitempty" validate:"required_if=Name polygon"`
	PolygonBaseURL string `yaml:"polygon_base_url" json:"polygon_base_url,omitempty" validate:"omitempty,url"`
	BinanceBaseURL string `yaml:"binance_base_url" json:"binance_base_url,omitempty" validate:"omitempty,url"`
	ParquetDir     string `yaml:"parquet_dir" json:"parquet_dir,omitempty" validate:"required_if=Name parquet"`
}

// IndicatorConfig holds the engine windows.
type IndicatorConfig struct {
	MACD      string `yaml:"macd" json:"macd" validate:"required,oneof=standard long" jsonschema:"enum=standard,enum=long,default=standard"`
	RSIMethod string `yaml:"rsi_method" json:"rsi_method" validate:"required,oneof=simple wilder" jsonschema:"enum=simple,enum=wilder,default=simple"`
	RSIPeriod int    `yaml:"rsi_period" json:"rsi_period" validate:"min=2" jsonschema:"default=14"`
	ATRPeriod int    `yaml:"atr_period" json:"atr_period" validate:"min=1" jsonschema:"default=14"`
}

// ScanConfig holds the defaults of a scan.
type ScanConfig struct {
	Strategy   string   `yaml:"strategy" json:"strategy" validate:"required" jsonschema:"enum=Scalping,enum=Swing,default=Scalping"`
	Symbols    []string `yaml:"symbols" json:"symbols,omitempty"`
	Interval   string   `yaml:"interval" json:"interval,omitempty" jsonschema:"description=Defaults to the strategy interval"`
	Period     string   `yaml:"period" json:"period,omitempty" jsonschema:"description=Defaults to the strategy period"`
	Indicators []string `yaml:"indicators" json:"indicators,omitempty"`
	// MACDBuy and MACDSell are optional MACD thresholds.
	MACDBuy  *float64 `yaml:"macd_buy" json:"macd_buy,omitempty"`
	MACDSell *float64 `yaml:"macd_sell" json:"macd_sell,omitempty"`
}

// RunnerConfig bounds the batch.
type RunnerConfig struct {
	Workers      int           `yaml:"workers" json:"workers" validate:"min=1,max=64" jsonschema:"default=8"`
	FetchTimeout time.Duration `yaml:"fetch_timeout" json:"fetch_timeout" validate:"gt=0"`
}

// AlertConfig configures alert delivery.
type AlertConfig struct {
	Enabled  bool                     `yaml:"enabled" json:"enabled"`
	Telegram notification.Config      `yaml:"telegram" json:"telegram"`
	DedupTTL time.Duration            `yaml:"dedup_ttl" json:"dedup_ttl,omitempty"`
	Redis    notification.RedisConfig `yaml:"redis" json:"redis,omitempty"`
}

// Config is the full screener configuration.
type Config struct {
	// Version is the screener version the file was written for.
	Version   string          `yaml:"version" json:"version,omitempty" jsonschema:"description=Screener version the file targets, e.g. v0.3.0"`
	Provider  ProviderConfig  `yaml:"provider" json:"provider"`
	Scan      ScanConfig      `yaml:"scan" json:"scan"`
	Indicator IndicatorConfig `yaml:"indicator" json:"indicator"`
	Runner    RunnerConfig    `yaml:"runner" json:"runner"`
	Alerts    AlertConfig     `yaml:"alerts" json:"alerts"`
	LogLevel  string          `yaml:"log_level" json:"log_level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	// MetricsAddr enables the Prometheus endpoint, e.g. ":9090".
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider: ProviderConfig{Name: string(marketdata.ProviderBinance)},
		Scan:     ScanConfig{Strategy: string(types.StrategyScalping)},
		Indicator: IndicatorConfig{
			MACD:      "standard",
			RSIMethod: string(indicator.RSIMethodSimple),
			RSIPeriod: 14,
			ATRPeriod: 14,
		},
		Runner: RunnerConfig{
			Workers:      8,
			FetchTimeout: 15 * time.Second,
		},
		Alerts: AlertConfig{
			Enabled:  true,
			DedupTTL: 30 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load reads path (optional) over the defaults, loads envFile (optional,
// missing is fine), applies environment overrides and validates.
func Load(path string, envFile string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config %s", path)
		}

		if err := version.CheckConfigCompatibility(version.GetVersion(), cfg.Version); err != nil {
			return Config{}, err
		}
	}

	if envFile != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", envFile)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider.Name, EnvProvider)
	setString(&c.Provider.PolygonAPIKey, EnvPolygonAPIKey)
	setString(&c.Provider.BinanceBaseURL, EnvBinanceBaseURL)
	setString(&c.Provider.ParquetDir, EnvParquetDir)
	setString(&c.Alerts.Telegram.BotToken, EnvTelegramToken)
	setString(&c.Alerts.Telegram.ChatID, EnvTelegramChatID)
	setString(&c.Alerts.Redis.Addr, EnvRedisAddr)
	setString(&c.LogLevel, EnvLogLevel)
	setString(&c.MetricsAddr, EnvMetricsAddr)

	if v, ok := os.LookupEnv(EnvWorkers); ok && v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return errors.Newf(errors.ErrCodeInvalidConfiguration, "%s must be an integer, got %q", EnvWorkers, v)
		}

		c.Runner.Workers = workers
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// Validate checks struct tags and the values that need parsing.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if _, err := types.NewStrategyConfig(types.StrategyName(c.Scan.Strategy)); err != nil {
		return err
	}

	if c.Scan.Interval != "" {
		if _, err := marketdata.ParseInterval(c.Scan.Interval); err != nil {
			return err
		}
	}

	if c.Scan.Period != "" {
		if _, err := marketdata.ParsePeriod(c.Scan.Period); err != nil {
			return err
		}
	}

	_, err := c.EngineConfig()

	return err
}

// EngineConfig converts the indicator section for the engine.
func (c Config) EngineConfig() (indicator.Config, error) {
	cfg := indicator.DefaultConfig()
	if c.Indicator.MACD == "long" {
		cfg.MACD = indicator.MACDLong
	}

	cfg.RSIMethod = indicator.RSIMethod(c.Indicator.RSIMethod)
	cfg.RSIPeriod = c.Indicator.RSIPeriod
	cfg.ATRPeriod = c.Indicator.ATRPeriod

	if err := cfg.Validate(); err != nil {
		return indicator.Config{}, err
	}

	return cfg, nil
}

// LoaderConfig converts the provider section for marketdata.NewLoader.
func (c Config) LoaderConfig() (marketdata.ProviderType, marketdata.LoaderConfig) {
	return marketdata.ProviderType(c.Provider.Name), marketdata.LoaderConfig{
		PolygonAPIKey:  c.Provider.PolygonAPIKey,
		PolygonBaseURL: c.Provider.PolygonBaseURL,
		BinanceBaseURL: c.Provider.BinanceBaseURL,
		ParquetDir:     c.Provider.ParquetDir,
	}
}
