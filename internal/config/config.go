package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/housepricer/pipeline"
)

// DefaultFile is the config file looked up in the working directory when no
// explicit path is given.
const DefaultFile = "housepricer.yaml"

// EnvPrefix prefixes every environment override, e.g. HOUSEPRICER_MODEL_PATH.
const EnvPrefix = "HOUSEPRICER"

// Config is the process configuration shared by all commands.
type Config struct {
	Env       string `mapstructure:"env" yaml:"env"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	// Training job
	TrainPath string  `mapstructure:"train_path" yaml:"train_path"`
	TestPath  string  `mapstructure:"test_path" yaml:"test_path"`
	ModelPath string  `mapstructure:"model_path" yaml:"model_path"`
	PlotPath  string  `mapstructure:"plot_path" yaml:"plot_path"`
	TestSize  float64 `mapstructure:"test_size" yaml:"test_size"`
	Seed      int64   `mapstructure:"seed" yaml:"seed"`
	Regressor string  `mapstructure:"regressor" yaml:"regressor"`
	Alpha     float64 `mapstructure:"alpha" yaml:"alpha"`
	MaxIter   int     `mapstructure:"max_iter" yaml:"max_iter"`
	Tol       float64 `mapstructure:"tol" yaml:"tol"`

	// API server
	HTTPAddr          string `mapstructure:"http_addr" yaml:"http_addr"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
	ShutdownSec       int    `mapstructure:"shutdown_sec" yaml:"shutdown_sec"`

	// Prediction cache; empty address disables it
	RedisAddr     string `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" yaml:"redis_db"`
	CacheTTLSec   int    `mapstructure:"cache_ttl_sec" yaml:"cache_ttl_sec"`

	// Form UI
	UIAddr       string  `mapstructure:"ui_addr" yaml:"ui_addr"`
	APIURL       string  `mapstructure:"api_url" yaml:"api_url"`
	UIRateRPS    float64 `mapstructure:"ui_rate_rps" yaml:"ui_rate_rps"`
	UITimeoutSec int     `mapstructure:"ui_timeout_sec" yaml:"ui_timeout_sec"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "prod")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")

	v.SetDefault("train_path", "house_prices_train.csv")
	v.SetDefault("test_path", "house_prices_test.csv")
	v.SetDefault("model_path", "model.json")
	v.SetDefault("plot_path", "")
	v.SetDefault("test_size", 0.2)
	v.SetDefault("seed", 42)
	v.SetDefault("regressor", "linear")
	v.SetDefault("alpha", 1.0)
	v.SetDefault("max_iter", 1000)
	v.SetDefault("tol", 1e-4)

	v.SetDefault("http_addr", ":8000")
	v.SetDefault("request_timeout_sec", 15)
	v.SetDefault("shutdown_sec", 10)

	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("cache_ttl_sec", 900)

	v.SetDefault("ui_addr", ":8501")
	v.SetDefault("api_url", "http://localhost:8000")
	v.SetDefault("ui_rate_rps", 5.0)
	v.SetDefault("ui_timeout_sec", 20)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Command flags are applied by the
// caller on top of the result. A .env file in the working directory (or
// envFile when set) is loaded first and never overrides variables that are
// already set.
func Load(cfgFile, envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("housepricer")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadDotEnv(envFile string) error {
	if envFile == "" {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	return nil
}

// Default returns the built-in defaults, as written by `config init`.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var c Config
	_ = v.Unmarshal(&c)
	return &c
}

// Validate rejects values no command can run with.
func (c *Config) Validate() error {
	switch c.Regressor {
	case "", "linear", "ridge", "lasso":
	default:
		return fmt.Errorf("invalid regressor: %s (use linear, ridge or lasso)", c.Regressor)
	}
	if c.TestSize <= 0 || c.TestSize >= 1 {
		return fmt.Errorf("invalid test_size: %v (must be in (0, 1))", c.TestSize)
	}
	if c.Alpha < 0 {
		return fmt.Errorf("invalid alpha: %v", c.Alpha)
	}
	return nil
}

// RunConfig maps the training settings onto a pipeline run.
func (c *Config) RunConfig() pipeline.RunConfig {
	return pipeline.RunConfig{
		TrainPath: c.TrainPath,
		TestPath:  c.TestPath,
		ModelPath: c.ModelPath,
		PlotPath:  c.PlotPath,
		TestSize:  c.TestSize,
		Seed:      c.Seed,
		Options: pipeline.Options{
			Regressor: c.Regressor,
			Alpha:     c.Alpha,
			MaxIter:   c.MaxIter,
			Tol:       c.Tol,
		},
	}
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSec) * time.Second
}

func (c *Config) UITimeout() time.Duration {
	return time.Duration(c.UITimeoutSec) * time.Second
}

// Save writes the configuration as YAML to path, creating the parent
// directory if necessary. An empty path means DefaultFile.
func Save(c *Config, path string) error {
	if path == "" {
		path = DefaultFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Write encodes the configuration as YAML to w.
func Write(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
