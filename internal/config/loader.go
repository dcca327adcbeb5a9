package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v4"
)

const (
	DefaultConfigFile  = "eth-rpc-check.json"
	DefaultEthRPC      = "https://ethereum.publicnode.com"
	DefaultBscRPC      = "https://bsc-dataseed1.binance.org"
	DefaultRepetitions = 10
	DefaultOutput      = "rpc-metrics.csv"
	DefaultHTTPTimeout = "10s"
	DefaultWSTimeout   = "15s"
	DefaultThrottle    = "100ms"
	DefaultMode        = "sequential"
	DefaultWorkers     = 4
	DefaultLogLevel    = "info"

	DefaultInfluxURL        = "http://localhost:8181"
	DefaultInfluxDatabase   = "rpc_metrics"
	DefaultInfluxSampleRate = "100%"

	EnvPrefix = "ETH_RPC_CHECK_"
)

var defaultEnvFiles = []string{".env", ".env.local"}

// Default returns a configuration holding only the built-in defaults.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load layers the optional config file and the environment over the defaults.
// A missing file is only an error when it was asked for explicitly.
// The result still needs Finalize once command-line overrides are applied.
func Load(filename string) (*Config, error) {
	cfg := Default()

	explicit := filename != ""
	if !explicit {
		filename = DefaultConfigFile
	}

	if err := loadFile(filename, cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if _, err := LoadEnv(defaultEnvFiles); err != nil {
		return nil, fmt.Errorf("failed to load env files: %w", err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

func loadFile(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename) //nolint:gosec // config file path is controlled
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".json":
		if err = json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", ext)
	}

	return nil
}

// LoadEnv loads the env files that exist and reports how many were read.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}

	if len(existing) == 0 {
		return 0, nil
	}

	return len(existing), godotenv.Load(existing...)
}

func applyDefaults(cfg *Config) {
	if cfg.EthRPC == "" {
		cfg.EthRPC = DefaultEthRPC
	}
	if cfg.BscRPC == "" {
		cfg.BscRPC = DefaultBscRPC
	}
	if cfg.Repetitions == 0 {
		cfg.Repetitions = DefaultRepetitions
	}
	if cfg.Output == "" {
		cfg.Output = DefaultOutput
	}
	if cfg.HTTPTimeout == "" {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.WSTimeout == "" {
		cfg.WSTimeout = DefaultWSTimeout
	}
	if cfg.Throttle == "" {
		cfg.Throttle = DefaultThrottle
	}
	if cfg.Mode == "" {
		cfg.Mode = DefaultMode
	}
	if cfg.Workers == 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.Influx.URL == "" {
		cfg.Influx.URL = DefaultInfluxURL
	}
	if cfg.Influx.Database == "" {
		cfg.Influx.Database = DefaultInfluxDatabase
	}
	if cfg.Influx.SampleRate == "" {
		cfg.Influx.SampleRate = DefaultInfluxSampleRate
	}
}
