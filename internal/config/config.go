// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	RPCList          []string `mapstructure:"rpc_list"`
	BatchSize        int      `mapstructure:"batch_size"`
	BatchConcurrency int      `mapstructure:"batch_concurrency"`
	RequestTimeoutMs int      `mapstructure:"request_timeout_ms"`
	Retries          int      `mapstructure:"retries"`
	SrcDir           string   `mapstructure:"src_dir"`
	ListsDir         string   `mapstructure:"lists_dir"`
	RegistryFile     string   `mapstructure:"registry_file"`
	DebugLogging     bool     `mapstructure:"debug_logging"`
	LogFile          string   `mapstructure:"log_file"`
	PushgatewayURL   string   `mapstructure:"pushgateway_url"`
}

const (
	DefaultBatchSize        = 200
	DefaultBatchConcurrency = 1
	DefaultRequestTimeoutMs = 15000
	DefaultRetries          = 3
	DefaultSrcDir           = "src/tokens"
	DefaultListsDir         = "lists"

	envPrefix = "TOKENLISTS"
)

// RequestTimeout таймаут одного RPC запроса
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

func newViper() *viper.Viper {
	v := viper.New()

	defaults := map[string]interface{}{
		"batch_size":         DefaultBatchSize,
		"batch_concurrency":  DefaultBatchConcurrency,
		"request_timeout_ms": DefaultRequestTimeoutMs,
		"retries":            DefaultRetries,
		"src_dir":            DefaultSrcDir,
		"lists_dir":          DefaultListsDir,
		"registry_file":      "",
		"debug_logging":      false,
		"log_file":           "",
		"pushgateway_url":    "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadConfig читает конфигурацию. Пустой path означает только значения
// по умолчанию и переменные окружения TOKENLISTS_*.
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	if err := validateNumericParams(cfg); err != nil {
		return err
	}
	if cfg.SrcDir == "" {
		return errors.New("src_dir is empty")
	}
	if cfg.ListsDir == "" {
		return errors.New("lists_dir is empty")
	}
	if cfg.PushgatewayURL != "" {
		if err := validateURLWithCache(cfg.PushgatewayURL, "http"); err != nil {
			return errors.New("invalid pushgateway URL")
		}
	}
	return nil
}

func validateNumericParams(cfg *Config) error {
	if cfg.BatchSize <= 0 {
		return errors.New("invalid batch_size")
	}
	if cfg.BatchConcurrency <= 0 {
		return errors.New("invalid batch_concurrency")
	}
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.Retries < 0 {
		return errors.New("invalid retries count")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// loadEnvironmentVariables разбирает TOKENLISTS_RPC_LIST как список через запятую;
// viper сам строки в срезы не делит
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	envRPCList := v.GetString("RPC_LIST")
	if envRPCList == "" {
		return nil
	}

	rpcs := strings.Split(envRPCList, ",")
	var cleanRPCs []string
	for _, rpc := range rpcs {
		clean := strings.TrimSpace(rpc)
		if clean != "" {
			cleanRPCs = append(cleanRPCs, clean)
		}
	}
	if len(cleanRPCs) > 0 {
		cfg.RPCList = cleanRPCs
	}
	return nil
}
