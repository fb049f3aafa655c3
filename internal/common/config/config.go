package config

import "time"

type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	Logging    LoggingConfig           `mapstructure:"logging"`
	HTTP       HTTPConfig              `mapstructure:"http"`
	Agencies   AgenciesConfig          `mapstructure:"agencies"`
	Assistant  AssistantConfig         `mapstructure:"assistant"`
	Dispatcher DispatcherConfig        `mapstructure:"dispatcher"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Server     ServerConfig            `mapstructure:"server"`
	Tracing    TracingConfig           `mapstructure:"tracing"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// HTTPConfig controls the shared outbound transport.
type HTTPConfig struct {
	// RelayPrefix routes agency requests through a CORS relay when set,
	// e.g. "https://corsproxy.io/?url=".
	RelayPrefix string `mapstructure:"relay_prefix"`
	UserAgent   string `mapstructure:"user_agent"`
}

type AgencyConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	DefaultLimit int    `mapstructure:"default_limit"`
}

type FTCConfig struct {
	AgencyConfig `mapstructure:",squash"`
	APIKey       string `mapstructure:"api_key"`
}

type AgenciesConfig struct {
	CFPB  AgencyConfig `mapstructure:"cfpb"`
	NHTSA AgencyConfig `mapstructure:"nhtsa"`
	CPSC  AgencyConfig `mapstructure:"cpsc"`
	FTC   FTCConfig    `mapstructure:"ftc"`
}

type AssistantConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	Model           string  `mapstructure:"model"`
	BaseURL         string  `mapstructure:"base_url"`
	Timeout         int     `mapstructure:"timeout"` // milliseconds
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
}

type DispatcherConfig struct {
	Timeout       int `mapstructure:"timeout"` // milliseconds, whole fan-out
	BranchTimeout int `mapstructure:"branch_timeout"`
	SearchLimit   int `mapstructure:"search_limit"`
}

type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type TracingConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

func GetWorkerConfig(cfg *Config, workerName string) WorkerConfig {
	if worker, exists := cfg.Workers[workerName]; exists {
		return worker
	}
	return WorkerConfig{
		Enabled:       false,
		MaxJobsActive: 5,
		Timeout:       30000,
		MaxRetries:    3,
	}
}

func IsWorkerEnabled(cfg *Config, workerName string) bool {
	return GetWorkerConfig(cfg, workerName).Enabled
}

// AnyWorkerEnabled reports whether the worker manager has anything to register.
func AnyWorkerEnabled(cfg *Config) bool {
	for _, w := range cfg.Workers {
		if w.Enabled {
			return true
		}
	}
	return false
}
