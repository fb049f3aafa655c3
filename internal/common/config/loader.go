package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// PlaceholderAPIKey is the sample value shipped in .env templates; it counts
// as no credential.
const PlaceholderAPIKey = "your_gemini_api_key_here"

const (
	DefaultCFPBBaseURL      = "https://www.consumerfinance.gov/data-research/consumer-complaints/search/api/v1/"
	DefaultNHTSABaseURL     = "https://api.nhtsa.gov"
	DefaultCPSCBaseURL      = "https://www.saferproducts.gov/RestWebServices"
	DefaultFTCBaseURL       = "https://api.ftc.gov/v0"
	DefaultFTCAPIKey        = "DEMO_KEY"
	DefaultAssistantModel   = "gemini-1.5-flash"
	DefaultAgencyTimeoutMS  = 10000
	DefaultAssistantTimeout = 30000
)

// Load reads .env, configs/config.yaml and configs/config.<APP_ENVIRONMENT>.yaml,
// then applies defaults and environment overrides. Missing files are not an error.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return finish(v)
}

// LoadFromFile reads a single explicit config file.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration built from defaults and the environment
// only, for tools that run without a config file.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)
	return &cfg
}

func loadEnvFile() {
	possiblePaths := []string{".env", "../.env", "../../.env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok || !strings.Contains(strVal, "$") {
			continue
		}
		if expanded := os.ExpandEnv(strVal); expanded != strVal {
			v.Set(key, expanded)
		}
	}
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if val := os.Getenv(k); val != "" {
			return val
		}
	}
	return ""
}

func overrideEmptyConfig(cfg *Config) {
	if cfg.Assistant.APIKey == "" {
		cfg.Assistant.APIKey = firstEnv("GEMINI_API_KEY", "VITE_GEMINI_API_KEY")
	}
	if val := firstEnv("FTC_API_KEY", "VITE_FTC_API_KEY"); val != "" && cfg.Agencies.FTC.APIKey == DefaultFTCAPIKey {
		cfg.Agencies.FTC.APIKey = val
	}
	if cfg.HTTP.RelayPrefix == "" {
		cfg.HTTP.RelayPrefix = os.Getenv("CORS_RELAY_PREFIX")
	}
	if cfg.Camunda.BrokerAddress == "" {
		cfg.Camunda.BrokerAddress = os.Getenv("ZEEBE_ADDRESS")
	}
	if cfg.Tracing.JaegerEndpoint == "" {
		cfg.Tracing.JaegerEndpoint = os.Getenv("JAEGER_ENDPOINT")
	}
}

func agencyDefaults(a *AgencyConfig, baseURL string, limit int) {
	if a.BaseURL == "" {
		a.BaseURL = baseURL
	}
	if a.Timeout == 0 {
		a.Timeout = DefaultAgencyTimeoutMS
	}
	if a.DefaultLimit == 0 {
		a.DefaultLimit = limit
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "consumer-portal"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}

	if cfg.Camunda.MaxJobsActive == 0 {
		cfg.Camunda.MaxJobsActive = 10
	}
	if cfg.Camunda.Timeout == 0 {
		cfg.Camunda.Timeout = 30000
	}
	if cfg.Camunda.RequestTimeout == 0 {
		cfg.Camunda.RequestTimeout = 30000
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = "consumer-portal/1.0"
	}

	agencyDefaults(&cfg.Agencies.CFPB, DefaultCFPBBaseURL, 100)
	agencyDefaults(&cfg.Agencies.NHTSA, DefaultNHTSABaseURL, 0)
	agencyDefaults(&cfg.Agencies.CPSC, DefaultCPSCBaseURL, 0)
	agencyDefaults(&cfg.Agencies.FTC.AgencyConfig, DefaultFTCBaseURL, 100)
	if cfg.Agencies.FTC.APIKey == "" {
		cfg.Agencies.FTC.APIKey = DefaultFTCAPIKey
	}

	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = DefaultAssistantModel
	}
	if cfg.Assistant.Timeout == 0 {
		cfg.Assistant.Timeout = DefaultAssistantTimeout
	}

	if cfg.Dispatcher.Timeout == 0 {
		cfg.Dispatcher.Timeout = 15000
	}
	if cfg.Dispatcher.BranchTimeout == 0 {
		cfg.Dispatcher.BranchTimeout = DefaultAgencyTimeoutMS
	}
	if cfg.Dispatcher.SearchLimit == 0 {
		cfg.Dispatcher.SearchLimit = 10
	}

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}

	for key, worker := range cfg.Workers {
		if worker.MaxJobsActive == 0 {
			worker.MaxJobsActive = 5
		}
		if worker.Timeout == 0 {
			worker.Timeout = 30000
		}
		if worker.MaxRetries == 0 {
			worker.MaxRetries = 3
		}
		cfg.Workers[key] = worker
	}
}

func validateAbsoluteURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}

func validateConfig(cfg *Config) error {
	agencies := map[string]AgencyConfig{
		"agencies.cfpb":  cfg.Agencies.CFPB,
		"agencies.nhtsa": cfg.Agencies.NHTSA,
		"agencies.cpsc":  cfg.Agencies.CPSC,
		"agencies.ftc":   cfg.Agencies.FTC.AgencyConfig,
	}
	for name, a := range agencies {
		if err := validateAbsoluteURL(name+".base_url", a.BaseURL); err != nil {
			return err
		}
		if a.Timeout < 0 {
			return fmt.Errorf("%s.timeout must be positive", name)
		}
	}

	if cfg.HTTP.RelayPrefix != "" {
		if err := validateAbsoluteURL("http.relay_prefix", cfg.HTTP.RelayPrefix); err != nil {
			return err
		}
	}
	if cfg.Assistant.Timeout < 0 {
		return fmt.Errorf("assistant.timeout must be positive")
	}
	if cfg.Dispatcher.Timeout < 0 || cfg.Dispatcher.BranchTimeout < 0 {
		return fmt.Errorf("dispatcher timeouts must be positive")
	}

	if AnyWorkerEnabled(cfg) && cfg.Camunda.BrokerAddress == "" {
		return fmt.Errorf("camunda.broker_address is required when workers are enabled")
	}
	return nil
}
