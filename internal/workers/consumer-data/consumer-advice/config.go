package consumeradvice

import (
	"time"

	"consumer-portal/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 35 * time.Second
	}
	return &Config{Timeout: timeout}
}
