package searchlivedata

import (
	"time"

	"consumer-portal/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

// LoadConfig derives the handler config from the worker entry; the job
// timeout must cover the dispatcher's own fan-out timeout.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	timeout := config.GetDuration(wcfg.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Config{Timeout: timeout}
}
