package app

import "github.com/cockroachdb/errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPaths []string // hcl files or directories

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
	WorkerCount     int
	// CountOnly suppresses record output; only per-task counts are written.
	CountOnly bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ConfigPaths) == 0 {
		return nil, errors.New("at least one configuration path is required")
	}
	if cfg.WorkerCount < 1 {
		return nil, errors.Newf("worker count must be positive, got %d", cfg.WorkerCount)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, errors.Newf("healthcheck port %d out of range", cfg.HealthcheckPort)
	}
	cfg.ConfigPaths = append([]string(nil), cfg.ConfigPaths...)
	return &cfg, nil
}
