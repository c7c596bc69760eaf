// Package config loads the service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
		RequestTimeout  time.Duration `env:"HTTP_REQUEST_TIMEOUT" envDefault:"60s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Optimization struct {
		// Runs executing at the same time
		WorkerCount int `env:"OPT_WORKER_COUNT" envDefault:"10"`
		// Runs waiting for a worker
		QueueSize int `env:"OPT_QUEUE_SIZE" envDefault:"100"`
		// Per-request caps
		MaxPopulation  int `env:"OPT_MAX_POPULATION" envDefault:"500"`
		MaxGenerations int `env:"OPT_MAX_GENERATIONS" envDefault:"5000"`
		MaxDimension   int `env:"OPT_MAX_DIMENSION" envDefault:"100"`
	}
	// Defaults applied to requests that leave a coefficient unset
	Firefly struct {
		PopulationSize int     `env:"FFA_POPULATION_SIZE" envDefault:"40"`
		MaxGenerations int     `env:"FFA_MAX_GENERATIONS" envDefault:"50"`
		Alpha          float64 `env:"FFA_ALPHA" envDefault:"0.25"`
		Beta0          float64 `env:"FFA_BETA0" envDefault:"1.0"`
		BetaMin        float64 `env:"FFA_BETA_MIN" envDefault:"0.2"`
		Gamma          float64 `env:"FFA_GAMMA" envDefault:"1.0"`
		Delta          float64 `env:"FFA_DELTA" envDefault:"0.97"`
		Decay          string  `env:"FFA_DECAY" envDefault:"exponential"`
		Exploration    string  `env:"FFA_EXPLORATION" envDefault:"best"`
	}
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Logging.Level == "" {
		if cfg.Environment == "development" {
			cfg.Logging.Level = "debug"
		} else {
			cfg.Logging.Level = "info"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: HTTP_PORT %d out of range", c.HTTP.Port)
	}
	opt := c.Optimization
	if opt.WorkerCount < 1 {
		return fmt.Errorf("config: OPT_WORKER_COUNT must be positive, got %d", opt.WorkerCount)
	}
	if opt.QueueSize < 0 {
		return fmt.Errorf("config: OPT_QUEUE_SIZE must not be negative, got %d", opt.QueueSize)
	}
	if opt.MaxPopulation < 1 || opt.MaxGenerations < 1 || opt.MaxDimension < 1 {
		return fmt.Errorf("config: request caps must be positive")
	}

	ffa := c.Firefly
	if ffa.PopulationSize < 1 || ffa.PopulationSize > opt.MaxPopulation {
		return fmt.Errorf("config: FFA_POPULATION_SIZE must lie in [1, %d], got %d", opt.MaxPopulation, ffa.PopulationSize)
	}
	if ffa.MaxGenerations < 0 || ffa.MaxGenerations > opt.MaxGenerations {
		return fmt.Errorf("config: FFA_MAX_GENERATIONS must lie in [0, %d], got %d", opt.MaxGenerations, ffa.MaxGenerations)
	}
	if ffa.Alpha < 0 || ffa.Beta0 < 0 || ffa.BetaMin < 0 || ffa.Gamma < 0 || ffa.Delta < 0 {
		return fmt.Errorf("config: firefly coefficients must not be negative")
	}
	if ffa.BetaMin > ffa.Beta0 {
		return fmt.Errorf("config: FFA_BETA_MIN %v exceeds FFA_BETA0 %v", ffa.BetaMin, ffa.Beta0)
	}
	if ffa.Delta > 1 {
		return fmt.Errorf("config: FFA_DELTA must not exceed 1, got %v", ffa.Delta)
	}
	return nil
}
