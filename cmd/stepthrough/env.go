package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jask/stepthrough/internal/config"
	"github.com/jask/stepthrough/internal/logging"
)

// loadEnv reads and validates config and builds the file logger.
func loadEnv(flags *globalFlags) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, fmt.Errorf("invalid config: %w", err)
	}
	log, err := logging.New(cfg.Log, flags.verbose)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}
