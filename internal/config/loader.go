// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Load reads configuration from environment variables.
// It attempts to load from .env file first (for local development),
// then parses environment variables into the Config struct.
func Load() (*Config, error) {
	// In production (Docker/K8s), environment variables are injected directly
	if err := godotenv.Load(); err != nil {
		logrus.Warnf("no .env file found or error loading it: %v (this is normal in production)", err)
	} else {
		logrus.Infof("loaded environment variables from .env file")
	}

	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return cfg, nil
}

// Validate performs custom validation on the configuration.
func (c *Config) Validate() error {
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid GRPC_PORT: %d (must be 1-65535)", c.GRPCPort)
	}

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d (must be 1-65535)", c.HTTPPort)
	}

	if c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must differ (both %d)", c.GRPCPort)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %q", c.LogLevel)
	}

	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}

	if c.ConfigPath == "" {
		return fmt.Errorf("CONFIG_PATH is required")
	}

	if c.SweepInterval <= 0 {
		return fmt.Errorf("invalid SWEEP_INTERVAL: %s (must be positive)", c.SweepInterval)
	}

	if c.SweepBatchSize <= 0 {
		return fmt.Errorf("invalid SWEEP_BATCH_SIZE: %d (must be positive)", c.SweepBatchSize)
	}

	if (c.WhatsAppToken == "") != (c.WhatsAppPhoneNumberID == "") {
		return fmt.Errorf("WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID must be set together")
	}

	return nil
}
