// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import "time"

// Config holds all application configuration loaded from environment variables.
// This struct uses github.com/caarlos0/env for automatic environment variable parsing.
//
// Nudge catalog overrides, policy limits and channel routing live in the YAML
// file at CONFIG_PATH, not here.
type Config struct {
	// Server configuration
	GRPCPort    int    `env:"GRPC_PORT" envDefault:"6565"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"dev"`
	ServiceName string `env:"SERVICE_NAME" envDefault:"CreatorNudgeService"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis configuration
	RedisHost         string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort         string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	RedisMaxRetries   int    `env:"REDIS_MAX_RETRIES" envDefault:"5"`
	RedisRetryDelayMs int    `env:"REDIS_RETRY_DELAY_MS" envDefault:"1000"`

	// Pipeline configuration
	ConfigPath     string        `env:"CONFIG_PATH" envDefault:"config/nudges.yaml"`
	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
	SweepBatchSize int64         `env:"SWEEP_BATCH_SIZE" envDefault:"100"`

	// WhatsApp Cloud API. Leaving the token empty disables real sends and
	// routes WhatsApp through the log_only action.
	WhatsAppAPIURL        string        `env:"WHATSAPP_API_URL" envDefault:"https://graph.facebook.com/v19.0"`
	WhatsAppToken         string        `env:"WHATSAPP_TOKEN"`
	WhatsAppPhoneNumberID string        `env:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppMaxRetries    uint64        `env:"WHATSAPP_MAX_RETRIES" envDefault:"3"`
	WhatsAppTimeout       time.Duration `env:"WHATSAPP_TIMEOUT" envDefault:"10s"`

	// Telemetry configuration
	OtelEnabled    bool   `env:"OTEL_ENABLED" envDefault:"true"`
	ZipkinEndpoint string `env:"ZIPKIN_ENDPOINT"`
}

// WhatsAppEnabled reports whether real WhatsApp credentials are configured.
func (c *Config) WhatsAppEnabled() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneNumberID != ""
}
