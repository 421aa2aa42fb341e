/**
 * @description
 * This package handles the configuration management for the transfer engine.
 * It uses the Viper library to read configuration from environment variables
 * (plus an optional .env file), providing a centralized and straightforward
 * way to manage settings. Retry bounds, the fraud threshold, and outbox knobs
 * are explicit configuration here rather than process-wide globals.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 * - github.com/shopspring/decimal: Exact parsing of the fraud threshold.
 */

package config

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/bankva/transfer-engine/pkg/retry"
)

// Config holds all the configuration variables for the transfer engine.
// These values are loaded from environment variables.
type Config struct {
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	TransferExchange   string `mapstructure:"TRANSFER_EXCHANGE"`
	TransferRoutingKey string `mapstructure:"TRANSFER_ROUTING_KEY"`
	TransferEventQueue string `mapstructure:"TRANSFER_EVENT_QUEUE"`

	RetryMaxAttempts      int    `mapstructure:"RETRY_MAX_ATTEMPTS"`
	RetryBackoffMs        int    `mapstructure:"RETRY_BACKOFF_MS"`
	RetryAttemptTimeoutMs int    `mapstructure:"RETRY_ATTEMPT_TIMEOUT_MS"`
	OutboxBatchSize       int    `mapstructure:"OUTBOX_BATCH_SIZE"`
	OutboxPollIntervalMs  int    `mapstructure:"OUTBOX_POLL_INTERVAL_MS"`
	EventDedupeTTLMinutes int    `mapstructure:"EVENT_DEDUPE_TTL_MINUTES"`
	EventDedupeKeyPrefix  string `mapstructure:"EVENT_DEDUPE_KEY_PREFIX"`
	FraudAmountThreshold  string `mapstructure:"FRAUD_AMOUNT_THRESHOLD"`
}

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct, applying defaults and clamping nonsense values.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("TRANSFER_EXCHANGE", "transfer_events")
	viper.SetDefault("TRANSFER_ROUTING_KEY", "transfer.completed")
	viper.SetDefault("TRANSFER_EVENT_QUEUE", "fraud_service.transfer_completed")
	viper.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	viper.SetDefault("RETRY_BACKOFF_MS", 200)
	viper.SetDefault("RETRY_ATTEMPT_TIMEOUT_MS", 5000)
	viper.SetDefault("OUTBOX_BATCH_SIZE", 50)
	viper.SetDefault("OUTBOX_POLL_INTERVAL_MS", 1200)
	viper.SetDefault("EVENT_DEDUPE_TTL_MINUTES", 1440)
	viper.SetDefault("EVENT_DEDUPE_KEY_PREFIX", "transfer_engine:event_seen")
	viper.SetDefault("FRAUD_AMOUNT_THRESHOLD", "100000")

	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("TRANSFER_EXCHANGE")
	_ = viper.BindEnv("TRANSFER_ROUTING_KEY")
	_ = viper.BindEnv("TRANSFER_EVENT_QUEUE")
	_ = viper.BindEnv("RETRY_MAX_ATTEMPTS")
	_ = viper.BindEnv("RETRY_BACKOFF_MS")
	_ = viper.BindEnv("RETRY_ATTEMPT_TIMEOUT_MS")
	_ = viper.BindEnv("OUTBOX_BATCH_SIZE")
	_ = viper.BindEnv("OUTBOX_POLL_INTERVAL_MS")
	_ = viper.BindEnv("EVENT_DEDUPE_TTL_MINUTES")
	_ = viper.BindEnv("EVENT_DEDUPE_KEY_PREFIX")
	_ = viper.BindEnv("FRAUD_AMOUNT_THRESHOLD")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return
	}

	if config.RetryMaxAttempts <= 0 {
		config.RetryMaxAttempts = 3
	}
	if config.RetryBackoffMs <= 0 {
		config.RetryBackoffMs = 200
	}
	if config.RetryAttemptTimeoutMs < 0 {
		config.RetryAttemptTimeoutMs = 0
	}
	if config.OutboxBatchSize <= 0 {
		config.OutboxBatchSize = 50
	}
	if config.OutboxPollIntervalMs <= 0 {
		config.OutboxPollIntervalMs = 1200
	}
	if config.EventDedupeTTLMinutes <= 0 {
		config.EventDedupeTTLMinutes = 1440
	}

	config.FraudAmountThreshold = strings.TrimSpace(config.FraudAmountThreshold)
	if _, parseErr := decimal.NewFromString(config.FraudAmountThreshold); config.FraudAmountThreshold == "" || parseErr != nil {
		log.Printf("level=warn component=config msg=\"invalid fraud threshold; using default\" value=%q", config.FraudAmountThreshold)
		config.FraudAmountThreshold = "100000"
	}

	return
}

// FraudThreshold returns the parsed suspicious-amount threshold. LoadConfig
// already guaranteed the stored string parses.
func (c Config) FraudThreshold() decimal.Decimal {
	return decimal.RequireFromString(c.FraudAmountThreshold)
}

// RetryPolicy builds the bounded-retry policy for the transfer cycle and
// other store- or broker-facing calls from the configured knobs.
func (c Config) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:    c.RetryMaxAttempts,
		Delay:          time.Duration(c.RetryBackoffMs) * time.Millisecond,
		AttemptTimeout: time.Duration(c.RetryAttemptTimeoutMs) * time.Millisecond,
	}
}
