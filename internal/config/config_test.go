package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.TransferExchange != "transfer_events" {
		t.Fatalf("expected default exchange, got %q", cfg.TransferExchange)
	}
	if cfg.TransferRoutingKey != "transfer.completed" {
		t.Fatalf("expected default routing key, got %q", cfg.TransferRoutingKey)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected default retry attempts of 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.RetryBackoffMs != 200 {
		t.Fatalf("expected default backoff of 200ms, got %d", cfg.RetryBackoffMs)
	}
	if cfg.FraudAmountThreshold != "100000" {
		t.Fatalf("expected default fraud threshold, got %q", cfg.FraudAmountThreshold)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("FRAUD_AMOUNT_THRESHOLD", "250000.50")
	t.Setenv("TRANSFER_EVENT_QUEUE", "custom.queue")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.RetryMaxAttempts != 5 {
		t.Fatalf("expected RETRY_MAX_ATTEMPTS override, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.FraudAmountThreshold != "250000.50" {
		t.Fatalf("expected threshold override, got %q", cfg.FraudAmountThreshold)
	}
	if cfg.TransferEventQueue != "custom.queue" {
		t.Fatalf("expected queue override, got %q", cfg.TransferEventQueue)
	}
	if !cfg.FraudThreshold().Equal(cfg.FraudThreshold()) {
		t.Fatal("threshold must parse deterministically")
	}
}

func TestLoadConfig_InvalidFraudThresholdFallsBack(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("FRAUD_AMOUNT_THRESHOLD", "lots of money")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.FraudAmountThreshold != "100000" {
		t.Fatalf("expected fallback threshold, got %q", cfg.FraudAmountThreshold)
	}
}

func TestRetryPolicyFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("RETRY_MAX_ATTEMPTS", "4")
	t.Setenv("RETRY_BACKOFF_MS", "75")
	t.Setenv("RETRY_ATTEMPT_TIMEOUT_MS", "1500")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	policy := cfg.RetryPolicy()
	if policy.MaxAttempts != 4 {
		t.Fatalf("expected 4 attempts, got %d", policy.MaxAttempts)
	}
	if policy.Delay != 75*time.Millisecond {
		t.Fatalf("expected 75ms delay, got %s", policy.Delay)
	}
	if policy.AttemptTimeout != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s attempt timeout, got %s", policy.AttemptTimeout)
	}
}

func TestLoadConfig_ClampsNonsenseValues(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("RETRY_MAX_ATTEMPTS", "-2")
	t.Setenv("OUTBOX_BATCH_SIZE", "0")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RetryMaxAttempts != 3 {
		t.Fatalf("expected negative attempts clamped to 3, got %d", cfg.RetryMaxAttempts)
	}
	if cfg.OutboxBatchSize != 50 {
		t.Fatalf("expected zero batch size clamped to 50, got %d", cfg.OutboxBatchSize)
	}
}
