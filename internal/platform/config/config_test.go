package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PIGATE_ADDR", "KAFKA_BROKERS", "FORENSIC_LARGE_TX_THRESHOLD", "STORAGE_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 5*time.Second, cfg.StorageTimeout)
	assert.True(t, cfg.Forensic.LargeTxThreshold.Equal(decimal.NewFromInt(50_000)))
	assert.Equal(t, DefaultForensic().RapidOperationCount, cfg.Forensic.RapidOperationCount)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PIGATE_ADDR", ":9090")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("FORENSIC_LARGE_TX_THRESHOLD", "75000.50")
	t.Setenv("FORENSIC_RAPID_WINDOW", "2m")
	t.Setenv("FORENSIC_HIGH_RISK_THRESHOLD", "-1")
	t.Setenv("FORENSIC_DENIED_IPS", "203.0.113.66")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Forensic.LargeTxThreshold.Equal(decimal.RequireFromString("75000.50")))
	assert.Equal(t, 2*time.Minute, cfg.Forensic.RapidWindow)
	assert.True(t, cfg.Forensic.HighRiskThreshold.Equal(decimal.NewFromInt(10_000)), "non-positive thresholds fall back")
	assert.Equal(t, []string{"203.0.113.66"}, cfg.Forensic.DeniedIPs)
}
