package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	JWTSigningKey  string
	JWTIssuer      string
	AdminTokenHash string
	StorageTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Forensic ForensicConfig
}

// IsDevelopment reports whether the process runs in a local environment.
func (s Server) IsDevelopment() bool {
	return s.Environment == "" || s.Environment == "development" || s.Environment == "local"
}

// DatabaseConfig configures the PostgreSQL pool. An empty URL selects the
// in-memory stores.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig configures the redis client. An empty URL disables redis.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit stream. No brokers disables publishing.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
	Partitions int32
	Replicas   int16
}

// ForensicConfig holds the decision thresholds. The defaults are hard gates;
// deployments may tighten or relax them per environment.
type ForensicConfig struct {
	HighRiskThreshold       decimal.Decimal
	LargeTxThreshold        decimal.Decimal
	NewAccountThreshold     decimal.Decimal
	NewAccountAge           time.Duration
	RapidOperationCount     int
	RapidWindow             time.Duration
	PersistFailureThreshold int
	// DeniedIPs seeds the identity denylist at startup.
	DeniedIPs []string
}

// DefaultForensic returns the reference thresholds.
func DefaultForensic() ForensicConfig {
	return ForensicConfig{
		HighRiskThreshold:       decimal.NewFromInt(10_000),
		LargeTxThreshold:        decimal.NewFromInt(50_000),
		NewAccountThreshold:     decimal.NewFromInt(1_000),
		NewAccountAge:           24 * time.Hour,
		RapidOperationCount:     5,
		RapidWindow:             60 * time.Second,
		PersistFailureThreshold: 5,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	def := DefaultForensic()
	return Server{
		Addr:           envString("PIGATE_ADDR", ":8080"),
		Environment:    envString("ENVIRONMENT", "development"),
		LogLevel:       envString("LOG_LEVEL", "info"),
		JWTSigningKey:  jwtSigningKey,
		JWTIssuer:      envString("JWT_ISSUER", "pi-identity"),
		AdminTokenHash: os.Getenv("ADMIN_TOKEN_HASH"),
		StorageTimeout: envDuration("STORAGE_TIMEOUT", 5*time.Second),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:    envList("KAFKA_BROKERS"),
			AuditTopic: envString("AUDIT_TOPIC", "pigate.audit.entries"),
			Partitions: int32(envInt("AUDIT_TOPIC_PARTITIONS", 1)),
			Replicas:   int16(envInt("AUDIT_TOPIC_REPLICAS", 1)),
		},
		Forensic: ForensicConfig{
			HighRiskThreshold:       envDecimal("FORENSIC_HIGH_RISK_THRESHOLD", def.HighRiskThreshold),
			LargeTxThreshold:        envDecimal("FORENSIC_LARGE_TX_THRESHOLD", def.LargeTxThreshold),
			NewAccountThreshold:     envDecimal("FORENSIC_NEW_ACCOUNT_THRESHOLD", def.NewAccountThreshold),
			NewAccountAge:           envDuration("FORENSIC_NEW_ACCOUNT_AGE", def.NewAccountAge),
			RapidOperationCount:     envInt("FORENSIC_RAPID_OP_COUNT", def.RapidOperationCount),
			RapidWindow:             envDuration("FORENSIC_RAPID_WINDOW", def.RapidWindow),
			PersistFailureThreshold: envInt("FORENSIC_PERSIST_FAILURE_THRESHOLD", def.PersistFailureThreshold),
			DeniedIPs:               envList("FORENSIC_DENIED_IPS"),
		},
	}
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return fallback
}

func envDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	if v, err := decimal.NewFromString(strings.TrimSpace(os.Getenv(key))); err == nil && v.IsPositive() {
		return v
	}
	return fallback
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
