package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "memberport/pkg/platform/strings"
)

// Config captures process-level configuration. It is loaded once at startup
// from environment variables; nothing mutates it afterwards.
type Config struct {
	Addr          string
	DatabaseURL   string
	Redis         RedisConfig
	Kafka         KafkaConfig
	JWTSigningKey string

	// EmailDomain is the domain used for generated anonymization addresses,
	// e.g. "memberport.org" yields deleted_<id>_<ms>@deleted.memberport.org.
	EmailDomain string

	Retention RetentionConfig

	// RetentionInterval enables the periodic retention scheduler when > 0.
	// Zero leaves purging to explicit admin triggers.
	RetentionInterval time.Duration
}

// RetentionConfig holds the retention policy thresholds, each in days.
// Fixed at deploy time; the engine never mutates them.
type RetentionConfig struct {
	MemberSoftDeleteAfterDays        int
	MemberAnonymizeAfterDays         int
	EventRegistrationDeleteAfterDays int
	DocumentDeleteAfterDays          int
	MessageDeleteAfterDays           int
}

// RedisConfig holds Redis connection settings. An empty URL disables Redis;
// the retention run lock then falls back to an in-process mutex.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the audit outbox publisher settings. Empty brokers
// disable the publisher; audit entries still land in the database.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:          envOr("MEMBERPORT_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		EmailDomain:   envOr("EMAIL_DOMAIN", "memberport.local"),
		Retention: RetentionConfig{
			MemberSoftDeleteAfterDays:        envInt("RETENTION_MEMBER_SOFT_DELETE_DAYS", 365*5),
			MemberAnonymizeAfterDays:         envInt("RETENTION_MEMBER_ANONYMIZE_DAYS", 365),
			EventRegistrationDeleteAfterDays: envInt("RETENTION_REGISTRATION_DELETE_DAYS", 365*7),
			DocumentDeleteAfterDays:          envInt("RETENTION_DOCUMENT_DELETE_DAYS", 365*3),
			MessageDeleteAfterDays:           envInt("RETENTION_MESSAGE_DELETE_DAYS", 365*2),
		},
		RetentionInterval: envDuration("RETENTION_INTERVAL", 0),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Topic: envOr("KAFKA_AUDIT_TOPIC", "memberport.audit"),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.Kafka.Brokers = platformstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
