package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// maxCacheTTL bounds how long a missed invalidation can serve stale data.
const maxCacheTTL = 10 * time.Minute

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Cache    CacheConfig
	Timeouts TimeoutConfig
}

type ServerConfig struct {
	AppEnv          string
	HTTPPort        string
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	AutoMigrate     bool
}

type JWTConfig struct {
	SecretKey string
}

type RedisConfig struct {
	Driver   string // redis or memory
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type KafkaConfig struct {
	Brokers          []string
	GroupID          string
	EnsureTopics     bool
	EnableConsumers  bool
	MessageRetention time.Duration
}

type CacheConfig struct {
	ItemTTL      time.Duration
	ListTTL      time.Duration
	AggregateTTL time.Duration
}

type TimeoutConfig struct {
	Store time.Duration
	Cache time.Duration
	Queue time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:          getEnv("APP_ENV", "dev"),
			HTTPPort:        getEnv("HTTP_PORT", ":8080"),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5432"),
			User:            getEnv("POSTGRES_USER", "inventory"),
			Password:        getEnv("POSTGRES_PASSWORD", "inventory"),
			DBName:          getEnv("POSTGRES_DB", "inventory"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
			AutoMigrate:     getEnvBool("POSTGRES_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET_KEY", "your-secret-key-change-this-in-prod"),
		},
		Redis: RedisConfig{
			Driver:   getEnv("CACHE_DRIVER", "redis"),
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 10),
		},
		Kafka: KafkaConfig{
			Brokers:          getEnvSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			GroupID:          getEnv("KAFKA_GROUP_INVENTORY", "inventory-service"),
			EnsureTopics:     getEnvBool("KAFKA_ENSURE_TOPICS", true),
			EnableConsumers:  getEnvBool("KAFKA_ENABLE_CONSUMERS", true),
			MessageRetention: getEnvDuration("KAFKA_MESSAGE_RETENTION", 24*time.Hour),
		},
		Cache: CacheConfig{
			ItemTTL:      getEnvDuration("CACHE_TTL_ITEM", 10*time.Minute),
			ListTTL:      getEnvDuration("CACHE_TTL_LIST", 5*time.Minute),
			AggregateTTL: getEnvDuration("CACHE_TTL_AGGREGATE", 5*time.Minute),
		},
		Timeouts: TimeoutConfig{
			Store: getEnvDuration("STORE_TIMEOUT", 5*time.Second),
			Cache: getEnvDuration("CACHE_TIMEOUT", 500*time.Millisecond),
			Queue: getEnvDuration("QUEUE_TIMEOUT", 2*time.Second),
		},
	}
}

// Validate rejects settings that would break the service's guarantees:
// unbounded staleness or calls without a deadline.
func (c *Config) Validate() error {
	var errs []error

	ttls := map[string]time.Duration{
		"CACHE_TTL_ITEM":      c.Cache.ItemTTL,
		"CACHE_TTL_LIST":      c.Cache.ListTTL,
		"CACHE_TTL_AGGREGATE": c.Cache.AggregateTTL,
	}
	for _, name := range []string{"CACHE_TTL_ITEM", "CACHE_TTL_LIST", "CACHE_TTL_AGGREGATE"} {
		if d := ttls[name]; d <= 0 || d > maxCacheTTL {
			errs = append(errs, fmt.Errorf("%s must be in (0, %s], got %s", name, maxCacheTTL, d))
		}
	}

	timeouts := []struct {
		name string
		d    time.Duration
	}{
		{"STORE_TIMEOUT", c.Timeouts.Store},
		{"CACHE_TIMEOUT", c.Timeouts.Cache},
		{"QUEUE_TIMEOUT", c.Timeouts.Queue},
	}
	for _, t := range timeouts {
		if t.d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", t.name))
		}
	}

	if c.Redis.Driver != "redis" && c.Redis.Driver != "memory" {
		errs = append(errs, fmt.Errorf("CACHE_DRIVER must be redis or memory, got %q", c.Redis.Driver))
	}
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required"))
	}
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}

	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if value, ok := os.LookupEnv(key); ok {
		var out []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
