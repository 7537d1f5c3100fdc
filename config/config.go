package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the service settings. Defaults reproduce a standalone
// deployment: SQLite file in the working directory, HTTP on all interfaces.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"inventory-service"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	HTTPAddr string `envconfig:"HTTP_ADDR" default:"0.0.0.0:5000"`
	GRPCAddr string `envconfig:"GRPC_ADDR" default:":50051"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite"`
	DBPath   string `envconfig:"DB_PATH" default:"database.db"`
	DBDSN    string `envconfig:"DB_DSN" default:"host=localhost port=5432 user=postgres password=postgres dbname=inventorydb sslmode=disable"`
	DBDebug  bool   `envconfig:"DB_DEBUG" default:"false"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"order_events"`

	JaegerEndpoint string `envconfig:"JAEGER_ENDPOINT"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return &cfg, nil
}

func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func (c *Config) TracingEnabled() bool {
	return c.JaegerEndpoint != ""
}
