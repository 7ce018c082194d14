package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported values for STORE_DRIVER.
const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

const defaultJWTSecret = "change-me-in-production"

// Config holds everything the service reads from the environment.
type Config struct {
	AppPort string
	AppEnv  string

	StoreDriver         string
	MongoURI            string
	MongoDatabase       string
	DatabaseDSN         string
	StoreConnectTimeout time.Duration

	JWTSecret string
	JWTTTL    time.Duration

	RabbitMQURL   string
	RabbitMQQueue string

	FederatedProvider string
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (Config, error) {
	return load(viper.New(), ".env")
}

func load(v *viper.Viper, envFile string) (Config, error) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "inventory")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("STORE_CONNECT_TIMEOUT", "5s")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "inventory_events")
	v.SetDefault("FEDERATED_PROVIDER", "firebase")

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		AppPort:           normalizePort(v.GetString("APP_PORT")),
		AppEnv:            strings.ToLower(v.GetString("APP_ENV")),
		StoreDriver:       strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:          v.GetString("MONGODB_URI"),
		MongoDatabase:     v.GetString("MONGODB_DATABASE"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:     v.GetString("RABBITMQ_QUEUE"),
		FederatedProvider: v.GetString("FEDERATED_PROVIDER"),
	}

	var err error
	if cfg.StoreConnectTimeout, err = time.ParseDuration(v.GetString("STORE_CONNECT_TIMEOUT")); err != nil {
		return Config{}, fmt.Errorf("invalid STORE_CONNECT_TIMEOUT: %w", err)
	}
	if cfg.JWTTTL, err = time.ParseDuration(v.GetString("JWT_TTL")); err != nil {
		return Config{}, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.JWTTTL <= 0 {
		return Config{}, fmt.Errorf("JWT_TTL must be positive")
	}

	switch cfg.StoreDriver {
	case DriverMongo, DriverPostgres, DriverMemory:
	case DriverSQLite:
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "inventory.db"
		}
	default:
		return Config{}, fmt.Errorf("unsupported STORE_DRIVER %q (supported: mongo, postgres, sqlite, memory)", cfg.StoreDriver)
	}
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseDSN == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required for the postgres driver")
	}

	if cfg.IsProduction() && cfg.JWTSecret == defaultJWTSecret {
		return Config{}, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return cfg, nil
}

func normalizePort(port string) string {
	if port != "" && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
