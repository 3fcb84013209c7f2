package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		Driver             string `env:"DRIVER" envDefault:"postgres"`
		DSN                string `env:"DSN"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	JWT struct {
		Secret string `env:"SECRET,required,notEmpty"`
	} `envPrefix:"JWT_"`
	Registry struct {
		Path string `env:"PATH" envDefault:"registry.yaml"`
	} `envPrefix:"REGISTRY_"`
	Email struct {
		Planners []string `env:"PLANNERS" envSeparator:","`
		SMTP     struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	// empty DSN disables commit events
	RabbitMQ struct {
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"schedule_commits"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	// empty host disables the draft mirror
	Redis struct {
		Host            string `env:"HOST"`
		Port            int    `env:"PORT" envDefault:"6379"`
		Password        string `env:"PASSWORD"`
		ConnectTimeout  int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		DraftExpiration int    `env:"DRAFT_EXPIRATION" envDefault:"604800"` // 7 days
	} `envPrefix:"REDIS_"`
	Metrics struct {
		Enabled bool `env:"ENABLED" envDefault:"true"`
	} `envPrefix:"METRICS_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error, keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	switch cfg.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if cfg.Database.DSN == "" {
			return nil, fmt.Errorf("DATABASE_DSN is required for driver %q", cfg.Database.Driver)
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.Database.Driver)
	}

	return cfg, nil
}
