package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	Host     string        `env:"MOCKWS_HOST" default:"localhost"`
	Port     int           `env:"MOCKWS_PORT" default:"8080"`
	Interval time.Duration `env:"MOCKWS_INTERVAL" default:"10s"`
	Seed     uint64        `env:"MOCKWS_SEED" default:"0"`
	Echo     bool          `env:"MOCKWS_ECHO" default:"true"`

	HealthPort int    `env:"HEALTH_PORT" default:"8081"`
	LogLevel   string `env:"LOG_LEVEL" default:"info"`
	LogFormat  string `env:"LOG_FORMAT" default:"text"`

	MirrorDriver   string `env:"MIRROR_DRIVER" default:"none"`
	MirrorExchange string `env:"MIRROR_EXCHANGE" default:"mockws.status"`

	RabbitMQUser     string `env:"RABBITMQ_USER" default:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" default:"guest"`
	RabbitMQHost     string `env:"RABBITMQ_HOST" default:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" default:"5672"`
	RabbitMQVHost    string `env:"RABBITMQ_VHOST" default:"/"`

	MirrorHTTPURL     string `env:"MIRROR_HTTP_URL"`
	MirrorHTTPKey     string `env:"MIRROR_HTTP_KEY"`
	MirrorHTTPChannel string `env:"MIRROR_HTTP_CHANNEL" default:"status"`
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("MOCKWS_PORT must be between 1 and 65535, got %d", cfg.Port)
	}
	if cfg.HealthPort < 0 || cfg.HealthPort > 65535 {
		return fmt.Errorf("HEALTH_PORT must be between 0 and 65535, got %d", cfg.HealthPort)
	}
	if cfg.Interval <= 0 {
		return errors.New("MOCKWS_INTERVAL must be positive")
	}
	switch cfg.MirrorDriver {
	case "none", "amqp", "http":
	default:
		return fmt.Errorf("MIRROR_DRIVER must be one of none, amqp, http; got %q", cfg.MirrorDriver)
	}
	if cfg.MirrorDriver == "http" && cfg.MirrorHTTPURL == "" {
		return errors.New("MIRROR_HTTP_URL is required when MIRROR_DRIVER=http")
	}
	return nil
}

// Addr is the WebSocket listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HealthAddr is the listen address of the health and metrics server, on the
// same host as the feed. A zero HEALTH_PORT disables it.
func (c *Config) HealthAddr() string {
	if c.HealthPort == 0 {
		return ""
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.HealthPort))
}

func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/%s",
		c.RabbitMQUser,
		c.RabbitMQPassword,
		c.RabbitMQHost,
		c.RabbitMQPort,
		c.RabbitMQVHost,
	)
}
