package mirror

import (
	"fmt"

	"mock-status-feed/internal/config"
)

// FromConfig builds the mirror selected by MIRROR_DRIVER.
func FromConfig(cfg *config.Config) (Mirror, error) {
	switch cfg.MirrorDriver {
	case "", "none":
		return &NoOpMirror{}, nil
	case "http":
		return NewHTTPMirror(cfg.MirrorHTTPURL, cfg.MirrorHTTPKey, cfg.MirrorHTTPChannel), nil
	case "amqp":
		return NewAMQPMirror(cfg.GetRabbitMQURL(), cfg.MirrorExchange)
	default:
		return nil, fmt.Errorf("unknown mirror driver: %s", cfg.MirrorDriver)
	}
}
