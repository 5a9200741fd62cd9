package config

import (
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Platform struct {
		BaseURL   string        `env:"PLATFORM_BASE_URL" envDefault:"http://localhost:8080/api/v1"`
		WSBaseURL string        `env:"PLATFORM_WS_URL" envDefault:"ws://localhost:8080/ws"`
		Timeout   time.Duration `env:"PLATFORM_TIMEOUT" envDefault:"15s"`
	}

	Stub struct {
		// Listen address for the bundled stub platform server.
		Addr string `env:"STUB_ADDR" envDefault:":8080"`
	}

	Messaging struct {
		PollInterval time.Duration `env:"MESSAGE_POLL_INTERVAL" envDefault:"5s"`
	}

	Session struct {
		// File path for the durable token+profile snapshot. Ignored when a
		// Redis backend is configured.
		File string `env:"SESSION_FILE" envDefault:".betpanel/session.json"`

		RedisAddr     string `env:"SESSION_REDIS_ADDR" envDefault:""`
		RedisPassword string `env:"SESSION_REDIS_PASSWORD" envDefault:""`
		RedisDB       int    `env:"SESSION_REDIS_DB" envDefault:"0"`
	}
}

func Load() *Config {
	// Missing .env is fine; production environments set variables directly.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}

	return cfg
}
