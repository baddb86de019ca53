package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"picstream"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"picstream_dev_password"`
	DBName     string `env:"DB_NAME" envDefault:"picstream"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`

	// AllowedOrigins are the origins permitted for CORS and the
	// websocket handshake.
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// MediaHostURL is the external image host's upload endpoint base;
	// MediaHostKey authenticates uploads. CDNBaseURL is where uploaded
	// images are served from.
	MediaHostURL string `env:"MEDIA_HOST_URL" envDefault:"http://localhost:9000"`
	MediaHostKey string `env:"MEDIA_HOST_KEY" envDefault:""`
	CDNBaseURL   string `env:"CDN_BASE_URL" envDefault:"http://localhost:9000/media"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
