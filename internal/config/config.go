package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		Port      string
		UploadDir string
	}
	Mongo struct {
		URI    string
		DBName string
	}
	Auth struct {
		JWTSecret string
		TokenTTL  time.Duration
	}
}

// Load reads configuration from the environment, optionally seeded from a
// .env file. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg := &Config{}

	cfg.App.Port = os.Getenv("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}

	cfg.App.UploadDir = os.Getenv("UPLOAD_DIR")
	if cfg.App.UploadDir == "" {
		cfg.App.UploadDir = "uploads/products"
	}

	cfg.Mongo.URI = os.Getenv("MONGO_URI")
	if cfg.Mongo.URI == "" {
		return nil, fmt.Errorf("MONGO_URI is required")
	}

	cfg.Mongo.DBName = os.Getenv("MONGO_DB")
	if cfg.Mongo.DBName == "" {
		cfg.Mongo.DBName = "shop"
	}

	cfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg.Auth.TokenTTL = 7 * 24 * time.Hour
	if ttl := os.Getenv("JWT_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid JWT_TTL %q: %w", ttl, err)
		}
		cfg.Auth.TokenTTL = parsed
	}

	return cfg, nil
}
