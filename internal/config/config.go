package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Formas de respuesta de GET /api/search
const (
	SearchModeSuggestions = "suggestions"
	SearchModeProducts    = "products"
)

// Backends de almacenamiento
const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"4000"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	StoreBackend    string `env:"STORE_BACKEND" envDefault:"mongo"`
	MongoURI        string `env:"MONGO_URI"`
	MongoDB         string `env:"MONGO_DB" envDefault:"e_com_db"`
	MongoCollection string `env:"MONGO_COLLECTION" envDefault:"products"`

	SearchMode        string `env:"SEARCH_MODE" envDefault:"suggestions"`
	SearchRejectEmpty bool   `env:"SEARCH_REJECT_EMPTY" envDefault:"true"`

	UploadDir      string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`

	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// LoadConfig lee .env (solo si existe, en desarrollo local) y luego las
// variables de entorno
func LoadConfig(logger *slog.Logger) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			logger.Warn("error loading .env file", slog.String("error", err.Error()))
		} else {
			logger.Info(".env file loaded")
		}
	}

	return Parse()
}

// Parse construye la configuración a partir del entorno actual
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	switch c.StoreBackend {
	case StoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_BACKEND=%s", StoreMongo)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("invalid STORE_BACKEND: %q", c.StoreBackend)
	}
	if c.SearchMode != SearchModeSuggestions && c.SearchMode != SearchModeProducts {
		return fmt.Errorf("invalid SEARCH_MODE: %q", c.SearchMode)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("invalid UPLOAD_MAX_BYTES: %d", c.UploadMaxBytes)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("invalid CACHE_TTL: %s", c.CacheTTL)
	}
	return nil
}

// Addr devuelve la dirección de escucha del servidor HTTP
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
