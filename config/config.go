package config

import (
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL"    default:"info"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"     default:"localhost:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB"       default:"0"`
	CartTTL       time.Duration `envconfig:"CART_TTL"       default:"720h"` // carts idle longer than this are dropped

	CatalogServiceURL string        `envconfig:"CATALOG_SERVICE_URL" default:"http://localhost:8000"`
	CatalogTimeout    time.Duration `envconfig:"CATALOG_TIMEOUT"     default:"5s"`
	CatalogCacheTTL   time.Duration `envconfig:"CATALOG_CACHE_TTL"   default:"10m"`

	ReportUserID    int    `envconfig:"REPORT_USER_ID" default:"0"`
	ReportSessionID string `envconfig:"REPORT_SESSION_ID"`
}

var (
	config Config
	once   sync.Once
)

// Parse reads the configuration from the environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		config, err = Parse()
		if err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: Redis=%s, Catalog=%s, LogLevel=%s", config.RedisAddr, config.CatalogServiceURL, config.LogLevel)
	})
	return &config
}
