package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type DBConfig struct {
	Url string `envconfig:"URL"`
}

type RedisConfig struct {
	URL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
}

type LogConfig struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"text"`
	Prefix     string `envconfig:"PREFIX" default:"pos"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"15:04:05"`
}

type OfferCacheConfig struct {
	// Backend selects where offer candidate sets are cached: "memory" or
	// "redis".
	Backend string `envconfig:"BACKEND" default:"memory"`
	Prefix  string `envconfig:"PREFIX" default:"pos:offers:"`
}

type AppConfig struct {
	Env        string           `envconfig:"APP_ENV" default:"development"`
	Scheme     string           `envconfig:"APP_SCHEME" default:"https"`
	Host       string           `envconfig:"APP_HOST" default:"localhost"`
	Port       int              `envconfig:"APP_PORT" default:"3000"`
	DB         DBConfig         `envconfig:"DATABASE"`
	Redis      RedisConfig      `envconfig:"REDIS"`
	OfferCache OfferCacheConfig `envconfig:"OFFER_CACHE"`
	Log        LogConfig        `envconfig:"LOG"`
}

func LoadAppConfig(logger *slog.Logger, envFilePath ...string) (*AppConfig, error) {
	var err error
	if len(envFilePath) > 0 && envFilePath[0] != "" {
		err = godotenv.Load(envFilePath[0])
	} else {
		err = godotenv.Load()
	}

	if err != nil {
		logger.Warn("No .env file found or specified, using system environment variables")
	} else {
		logger.Info("Environment variables loaded from .env file")
	}
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	logger.Info("App config loaded",
		"env", cfg.Env,
		"db", cfg.DB.Url,
		"offer_cache_backend", cfg.OfferCache.Backend,
	)
	return &cfg, nil
}
