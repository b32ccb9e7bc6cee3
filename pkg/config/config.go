package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Host string
	Port int

	Log      LogConfig
	Postgres PostgresConfig

	ScheduleCache ScheduleCacheConfig
	IDCache       IDCacheConfig
	SearchCache   SearchCacheConfig

	ShiftConfigPath  string
	CooldownDuration time.Duration

	AppScheduleBaseURL string `validate:"required"`

	Redis RedisConfig

	Telegram TelegramConfig
	VK       VKConfig
}

type LogConfig struct {
	Level  string
	Format string
}

type PostgresConfig struct {
	Host         string
	Port         int
	User         string
	Password     string `validate:"required"`
	DB           string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// ScheduleCacheConfig tunes the two-tier week cache.
type ScheduleCacheConfig struct {
	Capacity int
	MaxHits  uint32
	Lifetime time.Duration
	Dir      string
}

// IDCacheConfig tunes the name-to-id cache.
type IDCacheConfig struct {
	Capacity int
	MaxHits  uint32
	Lifetime time.Duration
}

// SearchCacheConfig tunes the search results cache.
type SearchCacheConfig struct {
	Capacity int
	Lifetime time.Duration
}

// RedisConfig selects the shared cold cache tier. An empty Addr keeps the
// filesystem tier.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type TelegramConfig struct {
	AccessToken string `validate:"required"`
	WebhookURL  string `validate:"required"`
	Secret      string `validate:"required"`
}

type VKConfig struct {
	AccessToken      string `validate:"required"`
	ConfirmationCode string `validate:"required"`
	Secret           string
	GroupID          int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	// Deployments configured purely through the environment have no .env
	// file; only a present-but-broken file is fatal.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Host = v.GetString("HOST")
	if cfg.Host == "" {
		// Bind loopback only during local development.
		if cfg.Env == EnvProduction {
			cfg.Host = "0.0.0.0"
		} else {
			cfg.Host = "127.0.0.1"
		}
	}
	cfg.Port = v.GetInt("PORT")

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Postgres = PostgresConfig{
		Host:         v.GetString("POSTGRES_HOST"),
		Port:         v.GetInt("POSTGRES_PORT"),
		User:         v.GetString("POSTGRES_USER"),
		Password:     v.GetString("POSTGRES_PASSWORD"),
		DB:           v.GetString("POSTGRES_DB"),
		SSLMode:      v.GetString("POSTGRES_SSL_MODE"),
		MaxOpenConns: v.GetInt("POSTGRES_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("POSTGRES_MAX_IDLE_CONNS"),
	}
	if cfg.Postgres.DB == "" {
		cfg.Postgres.DB = cfg.Postgres.User
	}

	cfg.ScheduleCache = ScheduleCacheConfig{
		Capacity: v.GetInt("SCHEDULE_CACHE_CAPACITY"),
		MaxHits:  uint32(v.GetInt("SCHEDULE_CACHE_MAX_HITS")),
		Lifetime: time.Duration(v.GetInt("SCHEDULE_CACHE_LIFETIME_HOURS")) * time.Hour,
		Dir:      v.GetString("SCHEDULE_CACHE_DIR"),
	}

	cfg.IDCache = IDCacheConfig{
		Capacity: v.GetInt("SCHEDULE_ID_CACHE_CAPACITY"),
		MaxHits:  uint32(v.GetInt("SCHEDULE_ID_CACHE_MAX_HITS")),
		Lifetime: time.Duration(v.GetInt("SCHEDULE_ID_CACHE_LIFETIME_HOURS")) * time.Hour,
	}

	cfg.SearchCache = SearchCacheConfig{
		Capacity: v.GetInt("SCHEDULE_SEARCH_CACHE_CAPACITY"),
		Lifetime: time.Duration(v.GetInt("SCHEDULE_SEARCH_CACHE_LIFETIME_MINUTES")) * time.Minute,
	}

	cfg.ShiftConfigPath = v.GetString("SCHEDULE_SHIFT_CONFIG_PATH")
	cfg.CooldownDuration = time.Duration(v.GetInt("SCHEDULE_COOLDOWN_DURATION_MIN")) * time.Minute

	cfg.AppScheduleBaseURL = v.GetString("APP_SCHEDULE_BASE_URL")

	cfg.Redis = RedisConfig{
		Addr:     v.GetString("REDIS_ADDR"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Telegram = TelegramConfig{
		AccessToken: v.GetString("TELEGRAM_BOT_ACCESS_TOKEN"),
		WebhookURL:  v.GetString("TELEGRAM_BOT_WEBHOOK_URL"),
		Secret:      v.GetString("TELEGRAM_BOT_SECRET"),
	}

	cfg.VK = VKConfig{
		AccessToken:      v.GetString("VK_BOT_ACCESS_TOKEN"),
		ConfirmationCode: v.GetString("VK_BOT_CONFIRMATION_CODE"),
		Secret:           v.GetString("VK_BOT_SECRET"),
		GroupID:          v.GetInt64("VK_BOT_GROUP_ID"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration, %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("HOST", "")
	v.SetDefault("PORT", 8080)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("POSTGRES_HOST", "postgres")
	v.SetDefault("POSTGRES_PORT", 5432)
	v.SetDefault("POSTGRES_USER", "postgres")
	v.SetDefault("POSTGRES_DB", "")
	v.SetDefault("POSTGRES_SSL_MODE", "disable")
	v.SetDefault("POSTGRES_MAX_OPEN_CONNS", 10)
	v.SetDefault("POSTGRES_MAX_IDLE_CONNS", 5)

	v.SetDefault("SCHEDULE_CACHE_CAPACITY", 500)
	v.SetDefault("SCHEDULE_CACHE_MAX_HITS", 10)
	v.SetDefault("SCHEDULE_CACHE_LIFETIME_HOURS", 6)
	v.SetDefault("SCHEDULE_CACHE_DIR", "./cache")

	v.SetDefault("SCHEDULE_ID_CACHE_CAPACITY", 3000)
	v.SetDefault("SCHEDULE_ID_CACHE_MAX_HITS", 10)
	v.SetDefault("SCHEDULE_ID_CACHE_LIFETIME_HOURS", 12)

	v.SetDefault("SCHEDULE_SEARCH_CACHE_CAPACITY", 3000)
	v.SetDefault("SCHEDULE_SEARCH_CACHE_LIFETIME_MINUTES", 5)

	v.SetDefault("SCHEDULE_SHIFT_CONFIG_PATH", "./schedule_shift.toml")
	v.SetDefault("SCHEDULE_COOLDOWN_DURATION_MIN", 1)

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}
