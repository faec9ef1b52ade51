package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken     string        `mapstructure:"TELEGRAM_TOKEN"`
	DBDSN             string        `mapstructure:"DB_DSN"`
	Environment       string        `mapstructure:"ENV"`
	RedisURL          string        `mapstructure:"REDIS_URL"`
	Timezone          string        `mapstructure:"TIMEZONE"`
	AdminTelegramIDs  string        `mapstructure:"ADMIN_TELEGRAM_IDS"`
	OpsAddr           string        `mapstructure:"OPS_ADDR"`
	GenerationHour    int           `mapstructure:"GENERATION_HOUR"`
	GenerationLockTTL time.Duration `mapstructure:"GENERATION_LOCK_TTL"`
	MigrateOnStart    bool          `mapstructure:"MIGRATE_ON_START"`

	admins   map[int64]struct{}
	location *time.Location
}

var keys = []string{
	"TELEGRAM_TOKEN",
	"DB_DSN",
	"ENV",
	"REDIS_URL",
	"TIMEZONE",
	"ADMIN_TELEGRAM_IDS",
	"OPS_ADDR",
	"GENERATION_HOUR",
	"GENERATION_LOCK_TTL",
	"MIGRATE_ON_START",
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "development")
	v.SetDefault("TIMEZONE", "UTC")
	v.SetDefault("OPS_ADDR", ":9090")
	v.SetDefault("GENERATION_HOUR", 3)
	v.SetDefault("GENERATION_LOCK_TTL", "10m")
	v.SetDefault("MIGRATE_ON_START", true)

	// без BindEnv Unmarshal не видит переменные без дефолта
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Printf("Config loaded\n")

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}

	if c.GenerationHour < 0 || c.GenerationHour > 23 {
		return fmt.Errorf("GENERATION_HOUR must be between 0 and 23, got %d", c.GenerationHour)
	}

	if c.GenerationLockTTL <= 0 {
		return fmt.Errorf("GENERATION_LOCK_TTL must be positive")
	}

	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	admins, err := parseIDs(c.AdminTelegramIDs)
	if err != nil {
		return fmt.Errorf("invalid ADMIN_TELEGRAM_IDS: %w", err)
	}
	c.admins = admins

	return nil
}

func parseIDs(raw string) (map[int64]struct{}, error) {
	ids := make(map[int64]struct{})
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// Location часовой пояс, в котором считаются календарные дни
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

// IsAdmin проверяет Telegram ID по списку администраторов
func (c *Config) IsAdmin(telegramID int64) bool {
	_, ok := c.admins[telegramID]
	return ok
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
