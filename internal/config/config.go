// Package config предоставляет структуры и функции для загрузки конфигурации трекера.
//
// Источники по возрастанию приоритета: значения по умолчанию, файл .env,
// YAML-файл (--config или CONFIG_PATH), переменные окружения, флаги командной строки.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/magabrotheeeer/subscription-tracker/internal/lib/password"
)

// Окружения, от которых зависит формат логов.
const (
	EnvLocal = "local"
	EnvProd  = "prod"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env         string                        `yaml:"env" env:"TRACKER_ENV" env-default:"local"`
	StoragePath string                        `yaml:"storage_path" env:"TRACKER_STORAGE_PATH" env-default:"subscriptions.db"`
	Log         Log                           `yaml:"log"`
	Auth        Auth                          `yaml:"auth"`
	Ledger      Ledger                        `yaml:"ledger"`
	Report      Report                        `yaml:"report"`
	Metrics     Metrics                       `yaml:"metrics"`
	Catalog     map[string]map[string]float64 `yaml:"catalog"` // сервис -> тариф -> цена
}

// Log настройки логгера.
type Log struct {
	Level string `yaml:"level" env:"TRACKER_LOG_LEVEL" env-default:"warn"`
	Path  string `yaml:"path" env:"TRACKER_LOG_PATH"` // если пусто, пишем в stderr
}

// Auth настройки хранения паролей.
type Auth struct {
	PasswordScheme string `yaml:"password_scheme" env:"TRACKER_PASSWORD_SCHEME" env-default:"plain"`
}

// Ledger настройки журнала подписок.
type Ledger struct {
	MaxStartAgeDays int `yaml:"max_start_age_days" env:"TRACKER_MAX_START_AGE_DAYS" env-default:"270"`
}

// Report настройки отчёта о выручке.
type Report struct {
	Plan string `yaml:"plan" env:"TRACKER_REPORT_PLAN" env-default:"Premium"`
}

// Metrics выгрузка счётчиков в формате textfile-коллектора node_exporter.
type Metrics struct {
	TextfilePath string `yaml:"textfile_path" env:"TRACKER_METRICS_TEXTFILE"`
}

// Load читает конфигурацию. args: аргументы командной строки без имени программы.
func Load(args []string) (*Config, error) {
	const op = "config.Load"

	flags := pflag.NewFlagSet("subscription-tracker", pflag.ContinueOnError)
	configPath := flags.String("config", "", "path to YAML config (overrides CONFIG_PATH)")
	storagePath := flags.String("storage", "", "path to the SQLite database file")
	if err := flags.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: config file %s: %w", op, path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("%s: cannot read config: %w", op, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("%s: cannot read env: %w", op, err)
	}

	if *storagePath != "" {
		cfg.StoragePath = *storagePath
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// MustLoad как Load, но завершает процесс при ошибке.
func MustLoad(args []string) *Config {
	cfg, err := Load(args)
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Validate проверяет значения, которые нельзя выразить тегами.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvProd:
	default:
		return fmt.Errorf("unknown env %q", c.Env)
	}
	if c.StoragePath == "" {
		return errors.New("storage_path is empty")
	}
	switch c.Auth.PasswordScheme {
	case password.SchemePlain, password.SchemeBcrypt:
	default:
		return fmt.Errorf("unknown password scheme %q", c.Auth.PasswordScheme)
	}
	if c.Ledger.MaxStartAgeDays <= 0 {
		return fmt.Errorf("max_start_age_days must be positive, got %d", c.Ledger.MaxStartAgeDays)
	}
	if c.Report.Plan == "" {
		return errors.New("report plan is empty")
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StoragePath: %s\n"+
			"Log:\n"+
			"  Level: %s\n"+
			"  Path: %s\n"+
			"Auth:\n"+
			"  PasswordScheme: %s\n"+
			"Ledger:\n"+
			"  MaxStartAgeDays: %d\n"+
			"Report:\n"+
			"  Plan: %s\n"+
			"Metrics:\n"+
			"  TextfilePath: %s\n"+
			"Catalog services: %d\n",
		c.Env,
		c.StoragePath,
		c.Log.Level,
		c.Log.Path,
		c.Auth.PasswordScheme,
		c.Ledger.MaxStartAgeDays,
		c.Report.Plan,
		c.Metrics.TextfilePath,
		len(c.Catalog),
	)
}
