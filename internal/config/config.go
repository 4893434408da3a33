package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultEnvFiles - файлы, которые подгружаются перед чтением окружения, если существуют
var DefaultEnvFiles = []string{".env", ".env.local"}

// Config содержит настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Hierarchy HierarchyConfig
	Audit     AuditConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Host            string `env:"DB_HOST" envDefault:"localhost"`
	Port            string `env:"DB_PORT" envDefault:"5432"`
	User            string `env:"DB_USER" envDefault:"postgres"`
	Password        string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName          string `env:"DB_NAME" envDefault:"orghierarchy"`
	SSLMode         string `env:"DB_SSLMODE" envDefault:"disable"`
	ConnectAttempts int    `env:"DB_CONNECT_ATTEMPTS" envDefault:"30"`
}

// HierarchyConfig - настройки агрегатора иерархии
type HierarchyConfig struct {
	FetchTimeout    time.Duration `env:"HIERARCHY_FETCH_TIMEOUT" envDefault:"5s"`
	CapabilityCheck time.Duration `env:"CAPABILITY_RECHECK_INTERVAL" envDefault:"5m"`
}

// AuditConfig - ограничения выборки журнала аудита
type AuditConfig struct {
	DefaultLimit int `env:"AUDIT_DEFAULT_LIMIT" envDefault:"100"`
	MaxLimit     int `env:"AUDIT_MAX_LIMIT" envDefault:"1000"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Load подгружает существующие env-файлы и затем читает конфигурацию
// из переменных окружения
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Hierarchy.FetchTimeout <= 0 {
		return fmt.Errorf("HIERARCHY_FETCH_TIMEOUT must be positive, got %s", c.Hierarchy.FetchTimeout)
	}
	if c.Audit.DefaultLimit <= 0 || c.Audit.MaxLimit <= 0 {
		return fmt.Errorf("audit limits must be positive, got default=%d max=%d", c.Audit.DefaultLimit, c.Audit.MaxLimit)
	}
	if c.Audit.DefaultLimit > c.Audit.MaxLimit {
		return fmt.Errorf("AUDIT_DEFAULT_LIMIT (%d) exceeds AUDIT_MAX_LIMIT (%d)", c.Audit.DefaultLimit, c.Audit.MaxLimit)
	}
	if c.Database.ConnectAttempts <= 0 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be positive, got %d", c.Database.ConnectAttempts)
	}
	return nil
}

// loadEnvFiles пропускает отсутствующие файлы; переменные, уже заданные
// в окружении, не перезаписываются
func loadEnvFiles(files []string) error {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}
