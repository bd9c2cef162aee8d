package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds sat-monitor configuration, loaded from the environment.
type Config struct {
	AppEnv   string // APP_ENV
	AppHost  string // APP_HOST
	HTTPPort string // APP_PORT or HTTP_PORT
	LogLevel string // LOG_LEVEL

	// PostgreSQL
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		Database string
		SSLMode  string
	}

	// WebSocket
	WSReadBufferSize  int
	WSWriteBufferSize int
	WSSendBuffer      int // per-subscriber outbound queue length

	// Telemetry refresh loop
	RefreshInterval time.Duration // REFRESH_INTERVAL_SECONDS, default 2
	StatsInterval   time.Duration // STATS_INTERVAL_SECONDS, default 30

	// Threat analysis (in-process analyzer; disabled swaps in a no-op)
	ThreatAnalyzerEnabled bool
}

// Load reads configuration from the environment (.env if present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	readBuf, _ := strconv.Atoi(getEnv("WS_READ_BUFFER_SIZE", "4096"))
	writeBuf, _ := strconv.Atoi(getEnv("WS_WRITE_BUFFER_SIZE", "4096"))
	sendBuf, _ := strconv.Atoi(getEnv("WS_SEND_BUFFER", "256"))
	refreshSec, _ := strconv.Atoi(getEnv("REFRESH_INTERVAL_SECONDS", "2"))
	statsSec, _ := strconv.Atoi(getEnv("STATS_INTERVAL_SECONDS", "30"))
	threats, _ := strconv.ParseBool(getEnv("THREAT_ANALYZER_ENABLED", "true"))

	if refreshSec <= 0 {
		refreshSec = 2
	}
	if statsSec <= 0 {
		statsSec = 30
	}

	cfg := &Config{
		AppEnv:                getEnv("APP_ENV", "development"),
		AppHost:               getEnv("APP_HOST", "0.0.0.0"),
		HTTPPort:              firstEnv("APP_PORT", "HTTP_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		WSReadBufferSize:      readBuf,
		WSWriteBufferSize:     writeBuf,
		WSSendBuffer:          sendBuf,
		RefreshInterval:       time.Duration(refreshSec) * time.Second,
		StatsInterval:         time.Duration(statsSec) * time.Second,
		ThreatAnalyzerEnabled: threats,
	}
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.Database = getEnv("DB_DATABASE", "sat_monitor")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	return cfg, nil
}

// Validate checks required fields and production safety.
func (c *Config) Validate() error {
	if c.DB.Host == "" {
		return errors.New("config: DB_HOST is required")
	}
	if c.DB.User == "" {
		return errors.New("config: DB_USER is required")
	}
	if c.DB.Database == "" {
		return errors.New("config: DB_DATABASE is required")
	}
	if c.AppEnv == "production" && c.DB.Password == "" {
		return errors.New("config: in production DB_PASSWORD is required")
	}
	return nil
}

// DSN returns the PostgreSQL connection string for GORM.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Database, c.DB.SSLMode)
}

// DatabaseURL returns the postgres URL for golang-migrate.
func (c *Config) DatabaseURL() string {
	pass := url.QueryEscape(c.DB.Password)
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, pass, c.DB.Host, c.DB.Port, c.DB.Database, c.DB.SSLMode)
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return c.AppHost + ":" + c.HTTPPort
}

func firstEnv(keysAndDef ...string) string {
	if len(keysAndDef) == 0 {
		return ""
	}
	def := keysAndDef[len(keysAndDef)-1]
	for _, k := range keysAndDef[:len(keysAndDef)-1] {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
