package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	BindAddr        string
	Port            string
	StorageDriver   string
	SQLitePath      string
	DatabaseURL     string
	LoginDelay      time.Duration
	LoadingDelay    time.Duration
	LoginRatePerMin int
	LogLevel        string
}

func Load() Config {
	return Config{
		BindAddr:        getEnv("BIND_ADDR", "127.0.0.1"),
		Port:            getEnv("PORT", "8080"),
		StorageDriver:   getEnv("STORAGE_DRIVER", DriverSQLite),
		SQLitePath:      getEnv("SQLITE_PATH", "data/demo.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LoginDelay:      getDuration("LOGIN_DELAY", 900*time.Millisecond),
		LoadingDelay:    getDuration("LOADING_DELAY", 650*time.Millisecond),
		LoginRatePerMin: getInt("LOGIN_RATE_PER_MIN", 30),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}
}

func (c Config) Addr() string {
	return c.BindAddr + ":" + c.Port
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.LoginDelay < 0 || c.LoadingDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if c.LoginRatePerMin <= 0 {
		return fmt.Errorf("LOGIN_RATE_PER_MIN must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getDuration accepts Go durations ("900ms") or plain milliseconds ("900").
func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func getInt(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}
