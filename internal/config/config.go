package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Config struct {
	Env             string
	LogLevel        string
	HTTPAddr        string
	StorageBackend  string // memory | postgres
	PostgresDSN     string
	DataDir         string // local backup store location
	LocalQuotaBytes int64  // 0 means unlimited
	AuthServiceURL  string
	DevToken        string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:             getEnv("APP_ENV", "development"),
			LogLevel:        getEnv("LOG_LEVEL", "info"),
			HTTPAddr:        getEnv("HTTP_ADDR", ":8088"),
			StorageBackend:  getEnv("STORAGE_BACKEND", "memory"),
			PostgresDSN:     getEnv("POSTGRES_DSN", ""),
			DataDir:         getEnv("DATA_DIR", "data"),
			LocalQuotaBytes: getEnvInt64("LOCAL_QUOTA_BYTES", 5<<20),
			AuthServiceURL:  getEnv("AUTH_SERVICE_URL", ""),
			DevToken:        getEnv("DEV_TOKEN", "MOCK-TOKEN"),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.StorageBackend == "postgres" && c.PostgresDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.StorageBackend != "postgres" && c.StorageBackend != "memory" {
		return errors.New("STORAGE_BACKEND must be one of: memory, postgres")
	}
	if c.DataDir == "" {
		return errors.New("DATA_DIR must not be empty")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Env != "development" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func loadDotEnv() error {
	data, err := os.ReadFile(".env")
	if err != nil {
		return nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if ok {
			os.Setenv(strings.TrimSpace(k), strings.TrimSpace(v))
		}
	}
	return nil
}
