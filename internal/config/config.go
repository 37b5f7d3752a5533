// Package config loads leadlens settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSiteCheckTimeout  = 5 * time.Second
	defaultSiteCheckMaxBytes = 2 * 1024 * 1024
	defaultWorkers           = 5
	defaultMinAggregateScore = 10
)

// Config holds every runtime setting. Zero values are never used directly;
// Load fills defaults.
type Config struct {
	SiteCheckEnabled  bool
	SiteCheckTimeout  time.Duration
	SiteCheckMaxBytes int64
	SiteCheckUA       string
	SiteCheckRate     float64
	SiteCheckDNS      bool
	DNSServers        []string

	Workers           int
	DataDir           string
	OutputFile        string
	MinAggregateScore int

	StoreEnabled bool
	DBHost       string
	DBUser       string
	DBPass       string
	DBName       string

	LogLevel       string
	LogDevelopment bool
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() (Config, error) {
	siteCheck, err := parseBoolEnv("SITE_CHECK_ENABLED", true)
	if err != nil {
		return Config{}, err
	}
	dnsCheck, err := parseBoolEnv("SITE_CHECK_DNS", false)
	if err != nil {
		return Config{}, err
	}
	store, err := parseBoolEnv("STORE_ENABLED", false)
	if err != nil {
		return Config{}, err
	}
	devLog, err := parseBoolEnv("LOG_DEVELOPMENT", false)
	if err != nil {
		return Config{}, err
	}
	rate, err := parseFloatEnv("SITE_CHECK_RATE_PER_SEC", 0)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		SiteCheckEnabled:  siteCheck,
		SiteCheckTimeout:  parseDurationEnv("SITE_CHECK_TIMEOUT_MS", int(defaultSiteCheckTimeout/time.Millisecond)),
		SiteCheckMaxBytes: int64(parseIntEnv("SITE_CHECK_MAX_BYTES", defaultSiteCheckMaxBytes)),
		SiteCheckUA:       valueOrDefault(os.Getenv("SITE_CHECK_USER_AGENT"), "Mozilla/5.0"),
		SiteCheckRate:     rate,
		SiteCheckDNS:      dnsCheck,
		DNSServers:        splitList(valueOrDefault(os.Getenv("DNS_SERVERS"), "8.8.8.8:53,1.1.1.1:53")),

		Workers:           parseIntEnv("WORKERS", defaultWorkers),
		DataDir:           valueOrDefault(os.Getenv("DATA_DIR"), "data"),
		OutputFile:        strings.TrimSpace(os.Getenv("OUTPUT_FILE")),
		MinAggregateScore: parseLimitEnv("MIN_AGGREGATE_SCORE", defaultMinAggregateScore),

		StoreEnabled: store,
		DBHost:       valueOrDefault(os.Getenv("DB_HOST"), "127.0.0.1:3306"),
		DBUser:       valueOrDefault(os.Getenv("DB_USER"), "leadlens"),
		DBPass:       os.Getenv("DB_PASSWORD"),
		DBName:       valueOrDefault(os.Getenv("DB_NAME"), "leadlens"),

		LogLevel:       valueOrDefault(os.Getenv("LOG_LEVEL"), "info"),
		LogDevelopment: devLog,
	}
	return cfg, nil
}

// DSN returns the MySQL data source name.
func (c Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4&loc=Local",
		c.DBUser, c.DBPass, c.DBHost, c.DBName,
	)
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return strings.TrimSpace(value)
}

func parseBoolEnv(key string, fallback bool) (bool, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return b, nil
}

func parseFloatEnv(key string, fallback float64) (float64, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return 0, fmt.Errorf("invalid %s value %q", key, value)
	}
	return f, nil
}

func parseDurationEnv(key string, defaultMs int) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return time.Duration(defaultMs) * time.Millisecond
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms <= 0 {
		return time.Duration(defaultMs) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

func parseIntEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// parseLimitEnv is parseIntEnv that also accepts zero.
func parseLimitEnv(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
