// Package config reads process settings from the environment, optionally
// preloaded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const devJWTSecret = "dev-insecure-secret-change-me"

// Common settings shared by every binary.
type Common struct {
	LogLevel         slog.Level
	AWSRegion        string
	EndpointOverride string
	JWTSecret        string
}

type API struct {
	Common
	RunLocal         bool
	Port             string
	CustomersTable   string
	OrdersTable      string
	IdempotencyTable string
	EventsQueueURL   string
	MetricsNamespace string
	IdempotencyTTL   time.Duration
}

type Desk struct {
	Common
	Port                string
	BackendURL          string
	SessionFile         string
	BackendTimeout      time.Duration
	OrderBannerDelay    time.Duration
	CustomerBannerDelay time.Duration
	DefaultPassword     string
}

type Worker struct {
	Common
	CustomersTable   string
	IdempotencyTable string
}

// LoadDotEnv loads .env from the working directory if present. Variables
// already set in the environment win.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("could not load .env file", "error", err)
	}
}

// SetupLogger installs a text slog handler on stdout at level.
func SetupLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func loadCommon() Common {
	c := Common{
		LogLevel:         parseLevel(getEnv("LOG_LEVEL", "info")),
		AWSRegion:        getEnv("AWS_REGION", "us-east-1"),
		EndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		JWTSecret:        getEnv("JWT_SECRET", ""),
	}
	if c.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, using the development secret")
		c.JWTSecret = devJWTSecret
	}
	return c
}

func LoadAPI() (*API, error) {
	cfg := &API{
		Common:           loadCommon(),
		RunLocal:         getBool("RUN_LOCAL", false),
		Port:             getEnv("PORT", "8080"),
		CustomersTable:   getEnv("CUSTOMERS_TABLE", ""),
		OrdersTable:      getEnv("ORDERS_TABLE", ""),
		IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", ""),
		EventsQueueURL:   getEnv("EVENTS_QUEUE_URL", ""),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", ""),
		IdempotencyTTL:   getDuration("IDEMPOTENCY_TTL", 48*time.Hour),
	}
	if err := requireSet(map[string]string{
		"CUSTOMERS_TABLE":   cfg.CustomersTable,
		"ORDERS_TABLE":      cfg.OrdersTable,
		"IDEMPOTENCY_TABLE": cfg.IdempotencyTable,
	}); err != nil {
		return nil, err
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("invalid PORT, falling back to default", "PORT", cfg.Port)
		cfg.Port = "8080"
	}
	return cfg, nil
}

func LoadDesk() (*Desk, error) {
	cfg := &Desk{
		Common:              loadCommon(),
		Port:                getEnv("DESK_PORT", "8090"),
		BackendURL:          getEnv("BACKEND_URL", "http://localhost:8080"),
		SessionFile:         getEnv("SESSION_FILE", "session.json"),
		BackendTimeout:      getDuration("BACKEND_TIMEOUT", 10*time.Second),
		OrderBannerDelay:    getDuration("ORDER_BANNER_DELAY", 5*time.Second),
		CustomerBannerDelay: getDuration("CUSTOMER_BANNER_DELAY", 3*time.Second),
		DefaultPassword:     getEnv("DEFAULT_CUSTOMER_PASSWORD", "changeme123"),
	}
	if _, err := strconv.Atoi(cfg.Port); err != nil {
		slog.Error("invalid DESK_PORT, falling back to default", "DESK_PORT", cfg.Port)
		cfg.Port = "8090"
	}
	return cfg, nil
}

func LoadWorker() (*Worker, error) {
	cfg := &Worker{
		Common:           loadCommon(),
		CustomersTable:   getEnv("CUSTOMERS_TABLE", ""),
		IdempotencyTable: getEnv("IDEMPOTENCY_TABLE", ""),
	}
	if err := requireSet(map[string]string{
		"CUSTOMERS_TABLE":   cfg.CustomersTable,
		"IDEMPOTENCY_TABLE": cfg.IdempotencyTable,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MissingError lists required variables that are unset.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Keys, ", ")
}

func requireSet(vars map[string]string) error {
	var missing []string
	for _, k := range []string{"CUSTOMERS_TABLE", "ORDERS_TABLE", "IDEMPOTENCY_TABLE"} {
		if v, ok := vars[k]; ok && v == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		slog.Warn("invalid boolean, using default", "key", key, "default", defaultValue)
		return defaultValue
	}
	return v
}

// getDuration accepts Go durations ("5s") or plain milliseconds ("5000").
func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", raw, "default", defaultValue)
		return defaultValue
	}
	return d
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
