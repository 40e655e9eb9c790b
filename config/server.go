package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in PAYROLL_DB_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Server holds process settings read from the environment.
type Server struct {
	Addr        string
	DBDriver    string
	DBDSN       string
	RulesFile   string
	LogLevel    string
	CORSOrigins []string
	// ShutdownSeconds bounds how long in-flight requests may run after SIGTERM.
	ShutdownSeconds int
}

// LoadServer reads .env (when present) and then the process environment.
// Variables already set in the environment win over .env entries.
func LoadServer(envFiles ...string) (Server, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Server{
		Addr:            getEnv("PAYROLL_ADDR", ":8080"),
		DBDriver:        strings.ToLower(getEnv("PAYROLL_DB_DRIVER", DriverSQLite)),
		DBDSN:           getEnv("PAYROLL_DB_DSN", "payroll.db"),
		RulesFile:       getEnv("PAYROLL_RULES_FILE", ""),
		LogLevel:        getEnv("PAYROLL_LOG_LEVEL", "info"),
		CORSOrigins:     splitList(getEnv("PAYROLL_CORS_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		ShutdownSeconds: getEnvInt("PAYROLL_SHUTDOWN_SECONDS", 30),
	}
	return cfg, cfg.Validate()
}

func (c Server) Validate() error {
	switch c.DBDriver {
	case DriverMemory, DriverSQLite:
	case DriverPostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("PAYROLL_DB_DSN is required for %s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported PAYROLL_DB_DRIVER %q", c.DBDriver)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// SlogLevel returns the configured level, defaulting to info.
func (c Server) SlogLevel() slog.Level {
	lvl, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// ParseLogLevel accepts debug, info, warn and error.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid PAYROLL_LOG_LEVEL %q", s)
	}
	return lvl, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
