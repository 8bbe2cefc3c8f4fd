/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// Calendar source selection.
type CalendarSource string

const (
	CalendarSourceYAML     CalendarSource = "yaml"
	CalendarSourceDatabase CalendarSource = "database"
)

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	HTTPBind    string
	HTTPPort    int

	// Calendar provider configuration
	CalendarSource          CalendarSource
	CalendarPath            string        // YAML source file (calendar source "yaml")
	CalendarRefreshInterval time.Duration // 0 disables the background refresh
	DBBackend               DatabaseBackend
	DBDSN                   string

	// Resolution engine tuning
	MaxResults  int
	HorizonDays int

	// Redis calendar cache
	CacheEnabled  bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Tracing configuration
	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("HUGINN_ENV", "development"),
		HTTPBind:    getEnv("HUGINN_HTTP_BIND", "0.0.0.0"),
		HTTPPort:    getEnvInt("HUGINN_HTTP_PORT", 8080),

		CalendarSource:          CalendarSource(getEnv("HUGINN_CALENDAR_SOURCE", string(CalendarSourceYAML))),
		CalendarPath:            getEnv("HUGINN_CALENDAR_PATH", "./configs/calendars.yaml"),
		CalendarRefreshInterval: time.Duration(getEnvInt("HUGINN_CALENDAR_REFRESH_MINUTES", 0)) * time.Minute,
		DBBackend:               DatabaseBackend(getEnv("HUGINN_DB_BACKEND", string(DatabaseSQLite))),
		DBDSN:                   getEnv("HUGINN_DB_DSN", ""),

		MaxResults:  getEnvInt("HUGINN_MAX_RESULTS", 5),
		HorizonDays: getEnvInt("HUGINN_HORIZON_DAYS", 90),

		CacheEnabled:  getEnvBool("HUGINN_CACHE_ENABLED", false),
		RedisAddr:     getEnv("HUGINN_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("HUGINN_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("HUGINN_REDIS_DB", 0),

		TracingEnabled:    getEnvBool("HUGINN_TRACING_ENABLED", false),
		OTLPEndpoint:      getEnv("HUGINN_OTLP_ENDPOINT", "localhost:4317"),
		TracingSampleRate: getEnvFloat("HUGINN_TRACING_SAMPLE_RATE", 1.0),
	}

	switch cfg.CalendarSource {
	case CalendarSourceYAML:
		if cfg.CalendarPath == "" {
			return nil, fmt.Errorf("HUGINN_CALENDAR_PATH must be provided for the yaml calendar source")
		}
	case CalendarSourceDatabase:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("HUGINN_DB_DSN must be provided for the database calendar source")
		}
		if cfg.DBBackend != DatabasePostgres && cfg.DBBackend != DatabaseMySQL && cfg.DBBackend != DatabaseSQLite {
			return nil, fmt.Errorf("unsupported database backend %q", cfg.DBBackend)
		}
	default:
		return nil, fmt.Errorf("unsupported calendar source %q", cfg.CalendarSource)
	}

	if cfg.MaxResults <= 0 {
		return nil, fmt.Errorf("HUGINN_MAX_RESULTS must be positive")
	}
	if cfg.HorizonDays <= 0 {
		return nil, fmt.Errorf("HUGINN_HORIZON_DAYS must be positive")
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if val := os.Getenv(key); val != "" {
		val = strings.ToLower(strings.TrimSpace(val))
		if val == "true" || val == "1" || val == "yes" {
			return true
		}
		if val == "false" || val == "0" || val == "no" {
			return false
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return def
}
