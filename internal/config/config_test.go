package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.CalendarSource != CalendarSourceYAML {
		t.Errorf("CalendarSource = %q", cfg.CalendarSource)
	}
	if cfg.CalendarPath != "./configs/calendars.yaml" {
		t.Errorf("CalendarPath = %q", cfg.CalendarPath)
	}
	if cfg.MaxResults != 5 {
		t.Errorf("MaxResults = %d", cfg.MaxResults)
	}
	if cfg.HorizonDays != 90 {
		t.Errorf("HorizonDays = %d", cfg.HorizonDays)
	}
	if cfg.CacheEnabled {
		t.Error("CacheEnabled should default to false")
	}
	if cfg.TracingEnabled {
		t.Error("TracingEnabled should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HUGINN_ENV", "production")
	t.Setenv("HUGINN_HTTP_PORT", "9090")
	t.Setenv("HUGINN_CALENDAR_SOURCE", "database")
	t.Setenv("HUGINN_DB_BACKEND", "postgres")
	t.Setenv("HUGINN_DB_DSN", "host=localhost user=huginn dbname=huginn")
	t.Setenv("HUGINN_CALENDAR_REFRESH_MINUTES", "15")
	t.Setenv("HUGINN_MAX_RESULTS", "3")
	t.Setenv("HUGINN_CACHE_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d", cfg.HTTPPort)
	}
	if cfg.CalendarSource != CalendarSourceDatabase {
		t.Errorf("CalendarSource = %q", cfg.CalendarSource)
	}
	if cfg.DBBackend != DatabasePostgres {
		t.Errorf("DBBackend = %q", cfg.DBBackend)
	}
	if cfg.CalendarRefreshInterval != 15*time.Minute {
		t.Errorf("CalendarRefreshInterval = %v", cfg.CalendarRefreshInterval)
	}
	if cfg.MaxResults != 3 {
		t.Errorf("MaxResults = %d", cfg.MaxResults)
	}
	if !cfg.CacheEnabled {
		t.Error("CacheEnabled should be true")
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown calendar source",
			env:  map[string]string{"HUGINN_CALENDAR_SOURCE": "carrier-pigeon"},
		},
		{
			name: "database source without dsn",
			env:  map[string]string{"HUGINN_CALENDAR_SOURCE": "database"},
		},
		{
			name: "unsupported database backend",
			env: map[string]string{
				"HUGINN_CALENDAR_SOURCE": "database",
				"HUGINN_DB_DSN":          "file:test.db",
				"HUGINN_DB_BACKEND":      "oracle",
			},
		},
		{
			name: "non-positive max results",
			env:  map[string]string{"HUGINN_MAX_RESULTS": "0"},
		},
		{
			name: "non-positive horizon",
			env:  map[string]string{"HUGINN_HORIZON_DAYS": "-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
