/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package calendar

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// yamlStore is the on-disk shape of a single store entry.
type yamlStore struct {
	StoreCode    string                 `yaml:"store_code"`
	Timezone     string                 `yaml:"timezone"`
	CutoffTime   string                 `yaml:"cutoff_time"`
	LeadTimeDays int                    `yaml:"lead_time_days"`
	Days         []string               `yaml:"operating_days"`
	Windows      [][2]string            `yaml:"time_windows"`
	Blackouts    []string               `yaml:"blackout_dates"`
	Special      map[string][][2]string `yaml:"special_schedules"`
}

type yamlFile struct {
	Stores []yamlStore `yaml:"stores"`
}

// YAMLProvider serves calendars from a YAML file. The parsed store map is
// held behind an atomic pointer and swapped whole on refresh, so concurrent
// lookups always see a complete snapshot.
type YAMLProvider struct {
	path     string
	interval time.Duration
	logger   zerolog.Logger

	stores atomic.Pointer[map[string]*StoreCalendar]
}

// NewYAMLProvider loads the file once and returns a provider that can be
// refreshed on a fixed interval via Run.
func NewYAMLProvider(path string, interval time.Duration, logger zerolog.Logger) (*YAMLProvider, error) {
	p := &YAMLProvider{
		path:     path,
		interval: interval,
		logger:   logger.With().Str("component", "calendar_yaml").Logger(),
	}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Lookup implements Provider.
func (p *YAMLProvider) Lookup(_ context.Context, storeCode string) (*StoreCalendar, error) {
	stores := *p.stores.Load()
	cal, ok := stores[storeCode]
	if !ok {
		return nil, fmt.Errorf("store %q: %w", storeCode, ErrUnknownStore)
	}
	return cal, nil
}

// Reload re-reads the backing file and atomically swaps in the new snapshot.
// On parse failure the previous snapshot stays in place.
func (p *YAMLProvider) Reload() error {
	stores, err := LoadCalendarFile(p.path)
	if err != nil {
		return err
	}
	p.stores.Store(&stores)
	p.logger.Info().Str("path", p.path).Int("stores", len(stores)).Msg("calendar snapshot loaded")
	return nil
}

// Run refreshes the snapshot on the configured interval until ctx is done.
// A zero interval disables refreshing.
func (p *YAMLProvider) Run(ctx context.Context) error {
	if p.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Reload(); err != nil {
				p.logger.Error().Err(err).Msg("calendar refresh failed, keeping previous snapshot")
			}
		}
	}
}

// LoadCalendarFile parses and validates a calendar YAML file.
func LoadCalendarFile(path string) (map[string]*StoreCalendar, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calendar file: %w", err)
	}
	var file yamlFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse calendar file: %w", err)
	}

	stores := make(map[string]*StoreCalendar, len(file.Stores))
	for _, entry := range file.Stores {
		cal, err := entry.toCalendar()
		if err != nil {
			return nil, err
		}
		if _, exists := stores[cal.StoreCode]; exists {
			return nil, fmt.Errorf("duplicate store code %q", cal.StoreCode)
		}
		stores[cal.StoreCode] = cal
	}
	return stores, nil
}

func (y yamlStore) toCalendar() (*StoreCalendar, error) {
	cutoff, err := ParseTimeOfDay(y.CutoffTime)
	if err != nil {
		return nil, fmt.Errorf("store %s: cutoff_time: %w", y.StoreCode, err)
	}

	days := make(map[time.Weekday]bool, len(y.Days))
	for _, name := range y.Days {
		day, err := parseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", y.StoreCode, err)
		}
		days[day] = true
	}

	windows, err := parseWindows(y.Windows)
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", y.StoreCode, err)
	}

	blackouts := make(map[string]bool, len(y.Blackouts))
	for _, date := range y.Blackouts {
		blackouts[date] = true
	}

	var special map[string][]Window
	if len(y.Special) > 0 {
		special = make(map[string][]Window, len(y.Special))
		for date, raw := range y.Special {
			ws, err := parseWindows(raw)
			if err != nil {
				return nil, fmt.Errorf("store %s: special schedule %s: %w", y.StoreCode, date, err)
			}
			special[date] = ws
		}
	}

	cal := &StoreCalendar{
		StoreCode:      y.StoreCode,
		Timezone:       y.Timezone,
		CutoffTime:     cutoff,
		LeadTimeDays:   y.LeadTimeDays,
		OperatingDays:  days,
		Windows:        windows,
		Blackouts:      blackouts,
		SpecialWindows: special,
	}
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	return cal, nil
}

func parseWindows(raw [][2]string) ([]Window, error) {
	windows := make([]Window, 0, len(raw))
	for _, pair := range raw {
		start, err := ParseTimeOfDay(pair[0])
		if err != nil {
			return nil, err
		}
		end, err := ParseTimeOfDay(pair[1])
		if err != nil {
			return nil, err
		}
		windows = append(windows, Window{Start: start, End: end})
	}
	return windows, nil
}

func parseWeekday(name string) (time.Weekday, error) {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.EqualFold(name, day.String()) {
			return day, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", name)
}
