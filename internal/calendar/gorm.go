/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package calendar

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_delivery/internal/models"
)

// GormProvider serves calendars from the database.
type GormProvider struct {
	db     *gorm.DB
	logger zerolog.Logger
}

// NewGormProvider creates a database-backed calendar provider.
func NewGormProvider(db *gorm.DB, logger zerolog.Logger) *GormProvider {
	return &GormProvider{
		db:     db,
		logger: logger.With().Str("component", "calendar_db").Logger(),
	}
}

// Lookup implements Provider.
func (p *GormProvider) Lookup(ctx context.Context, storeCode string) (*StoreCalendar, error) {
	var store models.Store
	err := p.db.WithContext(ctx).
		Preload("Windows", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Blackouts").
		Preload("Specials", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC, position ASC") }).
		First(&store, "code = ?", storeCode).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("store %q: %w", storeCode, ErrUnknownStore)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup store %q: %w", storeCode, err)
	}
	return storeToCalendar(&store)
}

func storeToCalendar(store *models.Store) (*StoreCalendar, error) {
	cutoff, err := ParseTimeOfDay(store.CutoffTime)
	if err != nil {
		return nil, fmt.Errorf("store %s: cutoff_time: %w", store.Code, err)
	}

	days := make(map[time.Weekday]bool)
	for _, name := range strings.Split(store.OperatingDays, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		day, err := parseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", store.Code, err)
		}
		days[day] = true
	}

	windows := make([]Window, 0, len(store.Windows))
	for _, row := range store.Windows {
		w, err := rowWindow(row.StartTime, row.EndTime)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", store.Code, err)
		}
		windows = append(windows, w)
	}

	blackouts := make(map[string]bool, len(store.Blackouts))
	for _, row := range store.Blackouts {
		blackouts[row.Date] = true
	}

	var special map[string][]Window
	if len(store.Specials) > 0 {
		special = make(map[string][]Window)
		for _, row := range store.Specials {
			w, err := rowWindow(row.StartTime, row.EndTime)
			if err != nil {
				return nil, fmt.Errorf("store %s: special schedule %s: %w", store.Code, row.Date, err)
			}
			// Preload order (date, position) keeps per-date window order stable.
			special[row.Date] = append(special[row.Date], w)
		}
	}

	cal := &StoreCalendar{
		StoreCode:      store.Code,
		Timezone:       store.Timezone,
		CutoffTime:     cutoff,
		LeadTimeDays:   store.LeadTimeDays,
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

func rowWindow(start, end string) (Window, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}
