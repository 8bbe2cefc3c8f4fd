/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package calendar resolves store codes to their delivery rules.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownStore is returned when a store code is not registered.
var ErrUnknownStore = errors.New("unknown store")

// DateFormat is the canonical calendar-date layout used throughout.
const DateFormat = "2006-01-02"

// Provider resolves a store code to its delivery calendar. Lookups are pure
// reads; the returned calendar must not be mutated by callers.
type Provider interface {
	Lookup(ctx context.Context, storeCode string) (*StoreCalendar, error)
}

// TimeOfDay is minutes since local midnight.
type TimeOfDay int

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(hour*60 + minute), nil
}

// String renders the time as "HH:MM".
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Window is a delivery time range within a single day.
type Window struct {
	Start TimeOfDay
	End   TimeOfDay
}

// Valid reports whether the window has a positive duration.
func (w Window) Valid() bool {
	return w.Start < w.End
}

// StoreCalendar holds the per-store delivery rules. Immutable once built;
// providers hand out shared instances to concurrent readers.
type StoreCalendar struct {
	StoreCode    string
	Timezone     string
	CutoffTime   TimeOfDay
	LeadTimeDays int

	// OperatingDays are the weekdays on which the store accepts deliveries.
	OperatingDays map[time.Weekday]bool

	// Windows are the time ranges offered on operating days, in declared order.
	Windows []Window

	// Blackouts are dates (DateFormat keys) excluded regardless of weekday.
	Blackouts map[string]bool

	// SpecialWindows override Windows for a specific date. A date with a
	// special schedule is deliverable even when its weekday is off-pattern.
	SpecialWindows map[string][]Window
}

// Location resolves the store's time zone, falling back to UTC.
func (c *StoreCalendar) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WindowsOn returns the delivery windows available on a calendar date, or nil
// when the store takes no deliveries that day. Blackouts win over special
// schedules; special schedules win over the weekday pattern.
func (c *StoreCalendar) WindowsOn(date time.Time) []Window {
	key := date.Format(DateFormat)
	if c.Blackouts[key] {
		return nil
	}
	if special, ok := c.SpecialWindows[key]; ok {
		return special
	}
	if !c.OperatingDays[date.Weekday()] {
		return nil
	}
	return c.Windows
}

// Validate checks the calendar for internally consistent rules.
func (c *StoreCalendar) Validate() error {
	if c.StoreCode == "" {
		return fmt.Errorf("store code is required")
	}
	if c.Timezone != "" {
		if _, err := time.LoadLocation(c.Timezone); err != nil {
			return fmt.Errorf("store %s: invalid timezone %q", c.StoreCode, c.Timezone)
		}
	}
	if c.LeadTimeDays < 0 {
		return fmt.Errorf("store %s: negative lead time", c.StoreCode)
	}
	for _, w := range c.Windows {
		if !w.Valid() {
			return fmt.Errorf("store %s: window %s-%s is empty or inverted", c.StoreCode, w.Start, w.End)
		}
	}
	for date, windows := range c.SpecialWindows {
		if _, err := time.Parse(DateFormat, date); err != nil {
			return fmt.Errorf("store %s: invalid special schedule date %q", c.StoreCode, date)
		}
		for _, w := range windows {
			if !w.Valid() {
				return fmt.Errorf("store %s: special window %s-%s on %s is empty or inverted", c.StoreCode, w.Start, w.End, date)
			}
		}
	}
	for date := range c.Blackouts {
		if _, err := time.Parse(DateFormat, date); err != nil {
			return fmt.Errorf("store %s: invalid blackout date %q", c.StoreCode, date)
		}
	}
	return nil
}

// Static is a fixed in-memory provider, mainly for tests and the demo fixture.
type Static map[string]*StoreCalendar

// Lookup implements Provider.
func (s Static) Lookup(_ context.Context, storeCode string) (*StoreCalendar, error) {
	cal, ok := s[storeCode]
	if !ok {
		return nil, fmt.Errorf("store %q: %w", storeCode, ErrUnknownStore)
	}
	return cal, nil
}
