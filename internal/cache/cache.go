/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package cache provides a Redis-based read-through cache for store calendars.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
	"github.com/friendsincode/huginn_delivery/internal/telemetry"
)

// DefaultCalendarTTL bounds how stale a cached calendar may get.
const DefaultCalendarTTL = 30 * time.Minute

// KeyCalendar is the Redis key prefix for cached calendars.
const KeyCalendar = "huginn:cache:calendar:" // + store_code

// Config contains cache configuration.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CalendarTTL time.Duration

	// DisableOnError disables caching after a Redis error instead of
	// retrying on every lookup.
	DisableOnError bool
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		RedisAddr:      "localhost:6379",
		CalendarTTL:    DefaultCalendarTTL,
		DisableOnError: true,
	}
}

// Cache provides Redis-backed caching with graceful fallback: when Redis is
// unreachable the cache reports misses and the caller falls through to its
// backing provider.
type Cache struct {
	client *redis.Client
	logger zerolog.Logger
	config Config

	mu       sync.RWMutex
	disabled bool
}

// New creates a new cache instance.
func New(cfg Config, logger zerolog.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Redis cache unavailable, running without caching")
		return &Cache{
			logger:   logger.With().Str("component", "cache").Logger(),
			config:   cfg,
			disabled: true,
		}, nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Redis cache initialized")

	return &Cache{
		client: client,
		logger: logger.With().Str("component", "cache").Logger(),
		config: cfg,
	}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// IsAvailable returns true if the cache is operational.
func (c *Cache) IsAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

func (c *Cache) handleError(err error, operation string) {
	if err == nil || errors.Is(err, redis.Nil) {
		return
	}

	c.logger.Debug().Err(err).Str("operation", operation).Msg("cache operation failed")

	if c.config.DisableOnError {
		c.mu.Lock()
		c.disabled = true
		c.mu.Unlock()
		c.logger.Warn().Msg("disabling cache due to Redis error")
	}
}

// CachedWindow is the serialized form of a delivery window.
type CachedWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// CachedCalendar is the serialized form of a store calendar.
type CachedCalendar struct {
	StoreCode      string                    `json:"store_code"`
	Timezone       string                    `json:"timezone"`
	CutoffTime     string                    `json:"cutoff_time"`
	LeadTimeDays   int                       `json:"lead_time_days"`
	OperatingDays  []int                     `json:"operating_days"`
	Windows        []CachedWindow            `json:"time_windows"`
	Blackouts      []string                  `json:"blackout_dates"`
	SpecialWindows map[string][]CachedWindow `json:"special_schedules,omitempty"`
}

// GetCalendar retrieves a cached calendar by store code.
func (c *Cache) GetCalendar(ctx context.Context, storeCode string) (*calendar.StoreCalendar, bool) {
	if !c.IsAvailable() {
		return nil, false
	}

	data, err := c.client.Get(ctx, KeyCalendar+storeCode).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.handleError(err, "get")
		return nil, false
	}

	var cached CachedCalendar
	if err := json.Unmarshal(data, &cached); err != nil {
		c.logger.Debug().Err(err).Str("store_code", storeCode).Msg("failed to unmarshal cached calendar")
		return nil, false
	}

	cal, err := cached.toCalendar()
	if err != nil {
		c.logger.Debug().Err(err).Str("store_code", storeCode).Msg("cached calendar invalid, treating as miss")
		return nil, false
	}

	c.logger.Debug().Str("store_code", storeCode).Msg("calendar cache hit")
	return cal, true
}

// SetCalendar caches a calendar with the configured TTL.
func (c *Cache) SetCalendar(ctx context.Context, cal *calendar.StoreCalendar) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(fromCalendar(cal))
	if err != nil {
		return fmt.Errorf("marshal cached calendar: %w", err)
	}

	if err := c.client.Set(ctx, KeyCalendar+cal.StoreCode, data, c.config.CalendarTTL).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}

	c.logger.Debug().Str("store_code", cal.StoreCode).Msg("calendar cached")
	return nil
}

// InvalidateCalendar removes a store's calendar from cache.
func (c *Cache) InvalidateCalendar(ctx context.Context, storeCode string) error {
	if !c.IsAvailable() {
		return nil
	}
	if err := c.client.Del(ctx, KeyCalendar+storeCode).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}
	return nil
}

func fromCalendar(cal *calendar.StoreCalendar) CachedCalendar {
	cached := CachedCalendar{
		StoreCode:    cal.StoreCode,
		Timezone:     cal.Timezone,
		CutoffTime:   cal.CutoffTime.String(),
		LeadTimeDays: cal.LeadTimeDays,
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if cal.OperatingDays[day] {
			cached.OperatingDays = append(cached.OperatingDays, int(day))
		}
	}
	for _, w := range cal.Windows {
		cached.Windows = append(cached.Windows, CachedWindow{Start: w.Start.String(), End: w.End.String()})
	}
	for date := range cal.Blackouts {
		cached.Blackouts = append(cached.Blackouts, date)
	}
	if len(cal.SpecialWindows) > 0 {
		cached.SpecialWindows = make(map[string][]CachedWindow, len(cal.SpecialWindows))
		for date, windows := range cal.SpecialWindows {
			for _, w := range windows {
				cached.SpecialWindows[date] = append(cached.SpecialWindows[date], CachedWindow{Start: w.Start.String(), End: w.End.String()})
			}
		}
	}
	return cached
}

func (cc CachedCalendar) toCalendar() (*calendar.StoreCalendar, error) {
	cutoff, err := calendar.ParseTimeOfDay(cc.CutoffTime)
	if err != nil {
		return nil, err
	}

	days := make(map[time.Weekday]bool, len(cc.OperatingDays))
	for _, day := range cc.OperatingDays {
		days[time.Weekday(day)] = true
	}

	windows, err := cachedWindows(cc.Windows)
	if err != nil {
		return nil, err
	}

	blackouts := make(map[string]bool, len(cc.Blackouts))
	for _, date := range cc.Blackouts {
		blackouts[date] = true
	}

	var special map[string][]calendar.Window
	if len(cc.SpecialWindows) > 0 {
		special = make(map[string][]calendar.Window, len(cc.SpecialWindows))
		for date, raw := range cc.SpecialWindows {
			ws, err := cachedWindows(raw)
			if err != nil {
				return nil, err
			}
			special[date] = ws
		}
	}

	return &calendar.StoreCalendar{
		StoreCode:      cc.StoreCode,
		Timezone:       cc.Timezone,
		CutoffTime:     cutoff,
		LeadTimeDays:   cc.LeadTimeDays,
		OperatingDays:  days,
		Windows:        windows,
		Blackouts:      blackouts,
		SpecialWindows: special,
	}, nil
}

func cachedWindows(raw []CachedWindow) ([]calendar.Window, error) {
	windows := make([]calendar.Window, 0, len(raw))
	for _, cw := range raw {
		start, err := calendar.ParseTimeOfDay(cw.Start)
		if err != nil {
			return nil, err
		}
		end, err := calendar.ParseTimeOfDay(cw.End)
		if err != nil {
			return nil, err
		}
		windows = append(windows, calendar.Window{Start: start, End: end})
	}
	return windows, nil
}

// Provider wraps a calendar provider with read-through caching. Unknown
// stores are not cached; only successful lookups are.
type Provider struct {
	backing calendar.Provider
	cache   *Cache
}

// NewProvider wraps backing with the cache.
func NewProvider(backing calendar.Provider, c *Cache) *Provider {
	return &Provider{backing: backing, cache: c}
}

// Lookup implements calendar.Provider.
func (p *Provider) Lookup(ctx context.Context, storeCode string) (*calendar.StoreCalendar, error) {
	if !p.cache.IsAvailable() {
		telemetry.CalendarCacheLookups.WithLabelValues("bypass").Inc()
		return p.backing.Lookup(ctx, storeCode)
	}

	if cal, ok := p.cache.GetCalendar(ctx, storeCode); ok {
		telemetry.CalendarCacheLookups.WithLabelValues("hit").Inc()
		return cal, nil
	}
	telemetry.CalendarCacheLookups.WithLabelValues("miss").Inc()

	cal, err := p.backing.Lookup(ctx, storeCode)
	if err != nil {
		return nil, err
	}
	_ = p.cache.SetCalendar(ctx, cal)
	return cal, nil
}
