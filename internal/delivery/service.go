/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package delivery implements the delivery-window resolution engine: the rule
// set that turns (store, order timestamp) into an ordered list of candidate
// delivery dates with valid time ranges.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
	"github.com/friendsincode/huginn_delivery/internal/telemetry"
)

// Error codes surfaced in the result envelope.
const (
	CodeInvalidRequest = "invalid_request"
	CodeUnknownStore   = "unknown_store"
	CodeInternal       = "internal_error"
)

// orderDateLayouts are the accepted order_date formats, tried in order.
var orderDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// DeliverySlot is one delivery offer in its response shape.
type DeliverySlot struct {
	Date      string    `json:"date"`
	TimeRange [2]string `json:"time_range"`
	Formatted string    `json:"formatted"`
}

// ResolutionError is the error half of the result envelope.
type ResolutionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Result is the resolution envelope. Dates is always non-nil so it
// serializes as [] rather than null; an empty Dates with a nil Error means no
// slots were found within the search horizon.
type Result struct {
	Dates []DeliverySlot   `json:"dates"`
	Error *ResolutionError `json:"error"`
}

// Service orchestrates calendar lookup, cutoff resolution, slot generation
// and formatting. Resolution is a pure query with no side effects.
type Service struct {
	provider    calendar.Provider
	clock       Clock
	maxResults  int
	horizonDays int
	logger      zerolog.Logger
}

// Option tweaks service construction.
type Option func(*Service)

// WithMaxResults overrides the number of slots returned.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// WithHorizonDays overrides the search horizon.
func WithHorizonDays(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.horizonDays = n
		}
	}
}

// NewService wires the resolution engine.
func NewService(provider calendar.Provider, clock Clock, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		provider:    provider,
		clock:       clock,
		maxResults:  DefaultMaxResults,
		horizonDays: DefaultSearchHorizonDays,
		logger:      logger.With().Str("component", "resolution").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Resolve answers the one question the service exists for: which delivery
// dates and time windows are available for storeCode, given an optional
// order_date string. Failures never escape as panics or raw errors; they are
// normalized into the envelope's Error field.
func (s *Service) Resolve(ctx context.Context, storeCode, orderDate string) Result {
	if storeCode == "" {
		telemetry.ResolutionsTotal.WithLabelValues("invalid_request").Inc()
		return errorResult(CodeInvalidRequest, "store_code is required")
	}

	// Input validation happens before the store lookup: a request that is
	// both malformed and for an unknown store reports the malformed input.
	if orderDate != "" && !validOrderDate(orderDate) {
		telemetry.ResolutionsTotal.WithLabelValues("invalid_request").Inc()
		return errorResult(CodeInvalidRequest, fmt.Sprintf("order_date %q is not a valid date-time", orderDate))
	}

	cal, err := s.provider.Lookup(ctx, storeCode)
	if err != nil {
		if errors.Is(err, calendar.ErrUnknownStore) {
			telemetry.ResolutionsTotal.WithLabelValues("unknown_store").Inc()
			return errorResult(CodeUnknownStore, fmt.Sprintf("store %q is not registered", storeCode))
		}
		s.logger.Error().Err(err).Str("store_code", storeCode).Msg("calendar lookup failed")
		telemetry.ResolutionsTotal.WithLabelValues("error").Inc()
		return errorResult(CodeInternal, "calendar lookup failed")
	}

	orderAt, err := s.orderTimestamp(orderDate, cal)
	if err != nil {
		telemetry.ResolutionsTotal.WithLabelValues("invalid_request").Inc()
		return errorResult(CodeInvalidRequest, err.Error())
	}

	earliest := EarliestEligibleDate(orderAt, cal)
	slots := GenerateSlots(earliest, cal, s.maxResults, s.horizonDays)

	dates := make([]DeliverySlot, 0, len(slots))
	for _, slot := range slots {
		dates = append(dates, FormatSlot(slot))
	}

	s.logger.Debug().
		Str("store_code", storeCode).
		Time("order_at", orderAt).
		Str("earliest", earliest.Format(calendar.DateFormat)).
		Int("slots", len(dates)).
		Msg("resolution complete")

	telemetry.ResolutionsTotal.WithLabelValues("ok").Inc()
	telemetry.ResolutionSlots.Observe(float64(len(dates)))
	return Result{Dates: dates}
}

// validOrderDate reports whether orderDate matches one of the accepted
// layouts. Zone-independent; interpretation into the store's zone happens
// later, once the calendar is known.
func validOrderDate(orderDate string) bool {
	for _, layout := range orderDateLayouts {
		if _, err := time.Parse(layout, orderDate); err == nil {
			return true
		}
	}
	return false
}

// orderTimestamp parses the supplied order date, or substitutes the current
// instant in the store's zone when absent. Both paths feed the same cutoff
// rule; the defaulted case is not special.
func (s *Service) orderTimestamp(orderDate string, cal *calendar.StoreCalendar) (time.Time, error) {
	loc := cal.Location()
	if orderDate == "" {
		return s.clock.Now().In(loc), nil
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.ParseInLocation(layout, orderDate, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("order_date %q is not a valid date-time", orderDate)
}

func errorResult(code, message string) Result {
	return Result{
		Dates: []DeliverySlot{},
		Error: &ResolutionError{Code: code, Message: message},
	}
}
