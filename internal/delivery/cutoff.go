/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package delivery

import (
	"time"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
)

// EarliestEligibleDate computes the first calendar date an order placed at
// orderAt can be delivered on, before any operating-day filtering.
//
// The order timestamp is normalized to the store's local zone. Orders placed
// strictly before the cutoff dispatch the same day; an order at exactly the
// cutoff counts as having missed it and rolls to the next day. Lead time is
// applied after the cutoff roll.
func EarliestEligibleDate(orderAt time.Time, cal *calendar.StoreCalendar) time.Time {
	loc := cal.Location()
	local := orderAt.In(loc)

	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	tod := calendar.TimeOfDay(local.Hour()*60 + local.Minute())
	if tod >= cal.CutoffTime {
		day = day.AddDate(0, 0, 1)
	}
	return day.AddDate(0, 0, cal.LeadTimeDays)
}
