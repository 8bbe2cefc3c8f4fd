/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package delivery

import (
	"time"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
)

// DefaultSearchHorizonDays bounds the forward scan for qualifying days.
// Exhausting the horizon is not an error; it yields an empty result.
const DefaultSearchHorizonDays = 90

// DefaultMaxResults is the number of slots returned when not configured.
const DefaultMaxResults = 5

// Slot is one concrete (date, window) delivery offer.
type Slot struct {
	Date   time.Time
	Window calendar.Window
}

// SlotIterator walks forward from an earliest eligible date, emitting one
// slot per time window of each qualifying day. It does work proportional to
// the slots pulled, never scans past the horizon, and holds no state shared
// with other iterators.
type SlotIterator struct {
	cal         *calendar.StoreCalendar
	next        time.Time
	horizon     time.Time
	pendingDate time.Time
	pending     []calendar.Window
}

// NewSlotIterator starts a bounded scan at earliest.
func NewSlotIterator(earliest time.Time, cal *calendar.StoreCalendar, horizonDays int) *SlotIterator {
	if horizonDays <= 0 {
		horizonDays = DefaultSearchHorizonDays
	}
	return &SlotIterator{
		cal:     cal,
		next:    earliest,
		horizon: earliest.AddDate(0, 0, horizonDays),
	}
}

// Next returns the next slot, or false once the horizon is exhausted.
func (it *SlotIterator) Next() (Slot, bool) {
	for {
		if len(it.pending) > 0 {
			w := it.pending[0]
			it.pending = it.pending[1:]
			return Slot{Date: it.pendingDate, Window: w}, true
		}
		if !it.next.Before(it.horizon) {
			return Slot{}, false
		}
		it.pendingDate = it.next
		it.pending = it.cal.WindowsOn(it.next)
		it.next = it.next.AddDate(0, 0, 1)
	}
}

// GenerateSlots drains up to maxResults slots from a fresh scan. Identical
// inputs always produce identical output.
func GenerateSlots(earliest time.Time, cal *calendar.StoreCalendar, maxResults, horizonDays int) []Slot {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	it := NewSlotIterator(earliest, cal, horizonDays)
	slots := make([]Slot, 0, maxResults)
	for len(slots) < maxResults {
		slot, ok := it.Next()
		if !ok {
			break
		}
		slots = append(slots, slot)
	}
	return slots
}
