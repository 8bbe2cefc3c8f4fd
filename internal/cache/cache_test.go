package cache

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
)

func testCalendar(t *testing.T) *calendar.StoreCalendar {
	t.Helper()
	cutoff, err := calendar.ParseTimeOfDay("14:00")
	if err != nil {
		t.Fatalf("parse cutoff: %v", err)
	}
	start, _ := calendar.ParseTimeOfDay("12:00")
	end, _ := calendar.ParseTimeOfDay("20:00")
	special, _ := calendar.ParseTimeOfDay("11:00")

	return &calendar.StoreCalendar{
		StoreCode:    "STORE001",
		Timezone:     "Europe/Moscow",
		CutoffTime:   cutoff,
		LeadTimeDays: 1,
		OperatingDays: map[time.Weekday]bool{
			time.Wednesday: true,
			time.Friday:    true,
		},
		Windows:   []calendar.Window{{Start: start, End: end}},
		Blackouts: map[string]bool{"2025-07-04": true},
		SpecialWindows: map[string][]calendar.Window{
			"2025-07-02": {{Start: special, End: end}},
		},
	}
}

func TestCachedCalendarRoundTrip(t *testing.T) {
	original := testCalendar(t)

	restored, err := fromCalendar(original).toCalendar()
	if err != nil {
		t.Fatalf("toCalendar: %v", err)
	}

	if !reflect.DeepEqual(original, restored) {
		t.Fatalf("round trip mismatch:\noriginal %+v\nrestored %+v", original, restored)
	}
}

// An unavailable cache must degrade to no-ops: lookups miss, writes and
// invalidations succeed silently. The seed command depends on this when it
// evicts reseeded stores without knowing whether Redis is up.
func TestUnavailableCacheDegradesToNoOps(t *testing.T) {
	c := &Cache{
		logger:   zerolog.Nop(),
		config:   DefaultConfig(),
		disabled: true,
	}

	if c.IsAvailable() {
		t.Fatal("cache must report unavailable")
	}

	ctx := context.Background()
	if _, ok := c.GetCalendar(ctx, "STORE001"); ok {
		t.Fatal("expected miss from unavailable cache")
	}
	if err := c.SetCalendar(ctx, testCalendar(t)); err != nil {
		t.Fatalf("SetCalendar: %v", err)
	}
	if err := c.InvalidateCalendar(ctx, "STORE001"); err != nil {
		t.Fatalf("InvalidateCalendar: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
