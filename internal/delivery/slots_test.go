package delivery

import (
	"reflect"
	"testing"
	"time"

	"github.com/friendsincode/huginn_delivery/internal/calendar"
)

func testCalendar(t *testing.T) *calendar.StoreCalendar {
	t.Helper()
	return &calendar.StoreCalendar{
		StoreCode:  "STORE001",
		CutoffTime: mustTimeOfDay(t, "14:00"),
		OperatingDays: map[time.Weekday]bool{
			time.Wednesday: true,
			time.Friday:    true,
		},
		Windows: []calendar.Window{
			{Start: mustTimeOfDay(t, "12:00"), End: mustTimeOfDay(t, "20:00")},
		},
		Blackouts: map[string]bool{},
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(calendar.DateFormat, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func slotDates(slots []Slot) []string {
	dates := make([]string, 0, len(slots))
	for _, s := range slots {
		dates = append(dates, s.Date.Format(calendar.DateFormat))
	}
	return dates
}

func TestGenerateSlotsFiltersByOperatingDays(t *testing.T) {
	cal := testCalendar(t)
	// 2025-06-28 is a Saturday; the next qualifying days are Wed 07-02 and Fri 07-04.
	slots := GenerateSlots(date(t, "2025-06-28"), cal, 3, 0)

	want := []string{"2025-07-02", "2025-07-04", "2025-07-09"}
	if got := slotDates(slots); !reflect.DeepEqual(got, want) {
		t.Fatalf("slot dates = %v, want %v", got, want)
	}
}

func TestGenerateSlotsSkipsBlackouts(t *testing.T) {
	cal := testCalendar(t)
	cal.Blackouts["2025-07-04"] = true

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 3, 0)

	want := []string{"2025-07-02", "2025-07-09", "2025-07-11"}
	if got := slotDates(slots); !reflect.DeepEqual(got, want) {
		t.Fatalf("slot dates = %v, want %v", got, want)
	}
}

func TestGenerateSlotsSpecialScheduleOverridesWindows(t *testing.T) {
	cal := testCalendar(t)
	cal.SpecialWindows = map[string][]calendar.Window{
		"2025-07-02": {{Start: mustTimeOfDay(t, "11:00"), End: mustTimeOfDay(t, "20:00")}},
	}

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 2, 0)
	if len(slots) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(slots))
	}
	if slots[0].Window.Start.String() != "11:00" {
		t.Fatalf("special window start = %s, want 11:00", slots[0].Window.Start)
	}
	if slots[1].Window.Start.String() != "12:00" {
		t.Fatalf("regular window start = %s, want 12:00", slots[1].Window.Start)
	}
}

func TestGenerateSlotsSpecialScheduleOnOffPatternDay(t *testing.T) {
	cal := testCalendar(t)
	// 2025-06-30 is a Monday, not an operating day.
	cal.SpecialWindows = map[string][]calendar.Window{
		"2025-06-30": {{Start: mustTimeOfDay(t, "10:00"), End: mustTimeOfDay(t, "16:00")}},
	}

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 1, 0)
	if len(slots) != 1 {
		t.Fatalf("expected 1 slot, got %d", len(slots))
	}
	if got := slots[0].Date.Format(calendar.DateFormat); got != "2025-06-30" {
		t.Fatalf("slot date = %s, want 2025-06-30", got)
	}
}

func TestGenerateSlotsBlackoutBeatsSpecialSchedule(t *testing.T) {
	cal := testCalendar(t)
	cal.Blackouts["2025-07-02"] = true
	cal.SpecialWindows = map[string][]calendar.Window{
		"2025-07-02": {{Start: mustTimeOfDay(t, "10:00"), End: mustTimeOfDay(t, "16:00")}},
	}

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 1, 0)
	if got := slots[0].Date.Format(calendar.DateFormat); got != "2025-07-04" {
		t.Fatalf("slot date = %s, want 2025-07-04", got)
	}
}

func TestGenerateSlotsMultipleWindowsPerDay(t *testing.T) {
	cal := testCalendar(t)
	cal.Windows = []calendar.Window{
		{Start: mustTimeOfDay(t, "09:00"), End: mustTimeOfDay(t, "13:00")},
		{Start: mustTimeOfDay(t, "17:00"), End: mustTimeOfDay(t, "21:00")},
	}

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 3, 0)
	if len(slots) != 3 {
		t.Fatalf("expected 3 slots, got %d", len(slots))
	}
	// Both windows of Wed 07-02 in declared order, then the first of Fri 07-04.
	if slots[0].Date.Format(calendar.DateFormat) != "2025-07-02" || slots[0].Window.Start.String() != "09:00" {
		t.Fatalf("unexpected first slot: %v %s", slots[0].Date, slots[0].Window.Start)
	}
	if slots[1].Date.Format(calendar.DateFormat) != "2025-07-02" || slots[1].Window.Start.String() != "17:00" {
		t.Fatalf("unexpected second slot: %v %s", slots[1].Date, slots[1].Window.Start)
	}
	if slots[2].Date.Format(calendar.DateFormat) != "2025-07-04" {
		t.Fatalf("unexpected third slot date: %v", slots[2].Date)
	}
}

func TestGenerateSlotsHorizonExhaustedYieldsEmpty(t *testing.T) {
	cal := testCalendar(t)
	cal.OperatingDays = map[time.Weekday]bool{} // never delivers

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 5, 0)
	if len(slots) != 0 {
		t.Fatalf("expected no slots, got %d", len(slots))
	}
}

func TestGenerateSlotsRespectsHorizonBound(t *testing.T) {
	cal := testCalendar(t)
	// Only a special schedule far beyond a short horizon.
	cal.OperatingDays = map[time.Weekday]bool{}
	cal.SpecialWindows = map[string][]calendar.Window{
		"2025-08-15": {{Start: mustTimeOfDay(t, "10:00"), End: mustTimeOfDay(t, "16:00")}},
	}

	if slots := GenerateSlots(date(t, "2025-06-28"), cal, 5, 30); len(slots) != 0 {
		t.Fatalf("expected horizon to exclude distant slot, got %d", len(slots))
	}
	if slots := GenerateSlots(date(t, "2025-06-28"), cal, 5, 60); len(slots) != 1 {
		t.Fatalf("expected wider horizon to include slot, got %d", len(slots))
	}
}

func TestSlotIteratorIsRestartableAndDeterministic(t *testing.T) {
	cal := testCalendar(t)

	first := GenerateSlots(date(t, "2025-06-28"), cal, 5, 0)
	second := GenerateSlots(date(t, "2025-06-28"), cal, 5, 0)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated generation differs: %v vs %v", first, second)
	}

	// A prefix pull matches the head of a full drain.
	it := NewSlotIterator(date(t, "2025-06-28"), cal, 0)
	prefix, ok := it.Next()
	if !ok {
		t.Fatal("expected at least one slot")
	}
	if !prefix.Date.Equal(first[0].Date) || prefix.Window != first[0].Window {
		t.Fatalf("iterator prefix %v does not match generated head %v", prefix, first[0])
	}
}

func TestGenerateSlotsStrictlyAscending(t *testing.T) {
	cal := testCalendar(t)
	cal.Windows = []calendar.Window{
		{Start: mustTimeOfDay(t, "09:00"), End: mustTimeOfDay(t, "13:00")},
		{Start: mustTimeOfDay(t, "17:00"), End: mustTimeOfDay(t, "21:00")},
	}

	slots := GenerateSlots(date(t, "2025-06-28"), cal, 8, 0)
	seen := map[string]bool{}
	for i := 1; i < len(slots); i++ {
		if slots[i].Date.Before(slots[i-1].Date) {
			t.Fatalf("slot dates out of order at %d: %v after %v", i, slots[i].Date, slots[i-1].Date)
		}
		if slots[i].Date.Equal(slots[i-1].Date) && slots[i].Window.Start <= slots[i-1].Window.Start {
			t.Fatalf("same-day windows out of order at %d", i)
		}
	}
	for _, s := range slots {
		key := s.Date.Format(calendar.DateFormat) + s.Window.Start.String()
		if seen[key] {
			t.Fatalf("duplicate slot %s", key)
		}
		seen[key] = true
	}
}

func TestFormatSlot(t *testing.T) {
	slot := Slot{
		Date:   date(t, "2025-07-02"),
		Window: calendar.Window{Start: mustTimeOfDay(t, "11:00"), End: mustTimeOfDay(t, "20:00")},
	}
	got := FormatSlot(slot)
	if got.Date != "2025-07-02" {
		t.Fatalf("date = %q", got.Date)
	}
	if got.TimeRange != [2]string{"11:00", "20:00"} {
		t.Fatalf("time range = %v", got.TimeRange)
	}
	if got.Formatted != "2025-07-02 from 11:00 to 20:00" {
		t.Fatalf("formatted = %q", got.Formatted)
	}
}
