package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_delivery/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Store{}, &models.DeliveryWindow{}, &models.BlackoutDate{}, &models.SpecialSchedule{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGormProviderLookup(t *testing.T) {
	db := testDB(t)

	store := models.Store{
		ID:            "store-1",
		Code:          "STORE001",
		Timezone:      "Europe/Moscow",
		CutoffTime:    "14:00",
		LeadTimeDays:  1,
		OperatingDays: "Wednesday,Friday",
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}
	// Insert windows out of position order to confirm ordering by position.
	windows := []models.DeliveryWindow{
		{ID: "w-2", StoreID: store.ID, Position: 1, StartTime: "17:00", EndTime: "21:00"},
		{ID: "w-1", StoreID: store.ID, Position: 0, StartTime: "09:00", EndTime: "13:00"},
	}
	for i := range windows {
		if err := db.Create(&windows[i]).Error; err != nil {
			t.Fatalf("create window: %v", err)
		}
	}
	if err := db.Create(&models.BlackoutDate{ID: "b-1", StoreID: store.ID, Date: "2025-07-04"}).Error; err != nil {
		t.Fatalf("create blackout: %v", err)
	}
	if err := db.Create(&models.SpecialSchedule{ID: "s-1", StoreID: store.ID, Date: "2025-07-02", Position: 0, StartTime: "11:00", EndTime: "20:00"}).Error; err != nil {
		t.Fatalf("create special schedule: %v", err)
	}

	provider := NewGormProvider(db, zerolog.Nop())
	cal, err := provider.Lookup(context.Background(), "STORE001")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}

	if cal.CutoffTime.String() != "14:00" || cal.LeadTimeDays != 1 {
		t.Errorf("cutoff/lead = %s/%d", cal.CutoffTime, cal.LeadTimeDays)
	}
	if !cal.OperatingDays[time.Wednesday] || !cal.OperatingDays[time.Friday] {
		t.Errorf("operating days = %v", cal.OperatingDays)
	}
	if len(cal.Windows) != 2 || cal.Windows[0].Start.String() != "09:00" || cal.Windows[1].Start.String() != "17:00" {
		t.Errorf("windows out of declared order: %v", cal.Windows)
	}
	if !cal.Blackouts["2025-07-04"] {
		t.Errorf("blackouts = %v", cal.Blackouts)
	}
	if ws := cal.SpecialWindows["2025-07-02"]; len(ws) != 1 || ws[0].Start.String() != "11:00" {
		t.Errorf("special windows = %v", cal.SpecialWindows)
	}
}

func TestGormProviderUnknownStore(t *testing.T) {
	provider := NewGormProvider(testDB(t), zerolog.Nop())

	_, err := provider.Lookup(context.Background(), "NOPE")
	if !errors.Is(err, ErrUnknownStore) {
		t.Fatalf("expected ErrUnknownStore, got %v", err)
	}
}

func TestGormProviderRejectsCorruptRow(t *testing.T) {
	db := testDB(t)
	store := models.Store{
		ID:            "store-1",
		Code:          "BROKEN",
		CutoffTime:    "not-a-time",
		OperatingDays: "Friday",
	}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store: %v", err)
	}

	provider := NewGormProvider(db, zerolog.Nop())
	if _, err := provider.Lookup(context.Background(), "BROKEN"); err == nil {
		t.Fatal("expected error for corrupt cutoff time")
	}
}
