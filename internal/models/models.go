package models

import (
	"time"
)

// Store holds the delivery rules for a single store.
type Store struct {
	ID           string `gorm:"type:uuid;primaryKey"`
	Code         string `gorm:"uniqueIndex"`
	Timezone     string `gorm:"type:varchar(64)"`
	CutoffTime   string `gorm:"type:varchar(5)"` // HH:MM local time
	LeadTimeDays int

	// OperatingDays is a comma-separated weekday list, e.g. "Wednesday,Friday".
	OperatingDays string `gorm:"type:varchar(128)"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Windows   []DeliveryWindow  `gorm:"foreignKey:StoreID"`
	Blackouts []BlackoutDate    `gorm:"foreignKey:StoreID"`
	Specials  []SpecialSchedule `gorm:"foreignKey:StoreID"`
}

// DeliveryWindow is one time range offered on operating days.
type DeliveryWindow struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	StoreID   string `gorm:"type:uuid;index"`
	Position  int    `gorm:"index"` // declared order within the store
	StartTime string `gorm:"type:varchar(5)"`
	EndTime   string `gorm:"type:varchar(5)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlackoutDate excludes a calendar date from delivery regardless of weekday.
type BlackoutDate struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	StoreID   string `gorm:"type:uuid;index"`
	Date      string `gorm:"type:varchar(10);index"` // YYYY-MM-DD
	Reason    string `gorm:"type:text"`
	CreatedAt time.Time
}

// SpecialSchedule overrides the weekday windows for a specific date.
type SpecialSchedule struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	StoreID   string `gorm:"type:uuid;index"`
	Date      string `gorm:"type:varchar(10);index"` // YYYY-MM-DD
	Position  int
	StartTime string `gorm:"type:varchar(5)"`
	EndTime   string `gorm:"type:varchar(5)"`
	CreatedAt time.Time
}
