package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/friendsincode/huginn_delivery/internal/cache"
	"github.com/friendsincode/huginn_delivery/internal/calendar"
	"github.com/friendsincode/huginn_delivery/internal/db"
	"github.com/friendsincode/huginn_delivery/internal/models"
)

var seedCmd = &cobra.Command{
	Use:   "seed <calendar.yaml>",
	Short: "Load a calendar YAML file into the configured database",
	Long:  "Parse a store calendar file and replace the database calendar tables with its contents",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	stores, err := calendar.LoadCalendarFile(args[0])
	if err != nil {
		return err
	}

	database, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = db.Close(database) }()

	if err := db.Migrate(database); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	codes := make([]string, 0, len(stores))
	for code := range stores {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	err = database.Transaction(func(tx *gorm.DB) error {
		for _, code := range codes {
			if err := seedStore(tx, stores[code]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if cfg.CacheEnabled {
		invalidateSeededStores(cmd.Context(), codes)
	}

	logger.Info().Int("stores", len(stores)).Msg("calendar seed complete")
	return nil
}

// invalidateSeededStores evicts reseeded calendars from the Redis cache so a
// running server stops serving the previous definitions. Cache trouble only
// warns; the database already holds the new rows.
func invalidateSeededStores(ctx context.Context, codes []string) {
	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisAddr = cfg.RedisAddr
	cacheCfg.RedisPassword = cfg.RedisPassword
	cacheCfg.RedisDB = cfg.RedisDB

	calendarCache, err := cache.New(cacheCfg, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("cache unavailable, skipping invalidation")
		return
	}
	defer func() { _ = calendarCache.Close() }()

	for _, code := range codes {
		if err := calendarCache.InvalidateCalendar(ctx, code); err != nil {
			logger.Warn().Err(err).Str("store_code", code).Msg("cache invalidation failed")
		}
	}
}

func seedStore(tx *gorm.DB, cal *calendar.StoreCalendar) error {
	// Replace any previous definition of this store wholesale.
	var existing models.Store
	if err := tx.First(&existing, "code = ?", cal.StoreCode).Error; err == nil {
		for _, model := range []any{&models.DeliveryWindow{}, &models.BlackoutDate{}, &models.SpecialSchedule{}} {
			if err := tx.Where("store_id = ?", existing.ID).Delete(model).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&existing).Error; err != nil {
			return err
		}
	}

	var dayNames []string
	for day := time.Sunday; day <= time.Saturday; day++ {
		if cal.OperatingDays[day] {
			dayNames = append(dayNames, day.String())
		}
	}

	store := models.Store{
		ID:            uuid.NewString(),
		Code:          cal.StoreCode,
		Timezone:      cal.Timezone,
		CutoffTime:    cal.CutoffTime.String(),
		LeadTimeDays:  cal.LeadTimeDays,
		OperatingDays: strings.Join(dayNames, ","),
	}
	if err := tx.Create(&store).Error; err != nil {
		return fmt.Errorf("create store %s: %w", cal.StoreCode, err)
	}

	for i, w := range cal.Windows {
		row := models.DeliveryWindow{
			ID:        uuid.NewString(),
			StoreID:   store.ID,
			Position:  i,
			StartTime: w.Start.String(),
			EndTime:   w.End.String(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create window for %s: %w", cal.StoreCode, err)
		}
	}

	for date := range cal.Blackouts {
		row := models.BlackoutDate{
			ID:      uuid.NewString(),
			StoreID: store.ID,
			Date:    date,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("create blackout for %s: %w", cal.StoreCode, err)
		}
	}

	for date, windows := range cal.SpecialWindows {
		for i, w := range windows {
			row := models.SpecialSchedule{
				ID:        uuid.NewString(),
				StoreID:   store.ID,
				Date:      date,
				Position:  i,
				StartTime: w.Start.String(),
				EndTime:   w.End.String(),
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("create special schedule for %s: %w", cal.StoreCode, err)
			}
		}
	}

	return nil
}
