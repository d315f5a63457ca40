package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"github.com/rmitchellscott/halftone/internal/logging"
)

// RunMigrations runs any pending database migrations using gormigrate
func RunMigrations(db *gorm.DB) error {
	logging.DebugWithComponent(logging.ComponentDatabase, "running database migrations")

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "202610190000_create_dither_jobs",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&DitherJob{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("dither_jobs")
			},
		},
		{
			ID: "202610190001_add_dither_jobs_mode_index",
			Migrate: func(tx *gorm.DB) error {
				if tx.Migrator().HasIndex(&DitherJob{}, "idx_dither_jobs_mode") {
					return nil
				}
				return tx.Migrator().CreateIndex(&DitherJob{}, "Mode")
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropIndex(&DitherJob{}, "idx_dither_jobs_mode")
			},
		},
	})

	// Fresh databases get the full schema directly
	m.InitSchema(func(tx *gorm.DB) error {
		for _, model := range GetAllModels() {
			if err := tx.AutoMigrate(model); err != nil {
				return fmt.Errorf("failed to migrate %T: %w", model, err)
			}
		}
		return nil
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	logging.DebugWithComponent(logging.ComponentDatabase, "migrations completed")
	return nil
}
