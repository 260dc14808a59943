// Package database keeps a registry of completed model runs in a sqlite
// file, with listing and csv export.
package database

import (
	"fmt"

	"github.com/emwave/emwave/database/data_model"
	"github.com/glebarez/sqlite"

	"gorm.io/gorm"
)

func Open(filePath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(filePath), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %s", filePath, err)
	}

	err = db.AutoMigrate(
		&data_model.RunEntry{},
	)
	if err != nil {
		return nil, fmt.Errorf("database migration failed: %s", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	inner, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to close database, can't read inner data: %s", err)
	}

	err = inner.Close()
	if err != nil {
		return fmt.Errorf("failed to close inner database: %s", err)
	}

	return nil
}

// RecordRun stores one completed run, replacing an earlier entry for the
// same output file.
func RecordRun(db *gorm.DB, entry *data_model.RunEntry) error {
	if err := entry.Upsert(db); err != nil {
		return fmt.Errorf("failed to record run for %s: %s", entry.OutputFile, err)
	}
	return nil
}

// ListRuns returns registry entries, newest first, for one input file or for
// everything when inputFile is empty.
func ListRuns(db *gorm.DB, inputFile string) ([]data_model.RunEntry, error) {
	var entries []data_model.RunEntry

	query := db.Order("created_at desc")
	if inputFile != "" {
		query = query.Where("input_file = ?", inputFile)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list runs: %s", err)
	}

	return entries, nil
}

// RunByID looks one registry entry up by its primary key.
func RunByID(db *gorm.DB, id uint) (*data_model.RunEntry, error) {
	var entry data_model.RunEntry
	if err := db.First(&entry, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load run %d: %s", id, err)
	}
	return &entry, nil
}
