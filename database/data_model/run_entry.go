package data_model

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RunEntry records one completed model run in the registry.
type RunEntry struct {
	gorm.Model

	InputFile  string
	Title      string
	ModelRun   int
	TotalRuns  int
	OutputFile string `gorm:"unique"`

	Iterations int
	Dt         float64
	// Wall clock solving time in seconds.
	Elapsed float64
}

func (entry *RunEntry) Upsert(db *gorm.DB) error {
	return db.Clauses(
		clause.OnConflict{
			Columns:   []clause.Column{{Name: "output_file"}},
			UpdateAll: true,
		},
	).Create(entry).Error
}
