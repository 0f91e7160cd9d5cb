package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"medminder/internal/model"
)

// Medication state is scoped to a single session, so the database always
// lives in memory and is discarded on shutdown.
const memoryDSN = "file:medminder?mode=memory&cache=shared&_fk=1"

// New opens the in-memory GORM database and runs migrations.
func New() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(memoryDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.Medication{}); err != nil {
		return nil, err
	}
	return db, nil
}

// demoMedications mirrors the sample daily list shown on first launch.
var demoMedications = []model.Medication{
	{ID: 1, Name: "Lisinopril", Dosage: "10mg", Time: "08:00", Status: model.StatusPending, PillImage: "https://picsum.photos/id/1/100/100"},
	{ID: 2, Name: "Metformin", Dosage: "500mg", Time: "08:00", Status: model.StatusTaken, PillImage: "https://picsum.photos/id/2/100/100"},
	{ID: 3, Name: "Atorvastatin", Dosage: "20mg", Time: "20:00", Status: model.StatusPending, PillImage: "https://picsum.photos/id/3/100/100"},
	{ID: 4, Name: "Amlodipine", Dosage: "5mg", Time: "20:00", Status: model.StatusSkipped, PillImage: "https://picsum.photos/id/4/100/100"},
	{ID: 5, Name: "Levothyroxine", Dosage: "50mcg", Time: "07:00", Status: model.StatusPending, PillImage: "https://picsum.photos/id/5/100/100"},
	{ID: 6, Name: "Simvastatin", Dosage: "40mg", Time: "21:00", Status: model.StatusPending, PillImage: "https://picsum.photos/id/6/100/100"},
}

// SeedDemoData inserts the sample medications when the table is still empty.
func SeedDemoData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Medication{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	meds := make([]model.Medication, len(demoMedications))
	copy(meds, demoMedications)
	return db.Create(&meds).Error
}
