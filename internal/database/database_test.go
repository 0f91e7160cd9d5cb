package database

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"medminder/internal/model"
)

func TestSeedDemoDataIsIdempotent(t *testing.T) {
	t.Parallel()

	dsn := fmt.Sprintf("file:seed_test_%d?mode=memory&cache=shared&_fk=1", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite memory: %v", err)
	}
	if err := db.AutoMigrate(&model.Medication{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	if err := SeedDemoData(db); err != nil {
		t.Fatalf("first seed: %v", err)
	}
	if err := SeedDemoData(db); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var count int64
	if err := db.Model(&model.Medication{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != int64(len(demoMedications)) {
		t.Fatalf("expected %d medications, got %d", len(demoMedications), count)
	}
}
