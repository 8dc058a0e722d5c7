package storage

import (
	"fmt"
	"log"
	"os"
	"time"

	"backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var gormDB *gorm.DB

// InitGormDB initializes the GORM connection used for the measure catalog
// and the activity log. The quote tables stay on database/sql.
func InitGormDB() *gorm.DB {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, password, dbname, port)

	var err error
	gormDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database with GORM:", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to get underlying sql.DB:", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := gormDB.AutoMigrate(&models.Measure{}, &models.QuoteActivityLog{}); err != nil {
		log.Fatal("Failed to migrate reference tables:", err)
	}

	return gormDB
}

// GetGormDB returns the GORM database instance
func GetGormDB() *gorm.DB {
	return gormDB
}

// ListMeasures returns the whole measure catalog ordered by id.
func ListMeasures(gdb *gorm.DB) ([]models.Measure, error) {
	var measures []models.Measure
	if err := gdb.Order("id").Find(&measures).Error; err != nil {
		return nil, fmt.Errorf("failed to list measures: %w", err)
	}
	return measures, nil
}

// SeedDefaultMeasures loads a starter catalog when the table is empty, so a
// fresh install can price quotes immediately.
func SeedDefaultMeasures(gdb *gorm.DB) error {
	var count int64
	if err := gdb.Model(&models.Measure{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Measure{
		{Name: "Kilogram", ShortName: "kg", Symbol: "kg", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 1},
		{Name: "Gram", ShortName: "g", Symbol: "g", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 0.001},
		{Name: "Metric Ton", ShortName: "MT", Symbol: "t", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 1000},
		{Name: "Pound", ShortName: "lb", Symbol: "lb", Family: models.FamilyWeight, BaseUnitRef: "kg", ConversionFactor: 0.453592},
		{Name: "Liter", ShortName: "L", Symbol: "L", Family: models.FamilyVolume, BaseUnitRef: "L", ConversionFactor: 1},
		{Name: "Milliliter", ShortName: "mL", Symbol: "mL", Family: models.FamilyVolume, BaseUnitRef: "L", ConversionFactor: 0.001},
		{Name: "Cubic Meter", ShortName: "m3", Symbol: "m³", Family: models.FamilyVolume, BaseUnitRef: "L", ConversionFactor: 1000},
		{Name: "Meter", ShortName: "m", Symbol: "m", Family: models.FamilyLength, BaseUnitRef: "m", ConversionFactor: 1},
		{Name: "Centimeter", ShortName: "cm", Symbol: "cm", Family: models.FamilyLength, BaseUnitRef: "m", ConversionFactor: 0.01},
		{Name: "Square Meter", ShortName: "sqm", Symbol: "m²", Family: models.FamilyArea, BaseUnitRef: "sqm", ConversionFactor: 1},
		{Name: "Piece", ShortName: "pc", Symbol: "", Family: models.FamilyCount, BaseUnitRef: "pc", ConversionFactor: 1},
		{Name: "Dozen", ShortName: "dz", Symbol: "", Family: models.FamilyCount, BaseUnitRef: "pc", ConversionFactor: 12},
		{Name: "Container 20ft", ShortName: "cont20", Symbol: "", Family: models.FamilyContainer, BaseUnitRef: "teu", ConversionFactor: 1},
		{Name: "Container 40ft", ShortName: "cont40", Symbol: "", Family: models.FamilyContainer, BaseUnitRef: "teu", ConversionFactor: 2},
	}
	if err := gdb.Create(&defaults).Error; err != nil {
		return fmt.Errorf("failed to seed measures: %w", err)
	}
	log.Printf("Seeded %d default measures", len(defaults))
	return nil
}

// AppendActivityLog writes one audit row. Append-only.
func AppendActivityLog(gdb *gorm.DB, entry *models.QuoteActivityLog) error {
	if err := gdb.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append activity log: %w", err)
	}
	return nil
}
