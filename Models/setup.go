package Models

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	var connection *gorm.DB
	var err error
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		connection, err = gorm.Open(mysql.Open(dsn), &gorm.Config{})
	} else {
		connection, err = gorm.Open(sqlite.Open("database.db"))
	}
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	DB = connection

	// 1. Base tables with no dependencies
	DB.AutoMigrate(
		&User{},
		&Sector{},
		&CriticalityPoint{},
	)

	// 2. Task catalog
	DB.AutoMigrate(
		&TaskTemplate{},
		&TaskInstance{}, // depends on templates for cloning
	)

	// 3. Completion state, ledger and alerting
	DB.AutoMigrate(
		&CompletionRecord{},
		&PointsLedger{},
		&AdminAlert{},
	)

	if err := SetupTaskInstanceIndexes(DB); err != nil {
		log.Println(err)
	}

	if err := SeedCriticalityPoints(DB); err != nil {
		log.Printf("Error seeding criticality points: %v", err)
	} else {
		log.Println("Criticality point table ready")
	}
}
