package database

import (
	"edumitra/models"
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb establishes a connection to PostgreSQL
func ConnectDb() {
	// Build the PostgreSQL connection string
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	// Open database connection
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	sqlDB.SetMaxOpenConns(10)   // Maximum open connections
	sqlDB.SetMaxIdleConns(5)    // Maximum idle connections
	sqlDB.SetConnMaxLifetime(0) // No timeout

	// Run database migrations
	RunMigrations(db)

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB) {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.CoursePricing{},
		&models.Lesson{},
		&models.Batch{},
		&models.Enrollment{},
		&models.Payment{},
		&models.LessonProgress{},
		&models.AssessmentResult{},
		&models.ProgressRecord{},
		&models.Certificate{},
		&models.ReminderLog{},
	)
	if err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	// Partial unique indexes back the race-sensitive checks. Application-level
	// pre-checks give friendly errors; these make the guarantees hold under
	// concurrent requests.
	if db.Dialector.Name() == "postgres" {
		indexes := []string{
			// one live enrollment per (student, course, batch)
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_live_triple
				ON enrollments (user_id, COALESCE(course_id, 0), COALESCE(batch_id, 0))
				WHERE status <> 'CANCELLED' AND is_deleted = false AND enrollment_type <> 'MEMBERSHIP'`,
			// at most one active membership per student
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_one_active_membership
				ON enrollments (user_id)
				WHERE enrollment_type = 'MEMBERSHIP' AND status = 'ACTIVE' AND is_deleted = false`,
			// ledger idempotency on gateway transaction ids
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_transaction_id
				ON payments (transaction_id)
				WHERE transaction_id <> '' AND is_deleted = false`,
		}
		for _, stmt := range indexes {
			if err := db.Exec(stmt).Error; err != nil {
				log.Fatalf("Index migration failed: %v", err)
			}
		}
	}

	log.Println("Migrations completed successfully.")
}
