package database

import (
	"coursemanager/config"
	"coursemanager/models"
	"coursemanager/models/attendance"
	"coursemanager/models/course"
	"fmt"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, migrates it and seeds the default roles and admin
func ConnectDb() {
	cfg := config.AppConfig

	level := gormLogger.Warn
	if cfg.AppEnv == "development" {
		level = gormLogger.Info
	}

	db, err := Open(cfg, level)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", cfg.DBDriver, err)
		os.Exit(2)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	if cfg.DBDriver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	if err := Seed(db, cfg.DefaultAdminPassword, cfg.SaltRound); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Save database instance globally
	Database = DbInstance{Db: db}
}

// Open builds the gorm handle for the configured driver without touching the schema
func Open(cfg *config.Config, level gormLogger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		dialector = postgres.Open(dsn)
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
		)
		dialector = mysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(cfg.DBName)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
}

// Migrate creates or updates every table the service owns
func Migrate(db *gorm.DB) error {
	log.Println("Running Migrations...")

	err := db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&course.Course{},
		&course.Enrollment{},
		&course.Lesson{},
		&course.LessonProgress{},
		&course.Quiz{},
		&course.Question{},
		&course.QuizResult{},
		&attendance.Session{},
		&attendance.Record{},
		&models.Feedback{},
		&models.SystemLog{},
	)
	if err != nil {
		return err
	}

	log.Println("Migrations completed successfully.")
	return nil
}

// Seed inserts the three fixed roles and a default admin account when they are missing
func Seed(db *gorm.DB, adminPassword string, cost int) error {
	roles := []models.Role{
		{ID: models.RoleTeacherID, Name: models.RoleTeacher},
		{ID: models.RoleStudentID, Name: models.RoleStudent},
		{ID: models.RoleAdminID, Name: models.RoleAdmin},
	}
	for _, role := range roles {
		if err := db.Where(models.Role{ID: role.ID}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}
	// explicit ids do not advance the postgres sequence
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT setval(pg_get_serial_sequence('roles', 'id'), (SELECT MAX(id) FROM roles))").Error; err != nil {
			return err
		}
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "admin").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), cost)
	if err != nil {
		return err
	}
	admin := models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Password: string(hash),
		RoleID:   models.RoleAdminID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Default admin user created.")
	return nil
}
