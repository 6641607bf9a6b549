// Package testutil opens a migrated in-memory database and builds fixtures for package tests.
package testutil

import (
	"coursemanager/config"
	"coursemanager/database"
	"coursemanager/models"
	"coursemanager/models/course"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Password is the plain-text password of every user made by CreateUser
const Password = "secret123"

var seq uint64

// OpenDB returns a fresh migrated and seeded in-memory database and installs the test config
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := config.Testing()
	config.AppConfig = cfg

	db, err := database.Open(cfg, logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Seed(db, cfg.DefaultAdminPassword, cfg.SaltRound))
	return db
}

// UseGlobal points database.Database at db for code that reads the global handle
func UseGlobal(t *testing.T, db *gorm.DB) {
	t.Helper()
	prev := database.Database
	database.Database = database.DbInstance{Db: db}
	t.Cleanup(func() { database.Database = prev })
}

func CreateUser(t *testing.T, db *gorm.DB, roleID uint) models.User {
	t.Helper()

	n := atomic.AddUint64(&seq, 1)
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username: fmt.Sprintf("user%d", n),
		Email:    fmt.Sprintf("user%d@example.com", n),
		Password: string(hash),
		RoleID:   roleID,
	}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Preload("Role").First(&user, user.ID).Error)
	return user
}

func Admin(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	var admin models.User
	require.NoError(t, db.Preload("Role").Where("username = ?", "admin").First(&admin).Error)
	return admin
}

func CreateCourse(t *testing.T, db *gorm.DB, creator models.User) course.Course {
	t.Helper()
	n := atomic.AddUint64(&seq, 1)
	c := course.Course{
		Title:       fmt.Sprintf("Course %d", n),
		Description: "Fixture course",
		CreatorID:   creator.ID,
	}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func CreateLesson(t *testing.T, db *gorm.DB, c course.Course) course.Lesson {
	t.Helper()
	n := atomic.AddUint64(&seq, 1)
	lesson := course.Lesson{
		Title:    fmt.Sprintf("Lesson %d", n),
		Content:  "Fixture lesson",
		CourseID: c.ID,
	}
	require.NoError(t, db.Create(&lesson).Error)
	return lesson
}

func Enroll(t *testing.T, db *gorm.DB, user models.User, c course.Course) {
	t.Helper()
	require.NoError(t, db.Create(&course.Enrollment{UserID: user.ID, CourseID: c.ID}).Error)
}
