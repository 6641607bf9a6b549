package main

import (
	"coursemanager/config"
	"coursemanager/database"
	"coursemanager/models"
	"coursemanager/models/course"
	"coursemanager/services/authsvc"
	"coursemanager/services/coursesvc"
	"coursemanager/utils/apperror"
	"encoding/csv"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// rosterStats counts what one import did
type rosterStats struct {
	Created  int
	Existing int
	Enrolled int
	Skipped  int
}

func main() {
	// Load config and connect to database
	config.LoadConfig()
	database.ConnectDb()

	path := "roster.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}

	stats, err := importRoster(database.Database.Db, records, config.AppConfig.SaltRound)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Import complete: %d created, %d existing, %d enrolled, %d skipped",
		stats.Created, stats.Existing, stats.Enrolled, stats.Skipped)
}

// importRoster creates missing students and enrolls them in the named course.
// The header must contain username, email, password and course_title.
func importRoster(db *gorm.DB, records [][]string, cost int) (rosterStats, error) {
	var stats rosterStats
	if len(records) < 2 {
		return stats, errors.New("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{"username", "email", "password", "course_title"} {
		if _, ok := headerIndex[col]; !ok {
			return stats, errors.Errorf("missing column %q", col)
		}
	}

	courses := make(map[string]uint)
	for i, row := range records[1:] {
		username := getField(row, headerIndex, "username")
		email := getField(row, headerIndex, "email")
		title := getField(row, headerIndex, "course_title")
		if username == "" || email == "" || title == "" {
			log.Printf("Row %d: missing username, email or course title, skipping", i+2)
			stats.Skipped++
			continue
		}

		courseID, ok := courses[title]
		if !ok {
			var c course.Course
			if err := db.Where("title = ?", title).First(&c).Error; err != nil {
				if apperror.IsNotFound(err) {
					log.Printf("Row %d: course %q not found, skipping", i+2, title)
					stats.Skipped++
					continue
				}
				return stats, errors.Wrap(err, "load course")
			}
			courseID = c.ID
			courses[title] = courseID
		}

		var user models.User
		err := db.Where("username = ?", username).First(&user).Error
		switch {
		case err == nil:
			stats.Existing++
		case apperror.IsNotFound(err):
			user, err = authsvc.CreateUser(db, authsvc.RegisterInput{
				Username: username,
				Email:    email,
				Password: getField(row, headerIndex, "password"),
				RoleID:   models.RoleStudentID,
			}, cost)
			if err != nil {
				log.Printf("Row %d: failed to create %s: %v", i+2, username, err)
				stats.Skipped++
				continue
			}
			stats.Created++
		default:
			return stats, errors.Wrap(err, "load user")
		}

		created, err := coursesvc.Enroll(db, user.ID, courseID)
		if err != nil {
			return stats, err
		}
		if created {
			stats.Enrolled++
		}
	}
	return stats, nil
}

func getField(row []string, headerIndex map[string]int, name string) string {
	if idx, ok := headerIndex[name]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
