// Package adminsvc is the reporting and role management layer used by admins.
package adminsvc

import (
	"coursemanager/models"
	"coursemanager/models/course"
	"coursemanager/services/coursesvc"
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Overview struct {
	TotalUsers            int64   `json:"total_users"`
	TotalCourses          int64   `json:"total_courses"`
	TotalLessons          int64   `json:"total_lessons"`
	ActiveStudents        int64   `json:"active_students"`
	AverageCompletionRate float64 `json:"average_completion_rate"`
	NewUsersToday         int64   `json:"new_users_today"`
	NewUsersThisWeek      int64   `json:"new_users_this_week"`
}

type CourseStats struct {
	ID              uint    `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	CreatorID       uint    `json:"creator_id"`
	CreatorUsername string  `json:"creator_username"`
	TotalStudents   int64   `json:"total_students"`
	TotalLessons    int64   `json:"total_lessons"`
	CompletionRate  float64 `json:"completion_rate"`
}

type CourseDetails struct {
	CourseStats
	Lessons  []course.Lesson `json:"lessons"`
	Students []models.User   `json:"students"`
}

type UserFilter struct {
	Search string `query:"search"`
	RoleID *uint  `query:"role_id"`
	Skip   int    `query:"skip"`
	Limit  int    `query:"limit"`
}

// DefaultLimit applies when a listing is requested without a limit
const DefaultLimit = 100

// round2 rounds to two decimal places
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GetOverview computes the dashboard counters. at anchors "today" and "this week".
func GetOverview(db *gorm.DB, at time.Time) (Overview, error) {
	var o Overview
	counts := []struct {
		model interface{}
		dest  *int64
	}{
		{&models.User{}, &o.TotalUsers},
		{&course.Course{}, &o.TotalCourses},
		{&course.Lesson{}, &o.TotalLessons},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dest).Error; err != nil {
			return o, errors.Wrap(err, "count totals")
		}
	}

	if err := db.Model(&course.LessonProgress{}).Distinct("user_id").Count(&o.ActiveStudents).Error; err != nil {
		return o, errors.Wrap(err, "count active students")
	}

	var avg sql.NullFloat64
	err := db.Model(&course.LessonProgress{}).
		Select("AVG(CASE WHEN is_completed THEN 1.0 ELSE 0.0 END)").
		Row().Scan(&avg)
	if err != nil {
		return o, errors.Wrap(err, "average completion")
	}
	if avg.Valid {
		o.AverageCompletionRate = round2(avg.Float64 * 100)
	}

	anchor := now.With(at.UTC())
	if err := db.Model(&models.User{}).Where("created_at >= ?", anchor.BeginningOfDay()).Count(&o.NewUsersToday).Error; err != nil {
		return o, errors.Wrap(err, "count new users today")
	}
	if err := db.Model(&models.User{}).Where("created_at >= ?", anchor.BeginningOfWeek()).Count(&o.NewUsersThisWeek).Error; err != nil {
		return o, errors.Wrap(err, "count new users this week")
	}
	return o, nil
}

// Users lists users filtered by a case-insensitive username/email search and a role.
func Users(db *gorm.DB, filter UserFilter) ([]models.User, int64, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	query := db.Model(&models.User{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if filter.RoleID != nil {
		query = query.Where("role_id = ?", *filter.RoleID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}

	var users []models.User
	err := query.Preload("Role").Order("id asc").Offset(filter.Skip).Limit(filter.Limit).Find(&users).Error
	return users, total, errors.Wrap(err, "list users")
}

// CoursesWithStats returns every course with its enrollment, lesson and completion figures.
func CoursesWithStats(db *gorm.DB) ([]CourseStats, error) {
	var courses []course.Course
	if err := db.Order("id asc").Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "list courses")
	}

	stats := make([]CourseStats, 0, len(courses))
	for _, c := range courses {
		s, err := courseStats(db, c)
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func courseStats(db *gorm.DB, c course.Course) (CourseStats, error) {
	s := CourseStats{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		CreatorID:   c.CreatorID,
	}

	var creator models.User
	err := db.Select("username").First(&creator, c.CreatorID).Error
	switch {
	case err == nil:
		s.CreatorUsername = creator.Username
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return s, errors.Wrap(err, "load creator")
	}

	if err := db.Model(&course.Enrollment{}).Where("course_id = ?", c.ID).Count(&s.TotalStudents).Error; err != nil {
		return s, errors.Wrap(err, "count students")
	}
	if err := db.Model(&course.Lesson{}).Where("course_id = ?", c.ID).Count(&s.TotalLessons).Error; err != nil {
		return s, errors.Wrap(err, "count lessons")
	}

	var progressRows, completedRows int64
	progress := db.Model(&course.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = user_lesson_progress.lesson_id").
		Where("lessons.course_id = ?", c.ID)
	if err := progress.Count(&progressRows).Error; err != nil {
		return s, errors.Wrap(err, "count progress")
	}
	if progressRows > 0 {
		err := db.Model(&course.LessonProgress{}).
			Joins("JOIN lessons ON lessons.id = user_lesson_progress.lesson_id").
			Where("lessons.course_id = ? AND user_lesson_progress.is_completed = ?", c.ID, true).
			Count(&completedRows).Error
		if err != nil {
			return s, errors.Wrap(err, "count completed progress")
		}
		s.CompletionRate = round2(float64(completedRows) * 100 / float64(progressRows))
	}
	return s, nil
}

// Details returns one course's stats with its lessons and enrolled students.
func Details(db *gorm.DB, courseID uint) (CourseDetails, error) {
	c, err := coursesvc.GetCourse(db, courseID)
	if err != nil {
		return CourseDetails{}, err
	}
	stats, err := courseStats(db, c)
	if err != nil {
		return CourseDetails{}, err
	}

	details := CourseDetails{CourseStats: stats}
	if err := db.Where("course_id = ?", c.ID).Order("id asc").Find(&details.Lessons).Error; err != nil {
		return details, errors.Wrap(err, "list lessons")
	}
	if details.Students, err = coursesvc.EnrolledUsers(db, c.ID); err != nil {
		return details, err
	}
	return details, nil
}

// Logs returns audit entries, newest first.
func Logs(db *gorm.DB, skip, limit int) ([]models.SystemLog, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	var logs []models.SystemLog
	err := db.Order("timestamp desc, id desc").Offset(skip).Limit(limit).Find(&logs).Error
	return logs, errors.Wrap(err, "list logs")
}
