// Package usersvc covers user listing and the student dashboard summary.
package usersvc

import (
	"coursemanager/models"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/services/attendancesvc"
	"coursemanager/utils/apperror"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = apperror.NotFound("User not found!")
	ErrNotAllowed   = apperror.Forbidden("You are not allowed to view this user!")
)

type DashboardSummary struct {
	TotalCourses     int64    `json:"total_courses"`
	CompletedCourses int64    `json:"completed_courses"`
	TotalLessons     int64    `json:"total_lessons"`
	CompletedLessons int64    `json:"completed_lessons"`
	AttendanceRate   float64  `json:"attendance_rate"`
	Badges           []string `json:"badges"`
}

// List returns a page of users with their roles.
func List(db *gorm.DB, skip, limit int) ([]models.User, int64, error) {
	if limit <= 0 {
		limit = 100
	}
	var total int64
	if err := db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	var users []models.User
	err := db.Preload("Role").Order("id asc").Offset(skip).Limit(limit).Find(&users).Error
	return users, total, errors.Wrap(err, "list users")
}

// Get loads a user the actor may see.
func Get(db *gorm.DB, actor policy.Actor, id uint) (models.User, error) {
	if !policy.CanViewUser(actor, id) {
		return models.User{}, ErrNotAllowed
	}
	var user models.User
	err := db.Preload("Role").First(&user, id).Error
	if apperror.IsNotFound(err) {
		return user, ErrUserNotFound
	}
	return user, errors.Wrap(err, "load user")
}

// Summary aggregates a user's enrollments, lesson progress and attendance.
func Summary(db *gorm.DB, actor policy.Actor, userID uint) (DashboardSummary, error) {
	var s DashboardSummary
	if _, err := Get(db, actor, userID); err != nil {
		return s, err
	}

	if err := db.Model(&course.Enrollment{}).Where("user_id = ?", userID).Count(&s.TotalCourses).Error; err != nil {
		return s, errors.Wrap(err, "count courses")
	}
	if err := db.Model(&course.Enrollment{}).Where("user_id = ? AND is_completed = ?", userID, true).Count(&s.CompletedCourses).Error; err != nil {
		return s, errors.Wrap(err, "count completed courses")
	}
	err := db.Model(&course.Lesson{}).
		Joins("JOIN user_course ON user_course.course_id = lessons.course_id").
		Where("user_course.user_id = ?", userID).
		Count(&s.TotalLessons).Error
	if err != nil {
		return s, errors.Wrap(err, "count lessons")
	}
	if err := db.Model(&course.LessonProgress{}).Where("user_id = ? AND is_completed = ?", userID, true).Count(&s.CompletedLessons).Error; err != nil {
		return s, errors.Wrap(err, "count completed lessons")
	}

	rate, err := attendancesvc.AttendanceRate(db, userID)
	if err != nil {
		return s, err
	}
	s.AttendanceRate = rate
	s.Badges = badges(s)
	return s, nil
}

func badges(s DashboardSummary) []string {
	earned := []string{}
	if s.CompletedCourses > 0 {
		earned = append(earned, "course_finisher")
	}
	if s.TotalLessons > 0 && s.CompletedLessons >= s.TotalLessons {
		earned = append(earned, "all_lessons_done")
	}
	if s.AttendanceRate == 100 {
		earned = append(earned, "perfect_attendance")
	}
	return earned
}
