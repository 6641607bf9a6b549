// Package coursesvc implements the course and lesson catalog: ownership, enrollment and completion.
package coursesvc

import (
	"coursemanager/models"
	"coursemanager/models/attendance"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/services/auditsvc"
	"coursemanager/utils/apperror"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCourseNotFound    = apperror.NotFound("Course not found!")
	ErrLessonNotFound    = apperror.NotFound("Lesson not found!")
	ErrUserNotFound      = apperror.NotFound("User not found!")
	ErrTeacherOnly       = apperror.Forbidden("Only teachers can create courses!")
	ErrNotCreator        = apperror.Forbidden("Only the course creator can perform this action!")
	ErrNotEnrolled       = apperror.Forbidden("You are not enrolled in this course!")
	ErrNotAllowed        = apperror.Forbidden("You are not allowed to view this resource!")
	ErrTitleTaken        = apperror.BadRequest("Course title already exists!")
	ErrNotStudent        = apperror.BadRequest("User is not a student!")
	ErrNoLessons         = apperror.BadRequest("No lessons found in course!")
	ErrLessonsIncomplete = apperror.BadRequest("Please complete all lessons before finishing the course!")
)

type CourseInput struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description" validate:"max=5000"`
}

type CourseUpdate struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// UserCourse is a course from a user's point of view
type UserCourse struct {
	CourseID         uint   `json:"course_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	IsCompleted      bool   `json:"is_completed"`
	TotalLessons     int64  `json:"total_lessons"`
	CompletedLessons int64  `json:"completed_lessons"`
	Progress         int    `json:"progress"`
}

// GetCourse loads a course or returns ErrCourseNotFound.
func GetCourse(db *gorm.DB, id uint) (course.Course, error) {
	var c course.Course
	if err := db.First(&c, id).Error; err != nil {
		if apperror.IsNotFound(err) {
			return c, ErrCourseNotFound
		}
		return c, errors.Wrap(err, "load course")
	}
	return c, nil
}

// IsEnrolled reports whether the user holds an enrollment in the course.
func IsEnrolled(db *gorm.DB, userID, courseID uint) (bool, error) {
	var count int64
	err := db.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	return count > 0, errors.Wrap(err, "check enrollment")
}

func CreateCourse(db *gorm.DB, actor policy.Actor, input CourseInput) (course.Course, error) {
	if !policy.CanCreateCourse(actor) {
		return course.Course{}, ErrTeacherOnly
	}

	c := course.Course{
		Title:       input.Title,
		Description: input.Description,
		CreatorID:   actor.ID,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		return auditsvc.By(tx, actor.ID, models.ActionCourseCreated, fmt.Sprintf("course %d %q", c.ID, c.Title))
	})
	if apperror.IsUniqueViolation(err) {
		return course.Course{}, ErrTitleTaken
	}
	return c, errors.Wrap(err, "create course")
}

// UpdateCourse applies the non-nil fields. Creators and admins may update.
func UpdateCourse(db *gorm.DB, actor policy.Actor, id uint, input CourseUpdate) (course.Course, error) {
	c, err := GetCourse(db, id)
	if err != nil {
		return c, err
	}
	if !policy.CanManageCourse(actor, c) {
		return c, ErrNotCreator
	}

	if input.Title != nil {
		c.Title = *input.Title
	}
	if input.Description != nil {
		c.Description = *input.Description
	}
	if err := db.Save(&c).Error; err != nil {
		if apperror.IsUniqueViolation(err) {
			return c, ErrTitleTaken
		}
		return c, errors.Wrap(err, "update course")
	}
	return c, nil
}

// DeleteCourse removes the course with everything hanging off it in one transaction.
func DeleteCourse(db *gorm.DB, actor policy.Actor, id uint) error {
	c, err := GetCourse(db, id)
	if err != nil {
		return err
	}
	if !policy.CanManageCourse(actor, c) {
		return ErrNotCreator
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var lessonIDs []uint
		if err := tx.Model(&course.Lesson{}).Where("course_id = ?", c.ID).Pluck("id", &lessonIDs).Error; err != nil {
			return errors.Wrap(err, "list lessons")
		}
		if err := deleteLessonData(tx, lessonIDs); err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", c.ID).Delete(&course.Lesson{}).Error; err != nil {
			return errors.Wrap(err, "delete lessons")
		}
		var sessionIDs []uint
		if err := tx.Model(&attendance.Session{}).Where("course_id = ?", c.ID).Pluck("id", &sessionIDs).Error; err != nil {
			return errors.Wrap(err, "list sessions")
		}
		if err := deleteSessions(tx, sessionIDs); err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", c.ID).Delete(&course.Enrollment{}).Error; err != nil {
			return errors.Wrap(err, "delete enrollments")
		}
		if err := tx.Where("course_id = ?", c.ID).Delete(&models.Feedback{}).Error; err != nil {
			return errors.Wrap(err, "delete feedback")
		}
		if err := tx.Delete(&c).Error; err != nil {
			return errors.Wrap(err, "delete course")
		}
		return auditsvc.By(tx, actor.ID, models.ActionCourseDeleted, fmt.Sprintf("course %d %q", c.ID, c.Title))
	})
}

// ListCourses returns every course, oldest first.
func ListCourses(db *gorm.DB) ([]course.Course, error) {
	var courses []course.Course
	err := db.Order("id asc").Find(&courses).Error
	return courses, errors.Wrap(err, "list courses")
}

// Enroll enrolls the user. It returns false when the enrollment already existed.
func Enroll(db *gorm.DB, userID, courseID uint) (bool, error) {
	if _, err := GetCourse(db, courseID); err != nil {
		return false, err
	}
	return insertEnrollment(db, userID, courseID)
}

// EnrollUser lets the course creator enroll a student. Idempotent like Enroll.
func EnrollUser(db *gorm.DB, actor policy.Actor, courseID, targetID uint) (bool, error) {
	c, err := GetCourse(db, courseID)
	if err != nil {
		return false, err
	}
	if !policy.CanEditCourse(actor, c) {
		return false, ErrNotCreator
	}

	var target models.User
	if err := db.First(&target, targetID).Error; err != nil {
		if apperror.IsNotFound(err) {
			return false, ErrUserNotFound
		}
		return false, errors.Wrap(err, "load user")
	}
	if !policy.CanEnrollOthers(actor, c, target) {
		return false, ErrNotStudent
	}
	return insertEnrollment(db, target.ID, c.ID)
}

func insertEnrollment(db *gorm.DB, userID, courseID uint) (bool, error) {
	enrollment := course.Enrollment{UserID: userID, CourseID: courseID}
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "create enrollment")
	}
	return res.RowsAffected > 0, nil
}

// Complete marks the user's enrollment complete once every lesson of the course is complete.
func Complete(db *gorm.DB, userID, courseID uint) error {
	if _, err := GetCourse(db, courseID); err != nil {
		return err
	}
	enrolled, err := IsEnrolled(db, userID, courseID)
	if err != nil {
		return err
	}
	if !enrolled {
		return ErrNotEnrolled
	}

	total, completed, err := lessonCounts(db, userID, courseID)
	if err != nil {
		return err
	}
	if total == 0 {
		return ErrNoLessons
	}
	if completed < total {
		return ErrLessonsIncomplete
	}

	err = db.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Update("is_completed", true).Error
	return errors.Wrap(err, "complete enrollment")
}

// lessonCounts returns the course's lesson count and how many of them the user completed.
func lessonCounts(db *gorm.DB, userID, courseID uint) (int64, int64, error) {
	var total, completed int64
	if err := db.Model(&course.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return 0, 0, errors.Wrap(err, "count lessons")
	}
	err := db.Model(&course.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = user_lesson_progress.lesson_id").
		Where("lessons.course_id = ? AND user_lesson_progress.user_id = ? AND user_lesson_progress.is_completed = ?", courseID, userID, true).
		Count(&completed).Error
	return total, completed, errors.Wrap(err, "count completed lessons")
}

// CoursesByUser lists the user's enrollments with lesson progress.
func CoursesByUser(db *gorm.DB, actor policy.Actor, userID uint) ([]UserCourse, error) {
	if !policy.CanViewUser(actor, userID) {
		return nil, ErrNotAllowed
	}

	type row struct {
		CourseID    uint
		Title       string
		Description string
		IsCompleted bool
	}
	var rows []row
	err := db.Table("user_course").
		Select("courses.id AS course_id, courses.title, courses.description, user_course.is_completed").
		Joins("JOIN courses ON courses.id = user_course.course_id").
		Where("user_course.user_id = ?", userID).
		Order("courses.id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list user courses")
	}

	result := make([]UserCourse, 0, len(rows))
	for _, r := range rows {
		total, completed, err := lessonCounts(db, userID, r.CourseID)
		if err != nil {
			return nil, err
		}
		uc := UserCourse{
			CourseID:         r.CourseID,
			Title:            r.Title,
			Description:      r.Description,
			IsCompleted:      r.IsCompleted,
			TotalLessons:     total,
			CompletedLessons: completed,
		}
		if total > 0 {
			uc.Progress = int(completed * 100 / total)
		}
		result = append(result, uc)
	}
	return result, nil
}

// UsersByCourse lists enrolled users. Only the creator or an admin may look.
func UsersByCourse(db *gorm.DB, actor policy.Actor, courseID uint) ([]models.User, error) {
	c, err := GetCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageCourse(actor, c) {
		return nil, ErrNotCreator
	}
	return EnrolledUsers(db, courseID)
}

// EnrolledUsers returns the users enrolled in a course with their roles preloaded.
func EnrolledUsers(db *gorm.DB, courseID uint) ([]models.User, error) {
	var users []models.User
	err := db.Preload("Role").
		Joins("JOIN user_course ON user_course.user_id = users.id").
		Where("user_course.course_id = ?", courseID).
		Order("users.id asc").
		Find(&users).Error
	return users, errors.Wrap(err, "list enrolled users")
}

// Recommendations returns up to five courses the user is not enrolled in.
func Recommendations(db *gorm.DB, actor policy.Actor, userID uint) ([]course.Course, error) {
	if !policy.CanViewUser(actor, userID) {
		return nil, ErrNotAllowed
	}
	var courses []course.Course
	err := db.Where("id NOT IN (?)", db.Table("user_course").Select("course_id").Where("user_id = ?", userID)).
		Order("id asc").
		Limit(5).
		Find(&courses).Error
	return courses, errors.Wrap(err, "list recommendations")
}
