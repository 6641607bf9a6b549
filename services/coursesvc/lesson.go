package coursesvc

import (
	"coursemanager/models/attendance"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/utils/apperror"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type LessonInput struct {
	Title   string `json:"title" validate:"required,notblank,max=255"`
	Content string `json:"content"`
}

type LessonUpdate struct {
	Title   *string `json:"title" validate:"omitempty,min=1,max=255"`
	Content *string `json:"content"`
}

// LessonWithProgress is a lesson plus the caller's completion flag
type LessonWithProgress struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsCompleted bool   `json:"is_completed"`
}

// GetLesson loads a lesson or returns ErrLessonNotFound.
func GetLesson(db *gorm.DB, id uint) (course.Lesson, error) {
	var lesson course.Lesson
	if err := db.First(&lesson, id).Error; err != nil {
		if apperror.IsNotFound(err) {
			return lesson, ErrLessonNotFound
		}
		return lesson, errors.Wrap(err, "load lesson")
	}
	return lesson, nil
}

// managedLesson loads a lesson and its course, requiring the actor to manage the course.
func managedLesson(db *gorm.DB, actor policy.Actor, lessonID uint) (course.Lesson, course.Course, error) {
	lesson, err := GetLesson(db, lessonID)
	if err != nil {
		return lesson, course.Course{}, err
	}
	c, err := GetCourse(db, lesson.CourseID)
	if err != nil {
		return lesson, c, err
	}
	if !policy.CanManageCourse(actor, c) {
		return lesson, c, ErrNotCreator
	}
	return lesson, c, nil
}

func CreateLesson(db *gorm.DB, actor policy.Actor, courseID uint, input LessonInput) (course.Lesson, error) {
	c, err := GetCourse(db, courseID)
	if err != nil {
		return course.Lesson{}, err
	}
	if !policy.CanManageCourse(actor, c) {
		return course.Lesson{}, ErrNotCreator
	}

	lesson := course.Lesson{
		Title:    input.Title,
		Content:  input.Content,
		CourseID: c.ID,
	}
	err = db.Create(&lesson).Error
	return lesson, errors.Wrap(err, "create lesson")
}

// ListLessons returns a course's lessons. Teachers only see their own courses.
func ListLessons(db *gorm.DB, actor policy.Actor, courseID uint) ([]course.Lesson, error) {
	c, err := GetCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if !policy.CanListLessons(actor, c) {
		return nil, ErrNotCreator
	}

	var lessons []course.Lesson
	err = db.Where("course_id = ?", courseID).Order("id asc").Find(&lessons).Error
	return lessons, errors.Wrap(err, "list lessons")
}

func UpdateLesson(db *gorm.DB, actor policy.Actor, lessonID uint, input LessonUpdate) (course.Lesson, error) {
	lesson, _, err := managedLesson(db, actor, lessonID)
	if err != nil {
		return lesson, err
	}

	if input.Title != nil {
		lesson.Title = *input.Title
	}
	if input.Content != nil {
		lesson.Content = *input.Content
	}
	err = db.Save(&lesson).Error
	return lesson, errors.Wrap(err, "update lesson")
}

// DeleteLesson removes the lesson, its quiz with results, and progress rows.
// Attendance sessions linked to the lesson are kept but unlinked.
func DeleteLesson(db *gorm.DB, actor policy.Actor, lessonID uint) error {
	lesson, _, err := managedLesson(db, actor, lessonID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := deleteLessonData(tx, []uint{lesson.ID}); err != nil {
			return err
		}
		if err := tx.Model(&attendance.Session{}).Where("lesson_id = ?", lesson.ID).Update("lesson_id", nil).Error; err != nil {
			return errors.Wrap(err, "unlink sessions")
		}
		return errors.Wrap(tx.Delete(&lesson).Error, "delete lesson")
	})
}

// LessonsWithProgress lists the course's lessons with the enrolled caller's completion flags.
func LessonsWithProgress(db *gorm.DB, userID, courseID uint) ([]LessonWithProgress, error) {
	if _, err := GetCourse(db, courseID); err != nil {
		return nil, err
	}
	enrolled, err := IsEnrolled(db, userID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	var rows []LessonWithProgress
	err = db.Table("lessons").
		Select("lessons.id, lessons.title, lessons.content, COALESCE(user_lesson_progress.is_completed, ?) AS is_completed", false).
		Joins("LEFT JOIN user_lesson_progress ON user_lesson_progress.lesson_id = lessons.id AND user_lesson_progress.user_id = ?", userID).
		Where("lessons.course_id = ?", courseID).
		Order("lessons.id asc").
		Scan(&rows).Error
	return rows, errors.Wrap(err, "list lessons with progress")
}

// LessonCompleted reports the user's completion flag for one lesson. No row means not completed.
func LessonCompleted(db *gorm.DB, userID, lessonID uint) (bool, error) {
	if _, err := GetLesson(db, lessonID); err != nil {
		return false, err
	}

	var progress course.LessonProgress
	err := db.Where("user_id = ? AND lesson_id = ?", userID, lessonID).First(&progress).Error
	if apperror.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "load lesson progress")
	}
	return progress.IsCompleted, nil
}

// deleteLessonData clears quizzes, questions, results and progress for the given lessons.
func deleteLessonData(tx *gorm.DB, lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}

	var quizIDs []uint
	if err := tx.Model(&course.Quiz{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &quizIDs).Error; err != nil {
		return errors.Wrap(err, "list quizzes")
	}
	if len(quizIDs) > 0 {
		if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&course.QuizResult{}).Error; err != nil {
			return errors.Wrap(err, "delete quiz results")
		}
		if err := tx.Where("quiz_id IN ?", quizIDs).Delete(&course.Question{}).Error; err != nil {
			return errors.Wrap(err, "delete questions")
		}
		if err := tx.Where("id IN ?", quizIDs).Delete(&course.Quiz{}).Error; err != nil {
			return errors.Wrap(err, "delete quizzes")
		}
	}
	err := tx.Where("lesson_id IN ?", lessonIDs).Delete(&course.LessonProgress{}).Error
	return errors.Wrap(err, "delete lesson progress")
}

// deleteSessions removes attendance sessions and their records.
func deleteSessions(tx *gorm.DB, sessionIDs []uint) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	if err := tx.Where("attendance_session_id IN ?", sessionIDs).Delete(&attendance.Record{}).Error; err != nil {
		return errors.Wrap(err, "delete attendance records")
	}
	err := tx.Where("id IN ?", sessionIDs).Delete(&attendance.Session{}).Error
	return errors.Wrap(err, "delete attendance sessions")
}
