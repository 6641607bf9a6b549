package coursesvc

import (
	"coursemanager/models"
	"coursemanager/policy"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type FeedbackInput struct {
	CourseID *uint  `json:"course_id"`
	LessonID *uint  `json:"lesson_id"`
	Content  string `json:"content" validate:"required,max=2000"`
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
}

// CreateFeedback stores feedback written by userID about a course or lesson.
func CreateFeedback(db *gorm.DB, actor policy.Actor, userID uint, input FeedbackInput) (models.Feedback, error) {
	if actor.ID != userID {
		return models.Feedback{}, ErrNotAllowed
	}
	if input.CourseID != nil {
		if _, err := GetCourse(db, *input.CourseID); err != nil {
			return models.Feedback{}, err
		}
	}
	if input.LessonID != nil {
		lesson, err := GetLesson(db, *input.LessonID)
		if err != nil {
			return models.Feedback{}, err
		}
		if input.CourseID == nil {
			input.CourseID = &lesson.CourseID
		}
	}

	feedback := models.Feedback{
		UserID:   userID,
		CourseID: input.CourseID,
		LessonID: input.LessonID,
		Content:  input.Content,
		Rating:   input.Rating,
	}
	err := db.Create(&feedback).Error
	return feedback, errors.Wrap(err, "create feedback")
}

// CourseFeedback lists feedback for a course, newest first.
func CourseFeedback(db *gorm.DB, actor policy.Actor, courseID uint) ([]models.Feedback, error) {
	c, err := GetCourse(db, courseID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageCourse(actor, c) {
		return nil, ErrNotCreator
	}

	var feedback []models.Feedback
	err = db.Where("course_id = ?", courseID).Order("created_at desc, id desc").Find(&feedback).Error
	return feedback, errors.Wrap(err, "list feedback")
}
