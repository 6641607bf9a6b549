// Package quizsvc is the quiz engine: authoring, the take/review views, submission and scoring.
package quizsvc

import (
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/services/coursesvc"
	"coursemanager/utils/apperror"
	"fmt"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrQuizNotFound      = apperror.NotFound("Quiz not found!")
	ErrNoQuizForLesson   = apperror.NotFound("No quiz found for this lesson!")
	ErrQuizExists        = apperror.Conflict("This lesson already has a quiz!")
	ErrAttemptsExhausted = apperror.BadRequest("Maximum attempts reached for this quiz!")
	ErrHasSubmissions    = apperror.BadRequest("Cannot delete a quiz that has submissions!")
	ErrNotAllowed        = apperror.Forbidden("You are not allowed to manage this quiz!")
	ErrReviewLocked      = apperror.Forbidden("Answers are available once all attempts are used!")
)

// invalidQuestion names the question whose correct answer is missing from its choices.
func invalidQuestion(text string) error {
	return apperror.BadRequest(fmt.Sprintf("Correct answer must be in choices for question: %s", text))
}

type QuestionInput struct {
	Question      string   `json:"question" validate:"required,notblank"`
	Choices       []string `json:"choices" validate:"required,min=1,dive,required"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
}

type CreateInput struct {
	LessonID     uint            `json:"lesson_id" validate:"required"`
	Title        string          `json:"title" validate:"required,notblank,max=255"`
	MaxAttempts  *int            `json:"max_attempts" validate:"omitempty,min=1"`
	PassingScore *int            `json:"passing_score" validate:"omitempty,min=0,max=100"`
	Questions    []QuestionInput `json:"questions" validate:"required,min=1,dive"`
}

type QuestionUpdate struct {
	ID            uint     `json:"id" validate:"required"`
	Question      *string  `json:"question" validate:"omitempty,min=1"`
	Choices       []string `json:"choices" validate:"omitempty,min=1,dive,required"`
	CorrectAnswer *string  `json:"correct_answer" validate:"omitempty,min=1"`
}

type UpdateInput struct {
	Title        *string          `json:"title" validate:"omitempty,min=1,max=255"`
	MaxAttempts  *int             `json:"max_attempts" validate:"omitempty,min=1"`
	PassingScore *int             `json:"passing_score" validate:"omitempty,min=0,max=100"`
	Questions    []QuestionUpdate `json:"questions" validate:"omitempty,dive"`
}

// Create stores a quiz and its questions atomically. One invalid question aborts the whole quiz.
func Create(db *gorm.DB, actor policy.Actor, input CreateInput) (course.Quiz, error) {
	lesson, err := coursesvc.GetLesson(db, input.LessonID)
	if err != nil {
		return course.Quiz{}, err
	}
	c, err := coursesvc.GetCourse(db, lesson.CourseID)
	if err != nil {
		return course.Quiz{}, err
	}
	if !policy.CanManageCourse(actor, c) {
		return course.Quiz{}, ErrNotAllowed
	}

	quiz := course.Quiz{
		LessonID:     lesson.ID,
		Title:        input.Title,
		MaxAttempts:  course.DefaultMaxAttempts,
		PassingScore: course.DefaultPassingScore,
	}
	if input.MaxAttempts != nil {
		quiz.MaxAttempts = *input.MaxAttempts
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}

	questions := make([]course.Question, 0, len(input.Questions))
	for _, q := range input.Questions {
		question := course.Question{
			Question:      q.Question,
			Choices:       q.Choices,
			CorrectAnswer: q.CorrectAnswer,
		}
		if !question.HasChoice(question.CorrectAnswer) {
			return course.Quiz{}, invalidQuestion(q.Question)
		}
		questions = append(questions, question)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions").Create(&quiz).Error; err != nil {
			return err
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].QuizID = quiz.ID
		}
		return tx.Create(&questions).Error
	})
	if apperror.IsUniqueViolation(err) {
		return course.Quiz{}, ErrQuizExists
	}
	if err != nil {
		return course.Quiz{}, errors.Wrap(err, "create quiz")
	}
	quiz.Questions = questions
	return quiz, nil
}

// Get loads a quiz with its questions.
func Get(db *gorm.DB, quizID uint) (course.Quiz, error) {
	var quiz course.Quiz
	err := db.Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).First(&quiz, quizID).Error
	if apperror.IsNotFound(err) {
		return quiz, ErrQuizNotFound
	}
	return quiz, errors.Wrap(err, "load quiz")
}

// owningCourse resolves the course a quiz belongs to through its lesson.
func owningCourse(db *gorm.DB, quiz course.Quiz) (course.Course, error) {
	lesson, err := coursesvc.GetLesson(db, quiz.LessonID)
	if err != nil {
		return course.Course{}, err
	}
	return coursesvc.GetCourse(db, lesson.CourseID)
}

// managed loads a quiz the actor may manage.
func managed(db *gorm.DB, actor policy.Actor, quizID uint) (course.Quiz, course.Course, error) {
	quiz, err := Get(db, quizID)
	if err != nil {
		return quiz, course.Course{}, err
	}
	c, err := owningCourse(db, quiz)
	if err != nil {
		return quiz, c, err
	}
	if !policy.CanManageCourse(actor, c) {
		return quiz, c, ErrNotAllowed
	}
	return quiz, c, nil
}

// Update changes quiz settings and replaces question fields by id.
// Question ids that do not belong to the quiz are ignored.
func Update(db *gorm.DB, actor policy.Actor, quizID uint, input UpdateInput) (course.Quiz, error) {
	quiz, _, err := managed(db, actor, quizID)
	if err != nil {
		return quiz, err
	}

	if input.Title != nil {
		quiz.Title = *input.Title
	}
	if input.MaxAttempts != nil {
		quiz.MaxAttempts = *input.MaxAttempts
	}
	if input.PassingScore != nil {
		quiz.PassingScore = *input.PassingScore
	}

	byID := make(map[uint]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		byID[q.ID] = i
	}
	changed := make(map[int]bool)
	for _, u := range input.Questions {
		i, ok := byID[u.ID]
		if !ok {
			continue
		}
		q := &quiz.Questions[i]
		if u.Question != nil {
			q.Question = *u.Question
		}
		if u.Choices != nil {
			q.Choices = u.Choices
		}
		if u.CorrectAnswer != nil {
			q.CorrectAnswer = *u.CorrectAnswer
		}
		if !q.HasChoice(q.CorrectAnswer) {
			return quiz, invalidQuestion(q.Question)
		}
		changed[i] = true
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions").Save(&quiz).Error; err != nil {
			return err
		}
		for i := range changed {
			if err := tx.Save(&quiz.Questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return quiz, errors.Wrap(err, "update quiz")
}

// Delete removes a quiz and its questions. Quizzes with submissions are kept.
func Delete(db *gorm.DB, actor policy.Actor, quizID uint) error {
	quiz, _, err := managed(db, actor, quizID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var submissions int64
		if err := tx.Model(&course.QuizResult{}).Where("quiz_id = ?", quiz.ID).Count(&submissions).Error; err != nil {
			return errors.Wrap(err, "count submissions")
		}
		if submissions > 0 {
			return ErrHasSubmissions
		}
		if err := tx.Where("quiz_id = ?", quiz.ID).Delete(&course.Question{}).Error; err != nil {
			return errors.Wrap(err, "delete questions")
		}
		return errors.Wrap(tx.Delete(&course.Quiz{}, quiz.ID).Error, "delete quiz")
	})
}
