package course

import (
	"time"

	"gorm.io/datatypes"
)

const (
	DefaultMaxAttempts  = 1
	DefaultPassingScore = 70
)

// Quiz is attached to a lesson
type Quiz struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	LessonID     uint       `json:"lesson_id" gorm:"uniqueIndex;not null"`
	Title        string     `json:"title" gorm:"size:255;not null"`
	MaxAttempts  int        `json:"max_attempts" gorm:"not null"`
	PassingScore int        `json:"passing_score" gorm:"not null"`
	Questions    []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (Quiz) TableName() string { return "lesson_quizzes" }

// Question holds its choices as a JSON list. CorrectAnswer is always one of Choices.
type Question struct {
	ID            uint                        `json:"id" gorm:"primaryKey"`
	QuizID        uint                        `json:"quiz_id" gorm:"index;not null"`
	Question      string                      `json:"question" gorm:"not null"`
	Choices       datatypes.JSONSlice[string] `json:"choices" gorm:"not null"`
	CorrectAnswer string                      `json:"correct_answer" gorm:"not null"`
}

func (Question) TableName() string { return "quiz_questions" }

// HasChoice reports whether answer is one of the question's choices.
func (q Question) HasChoice(answer string) bool {
	for _, c := range q.Choices {
		if c == answer {
			return true
		}
	}
	return false
}

// SelectedAnswers maps question id to the chosen choice text
type SelectedAnswers map[uint]string

// QuizResult is one submitted attempt. Rows are never updated.
type QuizResult struct {
	ID              uint                                `json:"id" gorm:"primaryKey"`
	UserID          uint                                `json:"user_id" gorm:"index;not null"`
	QuizID          uint                                `json:"quiz_id" gorm:"index;not null"`
	SelectedAnswers datatypes.JSONType[SelectedAnswers] `json:"selected_answers"`
	Score           int                                 `json:"score"`
	SubmittedAt     time.Time                           `json:"submitted_at" gorm:"index;not null"`
}

func (QuizResult) TableName() string { return "student_quiz_results" }
