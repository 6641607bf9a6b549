package course

import "time"

// Lesson belongs to exactly one course
type Lesson struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title" gorm:"size:255;not null"`
	Content   string    `json:"content"`
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LessonProgress is created lazily, only by quiz submission
type LessonProgress struct {
	UserID      uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	LessonID    uint      `json:"lesson_id" gorm:"primaryKey;autoIncrement:false;index"`
	IsCompleted bool      `json:"is_completed"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (LessonProgress) TableName() string { return "user_lesson_progress" }
