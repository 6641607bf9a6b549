package course

import "time"

// Enrollment links a user to a course. The composite key keeps it unique per (user, course).
type Enrollment struct {
	UserID      uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	CourseID    uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false;index"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Enrollment) TableName() string { return "user_course" }
