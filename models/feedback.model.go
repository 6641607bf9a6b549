package models

import "time"

type Feedback struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	CourseID  *uint     `json:"course_id" gorm:"index"`
	LessonID  *uint     `json:"lesson_id" gorm:"index"`
	Content   string    `json:"content" gorm:"not null"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}
