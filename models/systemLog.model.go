package models

import "time"

// Audit actions written to system_logs
const (
	ActionRoleAssigned    = "role_assigned"
	ActionCourseCreated   = "course_created"
	ActionCourseDeleted   = "course_deleted"
	ActionQuizSubmitted   = "quiz_submitted"
	ActionAttendanceSweep = "attendance_sweep"
	ActionUserLogin       = "user_login"
)

// SystemLog is an append-only audit row. UserID is nil for system actions.
type SystemLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	Action    string    `json:"action" gorm:"size:100;not null"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp" gorm:"index;not null"`
}
