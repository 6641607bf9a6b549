package attendance

import "time"

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	return s == StatusPresent || s == StatusAbsent
}

// Session is a time-boxed attendance window for a course, optionally tied to a lesson.
// Only lesson-linked sessions are swept for absentees.
type Session struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CourseID  uint      `json:"course_id" gorm:"index;not null"`
	LessonID  *uint     `json:"lesson_id" gorm:"index"`
	StartTime time.Time `json:"start_time" gorm:"not null"`
	EndTime   time.Time `json:"end_time" gorm:"index;not null"`
	Type      string    `json:"type" gorm:"size:50;not null"`
	Summary   *string   `json:"summary"`
	CreatedBy uint      `json:"created_by" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}

func (Session) TableName() string { return "attendance_sessions" }

// IsOpen reports whether now falls inside the inclusive [StartTime, EndTime] window.
func (s Session) IsOpen(now time.Time) bool {
	return !now.Before(s.StartTime) && !now.After(s.EndTime)
}

// State is scheduled, active or closed relative to now
func (s Session) State(now time.Time) string {
	switch {
	case now.Before(s.StartTime):
		return "scheduled"
	case now.After(s.EndTime):
		return "closed"
	default:
		return "active"
	}
}

// Record is unique per (session, user); the index name matches the migration history.
type Record struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	UserID              uint       `json:"user_id" gorm:"not null;uniqueIndex:uix_attendance_session_student,priority:2"`
	AttendanceSessionID uint       `json:"attendance_session_id" gorm:"not null;uniqueIndex:uix_attendance_session_student,priority:1"`
	Status              Status     `json:"status" gorm:"size:20;not null"`
	CheckInTime         *time.Time `json:"check_in_time"`
	UpdatedAt           *time.Time `json:"updated_at" gorm:"autoUpdateTime:false"`
}

func (Record) TableName() string { return "student_attendances" }
