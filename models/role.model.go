package models

// Role names as stored in the roles table
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Seeded role ids, fixed so tokens and clients can rely on them
const (
	RoleTeacherID uint = 1
	RoleStudentID uint = 2
	RoleAdminID   uint = 3
)

type Role struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:50;uniqueIndex;not null"`
}
