// Package policy holds the authorization predicates evaluated before each mutating operation.
// They take plain values so they can be tested without a request or a database.
package policy

import (
	"coursemanager/models"
	"coursemanager/models/course"
)

// Actor is the authenticated caller as seen by the engines
type Actor struct {
	ID   uint
	Role string
}

// ActorOf builds an Actor from a user loaded with its Role.
func ActorOf(u models.User) Actor {
	return Actor{ID: u.ID, Role: u.RoleName()}
}

func (a Actor) IsAdmin() bool   { return a.Role == models.RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == models.RoleTeacher }
func (a Actor) IsStudent() bool { return a.Role == models.RoleStudent }

// IsCreator reports whether the actor owns the course.
func IsCreator(a Actor, c course.Course) bool {
	return c.ID != 0 && c.CreatorID == a.ID
}

// CanCreateCourse allows teachers only.
func CanCreateCourse(a Actor) bool {
	return a.IsTeacher()
}

// CanEditCourse allows the teacher who created the course.
func CanEditCourse(a Actor, c course.Course) bool {
	return a.IsTeacher() && IsCreator(a, c)
}

// CanManageCourse allows the creator or any admin. Quizzes, attendance and reports use it.
func CanManageCourse(a Actor, c course.Course) bool {
	return a.IsAdmin() || IsCreator(a, c)
}

// CanListLessons refuses teachers looking at someone else's course.
func CanListLessons(a Actor, c course.Course) bool {
	if a.IsTeacher() {
		return IsCreator(a, c)
	}
	return true
}

// CanEnrollOthers allows the creating teacher to enroll a user holding the student role.
func CanEnrollOthers(a Actor, c course.Course, target models.User) bool {
	return CanEditCourse(a, c) && target.RoleID == models.RoleStudentID
}

// CanViewUser allows a user to see their own data, and admins to see anyone's.
func CanViewUser(a Actor, userID uint) bool {
	return a.IsAdmin() || a.ID == userID
}

// CanReviewQuiz exposes correct answers to course managers, and to students whose attempts are used up.
func CanReviewQuiz(a Actor, c course.Course, q course.Quiz, attemptsUsed int64) bool {
	if CanManageCourse(a, c) {
		return true
	}
	return attemptsUsed >= int64(q.MaxAttempts)
}

// CanRegisterAs limits self-registration to non-admin roles.
func CanRegisterAs(roleID uint) bool {
	return roleID == models.RoleTeacherID || roleID == models.RoleStudentID
}
