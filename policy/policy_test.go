package policy

import (
	"testing"

	"coursemanager/models"
	"coursemanager/models/course"

	"github.com/stretchr/testify/assert"
)

func TestCoursePredicates(t *testing.T) {
	owned := course.Course{ID: 1, CreatorID: 10}
	teacher := Actor{ID: 10, Role: models.RoleTeacher}
	otherTeacher := Actor{ID: 11, Role: models.RoleTeacher}
	admin := Actor{ID: 1, Role: models.RoleAdmin}
	student := Actor{ID: 20, Role: models.RoleStudent}

	tests := []struct {
		name   string
		got    bool
		expect bool
	}{
		{"creator edits", CanEditCourse(teacher, owned), true},
		{"other teacher cannot edit", CanEditCourse(otherTeacher, owned), false},
		{"admin cannot edit through teacher path", CanEditCourse(admin, owned), false},
		{"admin manages", CanManageCourse(admin, owned), true},
		{"creator manages", CanManageCourse(teacher, owned), true},
		{"student does not manage", CanManageCourse(student, owned), false},
		{"student lists lessons", CanListLessons(student, owned), true},
		{"other teacher cannot list lessons", CanListLessons(otherTeacher, owned), false},
		{"only teachers create courses", CanCreateCourse(student), false},
		{"teacher creates courses", CanCreateCourse(teacher), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.got)
		})
	}
}

func TestCanEnrollOthers(t *testing.T) {
	owned := course.Course{ID: 1, CreatorID: 10}
	teacher := Actor{ID: 10, Role: models.RoleTeacher}

	assert.True(t, CanEnrollOthers(teacher, owned, models.User{ID: 3, RoleID: models.RoleStudentID}))
	assert.False(t, CanEnrollOthers(teacher, owned, models.User{ID: 4, RoleID: models.RoleTeacherID}))
	assert.False(t, CanEnrollOthers(Actor{ID: 99, Role: models.RoleTeacher}, owned, models.User{ID: 3, RoleID: models.RoleStudentID}))
}

func TestCanReviewQuiz(t *testing.T) {
	owned := course.Course{ID: 1, CreatorID: 10}
	quiz := course.Quiz{ID: 5, MaxAttempts: 2}
	student := Actor{ID: 20, Role: models.RoleStudent}

	assert.False(t, CanReviewQuiz(student, owned, quiz, 0))
	assert.False(t, CanReviewQuiz(student, owned, quiz, 1))
	assert.True(t, CanReviewQuiz(student, owned, quiz, 2))
	assert.True(t, CanReviewQuiz(Actor{ID: 10, Role: models.RoleTeacher}, owned, quiz, 0))
}

func TestUserAndRegistrationPredicates(t *testing.T) {
	assert.True(t, CanViewUser(Actor{ID: 5, Role: models.RoleStudent}, 5))
	assert.False(t, CanViewUser(Actor{ID: 5, Role: models.RoleStudent}, 6))
	assert.True(t, CanViewUser(Actor{ID: 1, Role: models.RoleAdmin}, 6))

	assert.True(t, CanRegisterAs(models.RoleStudentID))
	assert.True(t, CanRegisterAs(models.RoleTeacherID))
	assert.False(t, CanRegisterAs(models.RoleAdminID))
}
