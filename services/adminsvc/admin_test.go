package adminsvc

import (
	"coursemanager/models"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func addProgress(t *testing.T, db *gorm.DB, userID, lessonID uint, done bool) {
	t.Helper()
	require.NoError(t, db.Create(&course.LessonProgress{UserID: userID, LessonID: lessonID, IsCompleted: done, UpdatedAt: time.Now().UTC()}).Error)
}

func TestOverview(t *testing.T) {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	alice := testutil.CreateUser(t, db, models.RoleStudentID)
	bob := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)
	l1 := testutil.CreateLesson(t, db, c)
	l2 := testutil.CreateLesson(t, db, c)

	addProgress(t, db, alice.ID, l1.ID, true)
	addProgress(t, db, alice.ID, l2.ID, true)
	addProgress(t, db, bob.ID, l1.ID, false)

	o, err := GetOverview(db, time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 4, o.TotalUsers) // seeded admin included
	assert.EqualValues(t, 1, o.TotalCourses)
	assert.EqualValues(t, 2, o.TotalLessons)
	assert.EqualValues(t, 2, o.ActiveStudents)
	assert.Equal(t, 66.67, o.AverageCompletionRate)
	assert.EqualValues(t, 4, o.NewUsersToday)
	assert.EqualValues(t, 4, o.NewUsersThisWeek)

	later, err := GetOverview(db, time.Now().AddDate(0, 0, 8))
	require.NoError(t, err)
	assert.Zero(t, later.NewUsersThisWeek)
}

func TestOverviewWithoutProgress(t *testing.T) {
	db := testutil.OpenDB(t)

	o, err := GetOverview(db, time.Now())
	require.NoError(t, err)
	assert.Zero(t, o.AverageCompletionRate)
	assert.Zero(t, o.ActiveStudents)
}

func TestCoursesWithStats(t *testing.T) {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	alice := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)
	l1 := testutil.CreateLesson(t, db, c)
	l2 := testutil.CreateLesson(t, db, c)
	l3 := testutil.CreateLesson(t, db, c)
	testutil.Enroll(t, db, alice, c)
	addProgress(t, db, alice.ID, l1.ID, true)
	addProgress(t, db, alice.ID, l2.ID, false)
	addProgress(t, db, alice.ID, l3.ID, false)

	stats, err := CoursesWithStats(db)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, teacher.Username, stats[0].CreatorUsername)
	assert.EqualValues(t, 1, stats[0].TotalStudents)
	assert.EqualValues(t, 3, stats[0].TotalLessons)
	assert.Equal(t, 33.33, stats[0].CompletionRate)

	details, err := Details(db, c.ID)
	require.NoError(t, err)
	assert.Len(t, details.Lessons, 3)
	require.Len(t, details.Students, 1)
	assert.Equal(t, alice.ID, details.Students[0].ID)
}

func TestUsersFilter(t *testing.T) {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	testutil.CreateUser(t, db, models.RoleStudentID)

	teacherRole := uint(models.RoleTeacherID)
	users, total, err := Users(db, UserFilter{RoleID: &teacherRole})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, teacher.ID, users[0].ID)
	assert.Equal(t, models.RoleTeacher, users[0].RoleName())

	users, _, err = Users(db, UserFilter{Search: "ADMIN@EXAMPLE"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
}

func TestAssignRoleWritesAuditLog(t *testing.T) {
	db := testutil.OpenDB(t)
	admin := testutil.Admin(t, db)
	student := testutil.CreateUser(t, db, models.RoleStudentID)

	user, err := AssignRole(db, policy.ActorOf(admin), AssignRoleInput{UserID: student.ID, RoleID: models.RoleTeacherID})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, user.RoleName())

	var logs []models.SystemLog
	require.NoError(t, db.Where("action = ?", models.ActionRoleAssigned).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "Assigned role teacher to user "+student.Username, logs[0].Detail)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, admin.ID, *logs[0].UserID)

	_, err = AssignRole(db, policy.ActorOf(admin), AssignRoleInput{UserID: 9999, RoleID: models.RoleTeacherID})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = AssignRole(db, policy.ActorOf(admin), AssignRoleInput{UserID: student.ID, RoleID: 9999})
	assert.ErrorIs(t, err, ErrRoleNotFound)

	entries, err := Logs(db, 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
}

func TestRoleManagement(t *testing.T) {
	db := testutil.OpenDB(t)

	role, err := CreateRole(db, RoleInput{Name: " Mentor "})
	require.NoError(t, err)
	assert.Equal(t, "mentor", role.Name)

	_, err = CreateRole(db, RoleInput{Name: "MENTOR"})
	assert.ErrorIs(t, err, ErrRoleExists)

	found, err := SearchRoles(db, "ment")
	require.NoError(t, err)
	require.Len(t, found, 1)

	updated, err := UpdateRole(db, role.ID, RoleInput{Name: "coach"})
	require.NoError(t, err)
	assert.Equal(t, "coach", updated.Name)

	_, err = UpdateRole(db, models.RoleAdminID, RoleInput{Name: "root"})
	assert.ErrorIs(t, err, ErrRoleProtected)
	assert.ErrorIs(t, DeleteRole(db, models.RoleStudentID), ErrRoleProtected)

	holder := testutil.CreateUser(t, db, role.ID)
	assert.ErrorIs(t, DeleteRole(db, role.ID), ErrRoleInUse)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", holder.ID).Update("role_id", models.RoleStudentID).Error)
	require.NoError(t, DeleteRole(db, role.ID))
	_, err = GetRole(db, role.ID)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}
