package usersvc

import (
	"coursemanager/models"
	"coursemanager/models/attendance"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryAndBadges(t *testing.T) {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	student := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)
	lesson := testutil.CreateLesson(t, db, c)
	testutil.Enroll(t, db, student, c)

	actor := policy.ActorOf(student)
	s, err := Summary(db, actor, student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.TotalCourses)
	assert.EqualValues(t, 1, s.TotalLessons)
	assert.Zero(t, s.CompletedLessons)
	assert.Empty(t, s.Badges)
	assert.NotNil(t, s.Badges)

	now := time.Now().UTC()
	require.NoError(t, db.Create(&course.LessonProgress{UserID: student.ID, LessonID: lesson.ID, IsCompleted: true, UpdatedAt: now}).Error)
	require.NoError(t, db.Model(&course.Enrollment{}).Where("user_id = ?", student.ID).Update("is_completed", true).Error)
	session := attendance.Session{CourseID: c.ID, StartTime: now, EndTime: now.Add(time.Hour), Type: "lecture", CreatedBy: teacher.ID}
	require.NoError(t, db.Create(&session).Error)
	require.NoError(t, db.Create(&attendance.Record{UserID: student.ID, AttendanceSessionID: session.ID, Status: attendance.StatusPresent, CheckInTime: &now}).Error)

	s, err = Summary(db, actor, student.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, s.CompletedCourses)
	assert.EqualValues(t, 1, s.CompletedLessons)
	assert.Equal(t, float64(100), s.AttendanceRate)
	assert.ElementsMatch(t, []string{"course_finisher", "all_lessons_done", "perfect_attendance"}, s.Badges)
}

func TestSummaryIsSelfOnly(t *testing.T) {
	db := testutil.OpenDB(t)
	alice := testutil.CreateUser(t, db, models.RoleStudentID)
	bob := testutil.CreateUser(t, db, models.RoleStudentID)

	_, err := Summary(db, policy.ActorOf(bob), alice.ID)
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = Get(db, policy.ActorOf(testutil.Admin(t, db)), alice.ID)
	assert.NoError(t, err)
	_, err = Get(db, policy.ActorOf(testutil.Admin(t, db)), 9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestList(t *testing.T) {
	db := testutil.OpenDB(t)
	for i := 0; i < 3; i++ {
		testutil.CreateUser(t, db, models.RoleStudentID)
	}

	users, total, err := List(db, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Len(t, users, 2)
	assert.NotNil(t, users[0].Role)
}
