package utils

import (
	"coursemanager/models"
	"coursemanager/models/attendance"
	"coursemanager/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceSchedulerRunOnceUsesClock(t *testing.T) {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	student := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)
	lesson := testutil.CreateLesson(t, db, c)
	testutil.Enroll(t, db, student, c)

	start := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	session := attendance.Session{
		CourseID:  c.ID,
		LessonID:  &lesson.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Type:      "lecture",
		CreatedBy: teacher.ID,
	}
	require.NoError(t, db.Create(&session).Error)

	current := start.Add(30 * time.Minute)
	scheduler := NewAttendanceScheduler(db, "@every 1h", func() time.Time { return current })

	result, err := scheduler.RunOnce()
	require.NoError(t, err)
	assert.Zero(t, result.Marked)

	current = start.Add(2 * time.Hour)
	result, err = scheduler.RunOnce()
	require.NoError(t, err)
	assert.Equal(t, 1, result.SessionsScanned)
	assert.EqualValues(t, 1, result.Marked)

	var logs int64
	require.NoError(t, db.Model(&models.SystemLog{}).Where("action = ?", models.ActionAttendanceSweep).Count(&logs).Error)
	assert.EqualValues(t, 1, logs)

	result, err = scheduler.RunOnce()
	require.NoError(t, err)
	assert.Zero(t, result.Marked)
}

func TestAttendanceSchedulerRejectsBadSpec(t *testing.T) {
	db := testutil.OpenDB(t)
	scheduler := NewAttendanceScheduler(db, "bogus", nil)
	assert.Error(t, scheduler.Start())
}

func TestAttendanceSchedulerStartStop(t *testing.T) {
	db := testutil.OpenDB(t)
	scheduler := NewAttendanceScheduler(db, "@every 24h", nil)
	require.NoError(t, scheduler.Start())

	select {
	case <-scheduler.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
