package attendancesvc

import (
	"coursemanager/models"
	"coursemanager/models/attendance"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/services/coursesvc"
	"coursemanager/testutil"
	"coursemanager/utils/apperror"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)

type attendanceFixture struct {
	db      *gorm.DB
	teacher models.User
	student models.User
	course  course.Course
	lesson  course.Lesson
}

func newFixture(t *testing.T) attendanceFixture {
	db := testutil.OpenDB(t)
	teacher := testutil.CreateUser(t, db, models.RoleTeacherID)
	student := testutil.CreateUser(t, db, models.RoleStudentID)
	c := testutil.CreateCourse(t, db, teacher)
	lesson := testutil.CreateLesson(t, db, c)
	testutil.Enroll(t, db, student, c)
	return attendanceFixture{db: db, teacher: teacher, student: student, course: c, lesson: lesson}
}

// session opens a one hour window starting at t0, linked to the lesson when linked is true
func (f attendanceFixture) session(t *testing.T, linked bool) attendance.Session {
	t.Helper()
	input := SessionInput{
		CourseID:  f.course.ID,
		StartTime: t0,
		EndTime:   t0.Add(time.Hour),
		Type:      "lecture",
	}
	if linked {
		input.LessonID = &f.lesson.ID
	}
	s, err := CreateSession(f.db, policy.ActorOf(f.teacher), input)
	require.NoError(t, err)
	return s
}

func countRecords(t *testing.T, db *gorm.DB, sessionID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&attendance.Record{}).Where("attendance_session_id = ?", sessionID).Count(&n).Error)
	return n
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t)
	actor := policy.ActorOf(f.teacher)

	_, err := CreateSession(f.db, actor, SessionInput{CourseID: f.course.ID, StartTime: t0, EndTime: t0, Type: "lecture"})
	assert.ErrorIs(t, err, ErrInvalidWindow)

	otherCourse := testutil.CreateCourse(t, f.db, f.teacher)
	foreign := testutil.CreateLesson(t, f.db, otherCourse)
	_, err = CreateSession(f.db, actor, SessionInput{CourseID: f.course.ID, LessonID: &foreign.ID, StartTime: t0, EndTime: t0.Add(time.Hour), Type: "lecture"})
	assert.ErrorIs(t, err, ErrLessonMismatch)

	_, err = CreateSession(f.db, policy.ActorOf(f.student), SessionInput{CourseID: f.course.ID, StartTime: t0, EndTime: t0.Add(time.Hour), Type: "lecture"})
	assert.ErrorIs(t, err, ErrNotAllowed)

	_, err = CreateSession(f.db, actor, SessionInput{CourseID: 9999, StartTime: t0, EndTime: t0.Add(time.Hour), Type: "lecture"})
	assert.ErrorIs(t, err, coursesvc.ErrCourseNotFound)
}

func TestCheckInWindow(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)

	_, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrWindowClosed)
	assert.Equal(t, http.StatusBadRequest, apperror.Status(err))

	record, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, record.Status)
	require.NotNil(t, record.CheckInTime)
	assert.True(t, record.CheckInTime.Equal(t0.Add(time.Minute)))
}

func TestCheckInBoundariesAreInclusive(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)
	late := testutil.CreateUser(t, f.db, models.RoleStudentID)
	testutil.Enroll(t, f.db, late, f.course)

	_, err := CheckIn(f.db, f.student.ID, s.ID, t0)
	assert.NoError(t, err)
	_, err = CheckIn(f.db, late.ID, s.ID, t0.Add(time.Hour))
	assert.NoError(t, err)
}

func TestCheckInAfterWindow(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)

	_, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Hour+time.Second))
	assert.ErrorIs(t, err, ErrWindowClosed)
}

func TestDuplicateCheckInConflicts(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)

	_, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	_, err = CheckIn(f.db, f.student.ID, s.ID, t0.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)
	assert.Equal(t, http.StatusConflict, apperror.Status(err))
	assert.EqualValues(t, 1, countRecords(t, f.db, s.ID))
}

func TestCheckInRequiresEnrollmentAndSession(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)
	outsider := testutil.CreateUser(t, f.db, models.RoleStudentID)

	_, err := CheckIn(f.db, outsider.ID, s.ID, t0.Add(time.Minute))
	assert.ErrorIs(t, err, coursesvc.ErrNotEnrolled)

	_, err = CheckIn(f.db, f.student.ID, 9999, t0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepMarksAbsenteesOnce(t *testing.T) {
	f := newFixture(t)
	present := testutil.CreateUser(t, f.db, models.RoleStudentID)
	testutil.Enroll(t, f.db, present, f.course)
	// teachers enrolled in the course are not swept
	testutil.Enroll(t, f.db, f.teacher, f.course)

	linked := f.session(t, true)
	unlinked := f.session(t, false)

	_, err := CheckIn(f.db, present.ID, linked.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	after := t0.Add(2 * time.Hour)
	result, err := SweepExpired(f.db, after)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SessionsScanned)
	assert.EqualValues(t, 1, result.Marked)

	var absent attendance.Record
	require.NoError(t, f.db.Where("attendance_session_id = ? AND user_id = ?", linked.ID, f.student.ID).First(&absent).Error)
	assert.Equal(t, attendance.StatusAbsent, absent.Status)
	assert.Nil(t, absent.CheckInTime)
	assert.Zero(t, countRecords(t, f.db, unlinked.ID))

	again, err := SweepExpired(f.db, after)
	require.NoError(t, err)
	assert.Zero(t, again.Marked)
	assert.EqualValues(t, 2, countRecords(t, f.db, linked.ID))
}

func TestSweepContinuesPastFailingSession(t *testing.T) {
	f := newFixture(t)
	broken := f.session(t, true)
	healthy := f.session(t, true)

	err := f.db.Callback().Create().Before("gorm:create").Register("fail_broken_session", func(tx *gorm.DB) {
		if recs, ok := tx.Statement.Dest.(*[]attendance.Record); ok && len(*recs) > 0 && (*recs)[0].AttendanceSessionID == broken.ID {
			_ = tx.AddError(errors.New("disk full"))
		}
	})
	require.NoError(t, err)

	result, err := SweepExpired(f.db, t0.Add(2*time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, 2, result.SessionsScanned)
	assert.EqualValues(t, 1, result.Marked)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, broken.ID, result.Failures[0].SessionID)

	assert.Zero(t, countRecords(t, f.db, broken.ID))
	assert.EqualValues(t, 1, countRecords(t, f.db, healthy.ID))
}

func TestSweepIgnoresOpenSessions(t *testing.T) {
	f := newFixture(t)
	f.session(t, true)

	result, err := SweepExpired(f.db, t0.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Zero(t, result.SessionsScanned)
	assert.Zero(t, result.Marked)
}

func TestBulkUpdate(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)
	other := testutil.CreateUser(t, f.db, models.RoleStudentID)
	testutil.Enroll(t, f.db, other, f.course)

	_, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	fixedAt := t0.Add(3 * time.Hour)
	records, err := BulkUpdate(f.db, policy.ActorOf(f.teacher), s.ID, []RecordPatch{
		{UserID: f.student.ID, Status: attendance.StatusAbsent},
		{UserID: other.ID, Status: attendance.StatusPresent},
	}, fixedAt)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.EqualValues(t, 2, countRecords(t, f.db, s.ID))

	var updated attendance.Record
	require.NoError(t, f.db.Where("attendance_session_id = ? AND user_id = ?", s.ID, f.student.ID).First(&updated).Error)
	assert.Equal(t, attendance.StatusAbsent, updated.Status)
	require.NotNil(t, updated.UpdatedAt)
	assert.True(t, updated.UpdatedAt.Equal(fixedAt))

	_, err = BulkUpdate(f.db, policy.ActorOf(f.student), s.ID, nil, fixedAt)
	assert.ErrorIs(t, err, ErrNotAllowed)
}

func TestBulkUpdateRejectsUnenrolledUsers(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)
	outsider := testutil.CreateUser(t, f.db, models.RoleStudentID)
	actor := policy.ActorOf(f.teacher)

	for _, id := range []uint{424242, outsider.ID} {
		_, err := BulkUpdate(f.db, actor, s.ID, []RecordPatch{
			{UserID: f.student.ID, Status: attendance.StatusPresent},
			{UserID: id, Status: attendance.StatusPresent},
		}, t0)
		assert.ErrorIs(t, err, ErrUnknownAttendee)
		assert.Equal(t, http.StatusNotFound, apperror.Status(err))
	}
	assert.Zero(t, countRecords(t, f.db, s.ID))

	_, err := BulkUpdate(f.db, actor, s.ID, []RecordPatch{{UserID: f.student.ID, Status: attendance.StatusPresent}}, t0)
	require.NoError(t, err)
	rows, err := Export(f.db, actor, s.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, false)
	actor := policy.ActorOf(f.teacher)

	_, err := Export(f.db, actor, s.ID)
	assert.ErrorIs(t, err, ErrNoRecords)
	assert.Equal(t, http.StatusNotFound, apperror.Status(err))

	_, err = CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	rows, err := Export(f.db, actor, s.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{f.student.Username, f.student.Email, "present", "2024-09-02T09:01:00Z", ""}, rows[0])
	assert.Len(t, ExportHeader, len(rows[0]))
}

func TestDetailAndListings(t *testing.T) {
	f := newFixture(t)
	s := f.session(t, true)
	actor := policy.ActorOf(f.teacher)

	_, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Minute))
	require.NoError(t, err)

	detail, err := Detail(f.db, actor, s.ID, t0.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, "active", detail.State)
	require.Len(t, detail.Records, 1)
	assert.Equal(t, f.student.Username, detail.Records[0].Username)

	views, err := ListSessions(f.db, actor, f.course.ID, t0.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "scheduled", views[0].State)

	rows, err := ListByCourse(f.db, actor, f.course.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestAttendanceRate(t *testing.T) {
	f := newFixture(t)
	rate, err := AttendanceRate(f.db, f.student.ID)
	require.NoError(t, err)
	assert.Zero(t, rate)

	for i := 0; i < 3; i++ {
		s := f.session(t, false)
		if i == 0 {
			_, err := CheckIn(f.db, f.student.ID, s.ID, t0.Add(time.Minute))
			require.NoError(t, err)
			continue
		}
		_, err := BulkUpdate(f.db, policy.ActorOf(f.teacher), s.ID, []RecordPatch{{UserID: f.student.ID, Status: attendance.StatusAbsent}}, t0)
		require.NoError(t, err)
	}

	rate, err = AttendanceRate(f.db, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 33.33, rate)
}
