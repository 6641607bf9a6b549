// Package attendancesvc is the attendance engine: time-boxed sessions, check-in, the expiry sweep,
// manual corrections and exports.
package attendancesvc

import (
	"coursemanager/models"
	"coursemanager/models/attendance"
	"coursemanager/models/course"
	"coursemanager/policy"
	"coursemanager/services/coursesvc"
	"coursemanager/utils/apperror"
	"coursemanager/utils/metrics"
	"math"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound  = apperror.NotFound("Attendance session not found!")
	ErrNoRecords        = apperror.NotFound("No attendance records found for this session!")
	ErrWindowClosed     = apperror.BadRequest("Attendance window is not active!")
	ErrInvalidWindow    = apperror.BadRequest("End time must be after start time!")
	ErrLessonMismatch   = apperror.BadRequest("Lesson does not belong to this course!")
	ErrAlreadyCheckedIn = apperror.Conflict("Already checked in!")
	ErrNotAllowed       = apperror.Forbidden("You are not allowed to manage this session!")
	ErrUnknownAttendee  = apperror.NotFound("One or more users are not enrolled in this course!")
)

type SessionInput struct {
	CourseID  uint      `json:"course_id" validate:"required"`
	LessonID  *uint     `json:"lesson_id"`
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required"`
	Type      string    `json:"type" validate:"required,max=50"`
	Summary   *string   `json:"summary" validate:"omitempty,max=2000"`
}

type RecordPatch struct {
	UserID uint              `json:"user_id" validate:"required"`
	Status attendance.Status `json:"status" validate:"required,oneof=present absent"`
}

// SessionView decorates a session with its state at the time of the request
type SessionView struct {
	attendance.Session
	State string `json:"state"`
}

// RecordRow is an attendance record joined with the user it belongs to
type RecordRow struct {
	ID                  uint              `json:"id"`
	AttendanceSessionID uint              `json:"attendance_session_id"`
	UserID              uint              `json:"user_id"`
	Username            string            `json:"username"`
	Email               string            `json:"email"`
	Status              attendance.Status `json:"status"`
	CheckInTime         *time.Time        `json:"check_in_time"`
	UpdatedAt           *time.Time        `json:"updated_at"`
}

type SessionDetail struct {
	SessionView
	Records []RecordRow `json:"records"`
}

// GetSession loads a session or returns ErrSessionNotFound.
func GetSession(db *gorm.DB, id uint) (attendance.Session, error) {
	var session attendance.Session
	err := db.First(&session, id).Error
	if apperror.IsNotFound(err) {
		return session, ErrSessionNotFound
	}
	return session, errors.Wrap(err, "load attendance session")
}

// managedSession loads a session whose course the actor manages.
func managedSession(db *gorm.DB, actor policy.Actor, id uint) (attendance.Session, error) {
	session, err := GetSession(db, id)
	if err != nil {
		return session, err
	}
	c, err := coursesvc.GetCourse(db, session.CourseID)
	if err != nil {
		return session, err
	}
	if !policy.CanManageCourse(actor, c) {
		return session, ErrNotAllowed
	}
	return session, nil
}

func managedCourse(db *gorm.DB, actor policy.Actor, courseID uint) (course.Course, error) {
	c, err := coursesvc.GetCourse(db, courseID)
	if err != nil {
		return c, err
	}
	if !policy.CanManageCourse(actor, c) {
		return c, ErrNotAllowed
	}
	return c, nil
}

// CreateSession opens a session for a course. Overlapping sessions are allowed.
func CreateSession(db *gorm.DB, actor policy.Actor, input SessionInput) (attendance.Session, error) {
	c, err := managedCourse(db, actor, input.CourseID)
	if err != nil {
		return attendance.Session{}, err
	}
	if !input.EndTime.After(input.StartTime) {
		return attendance.Session{}, ErrInvalidWindow
	}
	if input.LessonID != nil {
		lesson, err := coursesvc.GetLesson(db, *input.LessonID)
		if err != nil {
			return attendance.Session{}, err
		}
		if lesson.CourseID != c.ID {
			return attendance.Session{}, ErrLessonMismatch
		}
	}

	session := attendance.Session{
		CourseID:  c.ID,
		LessonID:  input.LessonID,
		StartTime: input.StartTime.UTC(),
		EndTime:   input.EndTime.UTC(),
		Type:      input.Type,
		Summary:   input.Summary,
		CreatedBy: actor.ID,
	}
	err = db.Create(&session).Error
	return session, errors.Wrap(err, "create attendance session")
}

// CheckIn records the caller as present. The (session, user) unique index decides duplicates.
func CheckIn(db *gorm.DB, userID, sessionID uint, now time.Time) (attendance.Record, error) {
	session, err := GetSession(db, sessionID)
	if err != nil {
		return attendance.Record{}, err
	}
	enrolled, err := coursesvc.IsEnrolled(db, userID, session.CourseID)
	if err != nil {
		return attendance.Record{}, err
	}
	if !enrolled {
		metrics.CheckIns.WithLabelValues("forbidden").Inc()
		return attendance.Record{}, coursesvc.ErrNotEnrolled
	}

	now = now.UTC()
	if !session.IsOpen(now) {
		metrics.CheckIns.WithLabelValues("closed").Inc()
		return attendance.Record{}, ErrWindowClosed
	}

	record := attendance.Record{
		UserID:              userID,
		AttendanceSessionID: session.ID,
		Status:              attendance.StatusPresent,
		CheckInTime:         &now,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&record).Error
	})
	if apperror.IsUniqueViolation(err) {
		metrics.CheckIns.WithLabelValues("duplicate").Inc()
		return attendance.Record{}, ErrAlreadyCheckedIn
	}
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "create attendance record")
	}
	metrics.CheckIns.WithLabelValues("present").Inc()
	return record, nil
}

// BulkUpdate sets the status of several users in one session, creating missing records.
func BulkUpdate(db *gorm.DB, actor policy.Actor, sessionID uint, patches []RecordPatch, now time.Time) ([]attendance.Record, error) {
	session, err := managedSession(db, actor, sessionID)
	if err != nil {
		return nil, err
	}

	if err := requireEnrolled(db, session.CourseID, patches); err != nil {
		return nil, err
	}

	now = now.UTC()
	records := make([]attendance.Record, 0, len(patches))
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, p := range patches {
			var record attendance.Record
			err := tx.Where("attendance_session_id = ? AND user_id = ?", session.ID, p.UserID).First(&record).Error
			switch {
			case apperror.IsNotFound(err):
				record = attendance.Record{
					UserID:              p.UserID,
					AttendanceSessionID: session.ID,
				}
			case err != nil:
				return errors.Wrap(err, "load attendance record")
			}
			record.Status = p.Status
			record.UpdatedAt = &now
			if err := tx.Save(&record).Error; err != nil {
				return errors.Wrap(err, "save attendance record")
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// requireEnrolled rejects patches for users that do not exist or are not enrolled in the course.
func requireEnrolled(db *gorm.DB, courseID uint, patches []RecordPatch) error {
	if len(patches) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(patches))
	for _, p := range patches {
		ids = append(ids, p.UserID)
	}

	var found []uint
	err := db.Table("user_course").
		Joins("JOIN users ON users.id = user_course.user_id").
		Where("user_course.course_id = ? AND user_course.user_id IN ?", courseID, ids).
		Pluck("user_course.user_id", &found).Error
	if err != nil {
		return errors.Wrap(err, "check enrolled users")
	}
	known := make(map[uint]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	for _, id := range ids {
		if !known[id] {
			return ErrUnknownAttendee
		}
	}
	return nil
}

// ListSessions returns a course's sessions, most recent first.
func ListSessions(db *gorm.DB, actor policy.Actor, courseID uint, now time.Time) ([]SessionView, error) {
	if _, err := managedCourse(db, actor, courseID); err != nil {
		return nil, err
	}

	var sessions []attendance.Session
	if err := db.Where("course_id = ?", courseID).Order("start_time desc, id desc").Find(&sessions).Error; err != nil {
		return nil, errors.Wrap(err, "list attendance sessions")
	}
	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, SessionView{Session: s, State: s.State(now.UTC())})
	}
	return views, nil
}

// Detail returns a session with its records.
func Detail(db *gorm.DB, actor policy.Actor, sessionID uint, now time.Time) (SessionDetail, error) {
	session, err := managedSession(db, actor, sessionID)
	if err != nil {
		return SessionDetail{}, err
	}
	records, err := sessionRecords(db, "student_attendances.attendance_session_id = ?", session.ID)
	if err != nil {
		return SessionDetail{}, err
	}
	return SessionDetail{
		SessionView: SessionView{Session: session, State: session.State(now.UTC())},
		Records:     records,
	}, nil
}

// ListByCourse returns every attendance record across a course's sessions.
func ListByCourse(db *gorm.DB, actor policy.Actor, courseID uint) ([]RecordRow, error) {
	if _, err := managedCourse(db, actor, courseID); err != nil {
		return nil, err
	}
	return sessionRecords(db, "attendance_sessions.course_id = ?", courseID)
}

func sessionRecords(db *gorm.DB, where string, arg interface{}) ([]RecordRow, error) {
	var rows []RecordRow
	err := db.Table("student_attendances").
		Select("student_attendances.id, student_attendances.attendance_session_id, student_attendances.user_id, users.username, users.email, "+
			"student_attendances.status, student_attendances.check_in_time, student_attendances.updated_at").
		Joins("JOIN users ON users.id = student_attendances.user_id").
		Joins("JOIN attendance_sessions ON attendance_sessions.id = student_attendances.attendance_session_id").
		Where(where, arg).
		Order("student_attendances.attendance_session_id asc, users.username asc").
		Scan(&rows).Error
	return rows, errors.Wrap(err, "list attendance records")
}

// ExportHeader is the header row of the attendance CSV
var ExportHeader = []string{"Username", "Email", "Status", "Check-in Time", "Updated At"}

// Export renders a session's records as CSV records. A session without records is not found.
func Export(db *gorm.DB, actor policy.Actor, sessionID uint) ([][]string, error) {
	session, err := managedSession(db, actor, sessionID)
	if err != nil {
		return nil, err
	}
	rows, err := sessionRecords(db, "student_attendances.attendance_session_id = ?", session.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}

	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{r.Username, r.Email, string(r.Status), formatTime(r.CheckInTime), formatTime(r.UpdatedAt)})
	}
	return records, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// AttendanceRate is the share of the user's records that are present, as a percentage with two decimals.
func AttendanceRate(db *gorm.DB, userID uint) (float64, error) {
	var total, present int64
	if err := db.Model(&attendance.Record{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return 0, errors.Wrap(err, "count attendance")
	}
	if total == 0 {
		return 0, nil
	}
	err := db.Model(&attendance.Record{}).
		Where("user_id = ? AND status = ?", userID, attendance.StatusPresent).
		Count(&present).Error
	if err != nil {
		return 0, errors.Wrap(err, "count present")
	}
	return math.Round(float64(present)*10000/float64(total)) / 100, nil
}

// enrolledStudents lists student ids enrolled in a course.
func enrolledStudents(db *gorm.DB, courseID uint) ([]uint, error) {
	var ids []uint
	err := db.Table("user_course").
		Joins("JOIN users ON users.id = user_course.user_id").
		Where("user_course.course_id = ? AND users.role_id = ?", courseID, models.RoleStudentID).
		Order("user_course.user_id asc").
		Pluck("user_course.user_id", &ids).Error
	return ids, errors.Wrap(err, "list enrolled students")
}
