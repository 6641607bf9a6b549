package attendancesvc

import (
	"coursemanager/models/attendance"
	"coursemanager/services/coursesvc"
	"coursemanager/utils/apperror"
	"coursemanager/utils/metrics"
	"log"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SweepResult struct {
	SessionsScanned int            `json:"sessions_scanned"`
	Marked          int64          `json:"marked"`
	Failures        []SweepFailure `json:"failures,omitempty"`
}

// SweepFailure is one session the sweep could not process
type SweepFailure struct {
	SessionID uint  `json:"session_id"`
	Err       error `json:"-"`
}

// SweepExpired marks every enrolled student without a record as absent for each closed,
// lesson-linked session. Running it again inserts nothing new.
// A failing session is recorded in Failures and the remaining sessions are still swept.
func SweepExpired(db *gorm.DB, now time.Time) (SweepResult, error) {
	var result SweepResult

	var sessions []attendance.Session
	err := db.Where("end_time < ? AND lesson_id IS NOT NULL", now.UTC()).
		Order("id asc").
		Find(&sessions).Error
	if err != nil {
		return result, errors.Wrap(err, "list expired sessions")
	}

	for _, session := range sessions {
		result.SessionsScanned++

		marked, err := markAbsentees(db, session)
		if err != nil {
			err = errors.Wrapf(err, "sweep session %d", session.ID)
			log.Printf("[ATTENDANCE] %v", err)
			result.Failures = append(result.Failures, SweepFailure{SessionID: session.ID, Err: err})
			continue
		}
		result.Marked += marked
	}

	metrics.AbsencesMarked.Add(float64(result.Marked))
	if len(result.Failures) > 0 {
		return result, errors.Wrapf(result.Failures[0].Err, "sweep failed for %d of %d sessions", len(result.Failures), result.SessionsScanned)
	}
	return result, nil
}

func markAbsentees(db *gorm.DB, session attendance.Session) (int64, error) {
	lesson, err := coursesvc.GetLesson(db, *session.LessonID)
	if apperror.Is(err, coursesvc.ErrLessonNotFound) {
		log.Printf("[ATTENDANCE] session %d points at missing lesson %d, skipping", session.ID, *session.LessonID)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	students, err := enrolledStudents(db, lesson.CourseID)
	if err != nil {
		return 0, err
	}
	if len(students) == 0 {
		return 0, nil
	}

	var recorded []uint
	if err := db.Model(&attendance.Record{}).Where("attendance_session_id = ?", session.ID).Pluck("user_id", &recorded).Error; err != nil {
		return 0, errors.Wrap(err, "list recorded users")
	}
	seen := make(map[uint]bool, len(recorded))
	for _, id := range recorded {
		seen[id] = true
	}

	absent := make([]attendance.Record, 0, len(students))
	for _, id := range students {
		if seen[id] {
			continue
		}
		absent = append(absent, attendance.Record{
			UserID:              id,
			AttendanceSessionID: session.ID,
			Status:              attendance.StatusAbsent,
		})
	}
	if len(absent) == 0 {
		return 0, nil
	}

	// a concurrent check-in wins; the conflicting absent row is dropped
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&absent)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "insert absent records")
	}
	return res.RowsAffected, nil
}
