package utils

import (
	"context"
	"coursemanager/models"
	"coursemanager/services/attendancesvc"
	"coursemanager/services/auditsvc"
	"coursemanager/utils/metrics"
	"fmt"
	"log"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// AttendanceScheduler owns the periodic expiry sweep. The store and clock are injected
// so a sweep can be driven directly from tests.
type AttendanceScheduler struct {
	db    *gorm.DB
	spec  string
	clock func() time.Time
	cron  *cron.Cron
}

// NewAttendanceScheduler builds a scheduler. A nil clock means time.Now.
func NewAttendanceScheduler(db *gorm.DB, spec string, clock func() time.Time) *AttendanceScheduler {
	if clock == nil {
		clock = time.Now
	}
	return &AttendanceScheduler{
		db:    db,
		spec:  spec,
		clock: clock,
		cron:  cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start registers the sweep on the cron spec and starts the cron loop
func (s *AttendanceScheduler) Start() error {
	log.Println("[ATTENDANCE-SCHEDULER] Initializing attendance scheduler...")

	if _, err := s.cron.AddFunc(s.spec, func() {
		log.Println("[ATTENDANCE-SCHEDULER] Running expiry sweep...")
		if _, err := s.RunOnce(); err != nil {
			log.Printf("[ATTENDANCE-SCHEDULER] Sweep failed: %v", err)
		}
	}); err != nil {
		return errors.Wrapf(err, "schedule attendance sweep %q", s.spec)
	}

	s.cron.Start()
	log.Printf("[ATTENDANCE-SCHEDULER] Attendance scheduler started - runs %s", s.spec)
	return nil
}

// Stop halts the cron loop; the returned context is done when a running sweep finishes
func (s *AttendanceScheduler) Stop() context.Context {
	log.Println("[ATTENDANCE-SCHEDULER] Stopping attendance scheduler...")
	return s.cron.Stop()
}

// RunOnce performs one sweep at the scheduler's current clock reading.
// Sessions that failed are reported one by one; absences marked for the others are kept.
func (s *AttendanceScheduler) RunOnce() (attendancesvc.SweepResult, error) {
	result, err := attendancesvc.SweepExpired(s.db, s.clock())
	if err != nil {
		metrics.SweepRuns.WithLabelValues("error").Inc()
		if len(result.Failures) == 0 {
			ReportError(err, map[string]interface{}{"job": "attendance_sweep"})
			return result, err
		}
		for _, f := range result.Failures {
			ReportError(f.Err, map[string]interface{}{"job": "attendance_sweep", "session_id": f.SessionID})
		}
	} else {
		metrics.SweepRuns.WithLabelValues("ok").Inc()
	}

	log.Printf("[ATTENDANCE-SCHEDULER] Scanned %d expired sessions, marked %d absent, %d failed",
		result.SessionsScanned, result.Marked, len(result.Failures))
	if result.Marked > 0 {
		detail := fmt.Sprintf("scanned %d sessions, marked %d absent", result.SessionsScanned, result.Marked)
		if err := auditsvc.Log(s.db, nil, models.ActionAttendanceSweep, detail); err != nil {
			log.Printf("[ATTENDANCE-SCHEDULER] Error writing audit log: %v", err)
		}
		NotifyWebhook(EventAttendanceSweep, result)
	}
	return result, err
}
