// Package metrics exposes the Prometheus collectors for the engines.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QuizSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursemanager",
		Name:      "quiz_submissions_total",
		Help:      "Quiz submissions accepted, by outcome.",
	}, []string{"outcome"})

	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursemanager",
		Name:      "attendance_checkins_total",
		Help:      "Attendance check-in attempts, by result.",
	}, []string{"result"})

	AbsencesMarked = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coursemanager",
		Name:      "attendance_absences_marked_total",
		Help:      "Absent records inserted by the expiry sweep.",
	})

	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursemanager",
		Name:      "attendance_sweep_runs_total",
		Help:      "Expiry sweep executions, by result.",
	}, []string{"result"})
)

// Outcome maps a pass flag to the label used by QuizSubmissions.
func Outcome(passed bool) string {
	if passed {
		return "passed"
	}
	return "failed"
}
