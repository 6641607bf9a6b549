package attendanceController

import (
	"coursemanager/config"
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/attendancesvc"
	"coursemanager/utils"
	attendanceValidator "coursemanager/validators/attendance"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Sweeper is the scheduler started by main. A throwaway one is used when it is unset.
var Sweeper *utils.AttendanceScheduler

func CreateSession(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedSession").(*attendancesvc.SessionInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	session, err := attendancesvc.CreateSession(database.Database.Db, actor, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Attendance session created successfully!", session)
}

func ListSessions(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	sessions, err := attendancesvc.ListSessions(database.Database.Db, actor, c.Locals("courseID").(uint), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance sessions fetched successfully!", sessions)
}

func SessionDetail(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	detail, err := attendancesvc.Detail(database.Database.Db, actor, c.Locals("sessionID").(uint), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance session fetched successfully!", detail)
}

func CheckIn(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	record, err := attendancesvc.CheckIn(database.Database.Db, user.ID, c.Locals("sessionID").(uint), time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Checked in successfully!", record)
}

func ListByCourse(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	records, err := attendancesvc.ListByCourse(database.Database.Db, actor, c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance records fetched successfully!", records)
}

// UpdateRecords applies manual present/absent corrections to a session
func UpdateRecords(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedRecords").(*attendanceValidator.BulkUpdateRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	records, err := attendancesvc.BulkUpdate(database.Database.Db, actor, c.Locals("sessionID").(uint), reqData.Records, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attendance records updated successfully!", records)
}

func ExportSession(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	sessionID := c.Locals("sessionID").(uint)

	rows, err := attendancesvc.Export(database.Database.Db, actor, sessionID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return utils.SendCSV(c, fmt.Sprintf("attendance_session_%d.csv", sessionID), attendancesvc.ExportHeader, rows)
}

// ExpireSessions runs the expiry sweep immediately
func ExpireSessions(c *fiber.Ctx) error {
	sweeper := Sweeper
	if sweeper == nil {
		sweeper = utils.NewAttendanceScheduler(database.Database.Db, config.AppConfig.AttendanceSweepSpec, nil)
	}

	result, err := sweeper.RunOnce()
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, fmt.Sprintf("Marked %d absences!", result.Marked), result)
}
