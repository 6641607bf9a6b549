package attendanceRoutes

import (
	attendanceControllers "coursemanager/controllers/attendance"
	"coursemanager/middleware"
	"coursemanager/models"
	attendanceValidators "coursemanager/validators/attendance"

	"github.com/gofiber/fiber/v2"
)

func SetupAttendanceRoutes(app *fiber.App) {
	attendanceGroup := app.Group("/attendances", middleware.JWTMiddleware)
	manage := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	// Sessions
	attendanceGroup.Post("/sessions", manage, attendanceValidators.CreateSession(), attendanceControllers.CreateSession)
	attendanceGroup.Get("/sessions/course/:course_id", manage, attendanceValidators.CourseID(), attendanceControllers.ListSessions)
	attendanceGroup.Get("/sessions/:id", manage, attendanceValidators.SessionID(), attendanceControllers.SessionDetail)
	attendanceGroup.Patch("/sessions/:id/records", manage, attendanceValidators.SessionID(), attendanceValidators.BulkUpdate(), attendanceValidators.NoDuplicateUsers(), attendanceControllers.UpdateRecords)
	attendanceGroup.Get("/sessions/:id/export", manage, attendanceValidators.SessionID(), attendanceControllers.ExportSession)

	// Records
	attendanceGroup.Post("/check-in/:session_id", attendanceValidators.CheckInSessionID(), attendanceControllers.CheckIn)
	attendanceGroup.Get("/course/:course_id", manage, attendanceValidators.CourseID(), attendanceControllers.ListByCourse)

	attendanceGroup.Post("/expire", middleware.RequireRoles(models.RoleAdmin), attendanceControllers.ExpireSessions)
}
