package attendanceValidator

import (
	"coursemanager/middleware"
	"coursemanager/services/attendancesvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

// BulkUpdateRequest is the body of a manual correction
type BulkUpdateRequest struct {
	Records []attendancesvc.RecordPatch `json:"records" validate:"required,min=1,dive"`
}

func SessionID() fiber.Handler {
	return validators.ParamID("id", "Session", "sessionID")
}

func CheckInSessionID() fiber.Handler {
	return validators.ParamID("session_id", "Session", "sessionID")
}

func CourseID() fiber.Handler {
	return validators.ParamID("course_id", "Course", "courseID")
}

func CreateSession() fiber.Handler {
	return validators.Body[attendancesvc.SessionInput]("validatedSession")
}

func BulkUpdate() fiber.Handler {
	return validators.Body[BulkUpdateRequest]("validatedRecords")
}

// NoDuplicateUsers runs after BulkUpdate and refuses two patches for one user
func NoDuplicateUsers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, ok := c.Locals("validatedRecords").(*BulkUpdateRequest)
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
		}
		seen := make(map[uint]bool, len(reqData.Records))
		for _, r := range reqData.Records {
			if seen[r.UserID] {
				return middleware.ValidationErrorResponse(c, map[string]string{"records": "Each user may appear only once!"})
			}
			seen[r.UserID] = true
		}
		return c.Next()
	}
}
