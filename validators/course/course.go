package courseValidator

import (
	"coursemanager/services/coursesvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

func CourseID() fiber.Handler {
	return validators.ParamID("id", "Course", "courseID")
}

func CreateCourse() fiber.Handler {
	return validators.Body[coursesvc.CourseInput]("validatedCourse")
}

func UpdateCourse() fiber.Handler {
	return validators.Body[coursesvc.CourseUpdate]("validatedCourseUpdate")
}

// TargetUserID is the student a teacher enrolls
func TargetUserID() fiber.Handler {
	return validators.ParamID("user_id", "User", "targetUserID")
}

func UserID() fiber.Handler {
	return validators.ParamID("user_id", "User", "userIDParam")
}
