package adminValidator

import (
	"coursemanager/services/adminsvc"
	"coursemanager/services/coursesvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

func CourseID() fiber.Handler {
	return validators.ParamID("id", "Course", "courseID")
}

func RoleID() fiber.Handler {
	return validators.ParamID("id", "Role", "roleID")
}

func CreateRole() fiber.Handler {
	return validators.Body[adminsvc.RoleInput]("validatedRole")
}

func UpdateCourse() fiber.Handler {
	return validators.Body[coursesvc.CourseUpdate]("validatedCourseUpdate")
}

func AssignRole() fiber.Handler {
	return validators.Body[adminsvc.AssignRoleInput]("validatedAssignRole")
}

// UserFilter parses the admin user listing query string
func UserFilter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		filter := new(adminsvc.UserFilter)
		if err := c.QueryParser(filter); err != nil {
			return validators.BadQuery(c)
		}
		if filter.Skip < 0 || filter.Limit < 0 {
			return validators.BadQuery(c)
		}
		c.Locals("userFilter", filter)
		return c.Next()
	}
}
