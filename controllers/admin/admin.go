package adminController

import (
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/adminsvc"
	"coursemanager/services/coursesvc"
	"time"

	"github.com/gofiber/fiber/v2"
)

func Overview(c *fiber.Ctx) error {
	overview, err := adminsvc.GetOverview(database.Database.Db, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Overview fetched successfully!", overview)
}

// Users lists users matching the search and role filters
func Users(c *fiber.Ctx) error {
	filter, ok := c.Locals("userFilter").(*adminsvc.UserFilter)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	users, total, err := adminsvc.Users(database.Database.Db, *filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = adminsvc.DefaultLimit
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users":      users,
		"pagination": middleware.PageMeta(total, filter.Skip, limit),
	})
}

func Courses(c *fiber.Ctx) error {
	courses, err := adminsvc.CoursesWithStats(database.Database.Db)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func CourseDetails(c *fiber.Ctx) error {
	details, err := adminsvc.Details(database.Database.Db, c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", details)
}

// UpdateCourse edits any course regardless of who created it
func UpdateCourse(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedCourseUpdate").(*coursesvc.CourseUpdate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := coursesvc.UpdateCourse(database.Database.Db, actor, c.Locals("courseID").(uint), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

func DeleteCourse(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := coursesvc.DeleteCourse(database.Database.Db, actor, c.Locals("courseID").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

func AssignRole(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedAssignRole").(*adminsvc.AssignRoleInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := adminsvc.AssignRole(database.Database.Db, actor, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role assigned successfully!", user)
}

func Logs(c *fiber.Ctx) error {
	skip, limit := middleware.ResolvePaging(c, adminsvc.DefaultLimit, 500)

	logs, err := adminsvc.Logs(database.Database.Db, skip, limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logs fetched successfully!", logs)
}
