package controllers

import (
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/authsvc"
	"coursemanager/services/coursesvc"
	"coursemanager/utils"

	"github.com/gofiber/fiber/v2"
)

func CreateCourse(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedCourse").(*coursesvc.CourseInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, err := coursesvc.CreateCourse(database.Database.Db, actor, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

func ListCourses(c *fiber.Ctx) error {
	courses, err := coursesvc.ListCourses(database.Database.Db)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

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

// Enroll enrolls the caller. Enrolling twice still succeeds.
func Enroll(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	courseID := c.Locals("courseID").(uint)

	created, err := coursesvc.Enroll(database.Database.Db, user.ID, courseID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled!", nil)
	}

	if course, err := coursesvc.GetCourse(database.Database.Db, courseID); err == nil {
		utils.SendEnrollmentEmail(user.Email, user.Username, course.Title)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", nil)
}

// EnrollUser lets the course creator enroll a student
func EnrollUser(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	courseID := c.Locals("courseID").(uint)
	targetID := c.Locals("targetUserID").(uint)

	created, err := coursesvc.EnrollUser(database.Database.Db, actor, courseID, targetID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if !created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled!", nil)
	}

	target, err := authsvc.UserByID(database.Database.Db, targetID)
	if err == nil {
		if course, err := coursesvc.GetCourse(database.Database.Db, courseID); err == nil {
			utils.SendEnrollmentEmail(target.Email, target.Username, course.Title)
		}
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User enrolled successfully!", nil)
}

// CompleteCourse marks the caller's enrollment complete once every lesson is done
func CompleteCourse(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	courseID := c.Locals("courseID").(uint)

	if err := coursesvc.Complete(database.Database.Db, user.ID, courseID); err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if course, err := coursesvc.GetCourse(database.Database.Db, courseID); err == nil {
		utils.SendCourseCompletedEmail(user.Email, user.Username, course.Title)
		utils.NotifyWebhook(utils.EventCourseCompleted, fiber.Map{
			"user_id":   user.ID,
			"course_id": course.ID,
			"title":     course.Title,
		})
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course marked as completed!", nil)
}

func CoursesByUser(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	courses, err := coursesvc.CoursesByUser(database.Database.Db, actor, c.Locals("userIDParam").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func UsersByCourse(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	users, err := coursesvc.UsersByCourse(database.Database.Db, actor, c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled users fetched successfully!", users)
}

func CourseFeedback(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	feedback, err := coursesvc.CourseFeedback(database.Database.Db, actor, c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback fetched successfully!", feedback)
}
