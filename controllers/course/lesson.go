package controllers

import (
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/coursesvc"

	"github.com/gofiber/fiber/v2"
)

func CreateLesson(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedLesson").(*coursesvc.LessonInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := coursesvc.CreateLesson(database.Database.Db, actor, c.Locals("courseID").(uint), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func ListLessons(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	lessons, err := coursesvc.ListLessons(database.Database.Db, actor, c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

// LessonsWithProgress lists lessons with the caller's completion flags
func LessonsWithProgress(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	lessons, err := coursesvc.LessonsWithProgress(database.Database.Db, user.ID, c.Locals("courseID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", lessons)
}

func UpdateLesson(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedLessonUpdate").(*coursesvc.LessonUpdate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson, err := coursesvc.UpdateLesson(database.Database.Db, actor, c.Locals("lessonID").(uint), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := coursesvc.DeleteLesson(database.Database.Db, actor, c.Locals("lessonID").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

func LessonCompleted(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	lessonID := c.Locals("lessonID").(uint)

	completed, err := coursesvc.LessonCompleted(database.Database.Db, user.ID, lessonID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson status fetched successfully!", fiber.Map{
		"lesson_id":    lessonID,
		"is_completed": completed,
	})
}
