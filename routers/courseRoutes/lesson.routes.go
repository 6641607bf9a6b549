package courseRoutes

import (
	controllers "coursemanager/controllers/course"
	"coursemanager/middleware"
	"coursemanager/models"
	validators "coursemanager/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupLessonRoutes(app *fiber.App) {
	lessonGroup := app.Group("/lessons", middleware.JWTMiddleware)
	manage := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	lessonGroup.Post("/course/:course_id", manage, validators.LessonCourseID(), validators.CreateLesson(), controllers.CreateLesson)
	lessonGroup.Get("/course/:course_id", validators.LessonCourseID(), controllers.ListLessons)
	lessonGroup.Get("/course/:course_id/with-progress", validators.LessonCourseID(), controllers.LessonsWithProgress)
	lessonGroup.Put("/:id", manage, validators.LessonID(), validators.UpdateLesson(), controllers.UpdateLesson)
	lessonGroup.Delete("/:id", manage, validators.LessonID(), controllers.DeleteLesson)
	lessonGroup.Get("/:id/completed", validators.LessonID(), controllers.LessonCompleted)
}
