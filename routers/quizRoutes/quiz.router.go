package quizRoutes

import (
	quizControllers "coursemanager/controllers/quiz"
	"coursemanager/middleware"
	"coursemanager/models"
	quizValidators "coursemanager/validators/quiz"

	"github.com/gofiber/fiber/v2"
)

func SetupQuizRoutes(app *fiber.App) {
	quizGroup := app.Group("/quizzes", middleware.JWTMiddleware)
	manage := middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin)

	quizGroup.Post("/", manage, quizValidators.CreateQuiz(), quizControllers.CreateQuiz)
	quizGroup.Get("/by-lesson/:lesson_id", quizValidators.LessonID(), quizControllers.QuizByLesson)
	quizGroup.Post("/submit", quizValidators.SubmitQuiz(), quizControllers.SubmitQuiz)
	quizGroup.Get("/:id/review", quizValidators.QuizID(), quizControllers.ReviewQuiz)
	quizGroup.Put("/:id", manage, quizValidators.QuizID(), quizValidators.UpdateQuiz(), quizControllers.UpdateQuiz)
	quizGroup.Delete("/:id", manage, quizValidators.QuizID(), quizControllers.DeleteQuiz)
	quizGroup.Get("/:id/results", manage, quizValidators.QuizID(), quizControllers.QuizResults)
	quizGroup.Get("/:id/results/export", manage, quizValidators.QuizID(), quizControllers.ExportResults)
}
