package quizValidator

import (
	"coursemanager/services/quizsvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

func QuizID() fiber.Handler {
	return validators.ParamID("id", "Quiz", "quizID")
}

func LessonID() fiber.Handler {
	return validators.ParamID("lesson_id", "Lesson", "lessonID")
}

func CreateQuiz() fiber.Handler {
	return validators.Body[quizsvc.CreateInput]("validatedQuiz")
}

func UpdateQuiz() fiber.Handler {
	return validators.Body[quizsvc.UpdateInput]("validatedQuizUpdate")
}

func SubmitQuiz() fiber.Handler {
	return validators.Body[quizsvc.SubmitInput]("validatedSubmission")
}
