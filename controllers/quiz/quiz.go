package quizController

import (
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/quizsvc"
	"coursemanager/utils"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

func CreateQuiz(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedQuiz").(*quizsvc.CreateInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quiz, err := quizsvc.Create(database.Database.Db, actor, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", fiber.Map{
		"quiz_id":   quiz.ID,
		"lesson_id": quiz.LessonID,
		"questions": len(quiz.Questions),
	})
}

// QuizByLesson returns the take view of a lesson's quiz, without correct answers
func QuizByLesson(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	view, err := quizsvc.ForLesson(database.Database.Db, c.Locals("lessonID").(uint), user.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", view)
}

func SubmitQuiz(c *fiber.Ctx) error {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedSubmission").(*quizsvc.SubmitInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := quizsvc.Submit(database.Database.Db, user.ID, *reqData, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	utils.NotifyWebhook(utils.EventQuizSubmitted, fiber.Map{
		"user_id": user.ID,
		"quiz_id": result.QuizID,
		"score":   result.Score,
		"passed":  result.Passed,
	})
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully!", result)
}

// ReviewQuiz returns the quiz with its correct answers
func ReviewQuiz(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	view, err := quizsvc.Review(database.Database.Db, actor, c.Locals("quizID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz review fetched successfully!", view)
}

func UpdateQuiz(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedQuizUpdate").(*quizsvc.UpdateInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	quiz, err := quizsvc.Update(database.Database.Db, actor, c.Locals("quizID").(uint), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

func DeleteQuiz(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	if err := quizsvc.Delete(database.Database.Db, actor, c.Locals("quizID").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully!", nil)
}

func QuizResults(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	results, err := quizsvc.Results(database.Database.Db, actor, c.Locals("quizID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz results fetched successfully!", results)
}

// ExportResults streams the quiz results as a CSV attachment
func ExportResults(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	quizID := c.Locals("quizID").(uint)

	results, err := quizsvc.Results(database.Database.Db, actor, quizID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return utils.SendCSV(c, fmt.Sprintf("quiz_%d_results.csv", quizID), quizsvc.ExportHeader, quizsvc.ExportRows(results))
}
