package userController

import (
	"coursemanager/config"
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/authsvc"
	"coursemanager/services/coursesvc"
	"coursemanager/services/usersvc"

	"github.com/gofiber/fiber/v2"
)

// CreateUser lets an admin create an account with any existing role
func CreateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authsvc.RegisterInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := authsvc.CreateUser(database.Database.Db, *reqData, config.AppConfig.SaltRound)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully!", user)
}

func ListUsers(c *fiber.Ctx) error {
	skip, limit := middleware.ResolvePaging(c, 100, 500)

	users, total, err := usersvc.List(database.Database.Db, skip, limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"users":      users,
		"pagination": middleware.PageMeta(total, skip, limit),
	})
}

func GetUser(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	user, err := usersvc.Get(database.Database.Db, actor, c.Locals("userIDParam").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully!", user)
}

func DashboardSummary(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	summary, err := usersvc.Summary(database.Database.Db, actor, c.Locals("userIDParam").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard summary fetched successfully!", summary)
}

func CreateFeedback(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	reqData, ok := c.Locals("validatedFeedback").(*coursesvc.FeedbackInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	feedback, err := coursesvc.CreateFeedback(database.Database.Db, actor, c.Locals("userIDParam").(uint), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Feedback submitted successfully!", feedback)
}

func Recommendations(c *fiber.Ctx) error {
	actor, err := middleware.CurrentActor(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	courses, err := coursesvc.Recommendations(database.Database.Db, actor, c.Locals("userIDParam").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Recommendations fetched successfully!", courses)
}
