package userRoutes

import (
	userControllers "coursemanager/controllers/userControllers"
	"coursemanager/middleware"
	"coursemanager/models"
	userValidators "coursemanager/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/users", middleware.JWTMiddleware)

	userGroup.Post("/", middleware.RequireRoles(models.RoleAdmin), userValidators.CreateUser(), userControllers.CreateUser)
	userGroup.Get("/", middleware.RequireRoles(models.RoleAdmin), userControllers.ListUsers)
	userGroup.Get("/:id", userValidators.UserID(), userControllers.GetUser)
	userGroup.Get("/:id/dashboard-summary", userValidators.UserID(), userControllers.DashboardSummary)
	userGroup.Post("/:id/feedback", userValidators.UserID(), userValidators.CreateFeedback(), userControllers.CreateFeedback)
	userGroup.Get("/:id/recommendations", userValidators.UserID(), userControllers.Recommendations)

}
