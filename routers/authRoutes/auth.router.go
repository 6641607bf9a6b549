package authRoutes

import (
	authControllers "coursemanager/controllers/auth"
	"coursemanager/middleware"
	authValidators "coursemanager/validators/auth"
	"time"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	limiter := middleware.AuthRateLimiter(20, time.Minute)

	app.Post("/register", limiter, authValidators.Register(), authControllers.Register)
	app.Post("/login", limiter, authValidators.Login(), authControllers.Login)
	app.Post("/auth/refresh-token", limiter, authControllers.RefreshToken)
}
