// Package routers assembles the fiber application and registers every route group.
package routers

import (
	"coursemanager/config"
	"coursemanager/middleware"
	"coursemanager/routers/adminRoutes"
	"coursemanager/routers/attendanceRoutes"
	"coursemanager/routers/authRoutes"
	"coursemanager/routers/courseRoutes"
	"coursemanager/routers/quizRoutes"
	"coursemanager/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApp builds the application with its middleware stack and routes
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Course Manager",
		ErrorHandler: middleware.FiberErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())

	app.Use(cors.New(cors.Config{
		AllowOrigins:     config.AppConfig.AllowedOrigins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders:     "Content-Type,Authorization,X-Request-ID",
		AllowCredentials: config.AppConfig.AllowedOrigins != "*",
	}))

	// Request log, skipped in tests
	if config.AppConfig.AppEnv != "test" {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${locals:requestId} ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRoutes.SetupAuthRoutes(app)
	userRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupLessonRoutes(app)
	quizRoutes.SetupQuizRoutes(app)
	attendanceRoutes.SetupAttendanceRoutes(app)
	adminRoutes.SetupAdminRoutes(app)
	adminRoutes.SetupRoleRoutes(app)

	return app
}
