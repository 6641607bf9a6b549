package adminRoutes

import (
	adminControllers "coursemanager/controllers/admin"
	attendanceControllers "coursemanager/controllers/attendance"
	"coursemanager/middleware"
	"coursemanager/models"
	adminValidators "coursemanager/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleAdmin))

	adminGroup.Get("/overview", adminControllers.Overview)
	adminGroup.Get("/users", adminValidators.UserFilter(), adminControllers.Users)
	adminGroup.Patch("/users/assign_role", adminValidators.AssignRole(), adminControllers.AssignRole)

	// Courses
	adminGroup.Get("/courses", adminControllers.Courses)
	adminGroup.Get("/courses/:id/details", adminValidators.CourseID(), adminControllers.CourseDetails)
	adminGroup.Put("/courses/:id", adminValidators.CourseID(), adminValidators.UpdateCourse(), adminControllers.UpdateCourse)
	adminGroup.Delete("/courses/:id", adminValidators.CourseID(), adminControllers.DeleteCourse)

	// Roles
	adminGroup.Get("/roles", adminControllers.ListRoles)
	adminGroup.Post("/roles", adminValidators.CreateRole(), adminControllers.CreateRole)
	adminGroup.Put("/roles/:id", adminValidators.RoleID(), adminValidators.CreateRole(), adminControllers.UpdateRole)
	adminGroup.Delete("/roles/:id", adminValidators.RoleID(), adminControllers.DeleteRole)

	adminGroup.Get("/logs", adminControllers.Logs)
	adminGroup.Post("/attendance/sweep", attendanceControllers.ExpireSessions)
}

// SetupRoleRoutes exposes role lookups to any signed-in user and role changes to admins
func SetupRoleRoutes(app *fiber.App) {
	roleGroup := app.Group("/roles", middleware.JWTMiddleware)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	roleGroup.Get("/", adminControllers.ListRoles)
	roleGroup.Get("/search", adminControllers.SearchRoles)
	roleGroup.Get("/:id", adminValidators.RoleID(), adminControllers.GetRole)
	roleGroup.Post("/", adminOnly, adminValidators.CreateRole(), adminControllers.CreateRole)
	roleGroup.Delete("/:id", adminOnly, adminValidators.RoleID(), adminControllers.DeleteRole)
}
