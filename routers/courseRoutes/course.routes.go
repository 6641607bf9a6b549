package courseRoutes

import (
	controllers "coursemanager/controllers/course"
	"coursemanager/middleware"
	"coursemanager/models"
	validators "coursemanager/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up the course catalog and enrollment routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/courses", middleware.JWTMiddleware)

	courseGroup.Post("/", middleware.RequireRoles(models.RoleTeacher), validators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/", controllers.ListCourses)
	courseGroup.Get("/by-user/:user_id", validators.UserID(), controllers.CoursesByUser)
	courseGroup.Get("/by-course/:id/users", middleware.RequireRoles(models.RoleTeacher), validators.CourseID(), controllers.UsersByCourse)
	courseGroup.Put("/:id", middleware.RequireRoles(models.RoleTeacher), validators.CourseID(), validators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Delete("/:id", middleware.RequireRoles(models.RoleTeacher), validators.CourseID(), controllers.DeleteCourse)

	// Enrollment
	courseGroup.Post("/:id/enroll", validators.CourseID(), controllers.Enroll)
	courseGroup.Post("/:id/enroll-user/:user_id", middleware.RequireRoles(models.RoleTeacher), validators.CourseID(), validators.TargetUserID(), controllers.EnrollUser)
	courseGroup.Patch("/:id/complete", validators.CourseID(), controllers.CompleteCourse)

	courseGroup.Get("/:id/feedback", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), validators.CourseID(), controllers.CourseFeedback)
}
