package userValidator

import (
	"coursemanager/services/authsvc"
	"coursemanager/services/coursesvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

func UserID() fiber.Handler {
	return validators.ParamID("id", "User", "userIDParam")
}

// CreateUser is the admin variant of registration and accepts any role
func CreateUser() fiber.Handler {
	return validators.Body[authsvc.RegisterInput]("validatedUser")
}

func CreateFeedback() fiber.Handler {
	return validators.Body[coursesvc.FeedbackInput]("validatedFeedback")
}
