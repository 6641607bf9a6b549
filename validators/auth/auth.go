package authValidator

import (
	"coursemanager/services/authsvc"
	"coursemanager/validators"

	"github.com/gofiber/fiber/v2"
)

// Register accepts JSON or form bodies
func Register() fiber.Handler {
	return validators.Body[authsvc.RegisterInput]("validatedRegister")
}

func Login() fiber.Handler {
	return validators.Body[authsvc.LoginInput]("validatedLogin")
}
