package middleware

import (
	"coursemanager/database"
	"coursemanager/models"
	"coursemanager/policy"
	"coursemanager/services/authsvc"
	"coursemanager/utils/apperror"

	"github.com/gofiber/fiber/v2"
)

// CurrentUser loads the authenticated user with its role, once per request
func CurrentUser(c *fiber.Ctx) (models.User, error) {
	if user, ok := c.Locals("currentUser").(models.User); ok {
		return user, nil
	}
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return models.User{}, apperror.Unauthorized("Unauthorized!")
	}

	user, err := authsvc.UserByID(database.Database.Db, userID)
	if err != nil {
		if apperror.Is(err, authsvc.ErrUserNotFound) {
			return user, apperror.Unauthorized("User not found!")
		}
		return user, err
	}
	c.Locals("currentUser", user)
	return user, nil
}

// CurrentActor is CurrentUser reduced to what the policy predicates need
func CurrentActor(c *fiber.Ctx) (policy.Actor, error) {
	user, err := CurrentUser(c)
	if err != nil {
		return policy.Actor{}, err
	}
	return policy.ActorOf(user), nil
}

// RequireRoles allows the request through only when the caller's current role is one of roles
func RequireRoles(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := CurrentUser(c)
		if err != nil {
			return ErrorResponse(c, err)
		}

		for _, role := range roles {
			if user.RoleName() == role {
				return c.Next()
			}
		}
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
}
