package authController

import (
	"coursemanager/config"
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/authsvc"
	"coursemanager/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authsvc.RegisterInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := authsvc.Register(database.Database.Db, *reqData, config.AppConfig.SaltRound)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	utils.SendWelcomeEmail(user.Email, user.Username)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully!", user)
}

// Login issues a bearer access token and sets the refresh token as an httpOnly cookie
func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authsvc.LoginInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := authsvc.Authenticate(database.Database.Db, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	accessToken, err := middleware.GenerateJWT(user, config.AppConfig.AccessTokenTTL)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	refreshToken, err := middleware.GenerateRefreshJWT(user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.RefreshCookie,
		Value:    refreshToken,
		Path:     "/",
		Expires:  time.Now().Add(config.AppConfig.RefreshTokenTTL),
		HTTPOnly: true,
		Secure:   config.AppConfig.AppEnv == "production",
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful!", fiber.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
		"user":         user,
	})
}

// RefreshToken trades the refresh cookie for a short-lived access token
func RefreshToken(c *fiber.Ctx) error {
	token := c.Cookies(middleware.RefreshCookie)
	if token == "" {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Refresh token missing!", nil)
	}

	userID, expired, err := middleware.ParseRefreshJWT(token)
	if expired {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Refresh token expired!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid refresh token!", nil)
	}

	user, err := authsvc.UserByID(database.Database.Db, userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid refresh token!", nil)
	}

	accessToken, err := middleware.GenerateJWT(user, config.AppConfig.RefreshedTTL)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Token refreshed successfully!", fiber.Map{
		"access_token": accessToken,
		"token_type":   "bearer",
	})
}
