package middleware

import (
	"coursemanager/config"
	"coursemanager/models"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	// RefreshCookie carries the refresh token between the browser and /auth/refresh-token
	RefreshCookie = "refresh_token"
)

// GenerateJWT signs an access token for the user, valid for ttl
func GenerateJWT(user models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.Username,
		"userId": user.ID,
		"roleId": user.RoleID,
		"role":   user.RoleName(),
		"type":   tokenTypeAccess,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTKey))
}

// GenerateRefreshJWT signs the long-lived refresh token stored in the httpOnly cookie
func GenerateRefreshJWT(user models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":    user.Username,
		"userId": user.ID,
		"type":   tokenTypeRefresh,
		"jti":    uuid.NewString(),
		"iat":    now.Unix(),
		"exp":    now.Add(config.AppConfig.RefreshTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.AppConfig.JWTRefreshKey))
}

// ParseRefreshJWT validates a refresh token and returns the user id it was issued to.
// expired is true when the token was well-formed but past its expiry.
func ParseRefreshJWT(tokenString string) (userID uint, expired bool, err error) {
	claims, err := parseToken(tokenString, config.AppConfig.JWTRefreshKey)
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return 0, true, err
		}
		return 0, false, err
	}
	if claims["type"] != tokenTypeRefresh {
		return 0, false, fmt.Errorf("not a refresh token")
	}
	id, ok := claims["userId"].(float64)
	if !ok {
		return 0, false, fmt.Errorf("invalid token payload")
	}
	return uint(id), false, nil
}

func parseToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Check if the token method is valid
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// JWTMiddleware is a middleware to check for valid JWT token in the request
func JWTMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return UnauthorizedResponse(c)
	}

	claims, err := parseToken(authHeader[len("Bearer "):], config.AppConfig.JWTKey)
	if err != nil || claims["type"] != tokenTypeAccess {
		return UnauthorizedResponse(c)
	}

	userID, ok := claims["userId"].(float64) // JWT numbers decode as float64
	if !ok {
		return UnauthorizedResponse(c)
	}
	c.Locals("userId", uint(userID))
	if roleID, ok := claims["roleId"].(float64); ok {
		c.Locals("roleId", uint(roleID))
	}

	return c.Next()
}
