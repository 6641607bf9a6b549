// Package authsvc registers users and checks their credentials.
package authsvc

import (
	"coursemanager/models"
	"coursemanager/policy"
	"coursemanager/services/auditsvc"
	"coursemanager/utils/apperror"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = apperror.Unauthorized("Incorrect username or password!")
	ErrUsernameTaken      = apperror.BadRequest("Username already registered!")
	ErrEmailTaken         = apperror.BadRequest("Email already registered!")
	ErrInvalidRole        = apperror.BadRequest("Invalid role!")
	ErrUserNotFound       = apperror.NotFound("User not found!")
)

type RegisterInput struct {
	Username string `json:"username" form:"username" validate:"required,min=3,max=100"`
	Email    string `json:"email" form:"email" validate:"required,email,max=255"`
	Password string `json:"password" form:"password" validate:"required,min=6,max=72"`
	RoleID   uint   `json:"role_id" form:"role_id" validate:"required"`
}

type LoginInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Register creates a teacher or student account. Admin accounts are only made by admins.
func Register(db *gorm.DB, input RegisterInput, cost int) (models.User, error) {
	if !policy.CanRegisterAs(input.RoleID) {
		return models.User{}, ErrInvalidRole
	}
	return CreateUser(db, input, cost)
}

// CreateUser hashes the password and inserts the user with any existing role.
func CreateUser(db *gorm.DB, input RegisterInput, cost int) (models.User, error) {
	var role models.Role
	if err := db.First(&role, input.RoleID).Error; err != nil {
		if apperror.IsNotFound(err) {
			return models.User{}, ErrInvalidRole
		}
		return models.User{}, errors.Wrap(err, "load role")
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", input.Username).Count(&count).Error; err != nil {
		return models.User{}, errors.Wrap(err, "check username")
	}
	if count > 0 {
		return models.User{}, ErrUsernameTaken
	}
	if err := db.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
		return models.User{}, errors.Wrap(err, "check email")
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), cost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "hash password")
	}

	user := models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: string(hash),
		RoleID:   role.ID,
		Role:     &role,
	}
	if err := db.Omit("Role").Create(&user).Error; err != nil {
		if apperror.IsUniqueViolation(err) {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, errors.Wrap(err, "create user")
	}
	return user, nil
}

// Authenticate returns the user when the password matches its bcrypt hash.
func Authenticate(db *gorm.DB, input LoginInput) (models.User, error) {
	var user models.User
	if err := db.Preload("Role").Where("username = ?", input.Username).First(&user).Error; err != nil {
		if apperror.IsNotFound(err) {
			return user, ErrInvalidCredentials
		}
		return user, errors.Wrap(err, "load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	if err := auditsvc.By(db, user.ID, models.ActionUserLogin, user.Username); err != nil {
		return user, err
	}
	return user, nil
}

// UserByID loads a user with its role.
func UserByID(db *gorm.DB, id uint) (models.User, error) {
	var user models.User
	err := db.Preload("Role").First(&user, id).Error
	if apperror.IsNotFound(err) {
		return user, ErrUserNotFound
	}
	return user, errors.Wrap(err, "load user")
}
