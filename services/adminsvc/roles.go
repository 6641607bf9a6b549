package adminsvc

import (
	"coursemanager/models"
	"coursemanager/policy"
	"coursemanager/services/auditsvc"
	"coursemanager/utils/apperror"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrRoleNotFound  = apperror.NotFound("Role not found!")
	ErrUserNotFound  = apperror.NotFound("User not found!")
	ErrRoleExists    = apperror.BadRequest("Role already exists!")
	ErrRoleProtected = apperror.BadRequest("Built-in roles cannot be changed!")
	ErrRoleInUse     = apperror.BadRequest("Role is assigned to users!")
)

type RoleInput struct {
	Name string `json:"name" validate:"required,min=2,max=50"`
}

type AssignRoleInput struct {
	UserID uint `json:"user_id" validate:"required"`
	RoleID uint `json:"role_id" validate:"required"`
}

func isBuiltin(id uint) bool {
	return id == models.RoleTeacherID || id == models.RoleStudentID || id == models.RoleAdminID
}

func ListRoles(db *gorm.DB) ([]models.Role, error) {
	var roles []models.Role
	err := db.Order("id asc").Find(&roles).Error
	return roles, errors.Wrap(err, "list roles")
}

func GetRole(db *gorm.DB, id uint) (models.Role, error) {
	var role models.Role
	err := db.First(&role, id).Error
	if apperror.IsNotFound(err) {
		return role, ErrRoleNotFound
	}
	return role, errors.Wrap(err, "load role")
}

// SearchRoles matches role names case-insensitively.
func SearchRoles(db *gorm.DB, name string) ([]models.Role, error) {
	var roles []models.Role
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	err := db.Where("LOWER(name) LIKE ?", pattern).Order("id asc").Find(&roles).Error
	return roles, errors.Wrap(err, "search roles")
}

func CreateRole(db *gorm.DB, input RoleInput) (models.Role, error) {
	name := strings.ToLower(strings.TrimSpace(input.Name))
	var count int64
	if err := db.Model(&models.Role{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return models.Role{}, errors.Wrap(err, "check role")
	}
	if count > 0 {
		return models.Role{}, ErrRoleExists
	}

	role := models.Role{Name: name}
	if err := db.Create(&role).Error; err != nil {
		if apperror.IsUniqueViolation(err) {
			return models.Role{}, ErrRoleExists
		}
		return models.Role{}, errors.Wrap(err, "create role")
	}
	return role, nil
}

func UpdateRole(db *gorm.DB, id uint, input RoleInput) (models.Role, error) {
	if isBuiltin(id) {
		return models.Role{}, ErrRoleProtected
	}
	role, err := GetRole(db, id)
	if err != nil {
		return role, err
	}
	role.Name = strings.ToLower(strings.TrimSpace(input.Name))
	if err := db.Save(&role).Error; err != nil {
		if apperror.IsUniqueViolation(err) {
			return role, ErrRoleExists
		}
		return role, errors.Wrap(err, "update role")
	}
	return role, nil
}

// DeleteRole removes a custom role nobody holds.
func DeleteRole(db *gorm.DB, id uint) error {
	if isBuiltin(id) {
		return ErrRoleProtected
	}
	role, err := GetRole(db, id)
	if err != nil {
		return err
	}
	var holders int64
	if err := db.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&holders).Error; err != nil {
		return errors.Wrap(err, "count role holders")
	}
	if holders > 0 {
		return ErrRoleInUse
	}
	return errors.Wrap(db.Delete(&role).Error, "delete role")
}

// AssignRole changes a user's role and writes a role_assigned audit entry.
func AssignRole(db *gorm.DB, actor policy.Actor, input AssignRoleInput) (models.User, error) {
	var user models.User
	if err := db.First(&user, input.UserID).Error; err != nil {
		if apperror.IsNotFound(err) {
			return user, ErrUserNotFound
		}
		return user, errors.Wrap(err, "load user")
	}
	role, err := GetRole(db, input.RoleID)
	if err != nil {
		return user, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("role_id", role.ID).Error; err != nil {
			return errors.Wrap(err, "assign role")
		}
		detail := fmt.Sprintf("Assigned role %s to user %s", role.Name, user.Username)
		return auditsvc.By(tx, actor.ID, models.ActionRoleAssigned, detail)
	})
	if err != nil {
		return user, err
	}
	user.RoleID = role.ID
	user.Role = &role
	return user, nil
}
