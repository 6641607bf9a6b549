package adminController

import (
	"coursemanager/database"
	"coursemanager/middleware"
	"coursemanager/services/adminsvc"

	"github.com/gofiber/fiber/v2"
)

func ListRoles(c *fiber.Ctx) error {
	roles, err := adminsvc.ListRoles(database.Database.Db)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Roles fetched successfully!", roles)
}

func SearchRoles(c *fiber.Ctx) error {
	roles, err := adminsvc.SearchRoles(database.Database.Db, c.Query("name"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Roles fetched successfully!", roles)
}

func GetRole(c *fiber.Ctx) error {
	role, err := adminsvc.GetRole(database.Database.Db, c.Locals("roleID").(uint))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role fetched successfully!", role)
}

func CreateRole(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRole").(*adminsvc.RoleInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	role, err := adminsvc.CreateRole(database.Database.Db, *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Role created successfully!", role)
}

func UpdateRole(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRole").(*adminsvc.RoleInput)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	role, err := adminsvc.UpdateRole(database.Database.Db, c.Locals("roleID").(uint), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role updated successfully!", role)
}

func DeleteRole(c *fiber.Ctx) error {
	if err := adminsvc.DeleteRole(database.Database.Db, c.Locals("roleID").(uint)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Role deleted successfully!", nil)
}
