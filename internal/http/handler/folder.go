package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"doclib/internal/model"
	"doclib/internal/service"
)

// ListFolders returns the flat folder listing.
func ListFolders(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		folders, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"items": folders, "total": len(folders)})
	}
}

// CreateFolder creates a folder, optionally under a parent.
func CreateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.CreateFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		folder, err := svc.Create(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(folder)
	}
}

// UpdateFolder renames and/or moves a folder. Setting move_to_root detaches
// it from its parent.
func UpdateFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req model.UpdateFolderRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		folder, err := svc.Update(c.UserContext(), id, req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(folder)
	}
}

// DeleteFolder removes a folder with its whole subtree and the documents in it.
func DeleteFolder(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// FolderPath returns the breadcrumb trail from a root down to the folder.
func FolderPath(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		path, err := svc.Path(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"path": path})
	}
}

// GetTree returns the nested folder forest with per-folder document counts.
func GetTree(svc service.FolderService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		forest, err := svc.Tree(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(forest)
	}
}
