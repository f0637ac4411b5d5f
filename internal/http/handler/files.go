package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"archiveapi/internal/service"
)

// IdentityHeader carries the caller identity for admin-gated operations.
// There is no session or token validation in this service; the value is
// matched against the configured allow-list.
const IdentityHeader = "X-User-Email"

// RequestUpload handles phase 1 of the upload handshake: it reserves an
// upload slot and returns a presigned PUT URL.
func RequestUpload(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.UploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		grant, err := svc.RequestUpload(c.UserContext(), c.Get(IdentityHeader), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(grant)
	}
}

// ConfirmUpload handles phase 3 of the upload handshake: it verifies the
// uploaded object and writes the metadata row.
func ConfirmUpload(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req service.ConfirmRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		f, err := svc.ConfirmUpload(c.UserContext(), c.Get(IdentityHeader), req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"fileId":  f.ID,
		})
	}
}

// ListCourseFiles returns a course's files, newest first.
func ListCourseFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		files, err := svc.ListByCourse(c.UserContext(), c.Params("courseId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"files": files})
	}
}

// IssueDownload presigns a download URL for a file and bumps its counter.
func IssueDownload(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		grant, err := svc.IssueDownload(c.UserContext(), c.Params("fileId"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(grant)
	}
}

// writeServiceError maps service-layer sentinel errors onto the HTTP error
// taxonomy. Anything unrecognized is a dependency failure and stays generic.
func writeServiceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotAdmin):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", "admin identity required")
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "INVALID_REQUEST", "missing or invalid required field")
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "file not found")
	case errors.Is(err, service.ErrCourseNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "course not found")
	case errors.Is(err, service.ErrObjectMissing):
		return writeError(c, fiber.StatusConflict, "UPLOAD_NOT_COMPLETED", "uploaded object not found in storage")
	case errors.Is(err, service.ErrAlreadyConfirmed):
		return writeError(c, fiber.StatusConflict, "ALREADY_CONFIRMED", "upload already confirmed")
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
