package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"archiveapi/internal/service"
)

// ListFaculties returns the Faculty -> Major hierarchy.
func ListFaculties(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		faculties, err := svc.ListFaculties(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"faculties": faculties})
	}
}

// ListCourses returns all courses, optionally filtered by ?major=<id>.
func ListCourses(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var majorID *int
		if q := c.Query("major"); q != "" {
			id, err := strconv.Atoi(q)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_MAJOR", "invalid major id")
			}
			majorID = &id
		}

		courses, err := svc.ListCourses(c.UserContext(), majorID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"courses": courses})
	}
}

// GetCourse returns a single course by course code.
func GetCourse(svc service.CatalogService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		course, err := svc.GetCourse(c.UserContext(), c.Params("id"))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(course)
	}
}
