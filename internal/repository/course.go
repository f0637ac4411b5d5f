package repository

import (
	"context"

	"archiveapi/internal/model"
)

// CourseRepository exposes the read-only Faculty -> Major -> Course reference
// hierarchy. There are no lifecycle operations beyond read.
type CourseRepository interface {
	// FindByID returns a course by its course code.
	FindByID(ctx context.Context, id string) (*model.Course, error)

	// List returns all courses ordered by course code.
	List(ctx context.Context) ([]model.Course, error)

	// ListByMajor returns the courses linked to a major through the
	// course_majors association table.
	ListByMajor(ctx context.Context, majorID int) ([]model.Course, error)

	// ListFaculties returns all faculties with their majors nested.
	ListFaculties(ctx context.Context) ([]model.Faculty, error)
}
