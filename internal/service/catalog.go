package service

import (
	"context"
	"database/sql"
	"errors"

	"archiveapi/internal/model"
	"archiveapi/internal/repository"
)

var ErrCourseNotFound = errors.New("course not found")

// CatalogService is the read-only query surface over the
// Faculty -> Major -> Course reference hierarchy.
type CatalogService interface {
	// ListFaculties returns all faculties with their majors nested.
	ListFaculties(ctx context.Context) ([]model.Faculty, error)

	// ListCourses returns all courses, or only those of a major when
	// majorID is non-nil.
	ListCourses(ctx context.Context, majorID *int) ([]model.Course, error)

	// GetCourse returns a course by its course code.
	GetCourse(ctx context.Context, id string) (*model.Course, error)
}

type catalogService struct {
	repo repository.CourseRepository
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(repo repository.CourseRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListFaculties(ctx context.Context) ([]model.Faculty, error) {
	return s.repo.ListFaculties(ctx)
}

func (s *catalogService) ListCourses(ctx context.Context, majorID *int) ([]model.Course, error) {
	if majorID != nil {
		return s.repo.ListByMajor(ctx, *majorID)
	}
	return s.repo.List(ctx)
}

func (s *catalogService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}
