package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"archiveapi/internal/model"
)

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListFaculties(ctx context.Context) ([]model.Faculty, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Faculty), args.Error(1)
}

func (m *MockCatalogService) ListCourses(ctx context.Context, majorID *int) ([]model.Course, error) {
	args := m.Called(ctx, majorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Course), args.Error(1)
}

func (m *MockCatalogService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Course), args.Error(1)
}
