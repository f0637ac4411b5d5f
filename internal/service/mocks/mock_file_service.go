package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"archiveapi/internal/model"
	"archiveapi/internal/service"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) RequestUpload(ctx context.Context, identity string, req service.UploadRequest) (*service.UploadGrant, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadGrant), args.Error(1)
}

func (m *MockFileService) ConfirmUpload(ctx context.Context, identity string, req service.ConfirmRequest) (*model.File, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) ListByCourse(ctx context.Context, courseID string) ([]model.File, error) {
	args := m.Called(ctx, courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) IssueDownload(ctx context.Context, fileID string) (*service.DownloadGrant, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DownloadGrant), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}
