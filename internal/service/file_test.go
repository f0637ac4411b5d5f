package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"archiveapi/internal/config"
	"archiveapi/internal/model"
	"archiveapi/internal/repository"
	repoMocks "archiveapi/internal/repository/mocks"
	"archiveapi/internal/storage"
	storeMocks "archiveapi/internal/storage/mocks"
)

const adminEmail = "admin@university.edu"

func testAdminConfig() config.AdminConfig {
	return config.AdminConfig{
		Emails:            []string{adminEmail},
		UploadURLTTLSec:   900,
		DownloadURLTTLSec: 3600,
	}
}

func TestFileService_RequestUpload(t *testing.T) {
	ctx := context.Background()

	validReq := UploadRequest{
		CourseID:    "CPE101",
		FileName:    "midterm.pdf",
		FileType:    model.FileTypeNotes,
		ContentType: "application/pdf",
	}

	tests := []struct {
		name       string
		identity   string
		req        UploadRequest
		setupMocks func(mStore *storeMocks.MockStorage)
		wantErr    error
		checkGrant func(t *testing.T, g *UploadGrant)
	}{
		{
			name:     "happy path",
			identity: adminEmail,
			req:      validReq,
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("PresignPut", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "courses/CPE101/notes/") && strings.HasSuffix(key, ".pdf")
				}), "application/pdf", 900*time.Second).Return("https://store.local/put", nil)
			},
			checkGrant: func(t *testing.T, g *UploadGrant) {
				_, err := uuid.Parse(g.FileID)
				assert.NoError(t, err)
				assert.Contains(t, g.StorageKey, g.FileID)
				assert.Equal(t, "https://store.local/put", g.UploadURL)
			},
		},
		{
			name:       "non-admin rejected regardless of payload",
			identity:   "student@university.edu",
			req:        validReq,
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrNotAdmin,
		},
		{
			name:       "missing identity rejected",
			identity:   "",
			req:        validReq,
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrNotAdmin,
		},
		{
			name:     "missing required field",
			identity: adminEmail,
			req: UploadRequest{
				CourseID: "CPE101",
				FileType: model.FileTypeNotes,
			},
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrValidation,
		},
		{
			name:     "unknown file type",
			identity: adminEmail,
			req: UploadRequest{
				CourseID:    "CPE101",
				FileName:    "x.pdf",
				FileType:    "homework",
				ContentType: "application/pdf",
			},
			setupMocks: func(mStore *storeMocks.MockStorage) {},
			wantErr:    ErrValidation,
		},
		{
			name:     "gateway failure",
			identity: adminEmail,
			req:      validReq,
			setupMocks: func(mStore *storeMocks.MockStorage) {
				mStore.On("PresignPut", ctx, mock.Anything, "application/pdf", mock.Anything).
					Return("", errors.New("credential service down"))
			},
			wantErr: errors.New("presign upload"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockFileRepository)
			svc := NewFileService(mStore, mRepo, testAdminConfig())

			tt.setupMocks(mStore)

			grant, err := svc.RequestUpload(ctx, tt.identity, tt.req)

			if tt.wantErr != nil {
				if errors.Is(tt.wantErr, ErrNotAdmin) || errors.Is(tt.wantErr, ErrValidation) {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.Error(t, err)
					assert.Contains(t, err.Error(), tt.wantErr.Error())
				}
				assert.Nil(t, grant)
			} else {
				assert.NoError(t, err)
				if tt.checkGrant != nil {
					tt.checkGrant(t, grant)
				}
			}
			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestFileService_RequestUpload_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockFileRepository)
	svc := NewFileService(mStore, mRepo, testAdminConfig())

	mStore.On("PresignPut", ctx, mock.Anything, mock.Anything, mock.Anything).
		Return("https://store.local/put", nil)

	req := UploadRequest{
		CourseID:    "CPE101",
		FileName:    "notes.pdf",
		FileType:    model.FileTypeNotes,
		ContentType: "application/pdf",
	}

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		grant, err := svc.RequestUpload(ctx, adminEmail, req)
		assert.NoError(t, err)
		assert.False(t, seen[grant.FileID], "file id %s issued twice", grant.FileID)
		seen[grant.FileID] = true
	}
}

func TestFileService_ConfirmUpload(t *testing.T) {
	ctx := context.Background()

	fileID := uuid.New().String()
	key := "courses/CPE101/notes/" + fileID + ".pdf"
	validReq := ConfirmRequest{
		FileID:        fileID,
		CourseID:      "CPE101",
		FileName:      "notes.pdf",
		FileType:      model.FileTypeNotes,
		StorageKey:    key,
		FileSizeBytes: 1024,
		MimeType:      "application/pdf",
		Tags:          []string{"midterm", "2024"},
	}

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mStore.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key, Size: 1024}, nil)
		mStore.On("ObjectURL", key).Return("http://minio.local/archive-files/" + key)

		mRepo.On("Create", ctx, mock.MatchedBy(func(f *model.File) bool {
			return f.ID == fileID &&
				f.StorageKey == key &&
				f.FileURL == "http://minio.local/archive-files/"+key &&
				!f.IsVerified &&
				f.DownloadCount == 0 &&
				f.UploadedBy == adminEmail &&
				!f.UploadedAt.IsZero() &&
				!f.Date.IsZero()
		})).Return(&model.File{ID: fileID, Tags: []string{"midterm", "2024"}}, nil)

		stored, err := svc.ConfirmUpload(ctx, adminEmail, validReq)

		assert.NoError(t, err)
		assert.Equal(t, fileID, stored.ID)
		assert.Equal(t, []string{"midterm", "2024"}, stored.Tags)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("explicit exam date threaded through", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		examDate := time.Date(2024, 12, 15, 9, 0, 0, 0, time.UTC)
		req := validReq
		req.Date = &examDate

		mStore.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key}, nil)
		mStore.On("ObjectURL", key).Return("http://minio.local/archive-files/" + key)
		mRepo.On("Create", ctx, mock.MatchedBy(func(f *model.File) bool {
			return f.Date.Equal(examDate) && !f.UploadedAt.Equal(examDate)
		})).Return(&model.File{ID: fileID}, nil)

		_, err := svc.ConfirmUpload(ctx, adminEmail, req)
		assert.NoError(t, err)
		mRepo.AssertExpectations(t)
	})

	t.Run("non-admin rejected", func(t *testing.T) {
		svc := NewFileService(new(storeMocks.MockStorage), new(repoMocks.MockFileRepository), testAdminConfig())

		stored, err := svc.ConfirmUpload(ctx, "student@university.edu", validReq)

		assert.ErrorIs(t, err, ErrNotAdmin)
		assert.Nil(t, stored)
	})

	t.Run("missing required fields", func(t *testing.T) {
		svc := NewFileService(new(storeMocks.MockStorage), new(repoMocks.MockFileRepository), testAdminConfig())

		req := validReq
		req.StorageKey = ""
		_, err := svc.ConfirmUpload(ctx, adminEmail, req)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("non-uuid file id", func(t *testing.T) {
		svc := NewFileService(new(storeMocks.MockStorage), new(repoMocks.MockFileRepository), testAdminConfig())

		req := validReq
		req.FileID = "not-a-uuid"
		_, err := svc.ConfirmUpload(ctx, adminEmail, req)

		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("object missing in storage", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mStore.On("Stat", ctx, key).Return(storage.ObjectInfo{}, storage.ErrObjectNotFound)

		stored, err := svc.ConfirmUpload(ctx, adminEmail, validReq)

		assert.ErrorIs(t, err, ErrObjectMissing)
		assert.Nil(t, stored)
		// No metadata row may be written for an unverified upload.
		mRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate confirmation", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mStore.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key}, nil)
		mStore.On("ObjectURL", key).Return("http://minio.local/archive-files/" + key)
		mRepo.On("Create", ctx, mock.Anything).Return(nil, repository.ErrDuplicateID)

		stored, err := svc.ConfirmUpload(ctx, adminEmail, validReq)

		assert.ErrorIs(t, err, ErrAlreadyConfirmed)
		assert.Nil(t, stored)
	})

	t.Run("metadata write failure", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mStore.On("Stat", ctx, key).Return(storage.ObjectInfo{Key: key}, nil)
		mStore.On("ObjectURL", key).Return("http://minio.local/archive-files/" + key)
		mRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))

		stored, err := svc.ConfirmUpload(ctx, adminEmail, validReq)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "save metadata")
		assert.Nil(t, stored)
	})
}

func TestFileService_ListByCourse(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(nil, mRepo, testAdminConfig())

		mRepo.On("ListByCourse", ctx, "CPE101").Return([]model.File{
			{ID: "f-new"}, {ID: "f-old"},
		}, nil)

		files, err := svc.ListByCourse(ctx, "CPE101")

		assert.NoError(t, err)
		assert.Len(t, files, 2)
		assert.Equal(t, "f-new", files[0].ID)
		mRepo.AssertExpectations(t)
	})

	t.Run("empty course id", func(t *testing.T) {
		svc := NewFileService(nil, new(repoMocks.MockFileRepository), testAdminConfig())

		files, err := svc.ListByCourse(ctx, "")

		assert.ErrorIs(t, err, ErrIDRequired)
		assert.Nil(t, files)
	})
}

func TestFileService_IssueDownload(t *testing.T) {
	ctx := context.Background()

	file := &model.File{
		ID:         "f1",
		FileName:   "notes.pdf",
		MimeType:   "application/pdf",
		StorageKey: "courses/CPE101/notes/f1.pdf",
	}

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "f1").Return(file, nil)
		mStore.On("PresignGet", ctx, file.StorageKey, 3600*time.Second).
			Return("https://store.local/get", nil)
		mRepo.On("IncrementDownloadCount", ctx, "f1").Return(int64(1), nil)

		grant, err := svc.IssueDownload(ctx, "f1")

		assert.NoError(t, err)
		assert.Equal(t, "https://store.local/get", grant.DownloadURL)
		assert.Equal(t, "notes.pdf", grant.FileName)
		assert.Equal(t, "application/pdf", grant.MimeType)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("not found - gateway not called", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		grant, err := svc.IssueDownload(ctx, "missing")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, grant)
		mStore.AssertNotCalled(t, "PresignGet", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := NewFileService(nil, new(repoMocks.MockFileRepository), testAdminConfig())

		grant, err := svc.IssueDownload(ctx, "")

		assert.ErrorIs(t, err, ErrIDRequired)
		assert.Nil(t, grant)
	})

	t.Run("increment failure does not revoke the issued URL", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "f1").Return(file, nil)
		mStore.On("PresignGet", ctx, file.StorageKey, mock.Anything).
			Return("https://store.local/get", nil)
		mRepo.On("IncrementDownloadCount", ctx, "f1").Return(int64(0), errors.New("db fail"))

		grant, err := svc.IssueDownload(ctx, "f1")

		assert.NoError(t, err)
		assert.Equal(t, "https://store.local/get", grant.DownloadURL)
	})

	t.Run("presign failure", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "f1").Return(file, nil)
		mStore.On("PresignGet", ctx, file.StorageKey, mock.Anything).
			Return("", errors.New("gateway down"))

		grant, err := svc.IssueDownload(ctx, "f1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "presign download")
		assert.Nil(t, grant)
		mRepo.AssertNotCalled(t, "IncrementDownloadCount", mock.Anything, mock.Anything)
	})
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "f1").Return(&model.File{ID: "f1", StorageKey: "courses/CPE101/notes/f1.pdf"}, nil)
		mStore.On("Remove", ctx, "courses/CPE101/notes/f1.pdf").Return(nil)
		mRepo.On("Delete", ctx, "f1").Return(nil)

		assert.NoError(t, svc.Delete(ctx, "f1"))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(new(storeMocks.MockStorage), mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "missing").Return(nil, sql.ErrNoRows)

		assert.ErrorIs(t, svc.Delete(ctx, "missing"), ErrNotFound)
	})

	t.Run("storage failure keeps row", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockFileRepository)
		svc := NewFileService(mStore, mRepo, testAdminConfig())

		mRepo.On("FindByID", ctx, "f1").Return(&model.File{ID: "f1", StorageKey: "k"}, nil)
		mStore.On("Remove", ctx, "k").Return(errors.New("storage fail"))

		err := svc.Delete(ctx, "f1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "delete storage")
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		contentType string
		want        string
	}{
		{"application/pdf", "pdf"},
		{"image/png", "png"},
		{"text/plain; charset=utf-8", "plain"},
		{"application/", "pdf"},
		{"garbage", "pdf"},
		{"", "pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, extensionFor(tt.contentType))
		})
	}
}
