package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"archiveapi/internal/config"
	"archiveapi/internal/model"
	"archiveapi/internal/repository"
	"archiveapi/internal/storage"
)

var (
	ErrNotAdmin         = errors.New("identity is not on the admin allow-list")
	ErrValidation       = errors.New("missing or invalid required field")
	ErrIDRequired       = errors.New("id is required")
	ErrNotFound         = errors.New("file not found")
	ErrObjectMissing    = errors.New("uploaded object not found in storage")
	ErrAlreadyConfirmed = errors.New("upload already confirmed")
)

// defaultExtension is used when the content type yields no usable subtype.
const defaultExtension = "pdf"

// UploadRequest is the phase 1 input: everything needed to reserve an upload
// slot. Descriptive metadata here is informational only; the authoritative
// copy arrives with the confirmation.
type UploadRequest struct {
	CourseID    string         `json:"courseId"`
	FileName    string         `json:"fileName"`
	FileType    model.FileType `json:"fileType"`
	ContentType string         `json:"contentType"`

	Semester   string   `json:"semester,omitempty"`
	Year       int      `json:"year,omitempty"`
	DoctorName string   `json:"doctorName,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// UploadGrant is the phase 1 output. The client PUTs its bytes to UploadURL
// and then confirms with FileID and StorageKey. No metadata row exists yet.
type UploadGrant struct {
	FileID     string `json:"fileId"`
	UploadURL  string `json:"uploadUrl"`
	StorageKey string `json:"storageKey"`
}

// ConfirmRequest is the phase 3 input: the full metadata set plus the
// identifiers handed out in phase 1.
type ConfirmRequest struct {
	FileID        string         `json:"fileId"`
	CourseID      string         `json:"courseId"`
	FileName      string         `json:"fileName"`
	FileType      model.FileType `json:"fileType"`
	StorageKey    string         `json:"storageKey"`
	FileSizeBytes int64          `json:"fileSizeBytes"`
	MimeType      string         `json:"mimeType"`

	// Date is the exam/semester date; when omitted the confirmation time is
	// used for it.
	Date       *time.Time `json:"date,omitempty"`
	Semester   string     `json:"semester,omitempty"`
	Year       int        `json:"year,omitempty"`
	DoctorName string     `json:"doctorName,omitempty"`
	Tags       []string   `json:"tags,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// DownloadGrant is a presigned download URL plus the attributes a client
// needs to save the file.
type DownloadGrant struct {
	DownloadURL string `json:"downloadUrl"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
}

// FileService covers the upload handshake, download issuance and the listing
// surface for file metadata.
type FileService interface {
	// RequestUpload reserves an upload slot: it generates a file id, derives
	// the storage key and presigns a PUT URL. Nothing is persisted.
	RequestUpload(ctx context.Context, identity string, req UploadRequest) (*UploadGrant, error)

	// ConfirmUpload verifies the object exists under the granted storage key
	// and writes the metadata row. The row is created exactly once per file id.
	ConfirmUpload(ctx context.Context, identity string, req ConfirmRequest) (*model.File, error)

	// ListByCourse returns a course's files, newest first.
	ListByCourse(ctx context.Context, courseID string) ([]model.File, error)

	// IssueDownload presigns a GET URL for the file and bumps its download
	// counter. The counter is best effort: a failed increment does not revoke
	// the already-issued URL.
	IssueDownload(ctx context.Context, fileID string) (*DownloadGrant, error)

	// Delete removes the object and then the metadata row. Not exposed over
	// HTTP; kept as a maintenance capability.
	Delete(ctx context.Context, fileID string) error
}

type fileService struct {
	store       storage.Storage
	repo        repository.FileRepository
	admin       config.AdminConfig
	uploadTTL   time.Duration
	downloadTTL time.Duration
}

// NewFileService constructs a FileService with the presign TTLs taken from
// the admin config.
func NewFileService(store storage.Storage, repo repository.FileRepository, admin config.AdminConfig) FileService {
	return &fileService{
		store:       store,
		repo:        repo,
		admin:       admin,
		uploadTTL:   time.Duration(admin.UploadURLTTLSec) * time.Second,
		downloadTTL: time.Duration(admin.DownloadURLTTLSec) * time.Second,
	}
}

func (s *fileService) RequestUpload(ctx context.Context, identity string, req UploadRequest) (*UploadGrant, error) {
	if !s.admin.IsAdmin(identity) {
		return nil, ErrNotAdmin
	}
	if req.CourseID == "" || req.FileName == "" || req.FileType == "" || req.ContentType == "" {
		return nil, fmt.Errorf("%w: courseId, fileName, fileType and contentType are required", ErrValidation)
	}
	if !req.FileType.Valid() {
		return nil, fmt.Errorf("%w: unknown file type %q", ErrValidation, req.FileType)
	}

	fileID := uuid.New().String()
	key := storageKey(req.CourseID, req.FileType, fileID, req.ContentType)

	uploadURL, err := s.store.PresignPut(ctx, key, req.ContentType, s.uploadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}

	return &UploadGrant{
		FileID:     fileID,
		UploadURL:  uploadURL,
		StorageKey: key,
	}, nil
}

func (s *fileService) ConfirmUpload(ctx context.Context, identity string, req ConfirmRequest) (*model.File, error) {
	if !s.admin.IsAdmin(identity) {
		return nil, ErrNotAdmin
	}
	if req.FileID == "" || req.CourseID == "" || req.FileName == "" ||
		req.FileType == "" || req.StorageKey == "" || req.MimeType == "" {
		return nil, fmt.Errorf("%w: fileId, courseId, fileName, fileType, storageKey and mimeType are required", ErrValidation)
	}
	if !req.FileType.Valid() {
		return nil, fmt.Errorf("%w: unknown file type %q", ErrValidation, req.FileType)
	}
	if _, err := uuid.Parse(req.FileID); err != nil {
		return nil, fmt.Errorf("%w: fileId must be a UUID", ErrValidation)
	}
	if req.FileSizeBytes < 0 {
		return nil, fmt.Errorf("%w: fileSizeBytes must be non-negative", ErrValidation)
	}

	// Confirmation is verified, not trusted: the object must actually be in
	// the store before a metadata row is written.
	if _, err := s.store.Stat(ctx, req.StorageKey); err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrObjectMissing
		}
		return nil, fmt.Errorf("probe storage: %w", err)
	}

	now := time.Now().UTC()
	date := now
	if req.Date != nil {
		date = req.Date.UTC()
	}

	f := &model.File{
		ID:            req.FileID,
		CourseID:      req.CourseID,
		FileName:      req.FileName,
		FileType:      req.FileType,
		StorageKey:    req.StorageKey,
		FileURL:       s.store.ObjectURL(req.StorageKey),
		FileSizeBytes: req.FileSizeBytes,
		MimeType:      req.MimeType,
		Date:          date,
		Semester:      req.Semester,
		Year:          req.Year,
		DoctorName:    req.DoctorName,
		UploadedBy:    identity,
		UploadedAt:    now,
		IsVerified:    false,
		DownloadCount: 0,
		Tags:          req.Tags,
		Notes:         req.Notes,
	}

	stored, err := s.repo.Create(ctx, f)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, ErrAlreadyConfirmed
		}
		// The object stays behind in the store; there is no reconciliation
		// for this case.
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return stored, nil
}

func (s *fileService) ListByCourse(ctx context.Context, courseID string) ([]model.File, error) {
	if courseID == "" {
		return nil, ErrIDRequired
	}
	return s.repo.ListByCourse(ctx, courseID)
}

func (s *fileService) IssueDownload(ctx context.Context, fileID string) (*DownloadGrant, error) {
	if fileID == "" {
		return nil, ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	downloadURL, err := s.store.PresignGet(ctx, f.StorageKey, s.downloadTTL)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}

	// Best-effort usage metric. The URL above is already valid, so a failed
	// increment must not fail the request.
	_, _ = s.repo.IncrementDownloadCount(ctx, f.ID)

	return &DownloadGrant{
		DownloadURL: downloadURL,
		FileName:    f.FileName,
		MimeType:    f.MimeType,
	}, nil
}

func (s *fileService) Delete(ctx context.Context, fileID string) error {
	if fileID == "" {
		return ErrIDRequired
	}
	f, err := s.repo.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	// Remove from storage first; if this fails, keep the row so the object
	// reference is not lost.
	if err := s.store.Remove(ctx, f.StorageKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, fileID)
}

// storageKey derives the object key for an upload slot. The extension is
// guessed from the content-type subtype, falling back to "pdf".
func storageKey(courseID string, fileType model.FileType, fileID, contentType string) string {
	return fmt.Sprintf("courses/%s/%s/%s.%s", courseID, fileType, fileID, extensionFor(contentType))
}

func extensionFor(contentType string) string {
	// Strip parameters like "; charset=utf-8" before taking the subtype.
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	_, sub, ok := strings.Cut(strings.TrimSpace(contentType), "/")
	if !ok || sub == "" {
		return defaultExtension
	}
	return sub
}
