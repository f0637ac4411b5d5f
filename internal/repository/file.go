package repository

import (
	"context"
	"errors"

	"archiveapi/internal/model"
)

// ErrDuplicateID is returned by Create when a row with the same id already
// exists. The postgres implementation maps unique-violation errors to it so
// callers can detect a repeated confirmation without inspecting driver errors.
var ErrDuplicateID = errors.New("file id already exists")

// FileRepository defines data access for file metadata rows using SQL queries
// only. No business logic here — strictly persistence operations.
type FileRepository interface {
	// Create inserts a new file record. The caller provides all fields,
	// including the id generated during the upload handshake.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by its ID.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListByCourse returns all files for a course ordered by uploaded_at
	// descending (newest first).
	ListByCourse(ctx context.Context, courseID string) ([]model.File, error)

	// IncrementDownloadCount bumps download_count by one in a single UPDATE
	// and returns the new value. Concurrent calls never lose an update.
	IncrementDownloadCount(ctx context.Context, id string) (int64, error)

	// Delete removes a file row by ID. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id string) error
}
