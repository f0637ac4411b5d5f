package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"archiveapi/internal/model"
	"archiveapi/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, course_id, file_name, file_type, storage_key, file_url,
		file_size_bytes, mime_type, date, semester, year, doctor_name,
		uploaded_by, uploaded_at, is_verified, download_count, tags, notes`

const uniqueViolationCode = "23505"

// Create inserts a new file row and returns the stored record.
// A primary-key collision is reported as repository.ErrDuplicateID.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (` + fileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING ` + fileColumns

	tags, err := marshalTags(f.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.CourseID,
		f.FileName,
		string(f.FileType),
		f.StorageKey,
		f.FileURL,
		f.FileSizeBytes,
		f.MimeType,
		f.Date,
		nullString(f.Semester),
		nullInt(f.Year),
		nullString(f.DoctorName),
		f.UploadedBy,
		f.UploadedAt,
		f.IsVerified,
		f.DownloadCount,
		tags,
		nullString(f.Notes),
	)

	out, err := scanFile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, repository.ErrDuplicateID
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single file by its ID.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE id = $1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByCourse returns all files for a course, newest first.
func (r *FilePostgres) ListByCourse(ctx context.Context, courseID string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE course_id = $1
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := make([]model.File, 0)
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return files, nil
}

// IncrementDownloadCount performs the increment as a single atomic UPDATE so
// concurrent downloads of the same file never undercount.
func (r *FilePostgres) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE files
		SET download_count = download_count + 1
		WHERE id = $1
		RETURNING download_count
	`
	var count int64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes a file row by ID. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var (
		f          model.File
		fileType   string
		semester   sql.NullString
		year       sql.NullInt64
		doctorName sql.NullString
		tags       []byte
		notes      sql.NullString
	)
	if err := row.Scan(
		&f.ID,
		&f.CourseID,
		&f.FileName,
		&fileType,
		&f.StorageKey,
		&f.FileURL,
		&f.FileSizeBytes,
		&f.MimeType,
		&f.Date,
		&semester,
		&year,
		&doctorName,
		&f.UploadedBy,
		&f.UploadedAt,
		&f.IsVerified,
		&f.DownloadCount,
		&tags,
		&notes,
	); err != nil {
		return nil, err
	}
	f.FileType = model.FileType(fileType)
	f.Semester = semester.String
	f.Year = int(year.Int64)
	f.DoctorName = doctorName.String
	f.Notes = notes.String

	f.Tags = []string{}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &f.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal tags for file %s: %w", f.ID, err)
		}
	}
	return &f, nil
}

func marshalTags(tags []string) (any, error) {
	if len(tags) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(i int) any {
	if i == 0 {
		return nil
	}
	return i
}
