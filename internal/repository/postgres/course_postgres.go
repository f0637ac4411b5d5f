package postgres

import (
	"context"
	"database/sql"

	"archiveapi/internal/model"
	"archiveapi/internal/repository"
)

// CoursePostgres is a PostgreSQL implementation of repository.CourseRepository.
type CoursePostgres struct {
	db *sql.DB
}

// NewCoursePostgres creates a new CoursePostgres repository.
func NewCoursePostgres(db *sql.DB) *CoursePostgres {
	return &CoursePostgres{db: db}
}

var _ repository.CourseRepository = (*CoursePostgres)(nil)

const courseColumns = `id, name_en, name_ar, faculty_id, credits,
		description_en, description_ar, created_at, updated_at`

// FindByID fetches a single course by its course code.
func (r *CoursePostgres) FindByID(ctx context.Context, id string) (*model.Course, error) {
	const q = `
		SELECT ` + courseColumns + `
		FROM courses
		WHERE id = $1
	`
	return scanCourse(r.db.QueryRowContext(ctx, q, id))
}

// List returns all courses ordered by course code.
func (r *CoursePostgres) List(ctx context.Context) ([]model.Course, error) {
	const q = `
		SELECT ` + courseColumns + `
		FROM courses
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListByMajor returns the courses associated with a major.
func (r *CoursePostgres) ListByMajor(ctx context.Context, majorID int) ([]model.Course, error) {
	const q = `
		SELECT c.id, c.name_en, c.name_ar, c.faculty_id, c.credits,
		c.description_en, c.description_ar, c.created_at, c.updated_at
		FROM courses c
		JOIN course_majors cm ON cm.course_id = c.id
		WHERE cm.major_id = $1
		ORDER BY c.id
	`
	rows, err := r.db.QueryContext(ctx, q, majorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCourses(rows)
}

// ListFaculties returns all faculties with their majors nested. Two queries,
// joined in memory; the reference tables are small.
func (r *CoursePostgres) ListFaculties(ctx context.Context) ([]model.Faculty, error) {
	const qFaculties = `SELECT id, name_en, name_ar FROM faculties ORDER BY id`
	rows, err := r.db.QueryContext(ctx, qFaculties)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	faculties := make([]model.Faculty, 0)
	byID := make(map[int]int)
	for rows.Next() {
		var f model.Faculty
		if err := rows.Scan(&f.ID, &f.NameEn, &f.NameAr); err != nil {
			return nil, err
		}
		f.Majors = []model.Major{}
		byID[f.ID] = len(faculties)
		faculties = append(faculties, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const qMajors = `SELECT id, faculty_id, code, name_en, name_ar FROM majors ORDER BY id`
	mrows, err := r.db.QueryContext(ctx, qMajors)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()

	for mrows.Next() {
		var m model.Major
		if err := mrows.Scan(&m.ID, &m.FacultyID, &m.Code, &m.NameEn, &m.NameAr); err != nil {
			return nil, err
		}
		if idx, ok := byID[m.FacultyID]; ok {
			faculties[idx].Majors = append(faculties[idx].Majors, m)
		}
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}
	return faculties, nil
}

func scanCourse(row rowScanner) (*model.Course, error) {
	var (
		c       model.Course
		credits sql.NullInt64
		descEn  sql.NullString
		descAr  sql.NullString
	)
	if err := row.Scan(
		&c.ID,
		&c.NameEn,
		&c.NameAr,
		&c.FacultyID,
		&credits,
		&descEn,
		&descAr,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	c.Credits = int(credits.Int64)
	c.DescriptionEn = descEn.String
	c.DescriptionAr = descAr.String
	return &c, nil
}

func collectCourses(rows *sql.Rows) ([]model.Course, error) {
	courses := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return courses, nil
}
