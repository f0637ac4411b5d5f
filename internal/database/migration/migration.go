package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_faculties",
		SQL: `CREATE TABLE IF NOT EXISTS faculties (
  id      SERIAL PRIMARY KEY,
  name_en TEXT   NOT NULL,
  name_ar TEXT   NOT NULL
);`,
	},
	{
		Name: "create_table_majors",
		SQL: `CREATE TABLE IF NOT EXISTS majors (
  id         SERIAL PRIMARY KEY,
  faculty_id INT    NOT NULL REFERENCES faculties (id),
  code       TEXT   NOT NULL UNIQUE,
  name_en    TEXT   NOT NULL,
  name_ar    TEXT   NOT NULL
);`,
	},
	{
		Name: "create_table_courses",
		SQL: `CREATE TABLE IF NOT EXISTS courses (
  id             TEXT        PRIMARY KEY,
  name_en        TEXT        NOT NULL,
  name_ar        TEXT        NOT NULL,
  faculty_id     INT         NOT NULL REFERENCES faculties (id),
  credits        INT,
  description_en TEXT,
  description_ar TEXT,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_course_majors",
		SQL: `CREATE TABLE IF NOT EXISTS course_majors (
  id        SERIAL PRIMARY KEY,
  course_id TEXT   NOT NULL REFERENCES courses (id),
  major_id  INT    NOT NULL REFERENCES majors (id),
  UNIQUE (course_id, major_id)
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id              UUID        PRIMARY KEY,
  course_id       TEXT        NOT NULL,
  file_name       TEXT        NOT NULL,
  file_type       TEXT        NOT NULL CHECK (file_type IN
    ('past-exam', 'notes', 'syllabus', 'assignment', 'slides', 'solution', 'book', 'other')),
  storage_key     TEXT        NOT NULL UNIQUE,
  file_url        TEXT        NOT NULL,
  file_size_bytes BIGINT      NOT NULL CHECK (file_size_bytes >= 0),
  mime_type       TEXT        NOT NULL,
  date            TIMESTAMPTZ NOT NULL,
  semester        TEXT,
  year            INT,
  doctor_name     TEXT,
  uploaded_by     TEXT        NOT NULL,
  uploaded_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
  is_verified     BOOLEAN     NOT NULL DEFAULT FALSE,
  download_count  BIGINT      NOT NULL DEFAULT 0 CHECK (download_count >= 0),
  tags            JSONB,
  notes           TEXT
);`,
	},
	{
		Name: "create_index_files_course_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_course_id ON files (course_id);`,
	},
	{
		Name: "create_index_files_uploaded_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_uploaded_at ON files (uploaded_at);`,
	},
	{
		Name: "create_index_files_file_type",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_file_type ON files (file_type);`,
	},
	{
		Name: "seed_faculties",
		SQL: `INSERT INTO faculties (id, name_en, name_ar) VALUES
  (1, 'Engineering', 'الهندسة'),
  (2, 'Medicine', 'الطب'),
  (3, 'Pharmacy', 'الصيدلة')
ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "seed_majors",
		SQL: `INSERT INTO majors (id, faculty_id, code, name_en, name_ar) VALUES
  (1, 1, 'CPE', 'Computer Engineering', 'هندسة الحاسوب'),
  (2, 1, 'EE', 'Electrical Engineering', 'الهندسة الكهربائية'),
  (3, 2, 'MED', 'Medicine', 'الطب'),
  (4, 3, 'PHAR', 'Pharmacy', 'الصيدلة')
ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "seed_courses",
		SQL: `INSERT INTO courses (id, name_en, name_ar, faculty_id, credits) VALUES
  ('CPE101', 'Introduction to Programming', 'مقدمة في البرمجة', 1, 3),
  ('CPE241', 'Data Structures', 'هياكل البيانات', 1, 3),
  ('EE241', 'Signals & Systems', 'الإشارات والأنظمة', 1, 3),
  ('MED212', 'Anatomy', 'التشريح', 2, 4),
  ('PHAR210', 'Pharmacology I', 'علم الأدوية 1', 3, 3)
ON CONFLICT (id) DO NOTHING;`,
	},
	{
		Name: "seed_course_majors",
		SQL: `INSERT INTO course_majors (course_id, major_id) VALUES
  ('CPE101', 1),
  ('CPE241', 1),
  ('EE241', 2),
  ('MED212', 3),
  ('PHAR210', 4)
ON CONFLICT (course_id, major_id) DO NOTHING;`,
	},
	{
		// Explicit-id seeds do not advance the SERIAL sequences.
		Name: "seed_sync_sequences",
		SQL: `SELECT setval('faculties_id_seq', (SELECT max(id) FROM faculties)),
       setval('majors_id_seq', (SELECT max(id) FROM majors));`,
	},
}

// EnsureMigrated checks if the 'files' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.files') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
