package model

import "time"

// FileType classifies an uploaded course material.
type FileType string

const (
	FileTypePastExam   FileType = "past-exam"
	FileTypeNotes      FileType = "notes"
	FileTypeSyllabus   FileType = "syllabus"
	FileTypeAssignment FileType = "assignment"
	FileTypeSlides     FileType = "slides"
	FileTypeSolution   FileType = "solution"
	FileTypeBook       FileType = "book"
	FileTypeOther      FileType = "other"
)

// Valid reports whether t is one of the known file types.
func (t FileType) Valid() bool {
	switch t {
	case FileTypePastExam, FileTypeNotes, FileTypeSyllabus, FileTypeAssignment,
		FileTypeSlides, FileTypeSolution, FileTypeBook, FileTypeOther:
		return true
	}
	return false
}

// File is the metadata row describing one uploaded artifact. The bytes
// themselves live in the object store under StorageKey; FileURL is the
// canonical location derived from it at confirmation time. This is a pure
// domain model with no database-specific dependencies or tags.
type File struct {
	ID       string   `json:"id"`
	CourseID string   `json:"courseId"`
	FileName string   `json:"fileName"`
	FileType FileType `json:"fileType"`

	StorageKey    string `json:"storageKey"`
	FileURL       string `json:"fileUrl"`
	FileSizeBytes int64  `json:"fileSizeBytes"`
	MimeType      string `json:"mimeType"`

	// Date is the semantically meaningful date (exam or semester date),
	// distinct from the system-assigned UploadedAt.
	Date       time.Time `json:"date"`
	Semester   string    `json:"semester,omitempty"`
	Year       int       `json:"year,omitempty"`
	DoctorName string    `json:"doctorName,omitempty"`

	UploadedBy    string    `json:"uploadedBy"`
	UploadedAt    time.Time `json:"uploadedAt"`
	IsVerified    bool      `json:"isVerified"`
	DownloadCount int64     `json:"downloadCount"`

	Tags  []string `json:"tags"`
	Notes string   `json:"notes,omitempty"`
}
