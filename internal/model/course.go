package model

import "time"

// Faculty groups majors; the hierarchy Faculty -> Major -> Course is
// read-only reference data used to scope file listings.
type Faculty struct {
	ID     int     `json:"id"`
	NameEn string  `json:"nameEn"`
	NameAr string  `json:"nameAr"`
	Majors []Major `json:"majors"`
}

type Major struct {
	ID        int    `json:"id"`
	FacultyID int    `json:"facultyId"`
	Code      string `json:"code"`
	NameEn    string `json:"nameEn"`
	NameAr    string `json:"nameAr"`
}

// Course is identified by its course code (e.g. "CPE101", "DSE211").
type Course struct {
	ID            string    `json:"id"`
	NameEn        string    `json:"nameEn"`
	NameAr        string    `json:"nameAr"`
	FacultyID     int       `json:"facultyId"`
	Credits       int       `json:"credits,omitempty"`
	DescriptionEn string    `json:"descriptionEn,omitempty"`
	DescriptionAr string    `json:"descriptionAr,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
