package models

import "time"

// AcademicYear groups two semesters, e.g. "2025-2026".
type AcademicYear struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Semester is one half of an academic year with a fixed 1..15 week domain.
type Semester struct {
	ID             string    `db:"id" json:"id"`
	AcademicYearID string    `db:"academic_year_id" json:"academic_year_id"`
	Name           string    `db:"name" json:"name"`
	Number         int       `db:"number" json:"number"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
