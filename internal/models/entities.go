package models

import "time"

// Classroom is a bookable room.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Building  string    `db:"building" json:"building"`
	Floor     int       `db:"floor" json:"floor"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Type      string    `db:"type" json:"type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Subject represents an academic subject.
type Subject struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// SubjectGroup is a teaching group of a subject, e.g. "GR4-Gm1".
type SubjectGroup struct {
	ID             string    `db:"id" json:"id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	GroupCode      string    `db:"group_code" json:"group_code"`
	StudentGroupID *string   `db:"student_group_id" json:"student_group_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StudentGroup is a cohort of students that attends classes together.
type StudentGroup struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	MaxStudents int       `db:"max_students" json:"max_students"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Teacher represents a member of the teaching staff.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// FullName joins first and last name for display.
func (t Teacher) FullName() string {
	if t.FirstName == "" {
		return t.LastName
	}
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
