package models

import "time"

// Assignment books one subject group into one time slot for a semester,
// optionally with a teacher and one or more classrooms.
type Assignment struct {
	ID             string    `db:"id" json:"id"`
	SemesterID     string    `db:"semester_id" json:"semester_id"`
	SubjectID      string    `db:"subject_id" json:"subject_id"`
	SubjectGroupID *string   `db:"subject_group_id" json:"subject_group_id,omitempty"`
	StudentGroupID *string   `db:"student_group_id" json:"student_group_id,omitempty"`
	TeacherID      *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	TimeSlotID     string    `db:"time_slot_id" json:"time_slot_id"`
	HoursPerWeek   int       `db:"hours_per_week" json:"hours_per_week"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomBooking links an assignment to a classroom with a week set.
// An assignment may hold several bookings (multi-room sessions).
type ClassroomBooking struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignment_id"`
	ClassroomID  string    `db:"classroom_id" json:"classroom_id"`
	FullSemester bool      `db:"is_full_semester" json:"is_full_semester"`
	Weeks        []int     `db:"-" json:"weeks,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// WeekSet exposes the booking's week coverage as a WeekSet value.
func (b ClassroomBooking) WeekSet() WeekSet {
	if b.FullSemester {
		return FullWeekSet()
	}
	return ExplicitWeekSet(b.Weeks)
}

// BookingOwner identifies a booking together with its owning assignment's
// subject and group, as needed by conflict reporting.
type BookingOwner struct {
	BookingID    string  `db:"booking_id"`
	AssignmentID string  `db:"assignment_id"`
	ClassroomID  string  `db:"classroom_id"`
	FullSemester bool    `db:"is_full_semester"`
	SubjectName  string  `db:"subject_name"`
	GroupCode    string  `db:"group_code"`
	Weeks        []int   `db:"-"`
	TeacherID    *string `db:"teacher_id"`
}

// WeekSet exposes the owner's week coverage as a WeekSet value.
func (o BookingOwner) WeekSet() WeekSet {
	if o.FullSemester {
		return FullWeekSet()
	}
	return ExplicitWeekSet(o.Weeks)
}

// ConflictDimension labels which shared resource a conflict is about.
type ConflictDimension string

const (
	ConflictClassroom    ConflictDimension = "CLASSROOM"
	ConflictTeacher      ConflictDimension = "TEACHER"
	ConflictStudentGroup ConflictDimension = "STUDENT_GROUP"
)

// BookingConflict describes one collision between a candidate booking and an
// existing assignment sharing a time slot, semester and at least one week.
type BookingConflict struct {
	Dimension    ConflictDimension `json:"dimension"`
	AssignmentID string            `json:"assignment_id"`
	ClassroomID  string            `json:"classroom_id,omitempty"`
	SubjectName  string            `json:"subject_name"`
	GroupCode    string            `json:"group_code"`
	TeacherName  string            `json:"teacher_name,omitempty"`
	Weeks        []int             `json:"conflicting_weeks"`
}

// BookingConflictError is returned when a booking collides with existing
// assignments. It carries every detected conflict so callers can render an
// override dialog or pick an alternative classroom.
type BookingConflictError struct {
	Message   string            `json:"message"`
	Conflicts []BookingConflict `json:"conflicts"`
}

// Error implements the error interface.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// AssignmentFilter describes query params for listing assignments.
type AssignmentFilter struct {
	SubjectGroupID string
	SemesterID     string
	ClassroomID    string
	Page           int
	PageSize       int
}

// AssignmentDetail is an assignment expanded with its slot and bookings,
// as the scheduling dialogs consume it.
type AssignmentDetail struct {
	Assignment
	TimeSlot TimeSlot           `json:"time_slot"`
	Bookings []ClassroomBooking `json:"classroom_bookings"`
}
