package models

import "time"

// LegacyScheduleSlot is a booking from the older timetable model that
// predates week partitioning. Rows are implicitly full-semester and are
// kept read-only for historical data; only the occupancy view reads them.
type LegacyScheduleSlot struct {
	ID               string    `db:"id" json:"id"`
	StudentGroupName string    `db:"student_group_name" json:"student_group_name"`
	SubjectName      string    `db:"subject_name" json:"subject_name"`
	TeacherName      string    `db:"teacher_name" json:"teacher_name"`
	DayOfWeek        int       `db:"day_of_week" json:"day_of_week"`
	StartTime        string    `db:"start_time" json:"start_time"`
	EndTime          string    `db:"end_time" json:"end_time"`
	SemesterNumber   int       `db:"semester" json:"semester"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}
