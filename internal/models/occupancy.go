package models

// Sampling grid for the occupancy view: every weekday is divided into
// one-hour cells from 08:00 to 21:00. The grid is independent of the
// canonical time slots assignments reference.
const (
	OccupancyFirstHour = 8
	OccupancyLastHour  = 20
	OccupancyDays      = 5

	// Hourly cells starting before 14:00 count as morning.
	OccupancyMorningBoundary = 14 * 60
)

// BookingSource tags which timetable model an occupancy entry came from.
type BookingSource string

const (
	SourceLegacy          BookingSource = "legacy"
	SourceWeekPartitioned BookingSource = "week_partitioned"
)

// OccupancyEntry is one gathered booking, normalised across the legacy and
// week-partitioned models, as consumed by the occupancy grid.
type OccupancyEntry struct {
	Source      BookingSource `json:"source"`
	DayOfWeek   int           `json:"day_of_week"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	SubjectName string        `json:"subject_name"`
	GroupCode   string        `json:"group_code"`
	TeacherName string        `json:"teacher_name"`
}

// HourlyCell is one sampled cell of the weekly occupancy grid.
type HourlyCell struct {
	DayOfWeek  int             `json:"day_of_week"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Occupied   bool            `json:"is_occupied"`
	Assignment *OccupancyEntry `json:"assignment,omitempty"`
}

// SemesterOccupancy is the occupancy grid and aggregates for one semester.
type SemesterOccupancy struct {
	SemesterID         string       `json:"semester_id"`
	SemesterName       string       `json:"semester_name"`
	MorningOccupancy   int          `json:"morning_occupancy"`
	AfternoonOccupancy int          `json:"afternoon_occupancy"`
	TotalOccupancy     int          `json:"total_occupancy"`
	Cells              []HourlyCell `json:"time_slots"`
}

// ClassroomOccupancy pairs a classroom with its per-semester occupancy.
type ClassroomOccupancy struct {
	ClassroomID   string              `json:"classroom_id"`
	ClassroomCode string              `json:"classroom_code"`
	ClassroomName string              `json:"classroom_name"`
	Semesters     []SemesterOccupancy `json:"semesters"`
}
