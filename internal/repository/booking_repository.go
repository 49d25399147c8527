package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

// BookingRepository provides the read-only scans the conflict detector runs
// against committed classroom bookings. It never mutates state.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// ListClassroomOwners returns every booking for the classroom whose owning
// assignment shares the time slot and semester, excluding the assignment
// being edited. Owner identity (subject name, group code) rides along for
// conflict reporting.
func (r *BookingRepository) ListClassroomOwners(ctx context.Context, classroomID, timeSlotID, semesterID, excludeAssignmentID string) ([]models.BookingOwner, error) {
	query := `SELECT ac.id AS booking_id, ac.assignment_id, ac.classroom_id, ac.is_full_semester,
COALESCE(s.name, '') AS subject_name, COALESCE(sg.group_code, '') AS group_code, a.teacher_id
FROM assignment_classrooms ac
JOIN assignments a ON a.id = ac.assignment_id
JOIN subjects s ON s.id = a.subject_id
LEFT JOIN subject_groups sg ON sg.id = a.subject_group_id
WHERE ac.classroom_id = $1 AND a.time_slot_id = $2 AND a.semester_id = $3`
	args := []interface{}{classroomID, timeSlotID, semesterID}
	if excludeAssignmentID != "" {
		query += ` AND a.id != $4`
		args = append(args, excludeAssignmentID)
	}

	var owners []models.BookingOwner
	if err := r.db.SelectContext(ctx, &owners, query, args...); err != nil {
		return nil, fmt.Errorf("scan classroom bookings: %w", err)
	}
	if err := r.attachOwnerWeeks(ctx, owners); err != nil {
		return nil, err
	}
	return owners, nil
}

// ListTeacherOwners returns bookings whose owning assignment shares the time
// slot, semester and teacher, excluding the assignment being edited. The
// teacher dimension carries no week partition: any shared slot collides.
func (r *BookingRepository) ListTeacherOwners(ctx context.Context, teacherID, timeSlotID, semesterID, excludeAssignmentID string) ([]models.BookingOwner, error) {
	query := `SELECT a.id AS booking_id, a.id AS assignment_id, '' AS classroom_id, TRUE AS is_full_semester,
COALESCE(s.name, '') AS subject_name, COALESCE(sg.group_code, '') AS group_code, a.teacher_id
FROM assignments a
JOIN subjects s ON s.id = a.subject_id
LEFT JOIN subject_groups sg ON sg.id = a.subject_group_id
WHERE a.teacher_id = $1 AND a.time_slot_id = $2 AND a.semester_id = $3`
	args := []interface{}{teacherID, timeSlotID, semesterID}
	if excludeAssignmentID != "" {
		query += ` AND a.id != $4`
		args = append(args, excludeAssignmentID)
	}

	var owners []models.BookingOwner
	if err := r.db.SelectContext(ctx, &owners, query, args...); err != nil {
		return nil, fmt.Errorf("scan teacher assignments: %w", err)
	}
	return owners, nil
}

// CountStudentGroupAssignments counts assignments that already occupy the
// slot for the student group, excluding the subject group being saved.
func (r *BookingRepository) CountStudentGroupAssignments(ctx context.Context, studentGroupID, timeSlotID, semesterID, excludeSubjectGroupID string) (int, error) {
	query := `SELECT COUNT(*) FROM assignments
WHERE student_group_id = $1 AND time_slot_id = $2 AND semester_id = $3`
	args := []interface{}{studentGroupID, timeSlotID, semesterID}
	if excludeSubjectGroupID != "" {
		query += ` AND (subject_group_id IS NULL OR subject_group_id != $4)`
		args = append(args, excludeSubjectGroupID)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count student group assignments: %w", err)
	}
	return count, nil
}

// ListOccupancyEntries returns the week-partitioned bookings of a classroom
// in a semester, flattened to (day, start, end) intervals with display names
// resolved, as the occupancy grid consumes them.
func (r *BookingRepository) ListOccupancyEntries(ctx context.Context, classroomID, semesterID string) ([]models.OccupancyEntry, error) {
	const query = `SELECT ts.day_of_week, ts.start_time, ts.end_time,
COALESCE(s.name, '') AS subject_name, COALESCE(sg.group_code, '') AS group_code,
COALESCE(t.first_name || ' ' || t.last_name, '') AS teacher_name
FROM assignment_classrooms ac
JOIN assignments a ON a.id = ac.assignment_id
JOIN time_slots ts ON ts.id = a.time_slot_id
JOIN subjects s ON s.id = a.subject_id
LEFT JOIN subject_groups sg ON sg.id = a.subject_group_id
LEFT JOIN teachers t ON t.id = a.teacher_id
WHERE ac.classroom_id = $1 AND a.semester_id = $2
ORDER BY ts.day_of_week ASC, ts.start_time ASC`

	var rows []struct {
		DayOfWeek   int    `db:"day_of_week"`
		StartTime   string `db:"start_time"`
		EndTime     string `db:"end_time"`
		SubjectName string `db:"subject_name"`
		GroupCode   string `db:"group_code"`
		TeacherName string `db:"teacher_name"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, classroomID, semesterID); err != nil {
		return nil, fmt.Errorf("scan occupancy bookings: %w", err)
	}

	entries := make([]models.OccupancyEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.OccupancyEntry{
			Source:      models.SourceWeekPartitioned,
			DayOfWeek:   row.DayOfWeek,
			StartTime:   row.StartTime,
			EndTime:     row.EndTime,
			SubjectName: row.SubjectName,
			GroupCode:   row.GroupCode,
			TeacherName: row.TeacherName,
		})
	}
	return entries, nil
}

func (r *BookingRepository) attachOwnerWeeks(ctx context.Context, owners []models.BookingOwner) error {
	ids := make([]string, 0, len(owners))
	for _, owner := range owners {
		if !owner.FullSemester {
			ids = append(ids, owner.BookingID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT assignment_classroom_id, week_number FROM assignment_classroom_weeks WHERE assignment_classroom_id IN (?) ORDER BY week_number ASC`, ids)
	if err != nil {
		return fmt.Errorf("build owner week query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []struct {
		BookingID string `db:"assignment_classroom_id"`
		Week      int    `db:"week_number"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("load owner weeks: %w", err)
	}

	byBooking := make(map[string][]int, len(owners))
	for _, row := range rows {
		byBooking[row.BookingID] = append(byBooking[row.BookingID], row.Week)
	}
	for i := range owners {
		owners[i].Weeks = byBooking[owners[i].BookingID]
	}
	return nil
}
