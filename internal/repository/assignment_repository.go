package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

// AssignmentRepository persists assignments together with their classroom
// bookings and explicit week rows.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository creates a new assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentColumns = `id, semester_id, subject_id, subject_group_id, student_group_id, teacher_id, time_slot_id, hours_per_week, created_at, updated_at`

// FindByID loads an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assignments WHERE id = $1`, assignmentColumns)
	var a models.Assignment
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return nil, err
	}
	return &a, nil
}

// List returns assignments matching the filter, expanded with their time
// slot and bookings, ordered by slot day and start time.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error) {
	base := `SELECT a.id, a.semester_id, a.subject_id, a.subject_group_id, a.student_group_id, a.teacher_id,
a.time_slot_id, a.hours_per_week, a.created_at, a.updated_at
FROM assignments a`
	var conditions []string
	var args []interface{}

	if filter.ClassroomID != "" {
		base += ` JOIN assignment_classrooms ac ON ac.assignment_id = a.id`
		conditions = append(conditions, fmt.Sprintf("ac.classroom_id = $%d", len(args)+1))
		args = append(args, filter.ClassroomID)
	}
	if filter.SubjectGroupID != "" {
		conditions = append(conditions, fmt.Sprintf("a.subject_group_id = $%d", len(args)+1))
		args = append(args, filter.SubjectGroupID)
	}
	if filter.SemesterID != "" {
		conditions = append(conditions, fmt.Sprintf("a.semester_id = $%d", len(args)+1))
		args = append(args, filter.SemesterID)
	}
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, base, args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	details := make([]models.AssignmentDetail, 0, len(assignments))
	for _, a := range assignments {
		bookings, err := r.ListBookings(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		var slot models.TimeSlot
		const slotQuery = `SELECT id, day_of_week, start_time, end_time, slot_type, created_at FROM time_slots WHERE id = $1`
		if err := r.db.GetContext(ctx, &slot, slotQuery, a.TimeSlotID); err != nil {
			return nil, fmt.Errorf("load assignment slot: %w", err)
		}
		details = append(details, models.AssignmentDetail{Assignment: a, TimeSlot: slot, Bookings: bookings})
	}
	return details, nil
}

// ListBookings returns the classroom bookings of an assignment with their
// explicit week rows materialised.
func (r *AssignmentRepository) ListBookings(ctx context.Context, assignmentID string) ([]models.ClassroomBooking, error) {
	const query = `SELECT id, assignment_id, classroom_id, is_full_semester, created_at
FROM assignment_classrooms WHERE assignment_id = $1 ORDER BY created_at ASC`
	var bookings []models.ClassroomBooking
	if err := r.db.SelectContext(ctx, &bookings, query, assignmentID); err != nil {
		return nil, fmt.Errorf("list classroom bookings: %w", err)
	}
	if err := r.attachWeeks(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *AssignmentRepository) attachWeeks(ctx context.Context, bookings []models.ClassroomBooking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if !b.FullSemester {
			ids = append(ids, b.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT assignment_classroom_id, week_number FROM assignment_classroom_weeks WHERE assignment_classroom_id IN (?) ORDER BY week_number ASC`, ids)
	if err != nil {
		return fmt.Errorf("build week query: %w", err)
	}
	query = r.db.Rebind(query)

	var rows []struct {
		BookingID string `db:"assignment_classroom_id"`
		Week      int    `db:"week_number"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return fmt.Errorf("load booking weeks: %w", err)
	}

	byBooking := make(map[string][]int, len(bookings))
	for _, row := range rows {
		byBooking[row.BookingID] = append(byBooking[row.BookingID], row.Week)
	}
	for i := range bookings {
		bookings[i].Weeks = byBooking[bookings[i].ID]
	}
	return nil
}

// BookingInput describes one classroom booking to persist with an assignment.
type BookingInput struct {
	ClassroomID string
	WeekSet     models.WeekSet
}

// Create inserts the assignment and its bookings in one transaction.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment, bookings []BookingInput) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now

	const query = `INSERT INTO assignments (id, semester_id, subject_id, subject_group_id, student_group_id, teacher_id, time_slot_id, hours_per_week, created_at, updated_at)
VALUES (:id, :semester_id, :subject_id, :subject_group_id, :student_group_id, :teacher_id, :time_slot_id, :hours_per_week, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, query, assignment); err != nil {
		err = fmt.Errorf("insert assignment: %w", err)
		return err
	}

	if err = r.insertBookings(ctx, tx, assignment.ID, bookings); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create assignment: %w", err)
	}
	return nil
}

// Update rewrites the assignment row and replaces every classroom booking
// with the provided set. Week rows follow their booking via cascade-style
// explicit deletes. Callers should expect booking ids to change on update.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment, bookings []BookingInput) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET semester_id = :semester_id, subject_id = :subject_id, subject_group_id = :subject_group_id,
student_group_id = :student_group_id, teacher_id = :teacher_id, time_slot_id = :time_slot_id, hours_per_week = :hours_per_week,
updated_at = :updated_at WHERE id = :id`
	if _, err = sqlx.NamedExecContext(ctx, tx, query, assignment); err != nil {
		err = fmt.Errorf("update assignment: %w", err)
		return err
	}

	if err = r.deleteBookings(ctx, tx, assignment.ID); err != nil {
		return err
	}
	if err = r.insertBookings(ctx, tx, assignment.ID, bookings); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update assignment: %w", err)
	}
	return nil
}

// Delete removes the assignment, its bookings and their week rows.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete assignment: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.deleteBookings(ctx, tx, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		err = fmt.Errorf("delete assignment: %w", err)
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete assignment: %w", err)
	}
	return nil
}

func (r *AssignmentRepository) insertBookings(ctx context.Context, tx *sqlx.Tx, assignmentID string, bookings []BookingInput) error {
	now := time.Now().UTC()
	for _, input := range bookings {
		booking := models.ClassroomBooking{
			ID:           uuid.NewString(),
			AssignmentID: assignmentID,
			ClassroomID:  input.ClassroomID,
			FullSemester: input.WeekSet.FullSemester,
			CreatedAt:    now,
		}
		const query = `INSERT INTO assignment_classrooms (id, assignment_id, classroom_id, is_full_semester, created_at)
VALUES (:id, :assignment_id, :classroom_id, :is_full_semester, :created_at)`
		if _, err := sqlx.NamedExecContext(ctx, tx, query, &booking); err != nil {
			return fmt.Errorf("insert classroom booking: %w", err)
		}

		if input.WeekSet.FullSemester {
			continue
		}
		for _, week := range input.WeekSet.EffectiveWeeks() {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO assignment_classroom_weeks (assignment_classroom_id, week_number) VALUES ($1, $2)`,
				booking.ID, week); err != nil {
				return fmt.Errorf("insert booking week %d: %w", week, err)
			}
		}
	}
	return nil
}

func (r *AssignmentRepository) deleteBookings(ctx context.Context, tx *sqlx.Tx, assignmentID string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM assignment_classroom_weeks WHERE assignment_classroom_id IN (SELECT id FROM assignment_classrooms WHERE assignment_id = $1)`,
		assignmentID); err != nil {
		return fmt.Errorf("delete booking weeks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM assignment_classrooms WHERE assignment_id = $1`, assignmentID); err != nil {
		return fmt.Errorf("delete classroom bookings: %w", err)
	}
	return nil
}
