package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

// LegacyScheduleRepository reads the frozen pre-week-partition timetable.
// It exposes no write operations: the legacy model only ever shrinks.
type LegacyScheduleRepository struct {
	db *sqlx.DB
}

// NewLegacyScheduleRepository creates a new legacy schedule repository.
func NewLegacyScheduleRepository(db *sqlx.DB) *LegacyScheduleRepository {
	return &LegacyScheduleRepository{db: db}
}

// ListByClassroom returns the legacy slots linked to the classroom through
// the schedule_slot_classrooms join, with subject/group/teacher names
// resolved for display.
func (r *LegacyScheduleRepository) ListByClassroom(ctx context.Context, classroomID string) ([]models.LegacyScheduleSlot, error) {
	const query = `SELECT ss.id, COALESCE(g.name, '') AS student_group_name, COALESCE(s.name, '') AS subject_name,
COALESCE(t.first_name || ' ' || t.last_name, '') AS teacher_name,
ss.day_of_week, ss.start_time, ss.end_time, ss.semester, ss.created_at
FROM schedule_slot_classrooms ssc
JOIN schedule_slots ss ON ss.id = ssc.schedule_slot_id
LEFT JOIN subjects s ON s.id = ss.subject_id
LEFT JOIN student_groups g ON g.id = ss.student_group_id
LEFT JOIN schedule_slot_teachers sst ON sst.schedule_slot_id = ss.id
LEFT JOIN teachers t ON t.id = sst.teacher_id
WHERE ssc.classroom_id = $1
ORDER BY ss.day_of_week ASC, ss.start_time ASC`
	var slots []models.LegacyScheduleSlot
	if err := r.db.SelectContext(ctx, &slots, query, classroomID); err != nil {
		return nil, fmt.Errorf("list legacy schedule slots: %w", err)
	}
	return slots, nil
}
