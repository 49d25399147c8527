package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

// TimeSlotRepository is the canonical catalog of (day, start, end, shift)
// tuples. Slots are append-only: there is no update or delete.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// FindByID loads a slot by id.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT id, day_of_week, start_time, end_time, slot_type, created_at FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindByTuple looks a slot up by its exact identity tuple.
func (r *TimeSlotRepository) FindByTuple(ctx context.Context, day int, start, end string, shift models.ShiftType) (*models.TimeSlot, error) {
	const query = `SELECT id, day_of_week, start_time, end_time, slot_type, created_at
FROM time_slots WHERE day_of_week = $1 AND start_time = $2 AND end_time = $3 AND slot_type = $4`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, day, start, end, shift); err != nil {
		return nil, err
	}
	return &slot, nil
}

// FindOrCreate resolves the slot for the tuple, inserting it when absent.
func (r *TimeSlotRepository) FindOrCreate(ctx context.Context, day int, start, end string, shift models.ShiftType) (*models.TimeSlot, error) {
	slot, err := r.FindByTuple(ctx, day, start, end, shift)
	if err == nil {
		return slot, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find time slot: %w", err)
	}

	created := models.TimeSlot{
		ID:        uuid.NewString(),
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		SlotType:  shift,
		CreatedAt: time.Now().UTC(),
	}
	const query = `INSERT INTO time_slots (id, day_of_week, start_time, end_time, slot_type, created_at)
VALUES (:id, :day_of_week, :start_time, :end_time, :slot_type, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, &created); err != nil {
		return nil, fmt.Errorf("create time slot: %w", err)
	}
	return &created, nil
}
