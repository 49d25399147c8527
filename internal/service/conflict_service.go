package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
)

type bookingScanRepository interface {
	ListClassroomOwners(ctx context.Context, classroomID, timeSlotID, semesterID, excludeAssignmentID string) ([]models.BookingOwner, error)
	ListTeacherOwners(ctx context.Context, teacherID, timeSlotID, semesterID, excludeAssignmentID string) ([]models.BookingOwner, error)
	CountStudentGroupAssignments(ctx context.Context, studentGroupID, timeSlotID, semesterID, excludeSubjectGroupID string) (int, error)
}

type slotTupleRepository interface {
	FindByTuple(ctx context.Context, day int, start, end string, shift models.ShiftType) (*models.TimeSlot, error)
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// ClassroomCheckRequest asks whether a classroom is free for a slot over a
// week set, excluding the assignment being edited if any.
type ClassroomCheckRequest struct {
	ClassroomID         string
	TimeSlotID          string
	SemesterID          string
	WeekSet             models.WeekSet
	ExcludeAssignmentID string
}

// SlotCheckRequest identifies a slot by its tuple rather than by id, as the
// pre-save check endpoint receives it from the scheduling dialog.
type SlotCheckRequest struct {
	DayOfWeek int              `json:"day_of_week" binding:"required,min=1,max=5"`
	StartTime string           `json:"start_time" binding:"required"`
	EndTime   string           `json:"end_time" binding:"required"`
	Shift     models.ShiftType `json:"shift" binding:"required,oneof=mati tarda"`
}

// ConflictService detects collisions between a candidate booking and the
// committed timetable along the classroom, teacher and student group
// dimensions. It only ever reads.
type ConflictService struct {
	bookings bookingScanRepository
	slots    slotTupleRepository
	teachers teacherLookup
	logger   *zap.Logger
	metrics  *MetricsService
}

// NewConflictService instantiates ConflictService.
func NewConflictService(bookings bookingScanRepository, slots slotTupleRepository, teachers teacherLookup, metrics *MetricsService, logger *zap.Logger) *ConflictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictService{bookings: bookings, slots: slots, teachers: teachers, metrics: metrics, logger: logger}
}

// CheckClassroom returns the conflicts a candidate booking would cause in
// one classroom: committed bookings sharing the slot, semester and at least
// one effective week. A storage failure aborts the whole check rather than
// reporting a partial (and possibly falsely clean) result.
func (s *ConflictService) CheckClassroom(ctx context.Context, req ClassroomCheckRequest) ([]models.BookingConflict, error) {
	if err := req.WeekSet.Validate(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	owners, err := s.bookings.ListClassroomOwners(ctx, req.ClassroomID, req.TimeSlotID, req.SemesterID, req.ExcludeAssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "classroom conflict check failed")
	}

	var conflicts []models.BookingConflict
	for _, owner := range owners {
		shared := req.WeekSet.Overlap(owner.WeekSet())
		if len(shared) == 0 {
			continue
		}
		conflicts = append(conflicts, models.BookingConflict{
			Dimension:    models.ConflictClassroom,
			AssignmentID: owner.AssignmentID,
			ClassroomID:  owner.ClassroomID,
			SubjectName:  owner.SubjectName,
			GroupCode:    owner.GroupCode,
			Weeks:        shared,
		})
	}
	s.observe(models.ConflictClassroom, len(conflicts))
	return conflicts, nil
}

// CheckClassrooms runs CheckClassroom across several rooms and concatenates
// the results. The first storage failure aborts every remaining room.
func (s *ConflictService) CheckClassrooms(ctx context.Context, reqs []ClassroomCheckRequest) ([]models.BookingConflict, error) {
	var conflicts []models.BookingConflict
	for _, req := range reqs {
		found, err := s.CheckClassroom(ctx, req)
		if err != nil {
			return nil, err
		}
		conflicts = append(conflicts, found...)
	}
	return conflicts, nil
}

// CheckTeacher reports assignments that already claim the teacher for the
// slot and semester. The teacher dimension ignores week partitioning: a
// person cannot be split across weeks the way a room booking can.
func (s *ConflictService) CheckTeacher(ctx context.Context, teacherID, timeSlotID, semesterID, excludeAssignmentID string) ([]models.BookingConflict, error) {
	if teacherID == "" {
		return nil, nil
	}

	owners, err := s.bookings.ListTeacherOwners(ctx, teacherID, timeSlotID, semesterID, excludeAssignmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "teacher conflict check failed")
	}
	if len(owners) == 0 {
		return nil, nil
	}

	name := s.teacherName(ctx, teacherID)
	conflicts := make([]models.BookingConflict, 0, len(owners))
	for _, owner := range owners {
		conflicts = append(conflicts, models.BookingConflict{
			Dimension:    models.ConflictTeacher,
			AssignmentID: owner.AssignmentID,
			SubjectName:  owner.SubjectName,
			GroupCode:    owner.GroupCode,
			TeacherName:  name,
			Weeks:        models.FullWeekSet().EffectiveWeeks(),
		})
	}
	s.observe(models.ConflictTeacher, len(conflicts))
	return conflicts, nil
}

// CheckStudentGroup reports whether the student group already attends
// another subject group in the slot.
func (s *ConflictService) CheckStudentGroup(ctx context.Context, studentGroupID, timeSlotID, semesterID, excludeSubjectGroupID string) ([]models.BookingConflict, error) {
	if studentGroupID == "" {
		return nil, nil
	}

	count, err := s.bookings.CountStudentGroupAssignments(ctx, studentGroupID, timeSlotID, semesterID, excludeSubjectGroupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "student group conflict check failed")
	}
	if count == 0 {
		return nil, nil
	}

	conflicts := []models.BookingConflict{{
		Dimension: models.ConflictStudentGroup,
		Weeks:     models.FullWeekSet().EffectiveWeeks(),
	}}
	s.observe(models.ConflictStudentGroup, len(conflicts))
	return conflicts, nil
}

// ResolveSlot maps a slot tuple to its persisted slot. A tuple nobody has
// booked yet has no slot row, which also means nothing can conflict with it.
func (s *ConflictService) ResolveSlot(ctx context.Context, req SlotCheckRequest) (*models.TimeSlot, error) {
	slot, err := s.slots.FindByTuple(ctx, req.DayOfWeek, req.StartTime, req.EndTime, req.Shift)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "time slot lookup failed")
	}
	return slot, nil
}

func (s *ConflictService) teacherName(ctx context.Context, teacherID string) string {
	if s.teachers == nil {
		return ""
	}
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		s.logger.Warn("teacher lookup for conflict report failed", zap.String("teacher_id", teacherID), zap.Error(err))
		return ""
	}
	return teacher.FullName()
}

func (s *ConflictService) observe(dimension models.ConflictDimension, found int) {
	if s.metrics != nil {
		s.metrics.RecordConflictCheck(string(dimension), found)
	}
	if found > 0 {
		s.logger.Debug("conflicts detected", zap.String("dimension", string(dimension)), zap.Int("count", found))
	}
}

// ConflictMessage renders the single-line summary the scheduling dialog
// shows above the detail list.
func ConflictMessage(conflicts []models.BookingConflict) string {
	if len(conflicts) == 0 {
		return ""
	}
	first := conflicts[0]
	switch first.Dimension {
	case models.ConflictTeacher:
		return fmt.Sprintf("teacher already assigned to %s (%s) in this slot", first.SubjectName, first.GroupCode)
	case models.ConflictStudentGroup:
		return "student group already has a class in this slot"
	default:
		if len(first.Weeks) == models.SemesterWeeks {
			return fmt.Sprintf("classroom occupied by %s (%s)", first.SubjectName, first.GroupCode)
		}
		return fmt.Sprintf("classroom occupied by %s (%s) on weeks %v", first.SubjectName, first.GroupCode, first.Weeks)
	}
}
