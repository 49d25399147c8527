package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	"github.com/Josepmarimon/bau-assist-sub000/internal/repository"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/jobs"
)

type assignmentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error)
	ListBookings(ctx context.Context, assignmentID string) ([]models.ClassroomBooking, error)
	Create(ctx context.Context, assignment *models.Assignment, bookings []repository.BookingInput) error
	Update(ctx context.Context, assignment *models.Assignment, bookings []repository.BookingInput) error
	Delete(ctx context.Context, id string) error
}

type timeSlotRepository interface {
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	FindOrCreate(ctx context.Context, day int, start, end string, shift models.ShiftType) (*models.TimeSlot, error)
}

type semesterLookup interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
}

type subjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindGroupByID(ctx context.Context, id string) (*models.SubjectGroup, error)
}

type studentGroupLookup interface {
	FindByID(ctx context.Context, id string) (*models.StudentGroup, error)
}

type classroomLookup interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
}

// ClassroomBookingRequest describes one classroom to book along with the
// weeks it is needed for. Omitting is_full_semester means explicit weeks
// must be provided.
type ClassroomBookingRequest struct {
	ClassroomID  string `json:"classroom_id" validate:"required"`
	FullSemester bool   `json:"is_full_semester"`
	Weeks        []int  `json:"weeks,omitempty"`
}

// WeekSet converts the request to its WeekSet value.
func (r ClassroomBookingRequest) WeekSet() models.WeekSet {
	if r.FullSemester {
		return models.FullWeekSet()
	}
	return models.ExplicitWeekSet(r.Weeks)
}

// SaveAssignmentRequest is the payload creating or replacing a booking. The
// time slot is identified by its tuple; omitted start/end times fall back
// to the canonical shift templates.
type SaveAssignmentRequest struct {
	SemesterID     string           `json:"semester_id" validate:"required"`
	SubjectID      string           `json:"subject_id" validate:"required"`
	SubjectGroupID string           `json:"subject_group_id,omitempty"`
	StudentGroupID string           `json:"student_group_id,omitempty"`
	TeacherID      string           `json:"teacher_id,omitempty"`
	DayOfWeek      int              `json:"day_of_week" validate:"required,min=1,max=5"`
	Shift          models.ShiftType `json:"shift" validate:"required,oneof=mati tarda"`
	Part           models.ShiftPart `json:"shift_part,omitempty" validate:"omitempty,oneof=full first second"`
	StartTime      string           `json:"start_time,omitempty"`
	EndTime        string           `json:"end_time,omitempty"`
	HoursPerWeek   int              `json:"hours_per_week,omitempty" validate:"omitempty,min=1"`

	Classrooms []ClassroomBookingRequest `json:"classrooms" validate:"required,min=1,dive"`
}

// BookingOptions tweaks how a save is gated. SkipConflictCheck bypasses the
// classroom and student group gates only; the teacher gate always holds.
type BookingOptions struct {
	SkipConflictCheck bool `json:"skip_conflict_check"`
}

// bookingRefs holds the resolved collaborators of one save.
type bookingRefs struct {
	semester       *models.Semester
	subjectGroup   *models.SubjectGroup
	studentGroupID string
}

// BookingService is the single write path for assignments. Every save
// validates the payload, resolves references, passes the conflict gates and
// commits assignment plus bookings in one transaction.
type BookingService struct {
	assignments assignmentRepository
	slots       timeSlotRepository
	semesters   semesterLookup
	subjects    subjectLookup
	groups      studentGroupLookup
	classrooms  classroomLookup
	teachers    teacherLookup
	conflicts   *ConflictService
	occupancy   *OccupancyService
	queue       *jobs.Queue
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewBookingService instantiates BookingService.
func NewBookingService(assignments assignmentRepository, slots timeSlotRepository,
	semesters semesterLookup, subjects subjectLookup, groups studentGroupLookup,
	classrooms classroomLookup, teachers teacherLookup, conflicts *ConflictService,
	occupancy *OccupancyService, queue *jobs.Queue, metrics *MetricsService,
	validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		assignments: assignments,
		slots:       slots,
		semesters:   semesters,
		subjects:    subjects,
		groups:      groups,
		classrooms:  classrooms,
		teachers:    teachers,
		conflicts:   conflicts,
		occupancy:   occupancy,
		queue:       queue,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
	}
}

// Get returns one assignment expanded with its slot and bookings.
func (s *BookingService) Get(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	slot, err := s.slots.FindByID(ctx, assignment.TimeSlotID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment slot")
	}
	bookings, err := s.assignments.ListBookings(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment bookings")
	}
	return &models.AssignmentDetail{Assignment: *assignment, TimeSlot: *slot, Bookings: bookings}, nil
}

// List returns assignments matching the filter.
func (s *BookingService) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error) {
	details, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return details, nil
}

// Create books a subject group into a slot after passing the conflict gates.
func (s *BookingService) Create(ctx context.Context, req SaveAssignmentRequest, opts BookingOptions) (*models.AssignmentDetail, error) {
	detail, err := s.save(ctx, "", req, opts)
	s.recordOutcome("create", err)
	return detail, err
}

// Update replaces an existing assignment's slot, teacher and every
// classroom booking with the request's content.
func (s *BookingService) Update(ctx context.Context, id string, req SaveAssignmentRequest, opts BookingOptions) (*models.AssignmentDetail, error) {
	if _, err := s.assignments.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	detail, err := s.save(ctx, id, req, opts)
	s.recordOutcome("update", err)
	return detail, err
}

// Delete removes an assignment with its bookings and refreshes occupancy.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	assignment, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	bookings, err := s.assignments.ListBookings(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment bookings")
	}

	if err := s.assignments.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}

	classroomIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		classroomIDs = append(classroomIDs, b.ClassroomID)
	}
	s.refreshOccupancy(ctx, assignment.SemesterID, classroomIDs)
	return nil
}

// save is the shared create/update pipeline. A non-empty assignmentID means
// an edit: the assignment's own bookings are excluded from every gate.
func (s *BookingService) save(ctx context.Context, assignmentID string, req SaveAssignmentRequest, opts BookingOptions) (*models.AssignmentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	for _, room := range req.Classrooms {
		if err := room.WeekSet().Validate(); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
	}

	refs, err := s.resolveRefs(ctx, req)
	if err != nil {
		return nil, err
	}

	part := req.Part
	if part == "" {
		part = models.ShiftPartFull
	}
	start, end := req.StartTime, req.EndTime
	if start == "" || end == "" {
		start, end, err = models.SlotTimes(req.Shift, part)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
	}

	slot, err := s.slots.FindOrCreate(ctx, req.DayOfWeek, start, end, req.Shift)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "time slot resolution failed")
	}

	if err := s.runGates(ctx, assignmentID, req, refs, slot, opts); err != nil {
		return nil, err
	}

	hours := req.HoursPerWeek
	if hours <= 0 {
		hours = models.ShiftHoursPerWeek(req.Shift)
	}

	assignment := models.Assignment{
		ID:           assignmentID,
		SemesterID:   req.SemesterID,
		SubjectID:    req.SubjectID,
		TimeSlotID:   slot.ID,
		HoursPerWeek: hours,
	}
	if req.SubjectGroupID != "" {
		assignment.SubjectGroupID = &req.SubjectGroupID
	}
	if refs.studentGroupID != "" {
		sg := refs.studentGroupID
		assignment.StudentGroupID = &sg
	}
	if req.TeacherID != "" {
		assignment.TeacherID = &req.TeacherID
	}

	inputs := make([]repository.BookingInput, 0, len(req.Classrooms))
	for _, room := range req.Classrooms {
		inputs = append(inputs, repository.BookingInput{ClassroomID: room.ClassroomID, WeekSet: room.WeekSet()})
	}

	if assignmentID == "" {
		err = s.assignments.Create(ctx, &assignment, inputs)
	} else {
		err = s.assignments.Update(ctx, &assignment, inputs)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "booking commit failed")
	}

	classroomIDs := make([]string, 0, len(inputs))
	for _, input := range inputs {
		classroomIDs = append(classroomIDs, input.ClassroomID)
	}
	s.refreshOccupancy(ctx, req.SemesterID, classroomIDs)

	bookings, err := s.assignments.ListBookings(ctx, assignment.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load committed bookings")
	}
	return &models.AssignmentDetail{Assignment: assignment, TimeSlot: *slot, Bookings: bookings}, nil
}

// runGates evaluates the three conflict dimensions. Classrooms are gated
// all-or-nothing: one colliding room rejects the save, nothing is written.
func (s *BookingService) runGates(ctx context.Context, assignmentID string, req SaveAssignmentRequest, refs bookingRefs, slot *models.TimeSlot, opts BookingOptions) error {
	var conflicts []models.BookingConflict

	if !opts.SkipConflictCheck {
		checks := make([]ClassroomCheckRequest, 0, len(req.Classrooms))
		for _, room := range req.Classrooms {
			checks = append(checks, ClassroomCheckRequest{
				ClassroomID:         room.ClassroomID,
				TimeSlotID:          slot.ID,
				SemesterID:          req.SemesterID,
				WeekSet:             room.WeekSet(),
				ExcludeAssignmentID: assignmentID,
			})
		}
		found, err := s.conflicts.CheckClassrooms(ctx, checks)
		if err != nil {
			return err
		}
		conflicts = append(conflicts, found...)

		found, err = s.conflicts.CheckStudentGroup(ctx, refs.studentGroupID, slot.ID, req.SemesterID, req.SubjectGroupID)
		if err != nil {
			return err
		}
		conflicts = append(conflicts, found...)
	}

	found, err := s.conflicts.CheckTeacher(ctx, req.TeacherID, slot.ID, req.SemesterID, assignmentID)
	if err != nil {
		return err
	}
	conflicts = append(conflicts, found...)

	if len(conflicts) > 0 {
		return &models.BookingConflictError{Message: ConflictMessage(conflicts), Conflicts: conflicts}
	}
	return nil
}

// resolveRefs loads every referenced entity, naming the missing one. The
// student group can ride in explicitly or via the subject group's link.
func (s *BookingService) resolveRefs(ctx context.Context, req SaveAssignmentRequest) (bookingRefs, error) {
	var refs bookingRefs

	semester, err := s.semesters.FindByID(ctx, req.SemesterID)
	if err != nil {
		return refs, s.referenceErr(err, "semester", req.SemesterID)
	}
	refs.semester = semester

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		return refs, s.referenceErr(err, "subject", req.SubjectID)
	}

	if req.SubjectGroupID != "" {
		group, err := s.subjects.FindGroupByID(ctx, req.SubjectGroupID)
		if err != nil {
			return refs, s.referenceErr(err, "subject group", req.SubjectGroupID)
		}
		if group.SubjectID != req.SubjectID {
			return refs, appErrors.Clone(appErrors.ErrReference, "subject group does not belong to the subject")
		}
		refs.subjectGroup = group
		if group.StudentGroupID != nil {
			refs.studentGroupID = *group.StudentGroupID
		}
	}

	if req.StudentGroupID != "" {
		refs.studentGroupID = req.StudentGroupID
	}
	if refs.studentGroupID != "" {
		if _, err := s.groups.FindByID(ctx, refs.studentGroupID); err != nil {
			return refs, s.referenceErr(err, "student group", refs.studentGroupID)
		}
	}

	if req.TeacherID != "" {
		if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
			return refs, s.referenceErr(err, "teacher", req.TeacherID)
		}
	}

	for _, room := range req.Classrooms {
		if _, err := s.classrooms.FindByID(ctx, room.ClassroomID); err != nil {
			return refs, s.referenceErr(err, "classroom", room.ClassroomID)
		}
	}
	return refs, nil
}

func (s *BookingService) referenceErr(err error, entity, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrReference, fmt.Sprintf("%s %s does not exist", entity, id))
	}
	return appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, fmt.Sprintf("%s lookup failed", entity))
}

// refreshOccupancy invalidates the cached grids touched by a commit and
// queues background rebuilds per classroom. Failures here never fail the
// save: the cache TTL bounds staleness anyway.
func (s *BookingService) refreshOccupancy(ctx context.Context, semesterID string, classroomIDs []string) {
	if s.occupancy == nil {
		return
	}
	semester, err := s.semesters.FindByID(ctx, semesterID)
	if err != nil {
		s.logger.Warn("semester lookup for occupancy refresh failed", zap.String("semester_id", semesterID), zap.Error(err))
		return
	}
	s.occupancy.InvalidateYear(ctx, semester.AcademicYearID)

	if s.queue == nil {
		return
	}
	for _, classroomID := range classroomIDs {
		if err := s.queue.Enqueue(RefreshJob(classroomID, semester.AcademicYearID)); err != nil {
			s.logger.Warn("occupancy refresh enqueue failed", zap.String("classroom_id", classroomID), zap.Error(err))
		}
	}
}

func (s *BookingService) recordOutcome(op string, err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.RecordBookingCommit(op)
	default:
		var conflictErr *models.BookingConflictError
		if errors.As(err, &conflictErr) {
			s.metrics.RecordBookingCommit("conflict")
			return
		}
		s.metrics.RecordBookingCommit("error")
	}
}
