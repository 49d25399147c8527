package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	"github.com/Josepmarimon/bau-assist-sub000/internal/repository"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
)

type mockAssignmentRepo struct {
	items    map[string]*models.Assignment
	bookings map[string][]repository.BookingInput
	saveErr  error

	created []string
	updated []string
	deleted []string
}

func newMockAssignmentRepo() *mockAssignmentRepo {
	return &mockAssignmentRepo{
		items:    map[string]*models.Assignment{},
		bookings: map[string][]repository.BookingInput{},
	}
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	if a, ok := m.items[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, error) {
	var details []models.AssignmentDetail
	for _, a := range m.items {
		details = append(details, models.AssignmentDetail{Assignment: *a})
	}
	return details, nil
}

func (m *mockAssignmentRepo) ListBookings(ctx context.Context, assignmentID string) ([]models.ClassroomBooking, error) {
	var bookings []models.ClassroomBooking
	for _, input := range m.bookings[assignmentID] {
		bookings = append(bookings, models.ClassroomBooking{
			ID:           "b-" + input.ClassroomID,
			AssignmentID: assignmentID,
			ClassroomID:  input.ClassroomID,
			FullSemester: input.WeekSet.FullSemester,
			Weeks:        input.WeekSet.Weeks,
		})
	}
	return bookings, nil
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment, bookings []repository.BookingInput) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if assignment.ID == "" {
		assignment.ID = "generated"
	}
	cp := *assignment
	m.items[assignment.ID] = &cp
	m.bookings[assignment.ID] = bookings
	m.created = append(m.created, assignment.ID)
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment, bookings []repository.BookingInput) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *assignment
	m.items[assignment.ID] = &cp
	m.bookings[assignment.ID] = bookings
	m.updated = append(m.updated, assignment.ID)
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	delete(m.bookings, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockTimeSlotRepo struct {
	slots   map[string]*models.TimeSlot
	nextID  string
	created int
}

func (m *mockTimeSlotRepo) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	for _, slot := range m.slots {
		if slot.ID == id {
			cp := *slot
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTimeSlotRepo) FindOrCreate(ctx context.Context, day int, start, end string, shift models.ShiftType) (*models.TimeSlot, error) {
	key := slotKey(day, start, end, shift)
	if slot, ok := m.slots[key]; ok {
		cp := *slot
		return &cp, nil
	}
	if m.slots == nil {
		m.slots = map[string]*models.TimeSlot{}
	}
	id := m.nextID
	if id == "" {
		id = "slot-new"
	}
	slot := &models.TimeSlot{ID: id, DayOfWeek: day, StartTime: start, EndTime: end, SlotType: shift}
	m.slots[key] = slot
	m.created++
	cp := *slot
	return &cp, nil
}

type mockSemesterLookup struct {
	items map[string]*models.Semester
}

func (m *mockSemesterLookup) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockSubjectLookup struct {
	subjects map[string]*models.Subject
	groups   map[string]*models.SubjectGroup
}

func (m *mockSubjectLookup) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectLookup) FindGroupByID(ctx context.Context, id string) (*models.SubjectGroup, error) {
	if g, ok := m.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentGroupLookup struct {
	items map[string]*models.StudentGroup
}

func (m *mockStudentGroupLookup) FindByID(ctx context.Context, id string) (*models.StudentGroup, error) {
	if g, ok := m.items[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassroomLookup struct {
	items map[string]*models.Classroom
}

func (m *mockClassroomLookup) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if room, ok := m.items[id]; ok {
		cp := *room
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type bookingFixture struct {
	assignments *mockAssignmentRepo
	slots       *mockTimeSlotRepo
	scans       *mockBookingScanRepo
	service     *BookingService
}

func newBookingFixture() *bookingFixture {
	assignments := newMockAssignmentRepo()
	slots := &mockTimeSlotRepo{}
	scans := &mockBookingScanRepo{}

	semesters := &mockSemesterLookup{items: map[string]*models.Semester{
		"sem-1": {ID: "sem-1", AcademicYearID: "year-1", Name: "Primer Semestre", Number: 1},
	}}
	subjects := &mockSubjectLookup{
		subjects: map[string]*models.Subject{
			"sub-1": {ID: "sub-1", Code: "GDVG13", Name: "Taller de Gràfic"},
		},
		groups: map[string]*models.SubjectGroup{
			"grp-1": {ID: "grp-1", SubjectID: "sub-1", GroupCode: "GR4-Gm1"},
		},
	}
	studentGroups := &mockStudentGroupLookup{items: map[string]*models.StudentGroup{
		"sg-1": {ID: "sg-1", Name: "GR2-Im"},
	}}
	classrooms := &mockClassroomLookup{items: map[string]*models.Classroom{
		"room-1": {ID: "room-1", Code: "P.1.2"},
		"room-2": {ID: "room-2", Code: "P.1.4"},
	}}
	teachers := &mockTeacherLookup{items: map[string]*models.Teacher{
		"t-1": {ID: "t-1", FirstName: "Marta", LastName: "Camps"},
	}}

	conflicts := NewConflictService(scans, nil, teachers, nil, nil)
	svc := NewBookingService(assignments, slots, semesters, subjects, studentGroups,
		classrooms, teachers, conflicts, nil, nil, nil, nil, nil)

	return &bookingFixture{assignments: assignments, slots: slots, scans: scans, service: svc}
}

func validRequest() SaveAssignmentRequest {
	return SaveAssignmentRequest{
		SemesterID:     "sem-1",
		SubjectID:      "sub-1",
		SubjectGroupID: "grp-1",
		DayOfWeek:      1,
		Shift:          models.ShiftMorning,
		Classrooms: []ClassroomBookingRequest{
			{ClassroomID: "room-1", FullSemester: true},
		},
	}
}

func TestBookingCreateFullSemester(t *testing.T) {
	f := newBookingFixture()

	detail, err := f.service.Create(context.Background(), validRequest(), BookingOptions{})
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Len(t, f.assignments.created, 1)
	// full morning shift template and hours
	assert.Equal(t, "09:00:00", detail.TimeSlot.StartTime)
	assert.Equal(t, "14:30:00", detail.TimeSlot.EndTime)
	assert.Equal(t, 6, detail.HoursPerWeek)
	require.Len(t, detail.Bookings, 1)
	assert.True(t, detail.Bookings[0].FullSemester)
	// slot row was created on demand
	assert.Equal(t, 1, f.slots.created)
}

func TestBookingCreateRejectsEmptyWeeksBeforeAnyCheck(t *testing.T) {
	f := newBookingFixture()
	f.scans.scanErr = errors.New("must not be reached")

	req := validRequest()
	req.Classrooms = []ClassroomBookingRequest{{ClassroomID: "room-1"}}

	_, err := f.service.Create(context.Background(), req, BookingOptions{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.assignments.created)
}

func TestBookingCreateUnknownSubjectIsReferenceError(t *testing.T) {
	f := newBookingFixture()

	req := validRequest()
	req.SubjectID = "missing"

	_, err := f.service.Create(context.Background(), req, BookingOptions{})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrReference.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "missing")
	assert.Empty(t, f.assignments.created)
}

func TestBookingCreateMultiClassroomAllOrNothing(t *testing.T) {
	f := newBookingFixture()
	f.slots.slots = map[string]*models.TimeSlot{
		slotKey(1, "09:00:00", "14:30:00", models.ShiftMorning): {ID: "slot-1"},
	}
	f.scans.classroomOwners = map[string][]models.BookingOwner{
		"room-2": {fullOwner("other", "room-2")},
	}

	req := validRequest()
	req.Classrooms = append(req.Classrooms, ClassroomBookingRequest{ClassroomID: "room-2", FullSemester: true})

	_, err := f.service.Create(context.Background(), req, BookingOptions{})
	require.Error(t, err)

	var conflictErr *models.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "room-2", conflictErr.Conflicts[0].ClassroomID)
	// the free room was not booked either
	assert.Empty(t, f.assignments.created)
}

func TestBookingCreateSkipBypassesClassroomGateOnly(t *testing.T) {
	f := newBookingFixture()
	f.scans.classroomOwners = map[string][]models.BookingOwner{
		"room-1": {fullOwner("other", "room-1")},
	}
	f.scans.teacherOwners = map[string][]models.BookingOwner{
		"t-1": {fullOwner("other", "")},
	}

	// classroom conflict alone is overridable
	req := validRequest()
	_, err := f.service.Create(context.Background(), req, BookingOptions{SkipConflictCheck: true})
	require.NoError(t, err)
	assert.Len(t, f.assignments.created, 1)

	// the teacher gate holds even with the override
	req = validRequest()
	req.TeacherID = "t-1"
	_, err = f.service.Create(context.Background(), req, BookingOptions{SkipConflictCheck: true})
	require.Error(t, err)

	var conflictErr *models.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, models.ConflictTeacher, conflictErr.Conflicts[0].Dimension)
}

func TestBookingUpdateExcludesItself(t *testing.T) {
	f := newBookingFixture()

	detail, err := f.service.Create(context.Background(), validRequest(), BookingOptions{})
	require.NoError(t, err)

	// the committed booking is visible to later scans
	f.scans.classroomOwners = map[string][]models.BookingOwner{
		"room-1": {fullOwner(detail.ID, "room-1")},
	}

	// re-saving the same assignment must not collide with itself
	updated, err := f.service.Update(context.Background(), detail.ID, validRequest(), BookingOptions{})
	require.NoError(t, err)
	assert.Equal(t, detail.ID, updated.ID)
	assert.Len(t, f.assignments.updated, 1)
}

func TestBookingUpdateNotFound(t *testing.T) {
	f := newBookingFixture()

	_, err := f.service.Update(context.Background(), "ghost", validRequest(), BookingOptions{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingDelete(t *testing.T) {
	f := newBookingFixture()

	detail, err := f.service.Create(context.Background(), validRequest(), BookingOptions{})
	require.NoError(t, err)

	require.NoError(t, f.service.Delete(context.Background(), detail.ID))
	assert.Equal(t, []string{detail.ID}, f.assignments.deleted)

	err = f.service.Delete(context.Background(), detail.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateDerivesStudentGroupFromSubjectGroup(t *testing.T) {
	f := newBookingFixture()
	// subject group linked to a cohort
	sg := "sg-1"
	fSubjects := &mockSubjectLookup{
		subjects: map[string]*models.Subject{"sub-1": {ID: "sub-1"}},
		groups:   map[string]*models.SubjectGroup{"grp-1": {ID: "grp-1", SubjectID: "sub-1", StudentGroupID: &sg}},
	}
	semesters := &mockSemesterLookup{items: map[string]*models.Semester{"sem-1": {ID: "sem-1", AcademicYearID: "year-1"}}}
	studentGroups := &mockStudentGroupLookup{items: map[string]*models.StudentGroup{"sg-1": {ID: "sg-1"}}}
	classrooms := &mockClassroomLookup{items: map[string]*models.Classroom{"room-1": {ID: "room-1"}}}
	teachers := &mockTeacherLookup{}
	scans := &mockBookingScanRepo{groupCounts: map[string]int{"sg-1": 1}}
	conflicts := NewConflictService(scans, nil, teachers, nil, nil)
	svc := NewBookingService(f.assignments, f.slots, semesters, fSubjects, studentGroups,
		classrooms, teachers, conflicts, nil, nil, nil, nil, nil)

	// the derived cohort hits the student group gate
	_, err := svc.Create(context.Background(), validRequest(), BookingOptions{})
	require.Error(t, err)

	var conflictErr *models.BookingConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, models.ConflictStudentGroup, conflictErr.Conflicts[0].Dimension)
}
