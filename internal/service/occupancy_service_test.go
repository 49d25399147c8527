package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

type mockOccupancyBookingRepo struct {
	entries map[string][]models.OccupancyEntry // classroomID|semesterID
}

func (m *mockOccupancyBookingRepo) ListOccupancyEntries(ctx context.Context, classroomID, semesterID string) ([]models.OccupancyEntry, error) {
	return m.entries[classroomID+"|"+semesterID], nil
}

type mockLegacyRepo struct {
	slots map[string][]models.LegacyScheduleSlot
}

func (m *mockLegacyRepo) ListByClassroom(ctx context.Context, classroomID string) ([]models.LegacyScheduleSlot, error) {
	return m.slots[classroomID], nil
}

type mockClassroomRepo struct {
	items map[string]*models.Classroom
}

func (m *mockClassroomRepo) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	if room, ok := m.items[id]; ok {
		cp := *room
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassroomRepo) List(ctx context.Context) ([]models.Classroom, error) {
	var rooms []models.Classroom
	for _, room := range m.items {
		rooms = append(rooms, *room)
	}
	return rooms, nil
}

type mockSemesterListRepo struct {
	items map[string][]models.Semester
}

func (m *mockSemesterListRepo) ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.Semester, error) {
	return m.items[academicYearID], nil
}

func newOccupancyFixture(bookings *mockOccupancyBookingRepo, legacy *mockLegacyRepo) *OccupancyService {
	if bookings == nil {
		bookings = &mockOccupancyBookingRepo{}
	}
	if legacy == nil {
		legacy = &mockLegacyRepo{}
	}
	classrooms := &mockClassroomRepo{items: map[string]*models.Classroom{
		"room-1": {ID: "room-1", Code: "P.1.2", Name: "Taller 1"},
	}}
	semesters := &mockSemesterListRepo{items: map[string][]models.Semester{
		"year-1": {
			{ID: "sem-1", AcademicYearID: "year-1", Name: "Primer Semestre", Number: 1},
			{ID: "sem-2", AcademicYearID: "year-1", Name: "Segon Semestre", Number: 2},
		},
	}}
	return NewOccupancyService(bookings, legacy, classrooms, semesters, nil, nil, 2, nil)
}

func cellAt(grid models.SemesterOccupancy, day int, start string) *models.HourlyCell {
	for i := range grid.Cells {
		if grid.Cells[i].DayOfWeek == day && grid.Cells[i].StartTime == start {
			return &grid.Cells[i]
		}
	}
	return nil
}

func TestOccupancyEmptyClassroom(t *testing.T) {
	svc := newOccupancyFixture(nil, nil)

	occupancy, err := svc.GetClassroomOccupancy(context.Background(), "room-1", "year-1")
	require.NoError(t, err)
	require.Len(t, occupancy.Semesters, 2)

	for _, sem := range occupancy.Semesters {
		// 5 days x 13 hourly cells
		assert.Len(t, sem.Cells, 65)
		assert.Equal(t, 0, sem.MorningOccupancy)
		assert.Equal(t, 0, sem.AfternoonOccupancy)
		assert.Equal(t, 0, sem.TotalOccupancy)
		for _, cell := range sem.Cells {
			assert.False(t, cell.Occupied)
			assert.Nil(t, cell.Assignment)
		}
	}
}

func TestOccupancyFullMorningShift(t *testing.T) {
	bookings := &mockOccupancyBookingRepo{entries: map[string][]models.OccupancyEntry{
		"room-1|sem-1": {{
			Source:      models.SourceWeekPartitioned,
			DayOfWeek:   1,
			StartTime:   "09:00:00",
			EndTime:     "14:30:00",
			SubjectName: "Taller de Gràfic",
		}},
	}}
	svc := newOccupancyFixture(bookings, nil)

	occupancy, err := svc.GetClassroomOccupancy(context.Background(), "room-1", "year-1")
	require.NoError(t, err)
	grid := occupancy.Semesters[0]

	// 09:00 through 14:00 cells are claimed; the 14:00 cell because the
	// booking runs until 14:30
	for _, hour := range []string{"09:00", "10:00", "11:00", "12:00", "13:00", "14:00"} {
		cell := cellAt(grid, 1, hour)
		require.NotNil(t, cell, hour)
		assert.True(t, cell.Occupied, hour)
	}
	assert.False(t, cellAt(grid, 1, "08:00").Occupied)
	assert.False(t, cellAt(grid, 1, "15:00").Occupied)
	assert.False(t, cellAt(grid, 2, "09:00").Occupied)

	// 5 of 30 morning cells, 1 of 35 afternoon cells, 6 of 65 overall
	assert.Equal(t, 17, grid.MorningOccupancy)
	assert.Equal(t, 3, grid.AfternoonOccupancy)
	assert.Equal(t, 9, grid.TotalOccupancy)

	// the other semester stays empty
	assert.Equal(t, 0, occupancy.Semesters[1].TotalOccupancy)
}

func TestOccupancyHalfHourStartClaimsItsCell(t *testing.T) {
	bookings := &mockOccupancyBookingRepo{entries: map[string][]models.OccupancyEntry{
		"room-1|sem-1": {{
			DayOfWeek: 3,
			StartTime: "11:30:00",
			EndTime:   "14:30:00",
		}},
	}}
	svc := newOccupancyFixture(bookings, nil)

	occupancy, err := svc.GetClassroomOccupancy(context.Background(), "room-1", "year-1")
	require.NoError(t, err)
	grid := occupancy.Semesters[0]

	assert.True(t, cellAt(grid, 3, "11:00").Occupied)
	assert.False(t, cellAt(grid, 3, "10:00").Occupied)
}

func TestOccupancyMergesLegacySlots(t *testing.T) {
	legacy := &mockLegacyRepo{slots: map[string][]models.LegacyScheduleSlot{
		"room-1": {{
			ID:             "ls-1",
			DayOfWeek:      2,
			StartTime:      "15:00:00",
			EndTime:        "17:00:00",
			SubjectName:    "Història del Disseny",
			SemesterNumber: 2,
		}},
	}}
	svc := newOccupancyFixture(nil, legacy)

	occupancy, err := svc.GetClassroomOccupancy(context.Background(), "room-1", "year-1")
	require.NoError(t, err)

	// the legacy slot lands in its own semester only
	first, second := occupancy.Semesters[0], occupancy.Semesters[1]
	assert.False(t, cellAt(first, 2, "15:00").Occupied)

	cell := cellAt(second, 2, "15:00")
	require.True(t, cell.Occupied)
	require.NotNil(t, cell.Assignment)
	assert.Equal(t, models.SourceLegacy, cell.Assignment.Source)
	assert.True(t, cellAt(second, 2, "16:00").Occupied)
	assert.False(t, cellAt(second, 2, "17:00").Occupied)
}

func TestOccupancyListCoversEveryClassroom(t *testing.T) {
	svc := newOccupancyFixture(nil, nil)

	all, err := svc.ListOccupancy(context.Background(), "year-1")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "P.1.2", all[0].ClassroomCode)
}

func TestOccupancyUnknownClassroom(t *testing.T) {
	svc := newOccupancyFixture(nil, nil)

	_, err := svc.GetClassroomOccupancy(context.Background(), "ghost", "year-1")
	require.Error(t, err)
}

func TestHandleRefreshJobRejectsMalformedPayload(t *testing.T) {
	svc := newOccupancyFixture(nil, nil)

	err := svc.HandleRefreshJob(context.Background(), RefreshJob("", ""))
	require.Error(t, err)
}

func TestRefreshJobRoundTrip(t *testing.T) {
	job := RefreshJob("room-1", "year-1")
	assert.Equal(t, JobOccupancyRefresh, job.Type)
	assert.Equal(t, "room-1|year-1", job.Payload)
}
