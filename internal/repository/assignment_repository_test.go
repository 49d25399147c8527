package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

func TestAssignmentCreateCommitsBookingsAndWeeks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_classrooms")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	// one week row per explicit week
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_classroom_weeks")).
		WithArgs(sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_classroom_weeks")).
		WithArgs(sqlmock.AnyArg(), 6).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.Assignment{
		SemesterID:   "sem-1",
		SubjectID:    "sub-1",
		TimeSlotID:   "slot-1",
		HoursPerWeek: 6,
	}
	bookings := []BookingInput{
		{ClassroomID: "room-1", WeekSet: models.ExplicitWeekSet([]int{5, 6})},
	}

	require.NoError(t, repo.Create(context.Background(), assignment, bookings))
	assert.NotEmpty(t, assignment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentCreateFullSemesterSkipsWeekRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_classrooms")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.Assignment{SemesterID: "sem-1", SubjectID: "sub-1", TimeSlotID: "slot-1"}
	bookings := []BookingInput{{ClassroomID: "room-1", WeekSet: models.FullWeekSet()}}

	require.NoError(t, repo.Create(context.Background(), assignment, bookings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentCreateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignments")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_classrooms")).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	assignment := &models.Assignment{SemesterID: "sem-1", SubjectID: "sub-1", TimeSlotID: "slot-1"}
	bookings := []BookingInput{{ClassroomID: "room-1", WeekSet: models.FullWeekSet()}}

	require.Error(t, repo.Create(context.Background(), assignment, bookings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentUpdateReplacesBookings(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE assignments SET")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignment_classroom_weeks")).
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignment_classrooms")).
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assignment_classrooms")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	assignment := &models.Assignment{ID: "a-1", SemesterID: "sem-1", SubjectID: "sub-1", TimeSlotID: "slot-2"}
	bookings := []BookingInput{{ClassroomID: "room-2", WeekSet: models.FullWeekSet()}}

	require.NoError(t, repo.Update(context.Background(), assignment, bookings))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignment_classroom_weeks")).
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignment_classrooms")).
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM assignments")).
		WithArgs("a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "a-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentListBookingsAttachesWeeks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignment_classrooms WHERE assignment_id = $1")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "assignment_id", "classroom_id", "is_full_semester", "created_at"}).
			AddRow("b-1", "a-1", "room-1", false, time.Now()).
			AddRow("b-2", "a-1", "room-2", true, time.Now()))

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignment_classroom_weeks WHERE assignment_classroom_id IN")).
		WithArgs("b-1").
		WillReturnRows(sqlmock.NewRows([]string{"assignment_classroom_id", "week_number"}).
			AddRow("b-1", 5).
			AddRow("b-1", 6))

	bookings, err := repo.ListBookings(context.Background(), "a-1")
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, []int{5, 6}, bookings[0].Weeks)
	assert.True(t, bookings[1].FullSemester)
	assert.Empty(t, bookings[1].Weeks)
	assert.NoError(t, mock.ExpectationsWereMet())
}
