package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

type mockBookingCreator struct {
	requests    []SaveAssignmentRequest
	options     []BookingOptions
	conflictFor map[string]bool // subject id -> reject with conflict
}

func (m *mockBookingCreator) Create(ctx context.Context, req SaveAssignmentRequest, opts BookingOptions) (*models.AssignmentDetail, error) {
	m.requests = append(m.requests, req)
	m.options = append(m.options, opts)
	if m.conflictFor[req.SubjectID] {
		return nil, &models.BookingConflictError{
			Message:   "classroom occupied",
			Conflicts: []models.BookingConflict{{Dimension: models.ConflictClassroom}},
		}
	}
	detail := &models.AssignmentDetail{}
	detail.ID = "a-" + req.SubjectID
	return detail, nil
}

type mockSubjectCodeLookup struct {
	subjects map[string]*models.Subject
	groups   map[string]*models.SubjectGroup // subjectID|code
}

func (m *mockSubjectCodeLookup) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	if s, ok := m.subjects[code]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectCodeLookup) FindGroupByCode(ctx context.Context, subjectID, groupCode string) (*models.SubjectGroup, error) {
	if g, ok := m.groups[subjectID+"|"+groupCode]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassroomCodeLookup struct {
	items map[string]*models.Classroom
}

func (m *mockClassroomCodeLookup) FindByCode(ctx context.Context, code string) (*models.Classroom, error) {
	if room, ok := m.items[code]; ok {
		cp := *room
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockStudentGroupNameLookup struct {
	items map[string]*models.StudentGroup
}

func (m *mockStudentGroupNameLookup) FindByName(ctx context.Context, name string) (*models.StudentGroup, error) {
	if g, ok := m.items[name]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func TestParseWeeksSpec(t *testing.T) {
	set, err := ParseWeeksSpec("")
	require.NoError(t, err)
	assert.True(t, set.FullSemester)

	set, err = ParseWeeksSpec("1-15")
	require.NoError(t, err)
	assert.True(t, set.FullSemester)

	set, err = ParseWeeksSpec("1-7")
	require.NoError(t, err)
	assert.False(t, set.FullSemester)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, set.EffectiveWeeks())

	set, err = ParseWeeksSpec("5,6,7")
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6, 7}, set.EffectiveWeeks())

	set, err = ParseWeeksSpec("1-3,9")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 9}, set.EffectiveWeeks())

	_, err = ParseWeeksSpec("0-3")
	assert.Error(t, err)
	_, err = ParseWeeksSpec("5-2")
	assert.Error(t, err)
	_, err = ParseWeeksSpec("abc")
	assert.Error(t, err)
	_, err = ParseWeeksSpec("16")
	assert.Error(t, err)
}

func newImportFixture(creator *mockBookingCreator, aliases map[string]string) *ImportService {
	subjects := &mockSubjectCodeLookup{
		subjects: map[string]*models.Subject{
			"GDVG13": {ID: "sub-1", Code: "GDVG13"},
			"GDVG22": {ID: "sub-2", Code: "GDVG22"},
		},
		groups: map[string]*models.SubjectGroup{
			"sub-1|GR4-Gm1": {ID: "grp-1", SubjectID: "sub-1", GroupCode: "GR4-Gm1"},
		},
	}
	classrooms := &mockClassroomCodeLookup{items: map[string]*models.Classroom{
		"P.1.2": {ID: "room-1", Code: "P.1.2"},
		"P.1.4": {ID: "room-2", Code: "P.1.4"},
	}}
	groups := &mockStudentGroupNameLookup{items: map[string]*models.StudentGroup{
		"GR2-Im": {ID: "sg-1", Name: "GR2-Im"},
	}}
	return NewImportService(creator, subjects, classrooms, groups, "sem-1", false, aliases, nil)
}

const importHeader = "subject_code,group_code,student_group,day_of_week,shift,part,classrooms,weeks\n"

func TestImportRunHappyPath(t *testing.T) {
	creator := &mockBookingCreator{}
	importer := newImportFixture(creator, nil)

	csv := importHeader +
		"GDVG13,GR4-Gm1,GR2-Im,1,mati,full,P.1.2;P.1.4,1-7\n" +
		"GDVG22,,,2,tarda,first,P.1.2,\n"

	summary, err := importer.Run(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 2, summary.Imported)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, creator.requests, 2)
	first := creator.requests[0]
	assert.Equal(t, "sem-1", first.SemesterID)
	assert.Equal(t, "sub-1", first.SubjectID)
	assert.Equal(t, "grp-1", first.SubjectGroupID)
	assert.Equal(t, "sg-1", first.StudentGroupID)
	require.Len(t, first.Classrooms, 2)
	assert.Equal(t, "room-1", first.Classrooms[0].ClassroomID)
	assert.False(t, first.Classrooms[0].FullSemester)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, first.Classrooms[0].Weeks)

	second := creator.requests[1]
	assert.Empty(t, second.SubjectGroupID)
	require.Len(t, second.Classrooms, 1)
	assert.True(t, second.Classrooms[0].FullSemester)
	assert.Equal(t, models.ShiftAfternoon, second.Shift)
	assert.Equal(t, models.ShiftPartFirst, second.Part)
}

func TestImportRunIsolatesFailedRows(t *testing.T) {
	creator := &mockBookingCreator{conflictFor: map[string]bool{"sub-2": true}}
	importer := newImportFixture(creator, nil)

	csv := importHeader +
		"NOPE,,,1,mati,full,P.1.2,\n" +
		"GDVG22,,,2,tarda,full,P.1.2,\n" +
		"GDVG13,,,3,mati,full,P.1.2,\n"

	summary, err := importer.Run(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Imported)
	assert.Equal(t, 2, summary.Failed)

	require.Len(t, summary.Rows, 3)
	assert.Contains(t, summary.Rows[0].Error, "NOPE")
	assert.NotEmpty(t, summary.Rows[1].Conflicts)
	assert.Equal(t, "a-sub-1", summary.Rows[2].AssignmentID)
}

func TestImportAppliesAliases(t *testing.T) {
	creator := &mockBookingCreator{}
	importer := newImportFixture(creator, map[string]string{
		"Taller P1.2": "P.1.2",
		"GRUP 2 IM":   "GR2-Im",
	})

	csv := importHeader +
		"GDVG13,,GRUP 2 IM,1,mati,full,Taller P1.2,\n"

	summary, err := importer.Run(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imported)

	require.Len(t, creator.requests, 1)
	assert.Equal(t, "room-1", creator.requests[0].Classrooms[0].ClassroomID)
	assert.Equal(t, "sg-1", creator.requests[0].StudentGroupID)
}

func TestLoadAliases(t *testing.T) {
	aliases, err := LoadAliases(strings.NewReader("alias,canonical\nTaller P1.2,P.1.2\n"))
	require.NoError(t, err)
	assert.Equal(t, "P.1.2", aliases["Taller P1.2"])
}
