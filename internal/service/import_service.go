package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
)

type subjectCodeLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	FindGroupByCode(ctx context.Context, subjectID, groupCode string) (*models.SubjectGroup, error)
}

type classroomCodeLookup interface {
	FindByCode(ctx context.Context, code string) (*models.Classroom, error)
}

type studentGroupNameLookup interface {
	FindByName(ctx context.Context, name string) (*models.StudentGroup, error)
}

type bookingCreator interface {
	Create(ctx context.Context, req SaveAssignmentRequest, opts BookingOptions) (*models.AssignmentDetail, error)
}

// ImportRow is one timetable line of a bulk import CSV. Classrooms holds
// display codes separated by semicolons; Weeks is a week spec like "1-7",
// "5,6,7" or empty for the whole semester.
type ImportRow struct {
	SubjectCode  string `csv:"subject_code"`
	GroupCode    string `csv:"group_code"`
	StudentGroup string `csv:"student_group"`
	DayOfWeek    int    `csv:"day_of_week"`
	Shift        string `csv:"shift"`
	Part         string `csv:"part"`
	Classrooms   string `csv:"classrooms"`
	Weeks        string `csv:"weeks"`
}

// ImportRowResult records the outcome of one imported row.
type ImportRowResult struct {
	Line         int                      `json:"line"`
	AssignmentID string                   `json:"assignment_id,omitempty"`
	Error        string                   `json:"error,omitempty"`
	Conflicts    []models.BookingConflict `json:"conflicts,omitempty"`
}

// ImportSummary aggregates a full import run.
type ImportSummary struct {
	Total    int               `json:"total"`
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Rows     []ImportRowResult `json:"rows"`
}

// ImportService books timetable rows from a CSV through the regular write
// path. Rows are independent: one failed row is reported and skipped, the
// run continues.
type ImportService struct {
	bookings   bookingCreator
	subjects   subjectCodeLookup
	classrooms classroomCodeLookup
	groups     studentGroupNameLookup
	logger     *zap.Logger

	semesterID        string
	skipConflictCheck bool

	// aliases maps historical classroom and group spellings to their
	// canonical codes. Loaded once at startup, never mutated afterwards.
	aliases map[string]string
}

// NewImportService instantiates ImportService.
func NewImportService(bookings bookingCreator, subjects subjectCodeLookup,
	classrooms classroomCodeLookup, groups studentGroupNameLookup,
	semesterID string, skipConflictCheck bool, aliases map[string]string,
	logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &ImportService{
		bookings:          bookings,
		subjects:          subjects,
		classrooms:        classrooms,
		groups:            groups,
		semesterID:        semesterID,
		skipConflictCheck: skipConflictCheck,
		aliases:           aliases,
		logger:            logger,
	}
}

// LoadAliases parses an alias CSV with `alias,canonical` columns.
func LoadAliases(r io.Reader) (map[string]string, error) {
	var rows []struct {
		Alias     string `csv:"alias"`
		Canonical string `csv:"canonical"`
	}
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse alias table: %w", err)
	}
	aliases := make(map[string]string, len(rows))
	for _, row := range rows {
		aliases[strings.TrimSpace(row.Alias)] = strings.TrimSpace(row.Canonical)
	}
	return aliases, nil
}

// Run imports every row of the CSV and reports per-row outcomes.
func (s *ImportService) Run(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	var rows []ImportRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed import csv")
	}

	summary := &ImportSummary{Total: len(rows)}
	for i, row := range rows {
		// line 1 is the header
		result := ImportRowResult{Line: i + 2}
		detail, err := s.importRow(ctx, row)
		if err != nil {
			var conflictErr *models.BookingConflictError
			if errors.As(err, &conflictErr) {
				result.Conflicts = conflictErr.Conflicts
			}
			result.Error = err.Error()
			summary.Failed++
			s.logger.Warn("import row failed", zap.Int("line", result.Line), zap.Error(err))
		} else {
			result.AssignmentID = detail.ID
			summary.Imported++
		}
		summary.Rows = append(summary.Rows, result)
	}

	s.logger.Info("import finished",
		zap.Int("total", summary.Total),
		zap.Int("imported", summary.Imported),
		zap.Int("failed", summary.Failed))
	return summary, nil
}

func (s *ImportService) importRow(ctx context.Context, row ImportRow) (*models.AssignmentDetail, error) {
	subject, err := s.subjects.FindByCode(ctx, strings.TrimSpace(row.SubjectCode))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("unknown subject code %q", row.SubjectCode)
		}
		return nil, fmt.Errorf("subject lookup: %w", err)
	}

	req := SaveAssignmentRequest{
		SemesterID: s.semesterID,
		SubjectID:  subject.ID,
		DayOfWeek:  row.DayOfWeek,
		Shift:      models.ShiftType(strings.TrimSpace(row.Shift)),
		Part:       models.ShiftPart(strings.TrimSpace(row.Part)),
	}

	if code := strings.TrimSpace(row.GroupCode); code != "" {
		group, err := s.subjects.FindGroupByCode(ctx, subject.ID, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("unknown group code %q for subject %q", code, row.SubjectCode)
			}
			return nil, fmt.Errorf("subject group lookup: %w", err)
		}
		req.SubjectGroupID = group.ID
	}

	if name := s.canonical(row.StudentGroup); name != "" {
		group, err := s.groups.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("unknown student group %q", name)
			}
			return nil, fmt.Errorf("student group lookup: %w", err)
		}
		req.StudentGroupID = group.ID
	}

	weekSet, err := ParseWeeksSpec(row.Weeks)
	if err != nil {
		return nil, err
	}

	for _, raw := range strings.Split(row.Classrooms, ";") {
		code := s.canonical(raw)
		if code == "" {
			continue
		}
		room, err := s.classrooms.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("unknown classroom %q", code)
			}
			return nil, fmt.Errorf("classroom lookup: %w", err)
		}
		req.Classrooms = append(req.Classrooms, ClassroomBookingRequest{
			ClassroomID:  room.ID,
			FullSemester: weekSet.FullSemester,
			Weeks:        weekSet.Weeks,
		})
	}
	if len(req.Classrooms) == 0 {
		return nil, fmt.Errorf("row has no classrooms")
	}

	return s.bookings.Create(ctx, req, BookingOptions{SkipConflictCheck: s.skipConflictCheck})
}

// canonical trims the raw value and resolves it through the alias table.
func (s *ImportService) canonical(raw string) string {
	value := strings.TrimSpace(raw)
	if mapped, ok := s.aliases[value]; ok {
		return mapped
	}
	return value
}

// ParseWeeksSpec parses a week spec: "" means the full semester, "1-7" a
// range, "5,6,7" an explicit list. Ranges and lists may be mixed, "1-3,9".
func ParseWeeksSpec(spec string) (models.WeekSet, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return models.FullWeekSet(), nil
	}

	var weeks []int
	for _, chunk := range strings.Split(spec, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(chunk, "-"); ok {
			from, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return models.WeekSet{}, fmt.Errorf("bad week range %q", chunk)
			}
			to, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || to < from {
				return models.WeekSet{}, fmt.Errorf("bad week range %q", chunk)
			}
			for w := from; w <= to; w++ {
				weeks = append(weeks, w)
			}
			continue
		}
		w, err := strconv.Atoi(chunk)
		if err != nil {
			return models.WeekSet{}, fmt.Errorf("bad week number %q", chunk)
		}
		weeks = append(weeks, w)
	}

	// "1-15" is just the full semester spelled out.
	if len(weeks) == models.SemesterWeeks {
		full := true
		for i, w := range weeks {
			if w != i+1 {
				full = false
				break
			}
		}
		if full {
			return models.FullWeekSet(), nil
		}
	}

	set := models.ExplicitWeekSet(weeks)
	if err := set.Validate(); err != nil {
		return models.WeekSet{}, err
	}
	return set, nil
}
