package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
)

type semesterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Semester, error)
	ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.Semester, error)
}

// SemesterService serves the semester picker.
type SemesterService struct {
	repo semesterRepository
}

// NewSemesterService instantiates SemesterService.
func NewSemesterService(repo semesterRepository) *SemesterService {
	return &SemesterService{repo: repo}
}

// Get returns one semester.
func (s *SemesterService) Get(ctx context.Context, id string) (*models.Semester, error) {
	semester, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "semester not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return semester, nil
}

// ListByAcademicYear returns the semesters of a year ordered by number.
func (s *SemesterService) ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.Semester, error) {
	semesters, err := s.repo.ListByAcademicYear(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list semesters")
	}
	return semesters, nil
}
