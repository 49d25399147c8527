package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/jobs"
)

type occupancyBookingRepository interface {
	ListOccupancyEntries(ctx context.Context, classroomID, semesterID string) ([]models.OccupancyEntry, error)
}

type legacyScheduleRepository interface {
	ListByClassroom(ctx context.Context, classroomID string) ([]models.LegacyScheduleSlot, error)
}

type classroomRepository interface {
	FindByID(ctx context.Context, id string) (*models.Classroom, error)
	List(ctx context.Context) ([]models.Classroom, error)
}

type semesterListRepository interface {
	ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.Semester, error)
}

// JobOccupancyRefresh is the queue job type for warming occupancy caches.
const JobOccupancyRefresh = "occupancy.refresh"

// OccupancyService samples committed bookings onto an hourly weekday grid
// per classroom and semester, merging the week-partitioned model with the
// frozen legacy timetable. Results are cached per classroom and year.
type OccupancyService struct {
	bookings   occupancyBookingRepository
	legacy     legacyScheduleRepository
	classrooms classroomRepository
	semesters  semesterListRepository
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger

	fanoutLimit int
}

// NewOccupancyService instantiates OccupancyService.
func NewOccupancyService(bookings occupancyBookingRepository, legacy legacyScheduleRepository,
	classrooms classroomRepository, semesters semesterListRepository,
	cache *CacheService, metrics *MetricsService, fanoutLimit int, logger *zap.Logger) *OccupancyService {
	if fanoutLimit <= 0 {
		fanoutLimit = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccupancyService{
		bookings:    bookings,
		legacy:      legacy,
		classrooms:  classrooms,
		semesters:   semesters,
		cache:       cache,
		metrics:     metrics,
		fanoutLimit: fanoutLimit,
		logger:      logger,
	}
}

// GetClassroomOccupancy returns the per-semester occupancy of one classroom
// for an academic year, served from cache when possible.
func (s *OccupancyService) GetClassroomOccupancy(ctx context.Context, classroomID, academicYearID string) (*models.ClassroomOccupancy, error) {
	key := OccupancyCacheKey(classroomID, academicYearID)
	if s.cache.Enabled() {
		var cached models.ClassroomOccupancy
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			return &cached, nil
		}
	}

	occupancy, err := s.buildClassroomOccupancy(ctx, classroomID, academicYearID)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, key, occupancy, 0)
	}
	return occupancy, nil
}

// ListOccupancy builds the occupancy of every classroom for an academic
// year, fanning out over a bounded worker set. The first failure cancels
// the remaining classrooms.
func (s *OccupancyService) ListOccupancy(ctx context.Context, academicYearID string) ([]models.ClassroomOccupancy, error) {
	rooms, err := s.classrooms.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "classroom listing failed")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*models.ClassroomOccupancy, len(rooms))
	errs := make([]error, len(rooms))
	sem := make(chan struct{}, s.fanoutLimit)
	var wg sync.WaitGroup

	for i, room := range rooms {
		wg.Add(1)
		go func(i int, classroomID string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				errs[i] = ctx.Err()
				return
			}
			occupancy, err := s.GetClassroomOccupancy(ctx, classroomID, academicYearID)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = occupancy
		}(i, room.ID)
	}
	wg.Wait()

	out := make([]models.ClassroomOccupancy, 0, len(rooms))
	for i := range rooms {
		if errs[i] != nil {
			if errors.Is(errs[i], context.Canceled) {
				continue
			}
			return nil, errs[i]
		}
		if results[i] != nil {
			out = append(out, *results[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClassroomCode < out[j].ClassroomCode })
	return out, nil
}

// InvalidateYear drops every cached occupancy for an academic year.
func (s *OccupancyService) InvalidateYear(ctx context.Context, academicYearID string) {
	if err := s.cache.Invalidate(ctx, OccupancyCachePattern(academicYearID)); err != nil {
		s.logger.Warn("occupancy cache invalidation failed", zap.String("academic_year_id", academicYearID), zap.Error(err))
	}
}

// RefreshJob builds the queue job that re-warms one classroom's occupancy.
func RefreshJob(classroomID, academicYearID string) jobs.Job {
	return jobs.Job{
		Type:    JobOccupancyRefresh,
		Payload: classroomID + "|" + academicYearID,
	}
}

// HandleRefreshJob is the queue handler warming the cache after bookings
// change. The rebuilt grid overwrites whatever the cache held.
func (s *OccupancyService) HandleRefreshJob(ctx context.Context, job jobs.Job) error {
	classroomID, academicYearID, ok := strings.Cut(job.Payload, "|")
	if !ok || classroomID == "" || academicYearID == "" {
		return fmt.Errorf("malformed occupancy refresh payload %q", job.Payload)
	}

	occupancy, err := s.buildClassroomOccupancy(ctx, classroomID, academicYearID)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, OccupancyCacheKey(classroomID, academicYearID), occupancy, 0)
}

func (s *OccupancyService) buildClassroomOccupancy(ctx context.Context, classroomID, academicYearID string) (*models.ClassroomOccupancy, error) {
	start := time.Now()

	room, err := s.classrooms.FindByID(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "classroom not found")
	}
	semesters, err := s.semesters.ListByAcademicYear(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "semester listing failed")
	}

	legacySlots, err := s.legacy.ListByClassroom(ctx, classroomID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "legacy schedule scan failed")
	}

	occupancy := &models.ClassroomOccupancy{
		ClassroomID:   room.ID,
		ClassroomCode: room.Code,
		ClassroomName: room.Name,
		Semesters:     make([]models.SemesterOccupancy, 0, len(semesters)),
	}

	for _, semester := range semesters {
		entries, err := s.bookings.ListOccupancyEntries(ctx, classroomID, semester.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInfrastructure.Code, appErrors.ErrInfrastructure.Status, "occupancy booking scan failed")
		}
		for _, slot := range legacySlots {
			if slot.SemesterNumber != semester.Number {
				continue
			}
			entries = append(entries, models.OccupancyEntry{
				Source:      models.SourceLegacy,
				DayOfWeek:   slot.DayOfWeek,
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				SubjectName: slot.SubjectName,
				GroupCode:   slot.StudentGroupName,
				TeacherName: slot.TeacherName,
			})
		}
		occupancy.Semesters = append(occupancy.Semesters, buildSemesterGrid(semester, entries))
	}

	if s.metrics != nil {
		s.metrics.ObserveOccupancyBuild(time.Since(start))
	}
	return occupancy, nil
}

// buildSemesterGrid samples the gathered entries onto the hourly weekday
// grid. A cell is occupied when any entry's interval overlaps it, so
// half-hour starts like 11:30 still claim the 11:00 cell.
func buildSemesterGrid(semester models.Semester, entries []models.OccupancyEntry) models.SemesterOccupancy {
	grid := models.SemesterOccupancy{
		SemesterID:   semester.ID,
		SemesterName: semester.Name,
	}

	var morningTotal, morningBusy, afternoonTotal, afternoonBusy int
	for day := 1; day <= models.OccupancyDays; day++ {
		for hour := models.OccupancyFirstHour; hour <= models.OccupancyLastHour; hour++ {
			cellStart := hour * 60
			cellEnd := cellStart + 60
			cell := models.HourlyCell{
				DayOfWeek: day,
				StartTime: fmt.Sprintf("%02d:00", hour),
				EndTime:   fmt.Sprintf("%02d:00", hour+1),
			}

			for i := range entries {
				e := &entries[i]
				if e.DayOfWeek != day {
					continue
				}
				entryStart := models.MinuteOfDay(e.StartTime)
				entryEnd := models.MinuteOfDay(e.EndTime)
				if entryStart < 0 || entryEnd < 0 {
					continue
				}
				if entryStart < cellEnd && entryEnd > cellStart {
					cell.Occupied = true
					cell.Assignment = e
					break
				}
			}

			if cellStart < models.OccupancyMorningBoundary {
				morningTotal++
				if cell.Occupied {
					morningBusy++
				}
			} else {
				afternoonTotal++
				if cell.Occupied {
					afternoonBusy++
				}
			}
			grid.Cells = append(grid.Cells, cell)
		}
	}

	grid.MorningOccupancy = percentage(morningBusy, morningTotal)
	grid.AfternoonOccupancy = percentage(afternoonBusy, afternoonTotal)
	grid.TotalOccupancy = percentage(morningBusy+afternoonBusy, morningTotal+afternoonTotal)
	return grid
}

func percentage(busy, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(busy) / float64(total) * 100))
}
