package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
)

// ClassroomRepository provides classroom lookups.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository creates a new classroom repository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

const classroomColumns = `id, code, name, building, floor, capacity, type, created_at`

// FindByID loads a classroom by id.
func (r *ClassroomRepository) FindByID(ctx context.Context, id string) (*models.Classroom, error) {
	query := fmt.Sprintf(`SELECT %s FROM classrooms WHERE id = $1`, classroomColumns)
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// FindByCode loads a classroom by its display code, e.g. "P.1.2".
func (r *ClassroomRepository) FindByCode(ctx context.Context, code string) (*models.Classroom, error) {
	query := fmt.Sprintf(`SELECT %s FROM classrooms WHERE code = $1`, classroomColumns)
	var room models.Classroom
	if err := r.db.GetContext(ctx, &room, query, code); err != nil {
		return nil, err
	}
	return &room, nil
}

// List returns every classroom ordered by code.
func (r *ClassroomRepository) List(ctx context.Context) ([]models.Classroom, error) {
	query := fmt.Sprintf(`SELECT %s FROM classrooms ORDER BY code ASC`, classroomColumns)
	var rooms []models.Classroom
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return rooms, nil
}

// SemesterRepository provides semester lookups.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository creates a new semester repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// FindByID loads a semester by id.
func (r *SemesterRepository) FindByID(ctx context.Context, id string) (*models.Semester, error) {
	const query = `SELECT id, academic_year_id, name, number, created_at FROM semesters WHERE id = $1`
	var sem models.Semester
	if err := r.db.GetContext(ctx, &sem, query, id); err != nil {
		return nil, err
	}
	return &sem, nil
}

// ListByAcademicYear returns the semesters of a year ordered by number.
func (r *SemesterRepository) ListByAcademicYear(ctx context.Context, academicYearID string) ([]models.Semester, error) {
	const query = `SELECT id, academic_year_id, name, number, created_at FROM semesters WHERE academic_year_id = $1 ORDER BY number ASC`
	var semesters []models.Semester
	if err := r.db.SelectContext(ctx, &semesters, query, academicYearID); err != nil {
		return nil, fmt.Errorf("list semesters: %w", err)
	}
	return semesters, nil
}

// SubjectRepository provides subject and subject group lookups.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByID loads a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, code, name, created_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindByCode loads a subject by its code.
func (r *SubjectRepository) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	const query = `SELECT id, code, name, created_at FROM subjects WHERE code = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, code); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindGroupByID loads a subject group by id.
func (r *SubjectRepository) FindGroupByID(ctx context.Context, id string) (*models.SubjectGroup, error) {
	const query = `SELECT id, subject_id, group_code, student_group_id, created_at FROM subject_groups WHERE id = $1`
	var group models.SubjectGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// FindGroupByCode loads a subject group by subject and group code.
func (r *SubjectRepository) FindGroupByCode(ctx context.Context, subjectID, groupCode string) (*models.SubjectGroup, error) {
	const query = `SELECT id, subject_id, group_code, student_group_id, created_at FROM subject_groups WHERE subject_id = $1 AND group_code = $2`
	var group models.SubjectGroup
	if err := r.db.GetContext(ctx, &group, query, subjectID, groupCode); err != nil {
		return nil, err
	}
	return &group, nil
}

// StudentGroupRepository provides student group lookups.
type StudentGroupRepository struct {
	db *sqlx.DB
}

// NewStudentGroupRepository creates a new student group repository.
func NewStudentGroupRepository(db *sqlx.DB) *StudentGroupRepository {
	return &StudentGroupRepository{db: db}
}

// FindByID loads a student group by id.
func (r *StudentGroupRepository) FindByID(ctx context.Context, id string) (*models.StudentGroup, error) {
	const query = `SELECT id, name, max_students, created_at FROM student_groups WHERE id = $1`
	var group models.StudentGroup
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}

// FindByName loads a student group by its display name, e.g. "GR2-Im".
func (r *StudentGroupRepository) FindByName(ctx context.Context, name string) (*models.StudentGroup, error) {
	const query = `SELECT id, name, max_students, created_at FROM student_groups WHERE name = $1`
	var group models.StudentGroup
	if err := r.db.GetContext(ctx, &group, query, name); err != nil {
		return nil, err
	}
	return &group, nil
}

// TeacherRepository provides teacher lookups.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository creates a new teacher repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID loads a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, first_name, last_name, email, created_at FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}
