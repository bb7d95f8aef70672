package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	Create(ctx context.Context, student *models.Student) error
}

// CreateStudentRequest is the payload for enrolling a student.
type CreateStudentRequest struct {
	FullName     string  `json:"full_name" validate:"required"`
	Age          *int    `json:"age,omitempty" validate:"omitempty,gt=0"`
	StudentPhone *string `json:"student_phone,omitempty"`
	ParentPhone  *string `json:"parent_phone,omitempty"`
	CircleID     string  `json:"circle_id" validate:"required"`
	AcademicYear string  `json:"academic_year,omitempty"`
}

// StudentService manages the student directory.
type StudentService struct {
	repo      studentRepository
	circles   circleFinder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, circles circleFinder, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, circles: circles, validator: validate, logger: logger}
}

// List returns students matching the filter plus paging metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	return students, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	}, nil
}

// Create enrolls a new student into an existing circle. New students start
// active.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	if _, err := s.circles.FindByID(ctx, req.CircleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "circle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load circle")
	}

	student := &models.Student{
		FullName:     req.FullName,
		Age:          req.Age,
		StudentPhone: req.StudentPhone,
		ParentPhone:  req.ParentPhone,
		CircleID:     req.CircleID,
		Active:       true,
		AcademicYear: req.AcademicYear,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", student.ID),
		zap.String("circle_id", student.CircleID),
	)
	return student, nil
}
