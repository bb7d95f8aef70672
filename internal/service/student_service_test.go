package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type fakeStudentDirectoryRepo struct {
	students   []models.Student
	total      int
	lastFilter models.StudentFilter
	created    []*models.Student
}

func (f *fakeStudentDirectoryRepo) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	f.lastFilter = filter
	return f.students, f.total, nil
}

func (f *fakeStudentDirectoryRepo) Create(_ context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = "generated"
	}
	f.created = append(f.created, student)
	return nil
}

func TestStudentListNormalizesPaging(t *testing.T) {
	repo := &fakeStudentDirectoryRepo{
		students: []models.Student{{ID: "s1", FullName: "أحمد علي"}},
		total:    42,
	}
	svc := NewStudentService(repo, &fakeCircleRepo{}, nil, zap.NewNop())

	students, pagination, err := svc.List(context.Background(), models.StudentFilter{Page: 0, PageSize: 500})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, 1, pagination.Page)
	assert.Equal(t, 20, pagination.PageSize)
	assert.Equal(t, 42, pagination.TotalCount)
	assert.Equal(t, 1, repo.lastFilter.Page)
	assert.Equal(t, 20, repo.lastFilter.PageSize)
}

func TestStudentCreate(t *testing.T) {
	repo := &fakeStudentDirectoryRepo{}
	circles := &fakeCircleRepo{circle: &models.Circle{ID: "c1", Name: "حلقة النور"}}
	svc := NewStudentService(repo, circles, nil, zap.NewNop())

	student, err := svc.Create(context.Background(), CreateStudentRequest{
		FullName: "خالد عمر",
		CircleID: "c1",
	})
	require.NoError(t, err)
	assert.Equal(t, "generated", student.ID)
	assert.True(t, student.Active)
	require.Len(t, repo.created, 1)
}

func TestStudentCreateUnknownCircle(t *testing.T) {
	svc := NewStudentService(&fakeStudentDirectoryRepo{}, &fakeCircleRepo{err: sql.ErrNoRows}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{
		FullName: "خالد عمر",
		CircleID: "missing",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStudentCreateValidatesPayload(t *testing.T) {
	repo := &fakeStudentDirectoryRepo{}
	svc := NewStudentService(repo, &fakeCircleRepo{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateStudentRequest{FullName: "خالد عمر"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}
