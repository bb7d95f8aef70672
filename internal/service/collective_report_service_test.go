package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/internal/parser"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
)

type stubCacheRepo struct {
	store       map[string][]byte
	invalidated []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.store == nil {
		s.store = map[string][]byte{}
	}
	s.store[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.invalidated = append(s.invalidated, pattern)
	return nil
}

type fakeRosterRepo struct {
	roster []models.RosterEntry
	err    error
}

func (f *fakeRosterRepo) Roster(context.Context, string) ([]models.RosterEntry, error) {
	return f.roster, f.err
}

type fakeCircleRepo struct {
	circle *models.Circle
	err    error
}

func (f *fakeCircleRepo) FindByID(context.Context, string) (*models.Circle, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.circle, nil
}

type fakeAttendanceWriter struct {
	inserted   []models.AttendanceEvent
	duplicates []models.AttendanceEvent
	err        error
}

func (f *fakeAttendanceWriter) BulkInsert(_ context.Context, events []models.AttendanceEvent) ([]models.AttendanceEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, events...)
	return f.duplicates, nil
}

type fakeRecitationWriter struct {
	inserted []models.RecitationReport
	err      error
}

func (f *fakeRecitationWriter) BulkInsert(_ context.Context, reports []models.RecitationReport) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, reports...)
	return nil
}

type fakeEvaluator struct {
	earnedByStudent map[string][]models.AchievementID
	evaluated       []string
}

func (f *fakeEvaluator) EvaluateStudent(_ context.Context, studentID string) ([]models.AchievementID, error) {
	f.evaluated = append(f.evaluated, studentID)
	return f.earnedByStudent[studentID], nil
}

func testImportService() (*CollectiveReportService, *fakeRecitationWriter, *fakeAttendanceWriter, *stubCacheRepo, *fakeEvaluator) {
	roster := &fakeRosterRepo{roster: []models.RosterEntry{
		{ID: "s1", DisplayName: "أحمد علي", CircleID: "c1"},
		{ID: "s2", DisplayName: "محمد صالح", CircleID: "c1"},
	}}
	circle := &fakeCircleRepo{circle: &models.Circle{ID: "c1", Name: "حلقة النور"}}
	attendance := &fakeAttendanceWriter{}
	recitations := &fakeRecitationWriter{}
	evaluator := &fakeEvaluator{}
	cacheRepo := &stubCacheRepo{}
	cache := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop())

	svc := NewCollectiveReportService(roster, circle, attendance, recitations, evaluator, cache, nil, nil, zap.NewNop())
	return svc, recitations, attendance, cacheRepo, evaluator
}

func TestImportPersistsAndStampsRecords(t *testing.T) {
	svc, recitations, attendance, cacheRepo, evaluator := testImportService()

	req := ImportRequest{
		CircleID:  "c1",
		TeacherID: "t1",
		Date:      "2025-03-14",
		Text:      "أحمد: البقرة 1-5+\nمحمد: غائب بعذر",
	}
	summary, err := svc.Import(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ImportedReports)
	assert.Equal(t, 1, summary.AttendanceEvents)
	assert.Empty(t, summary.SkippedLines)

	require.Len(t, recitations.inserted, 1)
	assert.Equal(t, "t1", recitations.inserted[0].TeacherID)
	assert.Equal(t, "c1", recitations.inserted[0].CircleID)
	assert.Equal(t, "s1", recitations.inserted[0].StudentID)

	require.Len(t, attendance.inserted, 1)
	assert.Equal(t, "s2", attendance.inserted[0].StudentID)
	assert.Equal(t, models.AttendanceExcused, attendance.inserted[0].Status)

	assert.ElementsMatch(t, []string{"stats:*", "dashboard:*"}, cacheRepo.invalidated)
	assert.ElementsMatch(t, []string{"s1", "s2"}, evaluator.evaluated)
}

func TestImportReportsSkippedLines(t *testing.T) {
	svc, _, _, _, _ := testImportService()

	req := ImportRequest{
		CircleID:  "c1",
		TeacherID: "t1",
		Date:      "2025-03-14",
		Text:      "سطر بلا فاصلة\nمجهول: البقرة 1-5",
	}
	summary, err := svc.Import(context.Background(), req)
	require.NoError(t, err)

	assert.Zero(t, summary.ImportedReports)
	require.Len(t, summary.SkippedLines, 2)
	assert.Equal(t, parser.SkipNoColon, summary.SkippedLines[0].Reason)
	assert.Equal(t, parser.SkipUnresolvedStudent, summary.SkippedLines[1].Reason)
}

func TestImportRejectsMalformedDate(t *testing.T) {
	svc, recitations, _, _, _ := testImportService()

	_, err := svc.Import(context.Background(), ImportRequest{
		CircleID:  "c1",
		TeacherID: "t1",
		Date:      "14/03/2025",
		Text:      "أحمد: البقرة 1-5",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, recitations.inserted)
}

func TestImportUnknownCircle(t *testing.T) {
	svc, _, _, _, _ := testImportService()
	svcMissing := *svc
	svcMissing.circles = &fakeCircleRepo{err: sql.ErrNoRows}

	_, err := svcMissing.Import(context.Background(), ImportRequest{
		CircleID:  "missing",
		TeacherID: "t1",
		Date:      "2025-03-14",
		Text:      "أحمد: البقرة 1-5",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestImportValidatesPayload(t *testing.T) {
	svc, _, _, _, _ := testImportService()

	_, err := svc.Import(context.Background(), ImportRequest{CircleID: "c1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
