package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hafs-center/markaz-api/internal/models"
	"github.com/hafs-center/markaz-api/internal/stats"
	"github.com/hafs-center/markaz-api/pkg/config"
	appErrors "github.com/hafs-center/markaz-api/pkg/errors"
	"github.com/hafs-center/markaz-api/pkg/export"
	"github.com/hafs-center/markaz-api/pkg/jobs"
)

// Progress report output formats.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatLink = "link"
)

const siteName = "مركز التحفيظ"

// ProgressReport is one rendered parent report.
type ProgressReport struct {
	StudentID    string `json:"student_id"`
	StudentName  string `json:"student_name"`
	Format       string `json:"format"`
	Message      string `json:"message,omitempty"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
	FileName     string `json:"file_name,omitempty"`
	Content      []byte `json:"-"`
}

type bulkReportPayload struct {
	StudentID string
	From      time.Time
	To        time.Time
}

type exportCircleReader interface {
	FindByID(ctx context.Context, id string) (*models.Circle, error)
}

type exportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	Roster(ctx context.Context, circleID string) ([]models.RosterEntry, error)
}

type exportRecitationReader interface {
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.RecitationReport, error)
}

type exportAttendanceReader interface {
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.AttendanceEvent, error)
}

// ExportService renders per-student progress reports as parent WhatsApp
// messages, CSV or PDF, and fans out whole-circle batches through the job
// queue.
type ExportService struct {
	students    exportStudentReader
	circles     exportCircleReader
	recitations exportRecitationReader
	attendance  exportAttendanceReader
	cfg         config.ReportsConfig
	excluded    time.Weekday
	logger      *zap.Logger
	queue       *jobs.Queue
}

// NewExportService wires the service and its background queue. Call Start
// before enqueueing bulk work and Stop on shutdown.
func NewExportService(
	students exportStudentReader,
	circles exportCircleReader,
	recitations exportRecitationReader,
	attendance exportAttendanceReader,
	cfg config.ReportsConfig,
	excluded time.Weekday,
	logger *zap.Logger,
) *ExportService {
	if cfg.MessageTemplate == "" {
		cfg.MessageTemplate = config.DefaultMessageTemplate
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ExportService{
		students:    students,
		circles:     circles,
		recitations: recitations,
		attendance:  attendance,
		cfg:         cfg,
		excluded:    excluded,
		logger:      logger,
	}
	s.queue = jobs.NewQueue("progress-reports", s.handleBulkJob, jobs.QueueConfig{
		Workers:    cfg.WorkerConcurrency,
		MaxRetries: cfg.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the bulk report workers.
func (s *ExportService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the bulk report workers.
func (s *ExportService) Stop() { s.queue.Stop() }

// ProgressReport renders one student's report in the requested format.
func (s *ExportService) ProgressReport(ctx context.Context, studentID string, from, to time.Time, format string) (*ProgressReport, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	reports, err := s.recitations.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reports")
	}
	events, err := s.attendance.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}

	result := &ProgressReport{StudentID: student.ID, StudentName: student.FullName, Format: format}

	switch format {
	case FormatCSV:
		content, err := export.RenderCSV(progressDataset(reports))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		result.Content = content
		result.FileName = fmt.Sprintf("progress-%s-%s.csv", student.ID, to.Format("2006-01-02"))
	case FormatPDF:
		content, err := export.RenderPDF(progressDataset(reports), "Progress Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		result.Content = content
		result.FileName = fmt.Sprintf("progress-%s-%s.pdf", student.ID, to.Format("2006-01-02"))
	case FormatLink:
		message, err := s.buildMessage(ctx, student, reports, events, from, to)
		if err != nil {
			return nil, err
		}
		result.Message = message
		result.WhatsAppLink = s.whatsAppLink(student.ParentPhone, message)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	return result, nil
}

// EnqueueBulk schedules a progress report for every active student of the
// circle. The amount of scheduled work is returned immediately; rendering
// happens on the queue workers.
func (s *ExportService) EnqueueBulk(ctx context.Context, circleID string, from, to time.Time) (int, error) {
	if _, err := s.circles.FindByID(ctx, circleID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "circle not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load circle")
	}
	roster, err := s.students.Roster(ctx, circleID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	scheduled := 0
	for _, entry := range roster {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "progress-report",
			Payload: bulkReportPayload{StudentID: entry.ID, From: from, To: to},
		}
		if err := s.queue.Enqueue(job); err != nil {
			return scheduled, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
		}
		scheduled++
	}
	return scheduled, nil
}

func (s *ExportService) handleBulkJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(bulkReportPayload)
	if !ok {
		s.logger.Error("unexpected job payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	report, err := s.ProgressReport(ctx, payload.StudentID, payload.From, payload.To, FormatLink)
	if err != nil {
		return fmt.Errorf("render bulk report for %s: %w", payload.StudentID, err)
	}
	s.logger.Info("progress report prepared",
		zap.String("student_id", report.StudentID),
		zap.Bool("has_link", report.WhatsAppLink != ""))
	return nil
}

func (s *ExportService) buildMessage(ctx context.Context, student *models.Student, reports []models.RecitationReport, events []models.AttendanceEvent, from, to time.Time) (string, error) {
	circleName := ""
	teacherName := ""
	if circle, err := s.circles.FindByID(ctx, student.CircleID); err == nil {
		circleName = circle.Name
		if circle.TeacherName != nil {
			teacherName = *circle.TeacherName
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load circle")
	}

	agg := stats.Compute(events, s.excluded)
	attendanceLine := fmt.Sprintf("حضر %d من %d يوم (%.2f%%)", agg.Present, agg.TotalValidDays, agg.RatePercent)

	replacer := strings.NewReplacer(
		"{report_type}", reportTypeLabel(from, to),
		"{student_name}", student.FullName,
		"{circle_name}", circleName,
		"{teacher_name}", teacherName,
		"{start_date}", from.Format("2006-01-02"),
		"{end_date}", to.Format("2006-01-02"),
		"{reports_details}", reportDetails(reports),
		"{attendance_stats}", attendanceLine,
		"{site_name}", siteName,
	)
	return replacer.Replace(s.cfg.MessageTemplate), nil
}

// whatsAppLink builds a wa.me link for the parent phone. An empty or missing
// phone yields no link; the caller still gets the message text.
func (s *ExportService) whatsAppLink(phone *string, message string) string {
	if phone == nil {
		return ""
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, *phone)
	if digits == "" {
		return ""
	}
	digits = strings.TrimPrefix(digits, "0")
	return fmt.Sprintf("https://wa.me/%s%s?text=%s", s.cfg.CountryCallingCode, digits, url.QueryEscape(message))
}

func reportTypeLabel(from, to time.Time) string {
	days := int(to.Sub(from).Hours() / 24)
	switch {
	case days <= 8:
		return "أسبوعي"
	case days <= 32:
		return "شهري"
	default:
		return "مفصل"
	}
}

func reportDetails(reports []models.RecitationReport) string {
	if len(reports) == 0 {
		return "لا يوجد تسميع في هذه الفترة"
	}
	lines := make([]string, 0, len(reports))
	for _, r := range reports {
		lines = append(lines, fmt.Sprintf("- %s: %s %d-%d (%s) %s",
			r.Date.Format("2006-01-02"), r.Surah, r.FromVerse, r.ToVerse,
			repeatLabel(r.Repeat), gradeLabel(r.Grade)))
	}
	return strings.Join(lines, "\n")
}

func repeatLabel(t models.RepeatType) string {
	if t == models.RepeatReview {
		return "مراجعة"
	}
	return "حفظ"
}

func gradeLabel(g models.Grade) string {
	switch g {
	case models.GradeExcellent:
		return "ممتاز"
	case models.GradeVeryGood:
		return "جيد جدا"
	case models.GradeAcceptable:
		return "مقبول"
	default:
		return "جيد"
	}
}

func progressDataset(reports []models.RecitationReport) export.Dataset {
	headers := []string{"date", "surah", "from_verse", "to_verse", "type", "grade"}
	rows := make([]map[string]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, map[string]string{
			"date":       r.Date.Format("2006-01-02"),
			"surah":      r.Surah,
			"from_verse": fmt.Sprintf("%d", r.FromVerse),
			"to_verse":   fmt.Sprintf("%d", r.ToVerse),
			"type":       repeatLabel(r.Repeat),
			"grade":      gradeLabel(r.Grade),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
