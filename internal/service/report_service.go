package service

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/report-portal/internal/access"
	"github.com/spec-kit/report-portal/internal/config"
	"github.com/spec-kit/report-portal/internal/domain"
	"github.com/spec-kit/report-portal/internal/events"
	"github.com/spec-kit/report-portal/internal/observability"
	"github.com/spec-kit/report-portal/internal/repository"
	"github.com/spec-kit/report-portal/internal/storage"
	apperrors "github.com/spec-kit/report-portal/pkg/util/errorutil"
)

// FileUpload is the document attached to a submission.
type FileUpload struct {
	Name string
	Data []byte
}

// SubmissionInput describes a report submission payload.
type SubmissionInput struct {
	Year        int         `json:"year" validate:"required,year"`
	Quarter     string      `json:"quarter" validate:"required,quarter"`
	Title       string      `json:"title" validate:"required,notblank,max=100"`
	Description string      `json:"description" validate:"max=5000"`
	File        *FileUpload `json:"-"`
}

// ReportService runs the submission workflow and the gated read paths.
type ReportService struct {
	reports    repository.ReportRepository
	documents  storage.DocumentStore
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	rules      config.ReportsConfig
	validate   *validator.Validate
	now        func() time.Time
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	Documents  storage.DocumentStore
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
	Rules      config.ReportsConfig
	Clock      func() time.Time
}

// NewReportService builds the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	rules := deps.Rules
	rules.AllowedExtensions = normalizeExtensions(rules.AllowedExtensions)
	return &ReportService{
		reports:    deps.ReportRepo,
		documents:  deps.Documents,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		rules:      rules,
		validate:   newValidator(rules),
		now:        clock,
	}
}

// Submit validates the submission and stores exactly one document and one
// report row, or neither.
func (s *ReportService) Submit(ctx context.Context, caller domain.Identity, input SubmissionInput) (*domain.Report, error) {
	report, err := s.submit(ctx, caller, input)
	if err != nil {
		s.rejected(ctx, caller, input, err)
		return nil, err
	}
	return report, nil
}

func (s *ReportService) submit(ctx context.Context, caller domain.Identity, input SubmissionInput) (*domain.Report, error) {
	if err := access.CanSubmit(caller); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Quarter = strings.TrimSpace(input.Quarter)
	if err := s.validate.Struct(input); err != nil {
		return nil, validationError(err, s.rules)
	}
	if input.File == nil || strings.TrimSpace(input.File.Name) == "" || len(input.File.Data) == 0 {
		return nil, apperrors.NewMissingFile()
	}

	ext := storage.Extension(input.File.Name)
	if !slices.Contains(s.rules.AllowedExtensions, ext) {
		return nil, apperrors.NewUnsupportedFileType(ext, s.rules.AllowedExtensions)
	}

	key := domain.PeriodKey{District: caller.District, Year: input.Year, Quarter: input.Quarter}
	taken, err := s.reports.Exists(ctx, key)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if taken {
		return nil, apperrors.NewDuplicatePeriod(input.Year, input.Quarter)
	}

	stored := storage.StoredName(caller.District, input.Year, input.Quarter, input.File.Name)
	report := &domain.Report{
		District:    caller.District,
		Year:        input.Year,
		Quarter:     input.Quarter,
		Title:       input.Title,
		Description: strings.TrimSpace(input.Description),
		Filename:    &stored,
		SubmittedAt: s.now().UTC(),
		SubmittedBy: caller.Username,
	}

	var written bool
	var storageErr error
	err = s.reports.Create(ctx, report, func(ctx context.Context, _ *domain.Report) error {
		if err := s.documents.Put(ctx, stored, input.File.Data); err != nil {
			storageErr = err
			return err
		}
		written = true
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrPeriodTaken):
		return nil, apperrors.NewConcurrencyConflict(input.Year, input.Quarter)
	case storageErr != nil:
		return nil, apperrors.NewStorageError(storageErr)
	case written:
		s.logger.Error("report row not committed after document write",
			zap.String("stored_file", stored), zap.Error(err))
		return nil, apperrors.MapError(err)
	default:
		return nil, apperrors.MapError(err)
	}

	s.logger.Info("report submitted",
		zap.Int64("report_id", report.ID),
		zap.String("district", report.District),
		zap.Int("year", report.Year),
		zap.String("quarter", report.Quarter),
		zap.String("submitted_by", report.SubmittedBy))
	s.metrics.RecordSubmission(report.District)
	s.publish(ctx, events.Event{
		Type:     events.EventReportSubmitted,
		ReportID: report.ID,
		Actor:    events.Actor{Username: caller.Username, District: caller.District},
		Payload: events.ReportSubmittedPayload{
			Year:       report.Year,
			Quarter:    report.Quarter,
			Title:      report.Title,
			StoredFile: stored,
			SizeBytes:  len(input.File.Data),
		},
	})
	return report, nil
}

func (s *ReportService) rejected(ctx context.Context, caller domain.Identity, input SubmissionInput, err error) {
	domainErr := apperrors.ToDomainError(err)
	s.metrics.RecordRejection(domainErr.Code)
	fields := []zap.Field{
		zap.String("code", domainErr.Code),
		zap.String("district", caller.District),
		zap.Int("year", input.Year),
		zap.String("quarter", input.Quarter),
	}
	if domainErr.HTTPStatus >= 500 {
		s.logger.Error("report submission failed", append(fields, zap.Error(err))...)
	} else {
		s.logger.Info("report submission rejected", fields...)
	}
	if caller.IsZero() {
		return
	}
	s.publish(ctx, events.Event{
		Type:  events.EventReportRejected,
		Actor: events.Actor{Username: caller.Username, District: caller.District},
		Payload: events.ReportRejectedPayload{
			Year:    input.Year,
			Quarter: input.Quarter,
			Code:    domainErr.Code,
		},
	})
}

func (s *ReportService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = s.now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// ListVisible returns the reports the caller may see, newest first.
func (s *ReportService) ListVisible(ctx context.Context, caller domain.Identity) ([]domain.Report, error) {
	if caller.IsZero() {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	reports, err := s.reports.List(ctx, access.Scope(caller))
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return reports, nil
}

// GetByID returns a single report. Unknown ids are NOT_FOUND, reports of
// another district are FORBIDDEN.
func (s *ReportService) GetByID(ctx context.Context, caller domain.Identity, id int64) (*domain.Report, error) {
	if caller.IsZero() {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("report", map[string]any{"id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if err := access.Authorize(caller, report); err != nil {
		return nil, err
	}
	return report, nil
}

// DownloadFile resolves the report through the gate, then reads its document.
func (s *ReportService) DownloadFile(ctx context.Context, caller domain.Identity, id int64) (*domain.Report, []byte, error) {
	report, err := s.GetByID(ctx, caller, id)
	if err != nil {
		return nil, nil, err
	}
	name := report.StoredFile()
	if name == "" {
		return nil, nil, apperrors.NewNotFound("report file", map[string]any{"id": id})
	}
	data, err := s.documents.Get(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("stored file missing for report", zap.Int64("report_id", id), zap.String("stored_file", name))
		}
		return nil, nil, apperrors.NewStorageError(err)
	}
	return report, data, nil
}

// AllowedExtensions returns the normalized allow-list.
func (s *ReportService) AllowedExtensions() []string {
	return slices.Clone(s.rules.AllowedExtensions)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" && !slices.Contains(out, ext) {
			out = append(out, ext)
		}
	}
	return out
}
