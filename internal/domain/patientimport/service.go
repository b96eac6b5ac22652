package patientimport

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medloop/medloop/internal/platform/db"
	"github.com/medloop/medloop/internal/quality"
)

// Detector is the duplicate-analysis dependency of the import flow.
type Detector interface {
	Detect(ctx context.Context, records []quality.Record) quality.DuplicateDetection
}

// Suggester is the correction-proposal dependency of the import flow.
type Suggester interface {
	Suggest(ctx context.Context, records []quality.Record) []quality.ValidationSuggestion
}

// Service runs the three quality analyses over an uploaded batch and
// records a job summary. The analyses are independent and read-only, so
// they run concurrently over the same batch without coordination.
type Service struct {
	validator *quality.Validator
	detector  Detector
	suggester Suggester
	repo      JobRepository
	logger    zerolog.Logger
}

// NewService wires the import flow.
func NewService(validator *quality.Validator, detector Detector, suggester Suggester, repo JobRepository, logger zerolog.Logger) *Service {
	return &Service{
		validator: validator,
		detector:  detector,
		suggester: suggester,
		repo:      repo,
		logger:    logger,
	}
}

// Analyze produces the merged quality report for a batch. Collaborator
// degradation is already absorbed inside the detector and suggester; the
// only error this returns is a caller-side context cancellation.
func (s *Service) Analyze(ctx context.Context, records []quality.Record) (*Report, error) {
	report := &Report{}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		report.Validation = s.validator.ValidateBatch(records)
	}()
	go func() {
		defer wg.Done()
		report.Duplicates = s.detector.Detect(ctx, records)
	}()
	go func() {
		defer wg.Done()
		report.Corrections = s.suggester.Suggest(ctx, records)
	}()
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	job := &ImportJob{
		TenantID:        db.TenantFromContext(ctx),
		RecordCount:     len(records),
		ErrorCount:      len(report.Validation.Errors),
		WarningCount:    len(report.Validation.Warnings),
		SuggestionCount: len(report.Validation.Suggestions) + len(report.Corrections),
		DuplicateCount:  report.Duplicates.TotalDuplicates,
		Score:           report.Validation.Score,
		Valid:           report.Validation.Valid,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		// The report is still complete and useful without the summary row.
		s.logger.Error().Err(err).Msg("import job not persisted")
	} else {
		report.JobID = job.ID
	}

	return report, nil
}

// GetJob fetches a single job summary.
func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*ImportJob, error) {
	return s.repo.GetByID(ctx, id)
}

// ListJobs lists job summaries, newest first.
func (s *Service) ListJobs(ctx context.Context, limit, offset int) ([]*ImportJob, int, error) {
	return s.repo.List(ctx, limit, offset)
}
