package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/repository"
)

// RunOutcome is the terminal classification of one runner invocation.
type RunOutcome int

const (
	// OutcomeEmpty means no pending legislation was available to claim.
	OutcomeEmpty RunOutcome = iota
	// OutcomeAccepted means the verdict passed the filter and was persisted.
	OutcomeAccepted
	// OutcomeIgnored means the job completed but the verdict was filtered out.
	OutcomeIgnored
	// OutcomeFailed means the job hit an unrecoverable pipeline error.
	OutcomeFailed
)

// BatchStats is the batch invocation outcome returned at the process boundary.
type BatchStats struct {
	Processed       int   `json:"processed"`
	Ignored         int   `json:"ignored"`
	Failed          int   `json:"failed"`
	EmailsSent      int   `json:"emailsSent"`
	ExecutionTimeMs int64 `json:"executionTimeMs"`
}

// ForgeConfig holds the pipeline tunables.
type ForgeConfig struct {
	ChunkSize int
	Budget    time.Duration
}

// ForgeService orchestrates the full pipeline for one claimed legislation
// and loops it under the batch wall-clock budget.
type ForgeService struct {
	legRepo      *repository.LegislationRepository
	analysisRepo *repository.AnalysisRepository
	acquirer     Acquirer
	scout        *ScoutService
	synth        *SynthesizerService
	repair       *RepairService
	mailer       Notifier
	logger       *logger.Logger
	chunkSize    int
	budget       time.Duration

	// now is swapped in budget tests
	now func() time.Time
}

// NewForgeService creates a new forge service.
func NewForgeService(
	legRepo *repository.LegislationRepository,
	analysisRepo *repository.AnalysisRepository,
	acquirer Acquirer,
	scout *ScoutService,
	synth *SynthesizerService,
	repair *RepairService,
	mailer Notifier,
	log *logger.Logger,
	cfg *ForgeConfig,
) *ForgeService {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 12000
	}
	budget := cfg.Budget
	if budget <= 0 {
		budget = 4 * time.Minute
	}
	return &ForgeService{
		legRepo:      legRepo,
		analysisRepo: analysisRepo,
		acquirer:     acquirer,
		scout:        scout,
		synth:        synth,
		repair:       repair,
		mailer:       mailer,
		logger:       log,
		chunkSize:    chunkSize,
		budget:       budget,
		now:          time.Now,
	}
}

// log returns a logger from context if available, otherwise the default one.
func (s *ForgeService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return s.logger
}

// RunOne claims and fully processes one pending legislation. Pipeline errors
// are contained here: the job is marked failed and the error does not
// propagate. The returned error is non-nil only for store failures with no
// job claimed.
func (s *ForgeService) RunOne(ctx context.Context) (RunOutcome, bool, error) {
	leg, err := s.legRepo.ClaimPending(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNoPending) {
			return OutcomeEmpty, false, nil
		}
		return OutcomeEmpty, false, err
	}

	ctx = logger.SetLegislationID(ctx, leg.ID)
	s.log(ctx).WithFields(logger.Fields{
		logger.FieldLegislationID: leg.ID,
		"title":                   leg.Title,
	}).Info("Claimed legislation")

	accepted, emailed, procErr := s.process(ctx, leg)
	if procErr != nil {
		s.log(ctx).WithError(procErr).WithField(logger.FieldLegislationID, leg.ID).
			Error("Pipeline failed")
		// the failure reason replaces the document reference
		if markErr := s.legRepo.MarkFailed(ctx, leg.ID, procErr.Error()); markErr != nil {
			s.log(ctx).WithError(markErr).Error("Failed to mark legislation failed")
		}
		return OutcomeFailed, false, nil
	}

	if accepted {
		return OutcomeAccepted, emailed, nil
	}
	return OutcomeIgnored, false, nil
}

// process drives acquisition, scout, synthesis, repair, the acceptance
// filter and persistence for one claimed legislation.
func (s *ForgeService) process(ctx context.Context, leg *domain.Legislation) (accepted, emailed bool, err error) {
	ctx = logger.SetStage(ctx, "acquire")
	docURL, err := s.acquirer.ResolveDocumentURL(ctx, leg.SourceURL)
	if err != nil {
		return false, false, err
	}
	if err := s.legRepo.SetDocumentURL(ctx, leg.ID, docURL); err != nil {
		return false, false, err
	}

	text, archiveURL, err := s.acquirer.ExtractText(ctx, docURL, leg.ID)
	if err != nil {
		return false, false, err
	}
	if archiveURL != "" {
		// prefer the durable archive copy as the stored document reference
		if err := s.legRepo.SetDocumentURL(ctx, leg.ID, archiveURL); err != nil {
			return false, false, err
		}
	}

	chunks := SplitText(text, s.chunkSize)
	logger.With(logger.Fields{logger.FieldChunks: len(chunks)}).
		Info(ctx, "Document acquired, characters=%d", len(text))

	reports, err := s.scout.Analyze(logger.SetStage(ctx, "scout"), chunks)
	if err != nil {
		return false, false, err
	}

	verdict, raw, err := s.synth.Synthesize(logger.SetStage(ctx, "synthesize"), leg.Title, reports)
	if err != nil {
		return false, false, err
	}
	if verdict == nil {
		verdict, err = s.repair.ParseVerdict(logger.SetStage(ctx, "repair"), leg.Title, raw)
		if err != nil {
			return false, false, err
		}
	}

	ctx = logger.SetStage(ctx, "commit")

	// Acceptance filter: zero or negative confidence is "processed but not
	// actionable", a terminal success without an analysis row.
	if verdict.ConfidenceScore <= 0 {
		if err := s.legRepo.MarkCompleted(ctx, leg.ID); err != nil {
			return false, false, err
		}
		s.log(ctx).WithField(logger.FieldLegislationID, leg.ID).
			Info("Verdict below confidence threshold, ignored")
		return false, false, nil
	}

	result := &domain.AnalysisResult{
		ID:                uuid.New().String(),
		LegislationID:     leg.ID,
		Verdict:           *verdict,
		ConfidenceScore:   verdict.ConfidenceScore,
		TimeHorizonMonths: verdict.TimeHorizonMonths,
		CreatedAt:         time.Now(),
	}
	if err := s.analysisRepo.Create(ctx, result); err != nil {
		return false, false, err
	}
	if err := s.legRepo.MarkCompleted(ctx, leg.ID); err != nil {
		return false, false, err
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldLegislationID: leg.ID,
		"confidence":              verdict.ConfidenceScore,
		"horizon_months":          verdict.TimeHorizonMonths,
	}).Info("Verdict accepted")

	// Notification failures are logged and swallowed; the job stays completed.
	if s.mailer != nil && s.mailer.IsEnabled() {
		if mailErr := s.mailer.SendVerdictAlert(ctx, leg, verdict); mailErr != nil {
			s.log(ctx).WithError(mailErr).Warn("Failed to send verdict alert")
		} else {
			emailed = true
		}
	}

	return true, emailed, nil
}

// RunBatch invokes the runner sequentially while the wall-clock budget
// lasts, stopping early on an empty queue. A job already in flight runs to
// completion even if the budget expires mid-job. A non-nil error means the
// batch aborted on a store failure with no job claimed; per-job failures
// only ever show up in the stats.
func (s *ForgeService) RunBatch(ctx context.Context) (*BatchStats, error) {
	start := s.now()
	stats := &BatchStats{}
	var storeErr error

	batchCtx := logger.SetBatchID(ctx, uuid.New().String())
	logger.CtxInfo(batchCtx, "Batch started, budget=%s", s.budget)

	for s.now().Sub(start) < s.budget {
		outcome, emailed, err := s.RunOne(batchCtx)
		if err != nil {
			// store failure before any claim; nothing to mark, stop the batch
			s.log(batchCtx).WithError(err).Error("Batch aborted on store error")
			storeErr = err
			break
		}
		if outcome == OutcomeEmpty {
			logger.CtxInfo(batchCtx, "Queue empty, stopping batch early")
			break
		}

		switch outcome {
		case OutcomeAccepted:
			stats.Processed++
		case OutcomeIgnored:
			stats.Ignored++
		case OutcomeFailed:
			stats.Failed++
		}
		if emailed {
			stats.EmailsSent++
		}
	}

	stats.ExecutionTimeMs = s.now().Sub(start).Milliseconds()

	logger.With(logger.Fields{
		logger.FieldDurationMs: stats.ExecutionTimeMs,
		logger.FieldCount:      stats.Processed + stats.Ignored + stats.Failed,
	}).Info(batchCtx, "Batch finished: processed=%d ignored=%d failed=%d emails=%d",
		stats.Processed, stats.Ignored, stats.Failed, stats.EmailsSent)

	return stats, storeErr
}
