package service

import (
	"context"
	"fmt"

	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/prompts"
	"github.com/tobbe/lexalpha/internal/retry"
	"golang.org/x/sync/errgroup"
)

// ScoutService runs the map stage: one fast-model call per chunk, fanned out
// concurrently under a worker cap.
type ScoutService struct {
	gen     TextGenerator
	policy  retry.Policy
	workers int
	logger  *logger.Logger
}

// NewScoutService creates a new scout service.
// Parameters:
//   - gen: model backend for the fast tier.
//   - policy: backoff policy applied to every chunk call.
//   - workers: concurrency cap for the fan-out.
//   - log: structured logger.
func NewScoutService(gen TextGenerator, policy retry.Policy, workers int, log *logger.Logger) *ScoutService {
	if workers <= 0 {
		workers = 5
	}
	return &ScoutService{gen: gen, policy: policy, workers: workers, logger: log}
}

// Analyze screens every chunk and returns the surviving reports in chunk
// order. Reports carrying the no-signal marker are dropped. A terminal
// failure on any chunk fails the whole stage. Zero surviving reports is a
// valid outcome, not an error.
func (s *ScoutService) Analyze(ctx context.Context, chunks []string) ([]domain.ScoutReport, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	findings := make([]string, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := retry.Do(gctx, s.policy, func() (string, error) {
				return s.gen.Generate(gctx, TierScout, prompts.ScoutSystemPrompt, prompts.ScoutUserPrompt(i, chunk))
			})
			if err != nil {
				return fmt.Errorf("scout chunk %d: %w", i, err)
			}
			findings[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Filtering is order-preserving over the settled results.
	reports := make([]domain.ScoutReport, 0, len(chunks))
	for i, f := range findings {
		r := domain.ScoutReport{ChunkIndex: i, ChunkText: chunks[i], Findings: f}
		if r.HasSignal() {
			reports = append(reports, r)
		}
	}

	logger.With(logger.Fields{
		logger.FieldChunks: len(chunks),
		logger.FieldCount:  len(reports),
	}).Debug(ctx, "Scout stage settled")

	return reports, nil
}
