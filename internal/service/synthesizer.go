package service

import (
	"context"

	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/prompts"
	"github.com/tobbe/lexalpha/internal/retry"
)

// SynthesizerService runs the reduce stage: one strong-model call over the
// aggregated scout reports, producing the verdict text.
type SynthesizerService struct {
	gen    TextGenerator
	policy retry.Policy
	logger *logger.Logger
}

// NewSynthesizerService creates a new synthesizer service.
func NewSynthesizerService(gen TextGenerator, policy retry.Policy, log *logger.Logger) *SynthesizerService {
	return &SynthesizerService{gen: gen, policy: policy, logger: log}
}

// Synthesize produces the raw verdict text for one legislation. With zero
// surviving reports it short-circuits: the canonical no-signal verdict is
// returned directly, raw stays empty and the strong model is never called.
func (s *SynthesizerService) Synthesize(ctx context.Context, lawTitle string, reports []domain.ScoutReport) (verdict *domain.Verdict, raw string, err error) {
	if len(reports) == 0 {
		logger.CtxInfo(ctx, "No scout reports survived, skipping synthesis")
		v := domain.NoSignalVerdict(lawTitle)
		return &v, "", nil
	}

	texts := make([]string, len(reports))
	for i, r := range reports {
		texts[i] = r.Findings
	}

	raw, err = retry.Do(ctx, s.policy, func() (string, error) {
		return s.gen.Generate(ctx, TierSynth, prompts.SynthesisSystemPrompt, prompts.SynthesisUserPrompt(lawTitle, texts))
	})
	if err != nil {
		return nil, "", err
	}

	return nil, raw, nil
}
