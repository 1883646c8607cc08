package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/prompts"
	"github.com/tobbe/lexalpha/internal/retry"
)

// ErrUnrecoverableOutput means the verdict text failed validation even after
// the one permitted repair attempt. The job fails; no empty-object fallback
// is persisted.
var ErrUnrecoverableOutput = errors.New("model output unrecoverable after repair")

// ErrNoJSONPayload means no JSON object could be located in the model text.
var ErrNoJSONPayload = errors.New("no JSON payload in model output")

// ExtractJSONPayload locates the JSON object inside possibly-annotated model
// text: markdown fences, a leading prose line, or trailing commentary are
// stripped. Returns ErrNoJSONPayload when no object delimiters exist.
func ExtractJSONPayload(text string) (string, error) {
	trimmed := strings.TrimSpace(text)

	// Strip a markdown fence pair if present.
	if strings.HasPrefix(trimmed, "```") {
		if idx := strings.Index(trimmed, "\n"); idx != -1 {
			trimmed = trimmed[idx+1:]
		}
		if idx := strings.LastIndex(trimmed, "```"); idx != -1 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end < start {
		return "", ErrNoJSONPayload
	}

	return trimmed[start : end+1], nil
}

// RepairService validates synthesis output against the Verdict schema and
// runs at most one model-assisted repair pass when it does not parse.
type RepairService struct {
	gen    TextGenerator
	policy retry.Policy
	logger *logger.Logger
}

// NewRepairService creates a new repair service.
func NewRepairService(gen TextGenerator, policy retry.Policy, log *logger.Logger) *RepairService {
	return &RepairService{gen: gen, policy: policy, logger: log}
}

// ParseVerdict validates raw synthesis text, invoking one repair call when
// the first parse fails. The second failure returns ErrUnrecoverableOutput.
func (s *RepairService) ParseVerdict(ctx context.Context, lawTitle, raw string) (*domain.Verdict, error) {
	v, parseErr := parseVerdictText(raw)
	if parseErr == nil {
		return v, nil
	}

	logger.CtxWarn(ctx, "Verdict parse failed, attempting repair: %v", parseErr)

	repaired, err := retry.Do(ctx, s.policy, func() (string, error) {
		return s.gen.Generate(ctx, TierSynth, prompts.RepairSystemPrompt, prompts.RepairUserPrompt(lawTitle, raw))
	})
	if err != nil {
		return nil, fmt.Errorf("repair call failed: %w", err)
	}

	v, parseErr = parseVerdictText(repaired)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnrecoverableOutput, parseErr)
	}
	return v, nil
}

// parseVerdictText applies payload extraction then schema validation.
// Fence stripping is identical for synthesis and repair output.
func parseVerdictText(raw string) (*domain.Verdict, error) {
	payload, err := ExtractJSONPayload(raw)
	if err != nil {
		return nil, err
	}

	var v domain.Verdict
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		return nil, fmt.Errorf("verdict does not match schema: %w", err)
	}
	return &v, nil
}
