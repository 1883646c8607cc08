package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/tobbe/lexalpha/internal/domain"
)

// TestScoutAnalyzeFiltersMarker verifies no-signal reports are dropped and
// the survivors keep chunk order
func TestScoutAnalyzeFiltersMarker(t *testing.T) {
	gen := &fakeGenerator{
		respond: func(_ Tier, _, userPrompt string) (string, error) {
			// chunks B and D carry signal, A and C do not
			switch {
			case strings.Contains(userPrompt, "chunk-b"):
				return "subsidy scheme for domestic producers", nil
			case strings.Contains(userPrompt, "chunk-d"):
				return "import tariff change", nil
			default:
				return "Nothing here. " + domain.NoSignalMarker, nil
			}
		},
	}
	svc := NewScoutService(gen, noSleepPolicy(), 3, testLogger())

	reports, err := svc.Analyze(context.Background(), []string{"chunk-a", "chunk-b", "chunk-c", "chunk-d"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(reports) != 2 {
		t.Fatalf("Report count mismatch: got %d, want 2", len(reports))
	}
	if reports[0].ChunkIndex != 1 || reports[1].ChunkIndex != 3 {
		t.Errorf("Order not preserved: got indexes %d, %d", reports[0].ChunkIndex, reports[1].ChunkIndex)
	}
	if reports[0].Findings != "subsidy scheme for domestic producers" {
		t.Errorf("Findings mismatch: %q", reports[0].Findings)
	}

	scout, _ := gen.calls()
	if scout != 4 {
		t.Errorf("Every chunk should be screened once: got %d calls", scout)
	}
}

// TestScoutAnalyzeAllFiltered verifies zero survivors is a valid outcome
func TestScoutAnalyzeAllFiltered(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewScoutService(gen, noSleepPolicy(), 2, testLogger())

	reports, err := svc.Analyze(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("Expected zero reports, got %d", len(reports))
	}
}

// TestScoutAnalyzeEmptyInput verifies an empty chunk set short-circuits
func TestScoutAnalyzeEmptyInput(t *testing.T) {
	gen := &fakeGenerator{}
	svc := NewScoutService(gen, noSleepPolicy(), 2, testLogger())

	reports, err := svc.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if reports != nil {
		t.Errorf("Expected nil reports, got %d", len(reports))
	}
	if scout, _ := gen.calls(); scout != 0 {
		t.Errorf("No chunks should mean no calls, got %d", scout)
	}
}

// TestScoutAnalyzeChunkFailureFailsStage verifies a terminal chunk error
// fails the whole stage
func TestScoutAnalyzeChunkFailureFailsStage(t *testing.T) {
	gen := &fakeGenerator{
		respond: func(_ Tier, _, userPrompt string) (string, error) {
			if strings.Contains(userPrompt, "poison") {
				return "", fmt.Errorf("model rejected input")
			}
			return "finding", nil
		},
	}
	p := noSleepPolicy()
	p.Attempts = 1
	svc := NewScoutService(gen, p, 2, testLogger())

	_, err := svc.Analyze(context.Background(), []string{"fine", "poison", "fine"})
	if err == nil {
		t.Fatal("Expected stage failure when a chunk fails terminally")
	}
	if !strings.Contains(err.Error(), "scout chunk 1") {
		t.Errorf("Error should identify the failing chunk: %v", err)
	}
}
