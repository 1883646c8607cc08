package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/retry"
)

// testLogger returns a logger that discards everything
func testLogger() *logger.Logger {
	return logger.New(&logger.Config{Level: "error", Output: io.Discard, ServiceName: "test"})
}

// noSleepPolicy keeps the retry schedule but removes the waiting
func noSleepPolicy() retry.Policy {
	p := retry.DefaultPolicy()
	p.Sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

// fakeGenerator scripts model responses per tier. Scout responses are keyed
// on the user prompt via the respond func; synth responses come from a queue.
type fakeGenerator struct {
	mu sync.Mutex

	// respond, when set, answers every call
	respond func(tier Tier, systemPrompt, userPrompt string) (string, error)

	// synthQueue answers TierSynth calls in order when respond is nil
	synthQueue []string

	scoutCalls int
	synthCalls int
}

func (f *fakeGenerator) Generate(_ context.Context, tier Tier, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if tier == TierScout {
		f.scoutCalls++
	} else {
		f.synthCalls++
	}

	if f.respond != nil {
		return f.respond(tier, systemPrompt, userPrompt)
	}

	if tier == TierSynth && len(f.synthQueue) > 0 {
		out := f.synthQueue[0]
		f.synthQueue = f.synthQueue[1:]
		return out, nil
	}
	return domain.NoSignalMarker, nil
}

func (f *fakeGenerator) calls() (scout, synth int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.scoutCalls, f.synthCalls
}

// fakeAcquirer returns scripted acquisition results
type fakeAcquirer struct {
	docURL     string
	text       string
	archiveURL string
	resolveErr error
	extractErr error
}

func (f *fakeAcquirer) ResolveDocumentURL(context.Context, string) (string, error) {
	if f.resolveErr != nil {
		return "", f.resolveErr
	}
	return f.docURL, nil
}

func (f *fakeAcquirer) ExtractText(context.Context, string, string) (string, string, error) {
	if f.extractErr != nil {
		return "", "", f.extractErr
	}
	return f.text, f.archiveURL, nil
}

// fakeNotifier records alerts instead of sending them
type fakeNotifier struct {
	mu      sync.Mutex
	enabled bool
	sendErr error
	sent    []string
}

func (f *fakeNotifier) SendVerdictAlert(_ context.Context, l *domain.Legislation, _ *domain.Verdict) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, l.ID)
	return nil
}

func (f *fakeNotifier) IsEnabled() bool { return f.enabled }

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
