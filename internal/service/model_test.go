package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newModelTest(baseURL string) *ModelService {
	return NewModelService(&ModelConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		ScoutModel: "fast-model",
		SynthModel: "strong-model",
	})
}

// TestGenerateTierRouting verifies each tier reaches its configured model
func TestGenerateTierRouting(t *testing.T) {
	var gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		gotModel = req.Model
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices": [{"message": {"content": "answer"}}]}`)
	}))
	defer srv.Close()

	svc := newModelTest(srv.URL)

	out, err := svc.Generate(context.Background(), TierScout, "sys", "user")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if out != "answer" {
		t.Errorf("Content mismatch: %q", out)
	}
	if gotModel != "fast-model" {
		t.Errorf("Scout tier routed to %q", gotModel)
	}

	if _, err := svc.Generate(context.Background(), TierSynth, "sys", "user"); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if gotModel != "strong-model" {
		t.Errorf("Synth tier routed to %q", gotModel)
	}
}

// TestGenerateRetryClassification verifies status codes map to the right
// retryability
func TestGenerateRetryClassification(t *testing.T) {
	testCases := []struct {
		status    int
		retryable bool
	}{
		{status: http.StatusTooManyRequests, retryable: true},
		{status: http.StatusInternalServerError, retryable: true},
		{status: http.StatusBadRequest, retryable: false},
		{status: http.StatusUnprocessableEntity, retryable: false},
		{status: http.StatusUnauthorized, retryable: false},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("HTTP %d", tc.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, `{"error": {"message": "upstream says no"}}`)
			}))
			defer srv.Close()

			svc := newModelTest(srv.URL)
			_, err := svc.Generate(context.Background(), TierScout, "sys", "user")
			if err == nil {
				t.Fatal("Expected error")
			}

			var me *ModelError
			if !errors.As(err, &me) {
				t.Fatalf("Expected *ModelError, got %T", err)
			}
			if me.Retryable() != tc.retryable {
				t.Errorf("Retryable mismatch for %d: got %v, want %v", tc.status, me.Retryable(), tc.retryable)
			}
			if me.StatusCode != tc.status {
				t.Errorf("StatusCode mismatch: got %d, want %d", me.StatusCode, tc.status)
			}
		})
	}
}

// TestGenerateEmptyChoices verifies a well-formed but empty response is a
// retryable error
func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"choices": []}`)
	}))
	defer srv.Close()

	svc := newModelTest(srv.URL)
	_, err := svc.Generate(context.Background(), TierScout, "sys", "user")

	var me *ModelError
	if !errors.As(err, &me) {
		t.Fatalf("Expected *ModelError, got %v", err)
	}
	if !me.Retryable() {
		t.Error("Empty choices should be retryable")
	}
}
