package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tobbe/lexalpha/internal/domain"
)

// TestMailerDisabledIsNoop verifies a disabled config never touches the wire
func TestMailerDisabledIsNoop(t *testing.T) {
	svc := NewMailerService(&MailerConfig{Enabled: false})
	if svc.IsEnabled() {
		t.Fatal("Disabled config should report disabled")
	}
	if err := svc.SendVerdictAlert(context.Background(), &domain.Legislation{}, &domain.Verdict{}); err != nil {
		t.Errorf("Disabled mailer should no-op, got %v", err)
	}
}

// TestSendVerdictAlert verifies the outgoing payload
func TestSendVerdictAlert(t *testing.T) {
	var got mailRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" {
			t.Errorf("Path mismatch: %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization mismatch: %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Bad request body: %v", err)
		}
		fmt.Fprint(w, `{"id": "email-1"}`)
	}))
	defer srv.Close()

	svc := NewMailerService(&MailerConfig{
		Enabled:   true,
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		From:      "alerts@example.org",
		Recipient: "desk@example.org",
	})

	leg := &domain.Legislation{ID: "leg-1", SourceURL: "https://example.org/eli/1"}
	v := &domain.Verdict{
		LawTitle:          "Hydrogen Subsidies Act",
		Summary:           "Subsidies for electrolyzer makers.",
		HiddenOpportunity: "Second-order demand for PEM membranes.",
		ConfidenceScore:   72,
		TimeHorizonMonths: 18,
	}

	if err := svc.SendVerdictAlert(context.Background(), leg, v); err != nil {
		t.Fatalf("SendVerdictAlert returned error: %v", err)
	}

	if got.From != "alerts@example.org" {
		t.Errorf("From mismatch: %q", got.From)
	}
	if len(got.To) != 1 || got.To[0] != "desk@example.org" {
		t.Errorf("To mismatch: %v", got.To)
	}
	if !strings.Contains(got.Subject, "Hydrogen Subsidies Act") || !strings.Contains(got.Subject, "72") {
		t.Errorf("Subject mismatch: %q", got.Subject)
	}
	if !strings.Contains(got.HTML, "Second-order demand") {
		t.Error("HTML body missing the hidden opportunity")
	}
	if !strings.Contains(got.HTML, leg.SourceURL) {
		t.Error("HTML body missing the source link")
	}
}

// TestSendVerdictAlertAPIError verifies non-2xx responses surface as errors
func TestSendVerdictAlertAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "invalid key"}`)
	}))
	defer srv.Close()

	svc := NewMailerService(&MailerConfig{
		Enabled:   true,
		APIKey:    "bad-key",
		BaseURL:   srv.URL,
		From:      "alerts@example.org",
		Recipient: "desk@example.org",
	})

	err := svc.SendVerdictAlert(context.Background(), &domain.Legislation{}, &domain.Verdict{})
	if err == nil {
		t.Fatal("Expected error on HTTP 403")
	}
}
