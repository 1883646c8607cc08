package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/tobbe/lexalpha/internal/config"
	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/repository"
)

const feedHTML = `<html><body>
	<nav><a href="/">Home</a> <a href="/about">About</a></nav>
	<ul>
		<li><a href="/eli/oc/2026/412">Federal Act on Hydrogen Infrastructure</a></li>
		<li><a href="/eli/oc/2026/413">Ordinance on Import Tariffs</a></li>
		<li><a href="/eli/oc/2026/412/en/pdf-a/doc-en.pdf">PDF</a></li>
		<li><a href="/eli/oc/2026/412/en/xml/doc.xml">XML</a></li>
	</ul>
</body></html>`

func newSentinelTest(t *testing.T, feedURL, origin string, maxNew int) (*SentinelService, *repository.LegislationRepository) {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "sentinel_test.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	legRepo := repository.NewLegislationRepository(db)
	svc := NewSentinelService(legRepo, &SentinelConfig{
		FeedURL:   feedURL,
		Origin:    origin,
		UserAgent: "test-agent",
		MaxNew:    maxNew,
	}, testLogger())
	return svc, legRepo
}

// TestSentinelIngest verifies detail links become pending rows while
// navigation chrome and document downloads are skipped
func TestSentinelIngest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedHTML)
	}))
	defer srv.Close()

	svc, legRepo := newSentinelTest(t, srv.URL+"/eli/oc", srv.URL, 20)

	ingested, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if ingested != 2 {
		t.Fatalf("Ingested count mismatch: got %d, want 2", ingested)
	}

	pending, err := legRepo.CountByStatus(context.Background(), domain.LegislationPending)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if pending != 2 {
		t.Errorf("Pending count mismatch: got %d, want 2", pending)
	}

	items, err := legRepo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for _, l := range items {
		if l.Title == "" {
			t.Error("Discovered row missing its title")
		}
		if l.Title == "PDF" || l.Title == "XML" {
			t.Errorf("Document download enqueued as legislation: %q", l.Title)
		}
	}
}

// TestSentinelIngestNormalizesLinks verifies dotted relative hrefs are
// stored in normalized form so dedupe keys stay stable
func TestSentinelIngestNormalizesLinks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/eli/oc/2026/../2026/414">Act on Grid Fees</a>
		</body></html>`)
	}))
	defer srv.Close()

	svc, legRepo := newSentinelTest(t, srv.URL+"/eli/oc", srv.URL, 20)

	ingested, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if ingested != 1 {
		t.Fatalf("Ingested count mismatch: got %d, want 1", ingested)
	}

	items, err := legRepo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := srv.URL + "/eli/oc/2026/414"
	if items[0].SourceURL != want {
		t.Errorf("SourceURL mismatch: got %q, want %q", items[0].SourceURL, want)
	}
}

// TestSentinelIngestDedupes verifies a second pass over the same feed
// enqueues nothing
func TestSentinelIngestDedupes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedHTML)
	}))
	defer srv.Close()

	svc, legRepo := newSentinelTest(t, srv.URL+"/eli/oc", srv.URL, 20)

	if _, err := svc.Ingest(context.Background()); err != nil {
		t.Fatalf("First ingest failed: %v", err)
	}
	again, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Second ingest failed: %v", err)
	}
	if again != 0 {
		t.Errorf("Second pass should dedupe everything, enqueued %d", again)
	}

	pending, _ := legRepo.CountByStatus(context.Background(), domain.LegislationPending)
	if pending != 2 {
		t.Errorf("Pending count changed on the second pass: %d", pending)
	}
}

// TestSentinelIngestCap verifies max_new bounds one pass
func TestSentinelIngestCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, feedHTML)
	}))
	defer srv.Close()

	svc, _ := newSentinelTest(t, srv.URL+"/eli/oc", srv.URL, 1)

	ingested, err := svc.Ingest(context.Background())
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if ingested != 1 {
		t.Errorf("Cap not applied: got %d, want 1", ingested)
	}
}

// TestSentinelIngestFeedError verifies an unreachable feed is an error
func TestSentinelIngestFeedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc, _ := newSentinelTest(t, srv.URL+"/eli/oc", srv.URL, 20)

	if _, err := svc.Ingest(context.Background()); err == nil {
		t.Fatal("Expected error on HTTP 500 feed")
	}
}
