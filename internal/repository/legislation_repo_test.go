package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tobbe/lexalpha/internal/config"
	"github.com/tobbe/lexalpha/internal/domain"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "repo_test.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	return db
}

func seed(t *testing.T, repo *LegislationRepository, title string, status domain.LegislationStatus, age time.Duration) *domain.Legislation {
	t.Helper()
	l := &domain.Legislation{
		ID:           uuid.New().String(),
		Title:        title,
		SourceURL:    "https://example.org/eli/" + uuid.New().String(),
		Status:       status,
		DiscoveredAt: time.Now().Add(-age),
	}
	if err := repo.Create(context.Background(), l); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return l
}

// TestClaimPendingOldestFirst verifies claiming order and the transition to
// processing
func TestClaimPendingOldestFirst(t *testing.T) {
	repo := NewLegislationRepository(openTestDB(t))
	ctx := context.Background()

	seed(t, repo, "Newer Act", domain.LegislationPending, time.Hour)
	oldest := seed(t, repo, "Older Act", domain.LegislationPending, 48*time.Hour)
	seed(t, repo, "Done Act", domain.LegislationCompleted, 72*time.Hour)

	claimed, err := repo.ClaimPending(ctx)
	if err != nil {
		t.Fatalf("ClaimPending failed: %v", err)
	}
	if claimed.ID != oldest.ID {
		t.Errorf("Claim order mismatch: got %q, want the oldest pending", claimed.Title)
	}
	if claimed.Status != domain.LegislationProcessing {
		t.Errorf("Claimed status mismatch: got %q, want processing", claimed.Status)
	}

	stored, err := repo.GetByID(ctx, claimed.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.LegislationProcessing {
		t.Errorf("Stored status mismatch: got %q, want processing", stored.Status)
	}
}

// TestClaimPendingDrainsQueue verifies repeated claims never return the same
// row and end with ErrNoPending
func TestClaimPendingDrainsQueue(t *testing.T) {
	repo := NewLegislationRepository(openTestDB(t))
	ctx := context.Background()

	seed(t, repo, "A", domain.LegislationPending, 3*time.Hour)
	seed(t, repo, "B", domain.LegislationPending, 2*time.Hour)
	seed(t, repo, "C", domain.LegislationPending, time.Hour)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		l, err := repo.ClaimPending(ctx)
		if err != nil {
			t.Fatalf("Claim %d failed: %v", i, err)
		}
		if seen[l.ID] {
			t.Fatalf("Row %s claimed twice", l.ID)
		}
		seen[l.ID] = true
	}

	if _, err := repo.ClaimPending(ctx); !errors.Is(err, ErrNoPending) {
		t.Fatalf("Expected ErrNoPending on a drained queue, got %v", err)
	}
}

// TestMarkFailedRecordsReason verifies the failure reason lands in the
// document field
func TestMarkFailedRecordsReason(t *testing.T) {
	repo := NewLegislationRepository(openTestDB(t))
	ctx := context.Background()

	l := seed(t, repo, "Broken Act", domain.LegislationProcessing, time.Hour)
	if err := repo.MarkFailed(ctx, l.ID, "document extraction failed: not a pdf"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	stored, err := repo.GetByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if stored.Status != domain.LegislationFailed {
		t.Errorf("Status mismatch: got %q, want failed", stored.Status)
	}
	if stored.DocumentURL == nil || *stored.DocumentURL != "document extraction failed: not a pdf" {
		t.Errorf("Reason not recorded: %v", stored.DocumentURL)
	}
}

// TestExistsBySourceURL verifies the sentinel dedup check
func TestExistsBySourceURL(t *testing.T) {
	repo := NewLegislationRepository(openTestDB(t))
	ctx := context.Background()

	l := seed(t, repo, "Known Act", domain.LegislationPending, time.Hour)

	exists, err := repo.ExistsBySourceURL(ctx, l.SourceURL)
	if err != nil {
		t.Fatalf("ExistsBySourceURL failed: %v", err)
	}
	if !exists {
		t.Error("Known source URL reported as missing")
	}

	exists, err = repo.ExistsBySourceURL(ctx, "https://example.org/eli/unknown")
	if err != nil {
		t.Fatalf("ExistsBySourceURL failed: %v", err)
	}
	if exists {
		t.Error("Unknown source URL reported as present")
	}
}

// TestCountByStatus verifies the queue gauges
func TestCountByStatus(t *testing.T) {
	repo := NewLegislationRepository(openTestDB(t))
	ctx := context.Background()

	seed(t, repo, "P1", domain.LegislationPending, 3*time.Hour)
	seed(t, repo, "P2", domain.LegislationPending, 2*time.Hour)
	seed(t, repo, "F1", domain.LegislationFailed, time.Hour)

	pending, err := repo.CountByStatus(ctx, domain.LegislationPending)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if pending != 2 {
		t.Errorf("Pending count mismatch: got %d, want 2", pending)
	}

	completed, err := repo.CountByStatus(ctx, domain.LegislationCompleted)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if completed != 0 {
		t.Errorf("Completed count mismatch: got %d, want 0", completed)
	}
}
