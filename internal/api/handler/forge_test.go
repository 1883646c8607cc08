package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tobbe/lexalpha/internal/config"
	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/repository"
	"github.com/tobbe/lexalpha/internal/service"
)

// TestRunBatchStoreUnavailable verifies the endpoint answers 500 when the
// batch aborts because the job store cannot be reached
func TestRunBatchStoreUnavailable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "handler_test.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	log := logger.New(&logger.Config{Level: "error", Output: io.Discard, ServiceName: "test"})
	forge := service.NewForgeService(
		repository.NewLegislationRepository(db),
		repository.NewAnalysisRepository(db),
		nil, nil, nil, nil, nil,
		log,
		&service.ForgeConfig{Budget: time.Minute},
	)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("DB handle: %v", err)
	}
	sqlDB.Close()

	r := gin.New()
	r.POST("/api/v1/forge/run", NewForgeHandler(forge, nil).RunBatch)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/forge/run", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Status mismatch: got %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
