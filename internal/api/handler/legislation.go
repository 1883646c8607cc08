package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/tobbe/lexalpha/internal/domain"
	"github.com/tobbe/lexalpha/internal/repository"
)

// LegislationHandler serves read access to discovered legislation and verdicts
type LegislationHandler struct {
	legRepo      *repository.LegislationRepository
	analysisRepo *repository.AnalysisRepository
}

// NewLegislationHandler creates a new legislation handler
func NewLegislationHandler(legRepo *repository.LegislationRepository, analysisRepo *repository.AnalysisRepository) *LegislationHandler {
	return &LegislationHandler{
		legRepo:      legRepo,
		analysisRepo: analysisRepo,
	}
}

// List returns legislation records, optionally filtered by status.
// Query parameters:
//   - status: pending|processing|completed|failed (optional)
//   - limit: page size, default 50, max 200
//   - offset: pagination offset, default 0
func (h *LegislationHandler) List(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	offset := parseIntQuery(c, "offset", 0)

	var (
		items []domain.Legislation
		err   error
	)
	if status := c.Query("status"); status != "" {
		s := domain.LegislationStatus(status)
		switch s {
		case domain.LegislationPending, domain.LegislationProcessing, domain.LegislationCompleted, domain.LegislationFailed:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status filter"})
			return
		}
		items, err = h.legRepo.ListByStatus(c.Request.Context(), s, limit, offset)
	} else {
		items, err = h.legRepo.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list legislations"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"legislations": items,
		"count":        len(items),
	})
}

// Get returns a single legislation by ID
func (h *LegislationHandler) Get(c *gin.Context) {
	id := c.Param("id")

	leg, err := h.legRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "legislation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load legislation"})
		return
	}

	c.JSON(http.StatusOK, leg)
}

// GetAnalysis returns the stored verdict for a legislation
func (h *LegislationHandler) GetAnalysis(c *gin.Context) {
	id := c.Param("id")

	res, err := h.analysisRepo.GetByLegislationID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no analysis for legislation"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load analysis"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// ListAnalyses returns stored verdicts ordered by creation time
func (h *LegislationHandler) ListAnalyses(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 50)
	if limit > 200 {
		limit = 200
	}
	offset := parseIntQuery(c, "offset", 0)

	items, err := h.analysisRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list analyses"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": items,
		"count":    len(items),
	})
}

func parseIntQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
