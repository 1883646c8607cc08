package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tobbe/lexalpha/internal/logger"
	"github.com/tobbe/lexalpha/internal/service"
)

// ForgeHandler exposes the batch analysis pipeline over HTTP
type ForgeHandler struct {
	forge    *service.ForgeService
	sentinel *service.SentinelService
}

// NewForgeHandler creates a new forge handler.
// Parameters:
//   - forge: batch pipeline service.
//   - sentinel: discovery service, may be nil when ingestion is disabled.
// Returns:
//   - *ForgeHandler: initialized handler.
func NewForgeHandler(forge *service.ForgeService, sentinel *service.SentinelService) *ForgeHandler {
	return &ForgeHandler{
		forge:    forge,
		sentinel: sentinel,
	}
}

type runBatchResponse struct {
	Ingested int `json:"ingested"`
	*service.BatchStats
}

// RunBatch triggers a synchronous batch run and returns its statistics,
// preceded by a discovery pass when the sentinel is enabled. Per-job
// failures are recorded inside the stats; the endpoint answers 500 only
// when the batch aborted because the job store was unreachable.
func (h *ForgeHandler) RunBatch(c *gin.Context) {
	ctx := c.Request.Context()
	logger.CtxInfo(ctx, "Batch run triggered via API")

	ingested := 0
	if h.sentinel != nil {
		n, err := h.sentinel.Ingest(ctx)
		if err != nil {
			// discovery is best-effort here; the queue may still hold work
			logger.CtxWarn(ctx, "Sentinel pass failed before batch: %v", err)
		} else {
			ingested = n
		}
	}

	stats, err := h.forge.RunBatch(ctx)
	if err != nil {
		logger.CtxError(ctx, "Batch aborted on store failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "job store unavailable",
		})
		return
	}
	c.JSON(http.StatusOK, runBatchResponse{Ingested: ingested, BatchStats: stats})
}

// RunSentinel triggers a discovery pass against the configured feed
func (h *ForgeHandler) RunSentinel(c *gin.Context) {
	if h.sentinel == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "sentinel ingestion is not enabled",
		})
		return
	}

	ctx := c.Request.Context()
	ingested, err := h.sentinel.Ingest(ctx)
	if err != nil {
		logger.CtxError(ctx, "Sentinel ingestion failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "feed ingestion failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ingested": ingested,
	})
}
