package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kidscholars/ksis-api/internal/middleware"
	"github.com/kidscholars/ksis-api/internal/service"
	"github.com/kidscholars/ksis-api/pkg/response"
)

// DashboardHandler serves the admin dashboard snapshot.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Dashboard statistics
// @Description Aggregated application, student, attendance and fee counters.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=dto.DashboardStats}
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	start := time.Now()
	stats, cacheHit, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, stats, nil, meta)
}

// System godoc
// @Summary System metrics snapshot
// @Description Request, cache and database instrumentation aggregates.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.SystemMetrics}
// @Router /dashboard/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.dashboard.SystemMetrics(), nil)
}
