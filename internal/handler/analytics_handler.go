package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-training-api/internal/middleware"
	"github.com/noah-isme/erp-training-api/internal/service"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
	"github.com/noah-isme/erp-training-api/pkg/response"
)

// AnalyticsHandler exposes the read-only analytics endpoints.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func cachedMeta(c *gin.Context, cacheHit bool, start time.Time) map[string]interface{} {
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	return meta
}

// NeedAnalysis godoc
// @Summary Training need analysis breakdowns
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/needs [get]
func (h *AnalyticsHandler) NeedAnalysis(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.analytics.NeedAnalysis(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, cachedMeta(c, cacheHit, start))
}

// Effectiveness godoc
// @Summary Program effectiveness summary
// @Tags Analytics
// @Produce json
// @Param programId path string true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/effectiveness/{programId} [get]
func (h *AnalyticsHandler) Effectiveness(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.analytics.Effectiveness(c.Request.Context(), c.Param("programId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, cachedMeta(c, cacheHit, start))
}

// BudgetUtilization godoc
// @Summary Department training budget records
// @Tags Analytics
// @Produce json
// @Param department query string false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /analytics/budget [get]
func (h *AnalyticsHandler) BudgetUtilization(c *gin.Context) {
	budgets, err := h.analytics.BudgetUtilization(c.Request.Context(), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, budgets, nil)
}

// EmployeeHistory godoc
// @Summary An employee's full training history
// @Tags Analytics
// @Produce json
// @Param employeeId path string true "Employee ID"
// @Success 200 {object} response.Envelope
// @Router /analytics/history/{employeeId} [get]
func (h *AnalyticsHandler) EmployeeHistory(c *gin.Context) {
	history, err := h.analytics.EmployeeHistory(c.Request.Context(), c.Param("employeeId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, nil)
}

// Upcoming godoc
// @Summary Planned schedules starting today or later
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/upcoming [get]
func (h *AnalyticsHandler) Upcoming(c *gin.Context) {
	entries, err := h.analytics.Upcoming(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Calendar godoc
// @Summary Schedules starting within a month
// @Tags Analytics
// @Produce json
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /analytics/calendar [get]
func (h *AnalyticsHandler) Calendar(c *gin.Context) {
	month, err := time.Parse("2006-01", c.Query("month"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be YYYY-MM"))
		return
	}
	entries, err := h.analytics.Calendar(c.Request.Context(), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Summary godoc
// @Summary Organisation-wide training summary
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, cachedMeta(c, cacheHit, start))
}

// SkillMatrix godoc
// @Summary Per-department skill matrix
// @Tags Analytics
// @Produce json
// @Param department path string true "Department"
// @Success 200 {object} response.Envelope
// @Router /analytics/skill-matrix/{department} [get]
func (h *AnalyticsHandler) SkillMatrix(c *gin.Context) {
	start := time.Now()
	result, cacheHit, err := h.analytics.SkillMatrix(c.Request.Context(), c.Param("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil, cachedMeta(c, cacheHit, start))
}

// SystemMetrics godoc
// @Summary Instrumentation snapshot
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /analytics/system [get]
func (h *AnalyticsHandler) SystemMetrics(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.analytics.SystemMetrics(), nil)
}
