package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/erp-training-api/internal/models"
	"github.com/noah-isme/erp-training-api/internal/service"
	appErrors "github.com/noah-isme/erp-training-api/pkg/errors"
	"github.com/noah-isme/erp-training-api/pkg/response"
)

// NeedHandler exposes training-need endpoints.
type NeedHandler struct {
	needs *service.NeedService
}

// NewNeedHandler constructs NeedHandler.
func NewNeedHandler(needs *service.NeedService) *NeedHandler {
	return &NeedHandler{needs: needs}
}

// List godoc
// @Summary List training needs
// @Tags Needs
// @Produce json
// @Param department query string false "Filter by department"
// @Param priority query string false "Filter by priority"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /needs [get]
func (h *NeedHandler) List(c *gin.Context) {
	var filter models.NeedFilter
	filter.Department = c.Query("department")
	filter.Priority = models.NeedPriority(strings.ToUpper(c.Query("priority")))
	filter.Status = models.NeedStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	needs, pagination, err := h.needs.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, needs, pagination)
}

// Get godoc
// @Summary Get a training need
// @Tags Needs
// @Produce json
// @Param id path string true "Need ID"
// @Success 200 {object} response.Envelope
// @Router /needs/{id} [get]
func (h *NeedHandler) Get(c *gin.Context) {
	need, err := h.needs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, need, nil)
}

// Create godoc
// @Summary Identify a training need
// @Tags Needs
// @Accept json
// @Produce json
// @Param payload body service.IdentifyNeedRequest true "Need payload"
// @Success 201 {object} response.Envelope
// @Router /needs [post]
func (h *NeedHandler) Create(c *gin.Context) {
	var req service.IdentifyNeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	need, err := h.needs.Identify(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, need)
}

// UpdateStatus godoc
// @Summary Move a training need along its lifecycle
// @Tags Needs
// @Accept json
// @Produce json
// @Param id path string true "Need ID"
// @Param payload body service.UpdateNeedStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /needs/{id}/status [put]
func (h *NeedHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateNeedStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	need, err := h.needs.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, need, nil)
}
