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

// EnrollmentHandler exposes enrollment and completion endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	completions *service.CompletionService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, completions *service.CompletionService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, completions: completions}
}

// List godoc
// @Summary List enrollments
// @Tags Enrollments
// @Produce json
// @Param scheduleId query string false "Filter by schedule"
// @Param programId query string false "Filter by program"
// @Param employeeId query string false "Filter by employee"
// @Param department query string false "Filter by department"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	var filter models.EnrollmentFilter
	filter.ScheduleID = c.Query("scheduleId")
	filter.ProgramID = c.Query("programId")
	filter.EmployeeID = c.Query("employeeId")
	filter.Department = c.Query("department")
	filter.Status = models.EnrollmentStatus(strings.ToUpper(c.Query("status")))
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	enrollments, pagination, err := h.enrollments.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments, pagination)
}

// Get godoc
// @Summary Get an enrollment with its attendance
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Create godoc
// @Summary Enroll an employee into a schedule
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollEmployeeRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Capacity exceeded or duplicate enrollment"
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req service.EnrollEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Withdraw godoc
// @Summary Withdraw an enrollment and free its seat
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/withdraw [put]
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	enrollment, err := h.enrollments.Withdraw(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Complete godoc
// @Summary Finalize an enrollment with its assessment score
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body service.CompleteTrainingRequest true "Completion payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/complete [put]
func (h *EnrollmentHandler) Complete(c *gin.Context) {
	var req service.CompleteTrainingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.EnrollmentID = c.Param("id")
	enrollment, err := h.completions.Complete(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}
