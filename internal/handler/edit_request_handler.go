package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eskolar/grading-api/internal/models"
	"github.com/eskolar/grading-api/internal/service"
	appErrors "github.com/eskolar/grading-api/pkg/errors"
	"github.com/eskolar/grading-api/pkg/response"
)

type editRequestService interface {
	Create(ctx context.Context, teacherID string, req service.CreateEditRequestRequest) (*models.EditRequest, error)
	List(ctx context.Context, filter models.EditRequestFilter) ([]models.EditRequest, error)
	Approve(ctx context.Context, requestID, adminID string, req service.ReviewEditRequestRequest) (*models.EditRequest, error)
	Deny(ctx context.Context, requestID, adminID string, req service.ReviewEditRequestRequest) (*models.EditRequest, error)
	Complete(ctx context.Context, gradeID, adminID string) (*models.EditRequest, error)
}

// EditRequestHandler manages the grade edit-request workflow endpoints.
type EditRequestHandler struct {
	service editRequestService
}

// NewEditRequestHandler constructs the handler.
func NewEditRequestHandler(service editRequestService) *EditRequestHandler {
	return &EditRequestHandler{service: service}
}

// Create godoc
// @Summary File an edit request for a locked grade
// @Tags EditRequests
// @Accept json
// @Produce json
// @Param payload body service.CreateEditRequestRequest true "Edit request"
// @Success 201 {object} response.Envelope
// @Router /edit-requests [post]
func (h *EditRequestHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CreateEditRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid edit request payload"))
		return
	}

	request, err := h.service.Create(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, request, nil)
}

// List godoc
// @Summary List edit requests
// @Tags EditRequests
// @Produce json
// @Param status query string false "Status filter"
// @Param gradeId query string false "Grade filter"
// @Param teacherId query string false "Teacher filter (admins only)"
// @Success 200 {object} response.Envelope
// @Router /edit-requests [get]
func (h *EditRequestHandler) List(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter := models.EditRequestFilter{
		GradeID: strings.TrimSpace(c.Query("gradeId")),
		Status:  models.EditRequestStatus(strings.TrimSpace(c.Query("status"))),
	}
	if claims.Role == models.RoleAdmin {
		filter.TeacherID = strings.TrimSpace(c.Query("teacherId"))
	} else {
		// teachers only ever see their own requests
		filter.TeacherID = claims.UserID
	}

	requests, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// Approve godoc
// @Summary Approve a pending edit request
// @Tags EditRequests
// @Accept json
// @Produce json
// @Param id path string true "Edit request ID"
// @Param payload body service.ReviewEditRequestRequest false "Review notes"
// @Success 200 {object} response.Envelope
// @Router /edit-requests/{id}/approve [post]
func (h *EditRequestHandler) Approve(c *gin.Context) {
	h.review(c, h.service.Approve)
}

// Deny godoc
// @Summary Deny a pending edit request
// @Tags EditRequests
// @Accept json
// @Produce json
// @Param id path string true "Edit request ID"
// @Param payload body service.ReviewEditRequestRequest false "Review notes"
// @Success 200 {object} response.Envelope
// @Router /edit-requests/{id}/deny [post]
func (h *EditRequestHandler) Deny(c *gin.Context) {
	h.review(c, h.service.Deny)
}

func (h *EditRequestHandler) review(c *gin.Context, decide func(ctx context.Context, requestID, adminID string, req service.ReviewEditRequestRequest) (*models.EditRequest, error)) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.ReviewEditRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid review payload"))
			return
		}
	}

	request, err := decide(c.Request.Context(), c.Param("id"), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Complete godoc
// @Summary Close the open edit window of a grade and re-lock it
// @Tags EditRequests
// @Produce json
// @Param id path string true "Grade ID"
// @Success 200 {object} response.Envelope
// @Router /grades/{id}/edit-complete [post]
func (h *EditRequestHandler) Complete(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	request, err := h.service.Complete(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
