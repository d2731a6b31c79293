package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eskolar/grading-api/internal/models"
	appErrors "github.com/eskolar/grading-api/pkg/errors"
	"github.com/eskolar/grading-api/pkg/response"
)

type periodService interface {
	IsFinalsPeriodActive(ctx context.Context, academicYear, semester string) models.PeriodCheck
}

// PeriodHandler exposes grading-period checks.
type PeriodHandler struct {
	periods periodService
}

// NewPeriodHandler constructs the handler.
func NewPeriodHandler(periods periodService) *PeriodHandler {
	return &PeriodHandler{periods: periods}
}

// FinalsStatus godoc
// @Summary Report whether the finals grading window is open
// @Tags GradingPeriods
// @Produce json
// @Param academicYear query string true "Academic year"
// @Param semester query string true "Semester"
// @Success 200 {object} response.Envelope
// @Router /grading-periods/finals [get]
func (h *PeriodHandler) FinalsStatus(c *gin.Context) {
	academicYear := strings.TrimSpace(c.Query("academicYear"))
	semester := strings.TrimSpace(c.Query("semester"))
	if academicYear == "" || semester == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYear and semester are required"))
		return
	}

	check := h.periods.IsFinalsPeriodActive(c.Request.Context(), academicYear, semester)
	response.JSON(c, http.StatusOK, check, nil)
}
