package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/http/response"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/platform/sendgrid"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

type ReportHandler struct {
	log           *logger.Logger
	reportService services.ReportService
}

func NewReportHandler(log *logger.Logger, reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		log:           log.With("handler", "ReportHandler"),
		reportService: reportService,
	}
}

// EmailReportRequest sends one year when Year is set and the all-years digest otherwise.
type EmailReportRequest struct {
	Email        string `json:"email" binding:"required,email"`
	BaselineYear int    `json:"baseline_year" binding:"omitempty,min=1990,max=2100"`
	Year         *int   `json:"year" binding:"omitempty,min=1990,max=2100"`
}

func (h *ReportHandler) EmailReport(c *gin.Context) {
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}
	var req EmailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.BaselineYear == 0 {
		req.BaselineYear = catalog.DefaultBaselineYear
	}

	var (
		res *sendgrid.SendEmailResult
		err error
	)
	if req.Year != nil {
		res, err = h.reportService.EmailYear(c.Request.Context(), req.Email, subjectID, req.BaselineYear, *req.Year)
	} else {
		res, err = h.reportService.EmailAll(c.Request.Context(), req.Email, subjectID, req.BaselineYear)
	}
	if err != nil {
		h.log.Error("EmailReport failed", "error", err, "subject_id", subjectID, "email", req.Email)
		response.RespondAPIError(c, mapError(err, "email_report_failed"))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"sent": true, "message_id": res.MessageID})
}
