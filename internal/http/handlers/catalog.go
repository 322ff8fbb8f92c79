package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	"github.com/yungbote/coursekeeper-backend/internal/http/response"
	"github.com/yungbote/coursekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/coursekeeper-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekeeper-backend/internal/platform/logger"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

const (
	minBaselineYear = 1990
	maxYear         = 2100
)

type CatalogHandler struct {
	log            *logger.Logger
	catalogService services.CatalogService
}

func NewCatalogHandler(log *logger.Logger, catalogService services.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		log:            log.With("handler", "CatalogHandler"),
		catalogService: catalogService,
	}
}

type YearDetailResponse struct {
	Outcome      catalog.Outcome       `json:"outcome"`
	YearData     *catalog.YearData     `json:"year_data"`
	LearningPath *catalog.LearningPath `json:"learning_path"`
}

func subjectIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_subject_id", fmt.Errorf("invalid subject id %q", c.Param("id")))
		return uuid.Nil, false
	}
	return id, true
}

func yearValue(raw string, def int, code string) (int, *apierr.Error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minBaselineYear || n > maxYear {
		return 0, apierr.New(http.StatusBadRequest, code, fmt.Errorf("invalid year %q", raw))
	}
	return n, nil
}

func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.catalogService.ListSubjects(dbctx.Context{Ctx: c.Request.Context()}, c.Query("title"))
	if err != nil {
		h.log.Error("ListSubjects failed", "error", err)
		response.RespondAPIError(c, mapError(err, "load_subjects_failed"))
		return
	}
	response.RespondOK(c, gin.H{"subjects": subjects})
}

func (h *CatalogHandler) GetTimeline(c *gin.Context) {
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}
	baseline, aerr := yearValue(c.Query("baseline"), catalog.DefaultBaselineYear, "invalid_baseline")
	if aerr != nil {
		response.RespondAPIError(c, aerr)
		return
	}

	entries, err := h.catalogService.Timeline(dbctx.Context{Ctx: c.Request.Context()}, subjectID, baseline)
	if err != nil {
		h.log.Error("GetTimeline failed", "error", err, "subject_id", subjectID)
		response.RespondAPIError(c, mapError(err, "load_timeline_failed"))
		return
	}
	response.RespondOK(c, gin.H{"baseline_year": baseline, "timeline": entries})
}

func (h *CatalogHandler) GetYear(c *gin.Context) {
	subjectID, ok := subjectIDParam(c)
	if !ok {
		return
	}
	// Any integer year is looked up; out-of-range years resolve to year_not_found.
	year, err := strconv.Atoi(strings.TrimSpace(c.Param("year")))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_year", fmt.Errorf("invalid year %q", c.Param("year")))
		return
	}
	baseline, aerr := yearValue(c.Query("baseline"), catalog.DefaultBaselineYear, "invalid_baseline")
	if aerr != nil {
		response.RespondAPIError(c, aerr)
		return
	}

	res, err := h.catalogService.Lookup(dbctx.Context{Ctx: c.Request.Context()}, subjectID, year)
	if err != nil {
		h.log.Error("GetYear failed", "error", err, "subject_id", subjectID, "year", year)
		response.RespondAPIError(c, mapError(err, "lookup_failed"))
		return
	}
	if res.Outcome == catalog.OutcomeNotFound || res.Data == nil {
		response.RespondError(c, http.StatusNotFound, "year_not_found", fmt.Errorf("no patch notes for %d", year))
		return
	}

	lp := catalog.BuildLearningPath(*res.Data, baseline)
	response.RespondOK(c, YearDetailResponse{
		Outcome:      res.Outcome,
		YearData:     res.Data,
		LearningPath: &lp,
	})
}
