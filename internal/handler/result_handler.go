package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resulta/resulta-gateway/internal/export"
	"github.com/resulta/resulta-gateway/internal/middleware"
	"github.com/resulta/resulta-gateway/internal/response"
	"github.com/resulta/resulta-gateway/internal/service"
	"github.com/resulta/resulta-gateway/internal/validator"
)

type ResultHandler struct {
	resultService *service.ResultService
}

func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// List godoc
// GET /api/v1/results
func (h *ResultHandler) List(c *gin.Context) {
	var q listQuery
	if fields := validator.BindQuery(c, &q); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	spec := buildSpec(c, q, service.ResultSchema)
	includeDeleted := c.Query("include_deleted") == "true"

	result, err := h.resultService.ListResults(c.Request.Context(),
		middleware.Token(c), middleware.UserKey(c), spec, includeDeleted)
	if err != nil {
		failUpstream(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"results": result.Items},
		pagination(spec.Page, spec.PageSize, result.Total, result.TotalPages))
}

// Grouped godoc
// GET /api/v1/results/grouped
func (h *ResultHandler) Grouped(c *gin.Context) {
	groups, err := h.resultService.GroupedSubjects(c.Request.Context(),
		middleware.Token(c), middleware.UserKey(c))
	if err != nil {
		failUpstream(c, err)
		return
	}

	data := gin.H{"levels": groups}

	// Direct navigation to one subject: the screen asks for its branch so
	// it can auto-expand there.
	if levelStr, semStr := c.Query("level"), c.Query("semester"); levelStr != "" && semStr != "" {
		level, err1 := strconv.Atoi(levelStr)
		sem, err2 := strconv.Atoi(semStr)
		if err1 != nil || err2 != nil {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
			return
		}
		if target := h.resultService.FindSemester(groups, level, sem); target != nil {
			data["target"] = target
		}
	}

	response.Success(c, http.StatusOK, data)
}

// GroupedRecords godoc
// GET /api/v1/results/grouped-records
func (h *ResultHandler) GroupedRecords(c *gin.Context) {
	includeDeleted := c.Query("include_deleted") == "true"

	groups, err := h.resultService.GroupedRecords(c.Request.Context(),
		middleware.Token(c), middleware.UserKey(c), includeDeleted)
	if err != nil {
		failUpstream(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"levels": groups})
}

// Export godoc
// GET /api/v1/results/export
func (h *ResultHandler) Export(c *gin.Context) {
	level, err1 := strconv.Atoi(c.Query("level"))
	sem, err2 := strconv.Atoi(c.Query("semester"))
	if err1 != nil || err2 != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	var contentType, ext string
	switch format {
	case service.FormatCSV:
		contentType, ext = "text/csv", "csv"
	case service.FormatXLSX:
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
	default:
		response.Fail(c, http.StatusBadRequest, response.ErrUnknownFormat)
		return
	}

	// Buffer the export so a gating failure can still produce a clean
	// JSON error response.
	var buf bytes.Buffer
	err := h.resultService.ExportSemester(c.Request.Context(),
		middleware.Token(c), middleware.UserKey(c), level, sem, format, &buf)
	switch {
	case err == nil:
		c.Header("Content-Disposition",
			fmt.Sprintf(`attachment; filename="results-level%d-semester%d.%s"`, level, sem, ext))
		c.Data(http.StatusOK, contentType, buf.Bytes())
	case errors.Is(err, export.ErrNotEligible):
		response.Fail(c, http.StatusForbidden, response.ErrExportNotEligible)
	case errors.Is(err, service.ErrSemesterNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		failUpstream(c, err)
	}
}

// Refresh godoc
// POST /api/v1/refresh
func (h *ResultHandler) Refresh(c *gin.Context) {
	h.resultService.RequestRefresh(middleware.UserKey(c))
	response.Success(c, http.StatusAccepted, gin.H{"message": "refresh scheduled"})
}
