package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voxform/internal/export"
	"voxform/internal/logger"
	"voxform/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler serves completed submissions to operators.
type AdminHandler struct {
	formService service.FormService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(formService service.FormService) *AdminHandler {
	return &AdminHandler{formService: formService}
}

// ListSubmissions handles GET /api/v1/admin/submissions
// @Summary List completed submissions
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param offset query int false "Offset" default(0)
// @Param limit query int false "Limit" default(20)
// @Success 200 {object} Response{data=[]domain.Submission,meta=PagMeta} "Submissions, newest first"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Router /admin/submissions [get]
func (h *AdminHandler) ListSubmissions(c *gin.Context) {
	offset, limit := parsePagination(c)
	subs, total, err := h.formService.ListSubmissions(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, subs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// ExportCSV handles GET /api/v1/admin/submissions/export.csv
// @Summary Export submissions as CSV
// @Tags admin
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file "CSV file"
// @Router /admin/submissions/export.csv [get]
func (h *AdminHandler) ExportCSV(c *gin.Context) {
	subs, err := export.Collect(c.Request.Context(), h.formService.ListSubmissions)
	if err != nil {
		HandleError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.BuildFilename("csv", time.Now())))
	c.Status(http.StatusOK)

	// Headers are sent at this point; a write error can only be logged.
	if err := export.WriteCSV(c.Writer, subs); err != nil {
		logger.Error(c.Request.Context(), "admin.ExportCSV: write failed", "error", err)
	}
}

// ExportXLSX handles GET /api/v1/admin/submissions/export.xlsx
// @Summary Export submissions as an Excel workbook
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file "XLSX file"
// @Router /admin/submissions/export.xlsx [get]
func (h *AdminHandler) ExportXLSX(c *gin.Context) {
	subs, err := export.Collect(c.Request.Context(), h.formService.ListSubmissions)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, subs); err != nil {
		HandleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.BuildFilename("xlsx", time.Now())))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ClearCache handles POST /api/v1/admin/cache/clear
// @Summary Forget every learned extraction template
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=domain.CacheStats} "Cache statistics after clearing"
// @Failure 404 {object} ErrorResponseBody "Pattern cache disabled"
// @Router /admin/cache/clear [post]
func (h *AdminHandler) ClearCache(c *gin.Context) {
	stats, err := h.formService.ClearCache(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}
