package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/service"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

type reportService interface {
	FinanceReport(filter dto.FinanceFilter, format string) (service.Report, error)
	Archive(filter dto.FinanceFilter, format string) (service.ReportLink, error)
	OpenArchived(token string) (*os.File, string, error)
}

// ReportHandler exposes finance exports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Finance godoc
// @Summary Download finance movements
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf"
// @Param period query string false "CURRENT, PREVIOUS, CUSTOM or NONE"
// @Param start query string false "Custom start (YYYY-MM-DD)"
// @Param end query string false "Custom end (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /reports/finance [get]
func (h *ReportHandler) Finance(c *gin.Context) {
	report, err := h.reports.FinanceReport(financeFilter(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, report.Filename, report.ContentType, report.Body)
}

// Archive godoc
// @Summary Store a finance report behind a signed link
// @Tags Reports
// @Produce json
// @Param format query string false "csv or pdf"
// @Param period query string false "CURRENT, PREVIOUS, CUSTOM or NONE"
// @Success 201 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /reports/finance/archive [post]
func (h *ReportHandler) Archive(c *gin.Context) {
	link, err := h.reports.Archive(financeFilter(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, link)
}

// Download godoc
// @Summary Download an archived report
// @Tags Reports
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /reports/files/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	file, name, err := h.reports.OpenArchived(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read report"))
		return
	}
	headers := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filepath.Base(name)),
		"Cache-Control":       "no-store",
	}
	c.DataFromReader(http.StatusOK, info.Size(), service.ContentTypeFor(name), file, headers)
}
