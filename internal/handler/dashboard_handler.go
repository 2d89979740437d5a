package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

type dashboardService interface {
	Finance(filter dto.FinanceFilter) (dto.FinanceSummaryResponse, error)
	Yearly(year int) dto.YearlyFinanceResponse
	Delinquents() dto.DelinquentsResponse
	Agenda(filter dto.AgendaFilter) dto.AgendaResponse
}

// DashboardHandler wires the finance and occupancy views to HTTP.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Finance godoc
// @Summary Finance summary
// @Tags Dashboard
// @Produce json
// @Param period query string false "CURRENT, PREVIOUS, CUSTOM or NONE"
// @Param start query string false "Custom start (YYYY-MM-DD)"
// @Param end query string false "Custom end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/finance [get]
func (h *DashboardHandler) Finance(c *gin.Context) {
	summary, err := h.service.Finance(financeFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, summary)
}

func financeFilter(c *gin.Context) dto.FinanceFilter {
	return dto.FinanceFilter{
		Period: strings.ToUpper(strings.TrimSpace(c.Query("period"))),
		Start:  strings.TrimSpace(c.Query("start")),
		End:    strings.TrimSpace(c.Query("end")),
	}
}

// Yearly godoc
// @Summary Monthly income and expenses of a year
// @Tags Dashboard
// @Produce json
// @Param year query int false "Year, defaults to the simulated one"
// @Success 200 {object} response.Envelope
// @Router /dashboard/yearly [get]
func (h *DashboardHandler) Yearly(c *gin.Context) {
	year, err := optionalInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	y := 0
	if year != nil {
		y = *year
	}
	response.OK(c, h.service.Yearly(y))
}

// Delinquents godoc
// @Summary Delinquent students
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/delinquents [get]
func (h *DashboardHandler) Delinquents(c *gin.Context) {
	response.OK(c, h.service.Delinquents())
}

// Agenda godoc
// @Summary Weekly occupancy grid
// @Tags Dashboard
// @Produce json
// @Param day query string false "Weekday (Lun..Vie)"
// @Param shift query string false "MORNING, AFTERNOON or NIGHT"
// @Param date query string false "Attendance date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/agenda [get]
func (h *DashboardHandler) Agenda(c *gin.Context) {
	filter := dto.AgendaFilter{
		Day:   strings.TrimSpace(c.Query("day")),
		Shift: strings.ToUpper(strings.TrimSpace(c.Query("shift"))),
		Date:  strings.TrimSpace(c.Query("date")),
	}
	if filter.Day != "" && !models.Weekday(filter.Day).Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown day "+filter.Day))
		return
	}
	switch filter.Shift {
	case "", dto.ShiftMorning, dto.ShiftAfternoon, dto.ShiftNight:
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown shift "+filter.Shift))
		return
	}
	response.OK(c, h.service.Agenda(filter))
}
