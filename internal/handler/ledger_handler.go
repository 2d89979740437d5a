package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

type ledgerService interface {
	ListExpenses() []models.Expense
	AddExpense(ctx context.Context, req dto.ExpenseRequest) (models.Expense, error)
	UpdateExpense(ctx context.Context, id string, req dto.ExpenseRequest) (models.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListGuests(date string) []models.GuestRegistration
	AddGuest(ctx context.Context, req dto.GuestRequest) (models.GuestRegistration, error)
	DeleteGuest(ctx context.Context, id string) error
	ListAttendance(date, studentID string) []models.Attendance
	ToggleAttendance(ctx context.Context, req dto.AttendanceToggleRequest) (dto.AttendanceToggleResponse, error)
}

// LedgerHandler exposes expenses, guest visits and attendance.
type LedgerHandler struct {
	service ledgerService
}

// NewLedgerHandler constructs the handler.
func NewLedgerHandler(service ledgerService) *LedgerHandler {
	return &LedgerHandler{service: service}
}

// ListExpenses godoc
// @Summary List expenses
// @Tags Expenses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /expenses [get]
func (h *LedgerHandler) ListExpenses(c *gin.Context) {
	expenses := h.service.ListExpenses()
	response.JSON(c, http.StatusOK, expenses, map[string]interface{}{"total": len(expenses)})
}

// CreateExpense godoc
// @Summary Record an expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 201 {object} response.Envelope
// @Router /expenses [post]
func (h *LedgerHandler) CreateExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req, "invalid expense payload") {
		return
	}
	expense, err := h.service.AddExpense(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, expense)
}

// UpdateExpense godoc
// @Summary Replace an expense
// @Tags Expenses
// @Accept json
// @Produce json
// @Param id path string true "Expense ID"
// @Param payload body dto.ExpenseRequest true "Expense payload"
// @Success 200 {object} response.Envelope
// @Router /expenses/{id} [put]
func (h *LedgerHandler) UpdateExpense(c *gin.Context) {
	var req dto.ExpenseRequest
	if !bindJSON(c, &req, "invalid expense payload") {
		return
	}
	expense, err := h.service.UpdateExpense(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, expense)
}

// DeleteExpense godoc
// @Summary Delete an expense
// @Tags Expenses
// @Param id path string true "Expense ID"
// @Success 204
// @Router /expenses/{id} [delete]
func (h *LedgerHandler) DeleteExpense(c *gin.Context) {
	if err := h.service.DeleteExpense(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListGuests godoc
// @Summary List guest visits
// @Tags Guests
// @Produce json
// @Param date query string false "Visit date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /guests [get]
func (h *LedgerHandler) ListGuests(c *gin.Context) {
	guests := h.service.ListGuests(strings.TrimSpace(c.Query("date")))
	response.JSON(c, http.StatusOK, guests, map[string]interface{}{"total": len(guests)})
}

// CreateGuest godoc
// @Summary Register a guest visit
// @Tags Guests
// @Accept json
// @Produce json
// @Param payload body dto.GuestRequest true "Guest payload"
// @Success 201 {object} response.Envelope
// @Router /guests [post]
func (h *LedgerHandler) CreateGuest(c *gin.Context) {
	var req dto.GuestRequest
	if !bindJSON(c, &req, "invalid guest payload") {
		return
	}
	guest, err := h.service.AddGuest(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, guest)
}

// DeleteGuest godoc
// @Summary Delete a guest visit
// @Tags Guests
// @Param id path string true "Guest ID"
// @Success 204
// @Router /guests/{id} [delete]
func (h *LedgerHandler) DeleteGuest(c *gin.Context) {
	if err := h.service.DeleteGuest(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListAttendance godoc
// @Summary List attendance marks
// @Tags Attendance
// @Produce json
// @Param date query string false "Session date (YYYY-MM-DD)"
// @Param studentId query string false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *LedgerHandler) ListAttendance(c *gin.Context) {
	marks := h.service.ListAttendance(strings.TrimSpace(c.Query("date")), strings.TrimSpace(c.Query("studentId")))
	response.JSON(c, http.StatusOK, marks, map[string]interface{}{"total": len(marks)})
}

// ToggleAttendance godoc
// @Summary Toggle attendance for a session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.AttendanceToggleRequest true "Session"
// @Success 200 {object} response.Envelope
// @Router /attendance/toggle [post]
func (h *LedgerHandler) ToggleAttendance(c *gin.Context) {
	var req dto.AttendanceToggleRequest
	if !bindJSON(c, &req, "invalid attendance payload") {
		return
	}
	result, err := h.service.ToggleAttendance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}
