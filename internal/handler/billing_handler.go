package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

type billingService interface {
	Now() time.Time
	ListFees(filter dto.FeeFilter) []models.Fee
	GenerateFees(ctx context.Context, req dto.GenerateFeesRequest) (dto.GenerateFeesResponse, error)
	ListPayments(studentID string) []models.Payment
	AddPayment(ctx context.Context, req dto.PaymentRequest) (models.Payment, error)
	DeletePayment(ctx context.Context, id string) error
	ExpressPayment(ctx context.Context, req dto.ExpressPaymentRequest) (dto.ExpressPaymentResponse, error)
	RatesFor(month, year int) (dto.RatesResponse, error)
	RateHistory() []models.TieredRateHistory
	SetHistoricalRates(ctx context.Context, month, year int, req dto.RatesRequest) (models.TieredRateHistory, error)
	DeleteHistoricalRates(ctx context.Context, month, year int) error
}

// BillingHandler exposes fees, payments and the tiered price table.
type BillingHandler struct {
	service billingService
}

// NewBillingHandler constructs the handler.
func NewBillingHandler(service billingService) *BillingHandler {
	return &BillingHandler{service: service}
}

// ListFees godoc
// @Summary List fees
// @Tags Billing
// @Produce json
// @Param studentId query string false "Student ID"
// @Param month query int false "Month (0-11)"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /fees [get]
func (h *BillingHandler) ListFees(c *gin.Context) {
	month, err := optionalInt(c, "month")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := optionalInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	fees := h.service.ListFees(dto.FeeFilter{StudentID: strings.TrimSpace(c.Query("studentId")), Month: month, Year: year})
	response.JSON(c, http.StatusOK, fees, map[string]interface{}{"total": len(fees)})
}

// GenerateFees godoc
// @Summary Generate monthly fees
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body dto.GenerateFeesRequest false "Target period, defaults to the simulated month"
// @Success 200 {object} response.Envelope
// @Router /fees/generate [post]
func (h *BillingHandler) GenerateFees(c *gin.Context) {
	var req dto.GenerateFeesRequest
	if c.Request.ContentLength != 0 {
		if !bindJSON(c, &req, "invalid period payload") {
			return
		}
	}
	result, err := h.service.GenerateFees(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// ListPayments godoc
// @Summary List payments
// @Tags Billing
// @Produce json
// @Param studentId query string false "Student ID"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *BillingHandler) ListPayments(c *gin.Context) {
	payments := h.service.ListPayments(strings.TrimSpace(c.Query("studentId")))
	response.JSON(c, http.StatusOK, payments, map[string]interface{}{"total": len(payments)})
}

// CreatePayment godoc
// @Summary Record a payment
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body dto.PaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *BillingHandler) CreatePayment(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindJSON(c, &req, "invalid payment payload") {
		return
	}
	payment, err := h.service.AddPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// DeletePayment godoc
// @Summary Delete a payment
// @Tags Billing
// @Param id path string true "Payment ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /payments/{id} [delete]
func (h *BillingHandler) DeletePayment(c *gin.Context) {
	if err := h.service.DeletePayment(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ExpressPayment godoc
// @Summary Pay several periods at once
// @Tags Billing
// @Accept json
// @Produce json
// @Param payload body dto.ExpressPaymentRequest true "Express payment payload"
// @Success 201 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /payments/express [post]
func (h *BillingHandler) ExpressPayment(c *gin.Context) {
	var req dto.ExpressPaymentRequest
	if !bindJSON(c, &req, "invalid express payment payload") {
		return
	}
	result, err := h.service.ExpressPayment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Rates godoc
// @Summary Price table in force for a period
// @Tags Rates
// @Produce json
// @Param month query int false "Month (0-11)"
// @Param year query int false "Year"
// @Success 200 {object} response.Envelope
// @Router /rates [get]
func (h *BillingHandler) Rates(c *gin.Context) {
	current := models.PeriodOf(h.service.Now())
	month, err := optionalInt(c, "month")
	if err != nil {
		response.Error(c, err)
		return
	}
	year, err := optionalInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return
	}
	if month != nil {
		current.Month = *month
	}
	if year != nil {
		current.Year = *year
	}
	rates, err := h.service.RatesFor(current.Month, current.Year)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rates)
}

// RateHistory godoc
// @Summary List price overrides
// @Tags Rates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /rates/history [get]
func (h *BillingHandler) RateHistory(c *gin.Context) {
	response.OK(c, h.service.RateHistory())
}

// SetRates godoc
// @Summary Set the price table of a period
// @Tags Rates
// @Accept json
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (0-11)"
// @Param payload body dto.RatesRequest true "Tier prices"
// @Success 200 {object} response.Envelope
// @Router /rates/{year}/{month} [put]
func (h *BillingHandler) SetRates(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	var req dto.RatesRequest
	if !bindJSON(c, &req, "invalid rates payload") {
		return
	}
	entry, err := h.service.SetHistoricalRates(c.Request.Context(), month, year, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// DeleteRates godoc
// @Summary Remove the price override of a period
// @Tags Rates
// @Param year path int true "Year"
// @Param month path int true "Month (0-11)"
// @Success 204
// @Router /rates/{year}/{month} [delete]
func (h *BillingHandler) DeleteRates(c *gin.Context) {
	year, month, ok := periodParams(c)
	if !ok {
		return
	}
	if err := h.service.DeleteHistoricalRates(c.Request.Context(), month, year); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func periodParams(c *gin.Context) (int, int, bool) {
	year, err := pathInt(c, "year")
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	month, err := pathInt(c, "month")
	if err != nil {
		response.Error(c, err)
		return 0, 0, false
	}
	return year, month, true
}
