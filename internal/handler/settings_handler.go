package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

type settingsService interface {
	Snapshot() models.Snapshot
	Settings() models.Settings
	UpdateGymInfo(ctx context.Context, req dto.GymInfoRequest) (models.Settings, error)
	UpdateMessageTemplates(ctx context.Context, req dto.TemplatesRequest) (models.Settings, error)
	UpdateMaxCapacity(ctx context.Context, req dto.CapacityRequest) (models.Settings, error)
	SetDefaultAmount(ctx context.Context, req dto.DefaultAmountRequest) (models.Settings, error)
	ClockInfo() dto.ClockResponse
	SetSimulatedDate(ctx context.Context, req dto.ClockRequest) (dto.ClockResponse, error)
	ShiftSimulatedDate(ctx context.Context, req dto.ShiftClockRequest) (dto.ClockResponse, error)
	SetSimulatedDay(ctx context.Context, req dto.ClockDayRequest) (dto.ClockResponse, error)
	ResetClock(ctx context.Context) (dto.ClockResponse, error)
	ResetData(ctx context.Context) models.Snapshot
}

// SettingsHandler exposes installation settings, the simulated clock and
// whole-state operations.
type SettingsHandler struct {
	service settingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(service settingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// State godoc
// @Summary Full gym state
// @Tags State
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /state [get]
func (h *SettingsHandler) State(c *gin.Context) {
	response.OK(c, h.service.Snapshot())
}

// Reset godoc
// @Summary Restore demo data
// @Tags State
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reset [post]
func (h *SettingsHandler) Reset(c *gin.Context) {
	response.OK(c, h.service.ResetData(c.Request.Context()))
}

// Get godoc
// @Summary Installation settings
// @Tags Settings
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	response.OK(c, h.service.Settings())
}

// UpdateGym godoc
// @Summary Update gym name and logo
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.GymInfoRequest true "Gym info"
// @Success 200 {object} response.Envelope
// @Router /settings/gym [put]
func (h *SettingsHandler) UpdateGym(c *gin.Context) {
	var req dto.GymInfoRequest
	if !bindJSON(c, &req, "invalid gym payload") {
		return
	}
	h.respondSettings(c, func(ctx context.Context) (models.Settings, error) {
		return h.service.UpdateGymInfo(ctx, req)
	})
}

// UpdateTemplates godoc
// @Summary Update WhatsApp templates
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.TemplatesRequest true "Templates"
// @Success 200 {object} response.Envelope
// @Router /settings/templates [put]
func (h *SettingsHandler) UpdateTemplates(c *gin.Context) {
	var req dto.TemplatesRequest
	if !bindJSON(c, &req, "invalid templates payload") {
		return
	}
	h.respondSettings(c, func(ctx context.Context) (models.Settings, error) {
		return h.service.UpdateMessageTemplates(ctx, req)
	})
}

// UpdateCapacity godoc
// @Summary Update per-shift capacity
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.CapacityRequest true "Capacity"
// @Success 200 {object} response.Envelope
// @Router /settings/capacity [put]
func (h *SettingsHandler) UpdateCapacity(c *gin.Context) {
	var req dto.CapacityRequest
	if !bindJSON(c, &req, "invalid capacity payload") {
		return
	}
	h.respondSettings(c, func(ctx context.Context) (models.Settings, error) {
		return h.service.UpdateMaxCapacity(ctx, req)
	})
}

// UpdateDefaultAmount godoc
// @Summary Update the reference monthly amount
// @Tags Settings
// @Accept json
// @Produce json
// @Param payload body dto.DefaultAmountRequest true "Amount"
// @Success 200 {object} response.Envelope
// @Router /settings/default-amount [put]
func (h *SettingsHandler) UpdateDefaultAmount(c *gin.Context) {
	var req dto.DefaultAmountRequest
	if !bindJSON(c, &req, "invalid amount payload") {
		return
	}
	h.respondSettings(c, func(ctx context.Context) (models.Settings, error) {
		return h.service.SetDefaultAmount(ctx, req)
	})
}

func (h *SettingsHandler) respondSettings(c *gin.Context, fn func(ctx context.Context) (models.Settings, error)) {
	settings, err := fn(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, settings)
}

// Clock godoc
// @Summary Simulated clock
// @Tags Clock
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clock [get]
func (h *SettingsHandler) Clock(c *gin.Context) {
	response.OK(c, h.service.ClockInfo())
}

// SetClock godoc
// @Summary Pin the simulated date
// @Tags Clock
// @Accept json
// @Produce json
// @Param payload body dto.ClockRequest true "Simulated instant"
// @Success 200 {object} response.Envelope
// @Router /clock [put]
func (h *SettingsHandler) SetClock(c *gin.Context) {
	var req dto.ClockRequest
	if !bindJSON(c, &req, "invalid clock payload") {
		return
	}
	h.respondClock(c, func(ctx context.Context) (dto.ClockResponse, error) {
		return h.service.SetSimulatedDate(ctx, req)
	})
}

// ShiftClock godoc
// @Summary Move the simulated date by days
// @Tags Clock
// @Accept json
// @Produce json
// @Param payload body dto.ShiftClockRequest true "Days"
// @Success 200 {object} response.Envelope
// @Router /clock/shift [post]
func (h *SettingsHandler) ShiftClock(c *gin.Context) {
	var req dto.ShiftClockRequest
	if !bindJSON(c, &req, "invalid shift payload") {
		return
	}
	h.respondClock(c, func(ctx context.Context) (dto.ClockResponse, error) {
		return h.service.ShiftSimulatedDate(ctx, req)
	})
}

// SetClockDay godoc
// @Summary Jump to a day of the simulated month
// @Tags Clock
// @Accept json
// @Produce json
// @Param payload body dto.ClockDayRequest true "Day of month"
// @Success 200 {object} response.Envelope
// @Router /clock/day [post]
func (h *SettingsHandler) SetClockDay(c *gin.Context) {
	var req dto.ClockDayRequest
	if !bindJSON(c, &req, "invalid day payload") {
		return
	}
	h.respondClock(c, func(ctx context.Context) (dto.ClockResponse, error) {
		return h.service.SetSimulatedDay(ctx, req)
	})
}

// ResetClock godoc
// @Summary Return the simulated date to now
// @Tags Clock
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /clock/reset [post]
func (h *SettingsHandler) ResetClock(c *gin.Context) {
	h.respondClock(c, h.service.ResetClock)
}

func (h *SettingsHandler) respondClock(c *gin.Context, fn func(ctx context.Context) (dto.ClockResponse, error)) {
	clock, err := fn(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, clock)
}
