package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
)

// Settings returns the installation settings.
func (s *GymStateService) Settings() models.Settings {
	return s.Snapshot().Settings
}

func (s *GymStateService) updateSettings(ctx context.Context, patch models.SettingsPatch) (models.Settings, error) {
	snap, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		next.Settings = next.Settings.Apply(patch)
		return []WriteIntent{settingsIntent(patch)}, nil
	})
	if err != nil {
		return models.Settings{}, err
	}
	return snap.Settings, nil
}

// UpdateGymInfo sets the gym name and logo; a nil logo clears it.
func (s *GymStateService) UpdateGymInfo(ctx context.Context, req dto.GymInfoRequest) (models.Settings, error) {
	if err := s.validate(req); err != nil {
		return models.Settings{}, err
	}
	name := strings.TrimSpace(req.GymName)
	patch := models.SettingsPatch{GymName: &name}
	if req.GymLogo == nil || *req.GymLogo == "" {
		patch.ClearLogo = true
	} else {
		patch.GymLogo = req.GymLogo
	}
	return s.updateSettings(ctx, patch)
}

// UpdateMessageTemplates replaces both WhatsApp templates.
func (s *GymStateService) UpdateMessageTemplates(ctx context.Context, req dto.TemplatesRequest) (models.Settings, error) {
	if err := s.validate(req); err != nil {
		return models.Settings{}, err
	}
	return s.updateSettings(ctx, models.SettingsPatch{WhatsappTemplateAgenda: &req.Agenda, WhatsappTemplateDebt: &req.Debt})
}

// UpdateMaxCapacity sets the per-shift limit. Shifts already above the new
// limit keep their students; only new bookings are refused.
func (s *GymStateService) UpdateMaxCapacity(ctx context.Context, req dto.CapacityRequest) (models.Settings, error) {
	if err := s.validate(req); err != nil {
		return models.Settings{}, err
	}
	return s.updateSettings(ctx, models.SettingsPatch{MaxCapacityPerShift: &req.MaxCapacityPerShift})
}

// SetDefaultAmount sets the reference monthly amount.
func (s *GymStateService) SetDefaultAmount(ctx context.Context, req dto.DefaultAmountRequest) (models.Settings, error) {
	if err := s.validate(req); err != nil {
		return models.Settings{}, err
	}
	if req.DefaultAmount.IsNegative() {
		return models.Settings{}, validationError("default amount cannot be negative")
	}
	return s.updateSettings(ctx, models.SettingsPatch{DefaultAmount: &req.DefaultAmount})
}

// ClockInfo describes the simulated clock.
func (s *GymStateService) ClockInfo() dto.ClockResponse {
	return s.clockInfo(s.Settings())
}

func (s *GymStateService) clockInfo(settings models.Settings) dto.ClockResponse {
	now := s.clock.Simulated(settings)
	wall := s.clock.Wall()
	drift := now.Sub(wall)
	if drift < 0 {
		drift = -drift
	}
	return dto.ClockResponse{
		SimulatedDate: now,
		Wall:          wall,
		Date:          now.Format(DateLayout),
		Day:           now.Day(),
		Month:         int(now.Month()) - 1,
		Year:          now.Year(),
		Simulated:     drift > time.Minute,
	}
}

func (s *GymStateService) moveClock(ctx context.Context, shift func(current time.Time) (time.Time, error)) (dto.ClockResponse, error) {
	var target time.Time
	snap, _, err := s.mutate(ctx, func(next *models.Snapshot, now time.Time) ([]WriteIntent, error) {
		t, err := shift(now)
		if err != nil {
			return nil, err
		}
		target = t
		next.Settings.SimulatedDate = t
		return []WriteIntent{settingsIntent(models.SettingsPatch{SimulatedDate: &target})}, nil
	})
	if err != nil {
		return dto.ClockResponse{}, err
	}
	s.logger.Info("simulated clock moved", zap.Time("simulated_date", target))
	return s.clockInfo(snap.Settings), nil
}

// SetSimulatedDate pins the simulated instant.
func (s *GymStateService) SetSimulatedDate(ctx context.Context, req dto.ClockRequest) (dto.ClockResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.ClockResponse{}, err
	}
	if req.SimulatedDate.IsZero() {
		return dto.ClockResponse{}, validationError("simulatedDate is required")
	}
	return s.moveClock(ctx, func(time.Time) (time.Time, error) {
		return req.SimulatedDate.In(s.clock.Location()), nil
	})
}

// ShiftSimulatedDate moves the simulated date by whole days.
func (s *GymStateService) ShiftSimulatedDate(ctx context.Context, req dto.ShiftClockRequest) (dto.ClockResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.ClockResponse{}, err
	}
	return s.moveClock(ctx, func(current time.Time) (time.Time, error) {
		return ShiftDays(current, req.Days), nil
	})
}

// SetSimulatedDay moves the simulated date to another day of its month.
func (s *GymStateService) SetSimulatedDay(ctx context.Context, req dto.ClockDayRequest) (dto.ClockResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.ClockResponse{}, err
	}
	return s.moveClock(ctx, func(current time.Time) (time.Time, error) {
		return WithDay(current, req.Day)
	})
}

// ResetClock clears the simulated date so the clock follows wall time again.
func (s *GymStateService) ResetClock(ctx context.Context) (dto.ClockResponse, error) {
	return s.moveClock(ctx, func(time.Time) (time.Time, error) {
		return time.Time{}, nil
	})
}
