package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seed values for a fresh installation.
const (
	DefaultGymName        = "GymPro"
	DefaultAgendaTemplate = "Hola {studentName}, confirmamos tu turno de las {time} para hoy en {gymName}. ¡Te esperamos!"
	DefaultDebtTemplate   = "Hola {studentName}, te contactamos de {gymName} para recordarte que tenés una cuota pendiente. ¡Gracias!"
	DefaultMaxCapacity    = 10
	DefaultFeeAmount      = 21000
)

// Settings is the installation-wide singleton. SimulatedDate is the instant
// every time-dependent computation treats as "now"; zero follows the wall
// clock.
type Settings struct {
	GymName                string          `json:"gymName"`
	GymLogo                *string         `json:"gymLogo"`
	WhatsappTemplateAgenda string          `json:"whatsappTemplateAgenda"`
	WhatsappTemplateDebt   string          `json:"whatsappTemplateDebt"`
	SimulatedDate          time.Time       `json:"simulatedDate"`
	DefaultAmount          decimal.Decimal `json:"defaultAmount"`
	MaxCapacityPerShift    int             `json:"maxCapacityPerShift"`
}

// DefaultSettings returns seed settings following the wall clock.
func DefaultSettings() Settings {
	return Settings{
		GymName:                DefaultGymName,
		WhatsappTemplateAgenda: DefaultAgendaTemplate,
		WhatsappTemplateDebt:   DefaultDebtTemplate,
		DefaultAmount:          decimal.NewFromInt(DefaultFeeAmount),
		MaxCapacityPerShift:    DefaultMaxCapacity,
	}
}

// SettingsPatch is a partial settings update; nil fields are left untouched.
// ClearLogo removes the logo regardless of GymLogo.
type SettingsPatch struct {
	GymName                *string
	GymLogo                *string
	ClearLogo              bool
	WhatsappTemplateAgenda *string
	WhatsappTemplateDebt   *string
	SimulatedDate          *time.Time
	DefaultAmount          *decimal.Decimal
	MaxCapacityPerShift    *int
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return p.GymName == nil && p.GymLogo == nil && !p.ClearLogo &&
		p.WhatsappTemplateAgenda == nil && p.WhatsappTemplateDebt == nil &&
		p.SimulatedDate == nil && p.DefaultAmount == nil && p.MaxCapacityPerShift == nil
}

// Apply returns the settings with the patch applied. A zero SimulatedDate
// in the patch returns the clock to wall time.
func (s Settings) Apply(p SettingsPatch) Settings {
	out := s
	if p.GymName != nil {
		out.GymName = *p.GymName
	}
	if p.ClearLogo {
		out.GymLogo = nil
	} else if p.GymLogo != nil {
		logo := *p.GymLogo
		out.GymLogo = &logo
	}
	if p.WhatsappTemplateAgenda != nil {
		out.WhatsappTemplateAgenda = *p.WhatsappTemplateAgenda
	}
	if p.WhatsappTemplateDebt != nil {
		out.WhatsappTemplateDebt = *p.WhatsappTemplateDebt
	}
	if p.SimulatedDate != nil {
		out.SimulatedDate = *p.SimulatedDate
	}
	if p.DefaultAmount != nil {
		out.DefaultAmount = *p.DefaultAmount
	}
	if p.MaxCapacityPerShift != nil {
		out.MaxCapacityPerShift = *p.MaxCapacityPerShift
	}
	return out
}
