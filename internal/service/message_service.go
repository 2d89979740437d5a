package service

import (
	"net/url"
	"strings"
	"time"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
)

const whatsappBaseURL = "https://wa.me/"

// MessageService renders WhatsApp reminders from the configured templates.
type MessageService struct {
	state stateReader
}

// NewMessageService constructs the message service.
func NewMessageService(state stateReader) *MessageService {
	return &MessageService{state: state}
}

// RenderTemplate replaces {studentName}, {gymName} and {time} placeholders.
func RenderTemplate(template, studentName, gymName, clock string) string {
	return strings.NewReplacer(
		"{studentName}", studentName,
		"{gymName}", gymName,
		"{time}", clock,
	).Replace(template)
}

// WhatsAppLink builds a click-to-chat link with the message prefilled.
func WhatsAppLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	text := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return whatsappBaseURL + digits + "?text=" + text
}

// DebtReminder renders the debt template for a student.
func (s *MessageService) DebtReminder(studentID string) (dto.MessageResponse, error) {
	snap := s.state.Snapshot()
	student, idx := snap.FindStudent(studentID)
	if idx < 0 {
		return dto.MessageResponse{}, studentNotFound(studentID)
	}
	msg := RenderTemplate(snap.Settings.WhatsappTemplateDebt, student.Name, snap.Settings.GymName, "")
	return dto.MessageResponse{StudentID: student.ID, Phone: student.Phone, Message: msg, Link: WhatsAppLink(student.Phone, msg)}, nil
}

// AgendaConfirmation renders the agenda template. Without an explicit time
// it uses the student's slot on the simulated weekday, then the first slot.
func (s *MessageService) AgendaConfirmation(studentID, clock string) (dto.MessageResponse, error) {
	if clock != "" && !ValidClock(clock) {
		return dto.MessageResponse{}, validationError("time must use HH:mm")
	}
	snap := s.state.Snapshot()
	student, idx := snap.FindStudent(studentID)
	if idx < 0 {
		return dto.MessageResponse{}, studentNotFound(studentID)
	}
	if clock == "" {
		clock = defaultSessionTime(student, s.state.Clock().Simulated(snap.Settings))
	}
	msg := RenderTemplate(snap.Settings.WhatsappTemplateAgenda, student.Name, snap.Settings.GymName, clock)
	return dto.MessageResponse{StudentID: student.ID, Phone: student.Phone, Message: msg, Link: WhatsAppLink(student.Phone, msg)}, nil
}

func defaultSessionTime(student models.Student, now time.Time) string {
	today := WeekdayOf(now)
	for _, slot := range student.Schedule {
		if slot.Day == today {
			return slot.StartTime
		}
	}
	if len(student.Schedule) > 0 {
		return student.Schedule[0].StartTime
	}
	return ""
}

// WeekdayOf maps a date to its bookable weekday, or "" on weekends.
func WeekdayOf(t time.Time) models.Weekday {
	switch t.Weekday() {
	case time.Monday:
		return models.Monday
	case time.Tuesday:
		return models.Tuesday
	case time.Wednesday:
		return models.Wednesday
	case time.Thursday:
		return models.Thursday
	case time.Friday:
		return models.Friday
	}
	return ""
}
