package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

type studentService interface {
	ListStudents(filter dto.StudentFilter) []dto.StudentOverview
	GetStudent(id string) (models.Student, error)
	AddStudent(ctx context.Context, req dto.StudentRequest) (models.Student, error)
	UpdateStudent(ctx context.Context, id string, req dto.StudentRequest) (models.Student, error)
	AddEvaluation(ctx context.Context, studentID string, req dto.EvaluationRequest) (models.BodyEvaluation, error)
	MoveSlot(ctx context.Context, studentID string, req dto.MoveSlotRequest) (bool, models.Student, error)
	CheckSlot(req dto.CheckSlotRequest) (dto.CheckSlotResponse, error)
	StudentDebt(studentID string) (dto.DebtResponse, error)
	StudentStatus(studentID string) (models.PaymentStatus, error)
}

type messageService interface {
	DebtReminder(studentID string) (dto.MessageResponse, error)
	AgendaConfirmation(studentID, clock string) (dto.MessageResponse, error)
}

// StudentHandler exposes roster, schedule and reminder endpoints.
type StudentHandler struct {
	students studentService
	messages messageService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(students studentService, messages messageService) *StudentHandler {
	return &StudentHandler{students: students, messages: messages}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Name, email or phone fragment"
// @Param status query string false "ACTIVE or INACTIVE"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	status := strings.ToUpper(strings.TrimSpace(c.Query("status")))
	if status != "" && status != string(models.StudentStatusActive) && status != string(models.StudentStatusInactive) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be ACTIVE or INACTIVE"))
		return
	}
	students := h.students.ListStudents(dto.StudentFilter{Search: c.Query("search"), Status: status})
	response.JSON(c, http.StatusOK, students, map[string]interface{}{"total": len(students)})
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.GetStudent(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// Create godoc
// @Summary Register student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.students.AddStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Update godoc
// @Summary Update student
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.StudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.StudentRequest
	if !bindJSON(c, &req, "invalid student payload") {
		return
	}
	student, err := h.students.UpdateStudent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, student)
}

// AddEvaluation godoc
// @Summary Add body evaluation
// @Tags Students
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.EvaluationRequest true "Evaluation payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/evaluations [post]
func (h *StudentHandler) AddEvaluation(c *gin.Context) {
	var req dto.EvaluationRequest
	if !bindJSON(c, &req, "invalid evaluation payload") {
		return
	}
	evaluation, err := h.students.AddEvaluation(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, evaluation)
}

// MoveSlot godoc
// @Summary Move student between shifts
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.MoveSlotRequest true "Move payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/schedule/move [post]
func (h *StudentHandler) MoveSlot(c *gin.Context) {
	var req dto.MoveSlotRequest
	if !bindJSON(c, &req, "invalid move payload") {
		return
	}
	id := c.Param("id")
	if req.FromDay == req.ToDay && req.FromStartTime == req.ToStartTime {
		student, err := h.students.GetStudent(id)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, dto.MoveSlotResponse{Moved: true, Student: &student})
		return
	}
	moved, student, err := h.students.MoveSlot(c.Request.Context(), id, req)
	if err != nil {
		if errors.Is(err, appErrors.ErrCapacityExceeded) {
			response.ErrorWithData(c, err, dto.MoveSlotResponse{Moved: false})
			return
		}
		response.Error(c, err)
		return
	}
	response.OK(c, dto.MoveSlotResponse{Moved: moved, Student: &student})
}

// CheckSlot godoc
// @Summary Check a candidate slot
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.CheckSlotRequest true "Draft schedule and candidate"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/schedule/check [post]
func (h *StudentHandler) CheckSlot(c *gin.Context) {
	var req dto.CheckSlotRequest
	if !bindJSON(c, &req, "invalid slot payload") {
		return
	}
	result, err := h.students.CheckSlot(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Debt godoc
// @Summary Student outstanding debt
// @Tags Billing
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/debt [get]
func (h *StudentHandler) Debt(c *gin.Context) {
	debt, err := h.students.StudentDebt(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, debt)
}

// Status godoc
// @Summary Student payment status
// @Tags Billing
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/status [get]
func (h *StudentHandler) Status(c *gin.Context) {
	id := c.Param("id")
	status, err := h.students.StudentStatus(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.StatusResponse{StudentID: id, Status: status})
}

// DebtMessage godoc
// @Summary Debt reminder message
// @Tags Messages
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/messages/debt [get]
func (h *StudentHandler) DebtMessage(c *gin.Context) {
	msg, err := h.messages.DebtReminder(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msg)
}

// AgendaMessage godoc
// @Summary Agenda confirmation message
// @Tags Messages
// @Produce json
// @Param id path string true "Student ID"
// @Param time query string false "Shift start time (HH:mm)"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/messages/agenda [get]
func (h *StudentHandler) AgendaMessage(c *gin.Context) {
	msg, err := h.messages.AgendaConfirmation(c.Param("id"), strings.TrimSpace(c.Query("time")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, msg)
}
