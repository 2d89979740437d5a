package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

// ListStudents returns roster rows with their payment status, filtered by a
// case-insensitive search over name, email and phone.
func (s *GymStateService) ListStudents(filter dto.StudentFilter) []dto.StudentOverview {
	snap := s.Snapshot()
	now := s.clock.Simulated(snap.Settings)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	status := models.StudentStatus(strings.ToUpper(filter.Status))

	out := make([]dto.StudentOverview, 0, len(snap.Students))
	for _, student := range snap.Students {
		if status != "" && student.Status != status {
			continue
		}
		if search != "" && !matchesSearch(student, search) {
			continue
		}
		debts := DebtFor(snap, student.ID)
		out = append(out, dto.StudentOverview{
			Student:       student,
			PaymentStatus: statusFromDebt(debts, now),
			TotalDebt:     TotalDebt(debts),
			IsNew:         s.clock.IsNewStudent(student.JoinDate, now),
		})
	}
	return out
}

func matchesSearch(student models.Student, search string) bool {
	return strings.Contains(strings.ToLower(student.Name), search) ||
		strings.Contains(strings.ToLower(student.Email), search) ||
		strings.Contains(student.Phone, search)
}

// GetStudent returns one student.
func (s *GymStateService) GetStudent(id string) (models.Student, error) {
	student, idx := s.Snapshot().FindStudent(id)
	if idx < 0 {
		return models.Student{}, studentNotFound(id)
	}
	return student, nil
}

// AddStudent registers an active student. The join date defaults to the
// simulated day and every requested slot must have room.
func (s *GymStateService) AddStudent(ctx context.Context, req dto.StudentRequest) (models.Student, error) {
	if err := s.validate(req); err != nil {
		return models.Student{}, err
	}
	var created models.Student
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, now time.Time) ([]WriteIntent, error) {
		schedule := s.buildSchedule(req.Schedule)
		if err := checkSchedule(next.Students, next.Settings.MaxCapacityPerShift, "", nil, schedule); err != nil {
			return nil, err
		}
		joinDate := req.JoinDate
		if joinDate == "" {
			joinDate = now.Format(DateLayout)
		}
		created = models.Student{
			ID:          s.newID(),
			Name:        strings.TrimSpace(req.Name),
			Email:       req.Email,
			Phone:       req.Phone,
			Schedule:    schedule,
			JoinDate:    joinDate,
			Status:      models.StudentStatusActive,
			BirthDate:   req.BirthDate,
			Address:     models.Address(req.Address),
			Evaluations: []models.BodyEvaluation{},
			Notes:       req.Notes,
		}
		next.Students = append(next.Students, created)
		return []WriteIntent{studentIntent(created)}, nil
	})
	if err != nil {
		return models.Student{}, err
	}
	return created, nil
}

// UpdateStudent replaces a student's profile and schedule. Slots the active
// student already holds keep their place even when the shift is full.
func (s *GymStateService) UpdateStudent(ctx context.Context, id string, req dto.StudentRequest) (models.Student, error) {
	if err := s.validate(req); err != nil {
		return models.Student{}, err
	}
	var updated models.Student
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		current, idx := next.FindStudent(id)
		if idx < 0 {
			return nil, studentNotFound(id)
		}
		schedule := s.buildSchedule(req.Schedule)
		var held []models.ScheduleSlot
		if current.IsActive() {
			held = current.Schedule
		}
		if err := checkSchedule(next.Students, next.Settings.MaxCapacityPerShift, id, held, schedule); err != nil {
			return nil, err
		}

		updated = current.Clone()
		updated.Name = strings.TrimSpace(req.Name)
		updated.Email = req.Email
		updated.Phone = req.Phone
		updated.Schedule = schedule
		updated.BirthDate = req.BirthDate
		updated.Address = models.Address(req.Address)
		updated.Notes = req.Notes
		if req.JoinDate != "" {
			updated.JoinDate = req.JoinDate
		}
		if req.Status != "" {
			updated.Status = models.StudentStatus(req.Status)
		}
		next.Students[idx] = updated
		return []WriteIntent{studentIntent(updated)}, nil
	})
	if err != nil {
		return models.Student{}, err
	}
	return updated, nil
}

func (s *GymStateService) buildSchedule(slots []dto.ScheduleSlotRequest) []models.ScheduleSlot {
	out := make([]models.ScheduleSlot, 0, len(slots))
	for _, slot := range slots {
		id := slot.ID
		if id == "" {
			id = s.newID()
		}
		end := slot.EndTime
		if end == "" {
			end = EndTimeFor(slot.StartTime)
		}
		out = append(out, models.ScheduleSlot{ID: id, Day: models.Weekday(slot.Day), StartTime: slot.StartTime, EndTime: end})
	}
	return out
}

// AddEvaluation appends a body evaluation to the student's history.
func (s *GymStateService) AddEvaluation(ctx context.Context, studentID string, req dto.EvaluationRequest) (models.BodyEvaluation, error) {
	if err := s.validate(req); err != nil {
		return models.BodyEvaluation{}, err
	}
	evaluation := models.BodyEvaluation{
		ID:     s.newID(),
		Date:   req.Date,
		Weight: req.Weight,
		Measurements: models.Measurements{
			Chest: req.Measurements.Chest,
			Waist: req.Measurements.Waist,
			Hips:  req.Measurements.Hips,
			Arms:  req.Measurements.Arms,
		},
	}
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		current, idx := next.FindStudent(studentID)
		if idx < 0 {
			return nil, studentNotFound(studentID)
		}
		current.Evaluations = append(current.Evaluations, evaluation)
		next.Students[idx] = current
		return []WriteIntent{studentIntent(current)}, nil
	})
	if err != nil {
		return models.BodyEvaluation{}, err
	}
	return evaluation, nil
}

// MoveSlot moves the student's slots at the source shift to the target
// shift. It returns false without changing anything when the target shift
// already holds as many active students as the capacity allows.
func (s *GymStateService) MoveSlot(ctx context.Context, studentID string, req dto.MoveSlotRequest) (bool, models.Student, error) {
	if err := s.validate(req); err != nil {
		return false, models.Student{}, err
	}
	fromDay, toDay := models.Weekday(req.FromDay), models.Weekday(req.ToDay)

	var moved models.Student
	_, _, err := s.mutate(ctx, func(next *models.Snapshot, _ time.Time) ([]WriteIntent, error) {
		current, idx := next.FindStudent(studentID)
		if idx < 0 {
			return nil, studentNotFound(studentID)
		}
		if !current.HasSlot(fromDay, req.FromStartTime) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student has no slot at %s %s", fromDay, req.FromStartTime))
		}
		result, ok := moveSlot(next.Students, current, next.Settings.MaxCapacityPerShift, fromDay, req.FromStartTime, toDay, req.ToStartTime)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrCapacityExceeded, fmt.Sprintf("shift %s %s is full", toDay, req.ToStartTime))
		}
		moved = result
		next.Students[idx] = moved
		return []WriteIntent{studentIntent(moved)}, nil
	})
	if err != nil {
		return false, models.Student{}, err
	}
	s.logger.Info("student slot moved",
		zap.String("student_id", studentID),
		zap.String("from", string(fromDay)+" "+req.FromStartTime),
		zap.String("to", string(toDay)+" "+req.ToStartTime),
	)
	return true, moved, nil
}

// CheckSlot tells whether candidate can be added to a draft schedule being
// edited for studentID (empty for a new student).
func (s *GymStateService) CheckSlot(req dto.CheckSlotRequest) (dto.CheckSlotResponse, error) {
	if err := s.validate(req); err != nil {
		return dto.CheckSlotResponse{}, err
	}
	snap := s.Snapshot()
	capacity := snap.Settings.MaxCapacityPerShift
	candidate := models.ScheduleSlot{Day: models.Weekday(req.Candidate.Day), StartTime: req.Candidate.StartTime}
	draft := s.buildSchedule(req.Schedule)

	if err := checkSlot(snap.Students, capacity, req.StudentID, draft, candidate); err != nil {
		return dto.CheckSlotResponse{}, err
	}
	return dto.CheckSlotResponse{
		Available: true,
		Occupancy: ShiftOccupancy(snap.Students, candidate.Day, candidate.StartTime, req.StudentID),
		Capacity:  capacity,
	}, nil
}

// StudentDebt lists the student's outstanding periods.
func (s *GymStateService) StudentDebt(studentID string) (dto.DebtResponse, error) {
	snap := s.Snapshot()
	if _, idx := snap.FindStudent(studentID); idx < 0 {
		return dto.DebtResponse{}, studentNotFound(studentID)
	}
	debts := DebtFor(snap, studentID)
	if debts == nil {
		debts = []models.Debt{}
	}
	return dto.DebtResponse{
		StudentID: studentID,
		Status:    statusFromDebt(debts, s.clock.Simulated(snap.Settings)),
		Debts:     debts,
		TotalDebt: TotalDebt(debts),
	}, nil
}

// StudentStatus classifies the student's payment situation.
func (s *GymStateService) StudentStatus(studentID string) (models.PaymentStatus, error) {
	snap := s.Snapshot()
	if _, idx := snap.FindStudent(studentID); idx < 0 {
		return "", studentNotFound(studentID)
	}
	return StatusOf(snap, studentID, s.clock.Simulated(snap.Settings)), nil
}
