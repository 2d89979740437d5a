package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// ShiftOccupancy counts the distinct active students holding a shift,
// ignoring the excluded student when set.
func ShiftOccupancy(students []models.Student, day models.Weekday, startTime, excludeID string) int {
	count := 0
	for _, student := range students {
		if !student.IsActive() || student.ID == excludeID {
			continue
		}
		if student.HasSlot(day, startTime) {
			count++
		}
	}
	return count
}

// EndTimeFor returns the one-hour session end for a "HH:mm" start.
func EndTimeFor(startTime string) string {
	hour, err := strconv.Atoi(strings.SplitN(startTime, ":", 2)[0])
	if err != nil {
		return startTime
	}
	return fmt.Sprintf("%02d:00", hour+1)
}

// ValidClock reports whether value is a 24h "HH:mm" time.
func ValidClock(value string) bool {
	return clockPattern.MatchString(value)
}

// moveSlot rewrites every slot at the source shift to the target shift.
// It reports false, leaving the student untouched, when the target is full.
func moveSlot(students []models.Student, student models.Student, capacity int, fromDay models.Weekday, fromStart string, toDay models.Weekday, toStart string) (models.Student, bool) {
	if ShiftOccupancy(students, toDay, toStart, "") >= capacity {
		return student, false
	}
	moved := student.Clone()
	for i, slot := range moved.Schedule {
		if slot.SameShift(fromDay, fromStart) {
			moved.Schedule[i].Day = toDay
			moved.Schedule[i].StartTime = toStart
			moved.Schedule[i].EndTime = EndTimeFor(toStart)
		}
	}
	return moved, true
}

// checkSlot validates adding candidate to a student's draft schedule.
func checkSlot(students []models.Student, capacity int, editingID string, draft []models.ScheduleSlot, candidate models.ScheduleSlot) error {
	for _, slot := range draft {
		if slot.SameShift(candidate.Day, candidate.StartTime) {
			return appErrors.Clone(appErrors.ErrDuplicateSlot, fmt.Sprintf("schedule already has %s %s", candidate.Day, candidate.StartTime))
		}
	}
	if ShiftOccupancy(students, candidate.Day, candidate.StartTime, editingID) >= capacity {
		return appErrors.Clone(appErrors.ErrCapacityExceeded, fmt.Sprintf("shift %s %s is full", candidate.Day, candidate.StartTime))
	}
	return nil
}

// checkSchedule runs the slot checks over a submitted schedule. Shifts in
// held are already occupied by the student and skip the capacity check.
func checkSchedule(students []models.Student, capacity int, editingID string, held, schedule []models.ScheduleSlot) error {
	draft := make([]models.ScheduleSlot, 0, len(schedule))
	for _, slot := range schedule {
		if !slot.Day.Valid() {
			return validationError(fmt.Sprintf("invalid day %q", slot.Day))
		}
		if !ValidClock(slot.StartTime) {
			return validationError(fmt.Sprintf("invalid start time %q", slot.StartTime))
		}
		for _, d := range draft {
			if d.SameShift(slot.Day, slot.StartTime) {
				return appErrors.Clone(appErrors.ErrDuplicateSlot, fmt.Sprintf("schedule already has %s %s", slot.Day, slot.StartTime))
			}
		}
		if !holdsShift(held, slot) {
			if err := checkSlot(students, capacity, editingID, draft, slot); err != nil {
				return err
			}
		}
		draft = append(draft, slot)
	}
	return nil
}

func holdsShift(held []models.ScheduleSlot, slot models.ScheduleSlot) bool {
	for _, h := range held {
		if h.SameShift(slot.Day, slot.StartTime) {
			return true
		}
	}
	return false
}

// ShiftLoad describes one agenda cell.
type ShiftLoad struct {
	Day       models.Weekday   `json:"day"`
	StartTime string           `json:"startTime"`
	EndTime   string           `json:"endTime"`
	Students  []models.Student `json:"students"`
	Count     int              `json:"count"`
	Capacity  int              `json:"capacity"`
	Full      bool             `json:"full"`
}

// Occupancy groups active students by shift, in weekday then time order.
// An empty day filter returns every day.
func Occupancy(snap models.Snapshot, day models.Weekday) []ShiftLoad {
	capacity := snap.Settings.MaxCapacityPerShift
	index := make(map[string]int)
	var loads []ShiftLoad
	for _, d := range models.Weekdays {
		if day != "" && d != day {
			continue
		}
		for _, student := range snap.Students {
			if !student.IsActive() {
				continue
			}
			for _, slot := range student.Schedule {
				if slot.Day != d {
					continue
				}
				key := string(d) + " " + slot.StartTime
				i, ok := index[key]
				if !ok {
					loads = append(loads, ShiftLoad{Day: d, StartTime: slot.StartTime, EndTime: EndTimeFor(slot.StartTime), Capacity: capacity})
					i = len(loads) - 1
					index[key] = i
				}
				if !containsStudent(loads[i].Students, student.ID) {
					loads[i].Students = append(loads[i].Students, student)
				}
			}
		}
	}
	for i := range loads {
		loads[i].Count = len(loads[i].Students)
		loads[i].Full = loads[i].Count >= capacity
	}
	sortShiftLoads(loads)
	return loads
}

func containsStudent(students []models.Student, id string) bool {
	for _, s := range students {
		if s.ID == id {
			return true
		}
	}
	return false
}

func sortShiftLoads(loads []ShiftLoad) {
	order := make(map[models.Weekday]int, len(models.Weekdays))
	for i, d := range models.Weekdays {
		order[d] = i
	}
	sort.SliceStable(loads, func(i, j int) bool {
		if loads[i].Day != loads[j].Day {
			return order[loads[i].Day] < order[loads[j].Day]
		}
		return loads[i].StartTime < loads[j].StartTime
	})
}

func validationError(message string) error {
	return appErrors.Clone(appErrors.ErrValidation, message)
}
