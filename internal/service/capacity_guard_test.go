package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

func TestShiftOccupancyCountsActiveOnly(t *testing.T) {
	inactive := activeStudent("s3", slot(models.Monday, "08:00"))
	inactive.Status = models.StudentStatusInactive
	students := []models.Student{
		activeStudent("s1", slot(models.Monday, "08:00")),
		activeStudent("s2", slot(models.Monday, "08:00")),
		inactive,
	}
	assert.Equal(t, 2, ShiftOccupancy(students, models.Monday, "08:00", ""))
	assert.Equal(t, 1, ShiftOccupancy(students, models.Monday, "08:00", "s1"))
	assert.Equal(t, 0, ShiftOccupancy(students, models.Tuesday, "08:00", ""))
}

func TestCheckSlot(t *testing.T) {
	students := []models.Student{
		activeStudent("s1", slot(models.Monday, "08:00")),
		activeStudent("s2", slot(models.Monday, "08:00")),
	}
	candidate := slot(models.Monday, "08:00")

	err := checkSlot(students, 2, "", nil, candidate)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)

	assert.NoError(t, checkSlot(students, 2, "s1", nil, candidate))

	err = checkSlot(students, 5, "", []models.ScheduleSlot{candidate}, candidate)
	assert.ErrorIs(t, err, appErrors.ErrDuplicateSlot)
}

func TestCheckScheduleKeepsHeldShifts(t *testing.T) {
	students := []models.Student{
		activeStudent("s1", slot(models.Monday, "08:00")),
		activeStudent("s2", slot(models.Monday, "08:00")),
	}
	schedule := []models.ScheduleSlot{slot(models.Monday, "08:00"), slot(models.Tuesday, "09:00")}

	assert.NoError(t, checkSchedule(students, 1, "s1", students[0].Schedule, schedule))
	assert.ErrorIs(t, checkSchedule(students, 1, "s3", nil, schedule), appErrors.ErrCapacityExceeded)

	bad := []models.ScheduleSlot{{Day: "Sab", StartTime: "08:00"}}
	assert.ErrorIs(t, checkSchedule(students, 1, "", nil, bad), appErrors.ErrValidation)
}

func TestMoveSlotRefusesFullTarget(t *testing.T) {
	students := []models.Student{
		activeStudent("s1", slot(models.Monday, "18:00")),
		activeStudent("s2", slot(models.Monday, "18:00")),
		activeStudent("s3", slot(models.Tuesday, "18:00")),
	}
	_, ok := moveSlot(students, students[2], 2, models.Tuesday, "18:00", models.Monday, "18:00")
	assert.False(t, ok)

	moved, ok := moveSlot(students, students[2], 3, models.Tuesday, "18:00", models.Monday, "18:00")
	require.True(t, ok)
	assert.True(t, moved.HasSlot(models.Monday, "18:00"))
	assert.Equal(t, "19:00", moved.Schedule[0].EndTime)
	assert.Equal(t, models.Tuesday, students[2].Schedule[0].Day, "source student must be untouched")
}

func TestOccupancyOrdersByWeekdayAndTime(t *testing.T) {
	snap := baseSnapshot(fixedClock(refTime).Wall(), 2,
		activeStudent("s1", slot(models.Friday, "08:00"), slot(models.Monday, "18:00")),
		activeStudent("s2", slot(models.Monday, "08:00"), slot(models.Monday, "18:00")),
	)
	loads := Occupancy(snap, "")
	require.Len(t, loads, 3)
	assert.Equal(t, models.Monday, loads[0].Day)
	assert.Equal(t, "08:00", loads[0].StartTime)
	assert.Equal(t, "18:00", loads[1].StartTime)
	assert.True(t, loads[1].Full)
	assert.Equal(t, models.Friday, loads[2].Day)

	monday := Occupancy(snap, models.Monday)
	assert.Len(t, monday, 2)
}

func TestEndTimeFor(t *testing.T) {
	assert.Equal(t, "09:00", EndTimeFor("08:00"))
	assert.Equal(t, "21:00", EndTimeFor("20:30"))
	assert.True(t, ValidClock("07:15"))
	assert.False(t, ValidClock("7:15"))
	assert.False(t, ValidClock("24:00"))
}
