package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/gym-manager-api/internal/models"
)

// DateLayout is the calendar date format stored on records.
const DateLayout = "2006-01-02"

// NewStudentWindow is how long after joining a student is flagged as new.
const NewStudentWindow = 7 * 24 * time.Hour

// Clock reads the wall clock and projects the simulated instant into the
// gym's time zone so calendar fields (month, day) match what staff see.
type Clock struct {
	loc  *time.Location
	wall func() time.Time
}

// NewClock builds a clock for loc. A nil wall function uses time.Now.
func NewClock(loc *time.Location, wall func() time.Time) *Clock {
	if loc == nil {
		loc = time.Local
	}
	if wall == nil {
		wall = time.Now
	}
	return &Clock{loc: loc, wall: wall}
}

// Location returns the gym time zone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Wall returns the real current instant in the gym time zone.
func (c *Clock) Wall() time.Time {
	return c.wall().In(c.loc)
}

// Simulated returns the settings' simulated instant in the gym time zone.
func (c *Clock) Simulated(settings models.Settings) time.Time {
	if settings.SimulatedDate.IsZero() {
		return c.Wall()
	}
	return settings.SimulatedDate.In(c.loc)
}

// Today formats the simulated day as a calendar date.
func (c *Clock) Today(settings models.Settings) string {
	return c.Simulated(settings).Format(DateLayout)
}

// ParseDate parses a calendar date in the gym time zone.
func (c *Clock) ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, c.loc)
}

// ShiftDays moves t by whole days keeping the time of day.
func ShiftDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

// WithDay moves t to another day of the same month.
func WithDay(t time.Time, day int) (time.Time, error) {
	last := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day < 1 || day > last {
		return t, validationError(fmt.Sprintf("day must be between 1 and %d", last))
	}
	return time.Date(t.Year(), t.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location()), nil
}

// IsNewStudent reports whether joinDate falls within the week before now.
func (c *Clock) IsNewStudent(joinDate string, now time.Time) bool {
	joined, err := c.ParseDate(joinDate)
	if err != nil {
		return false
	}
	return now.Sub(joined) < NewStudentWindow
}
