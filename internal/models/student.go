package models

// StudentStatus tells whether a student is billed and counted for capacity.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "ACTIVE"
	StudentStatusInactive StudentStatus = "INACTIVE"
)

// Valid returns true when the status is a supported value.
func (s StudentStatus) Valid() bool {
	return s == StudentStatusActive || s == StudentStatusInactive
}

// Weekday is one of the five bookable days, abbreviated the way the gym
// writes them on the agenda.
type Weekday string

const (
	Monday    Weekday = "Lun"
	Tuesday   Weekday = "Mar"
	Wednesday Weekday = "Mie"
	Thursday  Weekday = "Jue"
	Friday    Weekday = "Vie"
)

// Weekdays lists bookable days in agenda order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// Valid returns true for the five bookable days.
func (d Weekday) Valid() bool {
	for _, day := range Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ScheduleSlot is a weekly class session held by one student.
type ScheduleSlot struct {
	ID        string  `json:"id"`
	Day       Weekday `json:"day"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
}

// SameShift reports whether both slots start at the same day and time.
func (s ScheduleSlot) SameShift(day Weekday, startTime string) bool {
	return s.Day == day && s.StartTime == startTime
}

// Address is the student's postal address.
type Address struct {
	Street   string `json:"street"`
	Number   string `json:"number"`
	Locality string `json:"locality"`
}

// Measurements holds optional body measurements in centimetres.
type Measurements struct {
	Chest *float64 `json:"chest,omitempty"`
	Waist *float64 `json:"waist,omitempty"`
	Hips  *float64 `json:"hips,omitempty"`
	Arms  *float64 `json:"arms,omitempty"`
}

// BodyEvaluation is one body-composition check-in.
type BodyEvaluation struct {
	ID           string       `json:"id"`
	Date         string       `json:"date"`
	Weight       float64      `json:"weight"`
	Measurements Measurements `json:"measurements"`
}

// Student is a gym member. Students are never deleted, only deactivated.
type Student struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	Schedule    []ScheduleSlot   `json:"schedule"`
	JoinDate    string           `json:"joinDate"`
	Status      StudentStatus    `json:"status"`
	BirthDate   string           `json:"birthDate"`
	Address     Address          `json:"address"`
	Evaluations []BodyEvaluation `json:"evaluations"`
	Notes       string           `json:"notes"`
}

// IsActive reports whether the student is billed and occupies shifts.
func (s Student) IsActive() bool {
	return s.Status == StudentStatusActive
}

// HasSlot reports whether the student holds the given shift.
func (s Student) HasSlot(day Weekday, startTime string) bool {
	for _, slot := range s.Schedule {
		if slot.SameShift(day, startTime) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so snapshots never share slices.
func (s Student) Clone() Student {
	out := s
	out.Schedule = append([]ScheduleSlot(nil), s.Schedule...)
	if out.Schedule == nil {
		out.Schedule = []ScheduleSlot{}
	}
	out.Evaluations = make([]BodyEvaluation, len(s.Evaluations))
	for i, ev := range s.Evaluations {
		out.Evaluations[i] = ev.clone()
	}
	return out
}

func (e BodyEvaluation) clone() BodyEvaluation {
	out := e
	out.Measurements = Measurements{
		Chest: copyFloat(e.Measurements.Chest),
		Waist: copyFloat(e.Measurements.Waist),
		Hips:  copyFloat(e.Measurements.Hips),
		Arms:  copyFloat(e.Measurements.Arms),
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
