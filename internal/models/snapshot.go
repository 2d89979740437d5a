package models

// Snapshot is the full in-memory state of the installation.
type Snapshot struct {
	Settings    Settings            `json:"settings"`
	Students    []Student           `json:"students"`
	Fees        []Fee               `json:"fees"`
	Payments    []Payment           `json:"payments"`
	Expenses    []Expense           `json:"expenses"`
	Guests      []GuestRegistration `json:"guests"`
	Attendance  []Attendance        `json:"attendance"`
	RateHistory []TieredRateHistory `json:"tieredRateHistory"`
}

// Empty reports whether the snapshot carries no students and no ledger
// entries, which is how an unseeded backend looks.
func (s Snapshot) Empty() bool {
	return len(s.Students) == 0 && len(s.Fees) == 0 && len(s.Payments) == 0 &&
		len(s.Expenses) == 0 && len(s.Guests) == 0 && len(s.RateHistory) == 0
}

// Clone deep-copies the snapshot so readers never observe later mutations.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Settings: s.Settings}
	if s.Settings.GymLogo != nil {
		logo := *s.Settings.GymLogo
		out.Settings.GymLogo = &logo
	}
	out.Students = make([]Student, len(s.Students))
	for i, st := range s.Students {
		out.Students[i] = st.Clone()
	}
	out.Fees = append(make([]Fee, 0, len(s.Fees)), s.Fees...)
	out.Payments = append(make([]Payment, 0, len(s.Payments)), s.Payments...)
	out.Expenses = append(make([]Expense, 0, len(s.Expenses)), s.Expenses...)
	out.Guests = make([]GuestRegistration, len(s.Guests))
	for i, g := range s.Guests {
		out.Guests[i] = g
		if g.Amount != nil {
			amount := *g.Amount
			out.Guests[i].Amount = &amount
		}
	}
	out.Attendance = append(make([]Attendance, 0, len(s.Attendance)), s.Attendance...)
	out.RateHistory = make([]TieredRateHistory, len(s.RateHistory))
	for i, h := range s.RateHistory {
		out.RateHistory[i] = TieredRateHistory{Month: h.Month, Year: h.Year, Rates: h.Rates.Clone()}
	}
	return out
}

// FindStudent returns the student with id and its index, or -1.
func (s Snapshot) FindStudent(id string) (Student, int) {
	for i, st := range s.Students {
		if st.ID == id {
			return st, i
		}
	}
	return Student{}, -1
}
