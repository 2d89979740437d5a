package service

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
)

// MonthNames are the month labels shown on finance views.
var MonthNames = []string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

const unknownStudentName = "Alumno Eliminado"

type stateReader interface {
	Snapshot() models.Snapshot
	Clock() *Clock
}

// DateRange is an inclusive calendar range; an empty range matches all.
type DateRange struct {
	Start string
	End   string
}

// Contains reports whether the calendar date falls in the range.
func (r DateRange) Contains(date string) bool {
	if r.Start == "" || r.End == "" {
		return true
	}
	day := date
	if len(day) > len(DateLayout) {
		day = day[:len(DateLayout)]
	}
	return day >= r.Start && day <= r.End
}

// DashboardService composes finance and occupancy views from the state.
type DashboardService struct {
	state  stateReader
	logger *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(state stateReader, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{state: state, logger: logger}
}

// ResolveRange turns a finance filter into a date range relative to now.
func ResolveRange(filter dto.FinanceFilter, now time.Time) (string, DateRange, error) {
	period := strings.ToUpper(filter.Period)
	if period == "" {
		period = dto.FinancePeriodCurrent
	}
	current := models.PeriodOf(now)
	switch period {
	case dto.FinancePeriodCurrent:
		return period, monthRange(current, now.Location()), nil
	case dto.FinancePeriodPrevious:
		return period, monthRange(current.Previous(), now.Location()), nil
	case dto.FinancePeriodCustom:
		if filter.Start == "" || filter.End == "" {
			return "", DateRange{}, validationError("start and end are required for a custom period")
		}
		if filter.Start > filter.End {
			return "", DateRange{}, validationError("start must not be after end")
		}
		return period, DateRange{Start: filter.Start, End: filter.End}, nil
	case dto.FinancePeriodNone:
		return period, DateRange{}, nil
	}
	return "", DateRange{}, validationError("unknown period " + filter.Period)
}

func monthRange(p models.Period, loc *time.Location) DateRange {
	start := p.Start(loc)
	end := start.AddDate(0, 1, -1)
	return DateRange{Start: start.Format(DateLayout), End: end.Format(DateLayout)}
}

// Finance summarises collections and expenses for the selected range.
func (s *DashboardService) Finance(filter dto.FinanceFilter) (dto.FinanceSummaryResponse, error) {
	snap := s.state.Snapshot()
	now := s.state.Clock().Simulated(snap.Settings)
	period, rng, err := ResolveRange(filter, now)
	if err != nil {
		return dto.FinanceSummaryResponse{}, err
	}

	names := studentNames(snap.Students)
	collected := decimal.Zero
	byStudent := make(map[string]*dto.StudentCollection)
	var order []string
	for _, p := range snap.Payments {
		if !rng.Contains(p.Date) {
			continue
		}
		collected = collected.Add(p.Amount)
		entry, ok := byStudent[p.StudentID]
		if !ok {
			name, known := names[p.StudentID]
			if !known {
				name = unknownStudentName
			}
			entry = &dto.StudentCollection{StudentID: p.StudentID, Name: name, Total: decimal.Zero}
			byStudent[p.StudentID] = entry
			order = append(order, p.StudentID)
		}
		entry.Total = entry.Total.Add(p.Amount)
		entry.Count++
	}
	collections := make([]dto.StudentCollection, 0, len(order))
	for _, id := range order {
		collections = append(collections, *byStudent[id])
	}
	sort.SliceStable(collections, func(i, j int) bool {
		return collections[i].Total.GreaterThan(collections[j].Total)
	})

	spent := decimal.Zero
	expenses := []models.Expense{}
	for _, e := range snap.Expenses {
		if !rng.Contains(e.Date) {
			continue
		}
		spent = spent.Add(e.Amount)
		expenses = append(expenses, e)
	}
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Amount.GreaterThan(expenses[j].Amount)
	})

	current := models.PeriodOf(now)
	return dto.FinanceSummaryResponse{
		Period:              period,
		Start:               rng.Start,
		End:                 rng.End,
		TotalCollected:      collected,
		TotalExpenses:       spent,
		NetProfit:           collected.Sub(spent),
		TotalDelinquentDebt: TotalDelinquentDebt(snap, now),
		ActiveStudents:      countActive(snap.Students),
		CollectedByStudent:  collections,
		Expenses:            expenses,
		CurrentRates:        RatesForPeriod(snap.RateHistory, current.Month, current.Year),
	}, nil
}

// Yearly returns income by billed period and expenses by date for each
// month of year. A zero year means the simulated one.
func (s *DashboardService) Yearly(year int) dto.YearlyFinanceResponse {
	snap := s.state.Snapshot()
	if year == 0 {
		year = s.state.Clock().Simulated(snap.Settings).Year()
	}
	months := make([]dto.MonthlyFinance, 12)
	for m := range months {
		months[m] = dto.MonthlyFinance{Month: m, Name: MonthNames[m], Income: decimal.Zero, Expenses: decimal.Zero}
	}
	for _, p := range snap.Payments {
		if p.Year == year && p.Month >= 0 && p.Month < 12 {
			months[p.Month].Income = months[p.Month].Income.Add(p.Amount)
		}
	}
	prefix := strconv.Itoa(year) + "-"
	for _, e := range snap.Expenses {
		if !strings.HasPrefix(e.Date, prefix) || len(e.Date) < 7 {
			continue
		}
		m, err := strconv.Atoi(e.Date[5:7])
		if err != nil || m < 1 || m > 12 {
			continue
		}
		months[m-1].Expenses = months[m-1].Expenses.Add(e.Amount)
	}
	for m := range months {
		months[m].Net = months[m].Income.Sub(months[m].Expenses)
	}
	return dto.YearlyFinanceResponse{Year: year, Months: months}
}

// Delinquents lists active delinquent students, highest debt first.
func (s *DashboardService) Delinquents() dto.DelinquentsResponse {
	snap := s.state.Snapshot()
	now := s.state.Clock().Simulated(snap.Settings)

	resp := dto.DelinquentsResponse{Total: decimal.Zero, Students: []dto.DelinquentEntry{}}
	for _, d := range Delinquents(snap, now) {
		resp.Total = resp.Total.Add(d.TotalDebt)
		resp.Students = append(resp.Students, dto.DelinquentEntry{
			StudentID: d.Student.ID,
			Name:      d.Student.Name,
			Phone:     d.Student.Phone,
			TotalDebt: d.TotalDebt,
			Debts:     d.Debts,
		})
	}
	sort.SliceStable(resp.Students, func(i, j int) bool {
		return resp.Students[i].TotalDebt.GreaterThan(resp.Students[j].TotalDebt)
	})
	return resp
}

// Agenda returns the weekly occupancy grid. Attendance marks are read for
// filter.Date, defaulting to the simulated day.
func (s *DashboardService) Agenda(filter dto.AgendaFilter) dto.AgendaResponse {
	snap := s.state.Snapshot()
	clock := s.state.Clock()
	now := clock.Simulated(snap.Settings)
	date := filter.Date
	if date == "" {
		date = now.Format(DateLayout)
	}

	present := make(map[string]bool)
	for _, a := range snap.Attendance {
		if a.Date == date && a.Present {
			present[a.StudentID+"|"+a.Time] = true
		}
	}

	resp := dto.AgendaResponse{Date: date, Capacity: snap.Settings.MaxCapacityPerShift, Shifts: []dto.AgendaShift{}}
	for _, load := range Occupancy(snap, models.Weekday(filter.Day)) {
		if !inShift(load.StartTime, filter.Shift) {
			continue
		}
		shift := dto.AgendaShift{
			Day:       load.Day,
			StartTime: load.StartTime,
			EndTime:   load.EndTime,
			Count:     load.Count,
			Capacity:  load.Capacity,
			Full:      load.Full,
			Students:  make([]dto.AgendaStudent, 0, len(load.Students)),
		}
		for _, st := range load.Students {
			shift.Students = append(shift.Students, dto.AgendaStudent{
				ID:            st.ID,
				Name:          st.Name,
				Phone:         st.Phone,
				IsNew:         clock.IsNewStudent(st.JoinDate, now),
				PaymentStatus: StatusOf(snap, st.ID, now),
				Present:       present[st.ID+"|"+load.StartTime],
			})
		}
		resp.Shifts = append(resp.Shifts, shift)
	}
	return resp
}

// inShift buckets a start time as morning (<12), afternoon (12-17) or
// night (>=18).
func inShift(startTime, shift string) bool {
	if shift == "" {
		return true
	}
	hour, err := strconv.Atoi(strings.SplitN(startTime, ":", 2)[0])
	if err != nil {
		return false
	}
	switch shift {
	case dto.ShiftMorning:
		return hour < 12
	case dto.ShiftAfternoon:
		return hour >= 12 && hour < 18
	case dto.ShiftNight:
		return hour >= 18
	}
	return true
}

func studentNames(students []models.Student) map[string]string {
	names := make(map[string]string, len(students))
	for _, st := range students {
		names[st.ID] = st.Name
	}
	return names
}
