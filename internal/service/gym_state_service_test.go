package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

func TestLoadPrefersRemote(t *testing.T) {
	snap := baseSnapshot(refTime, 10, activeStudent("s1"))
	cache := &cacheStub{}
	writer := &recordingWriter{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: snap},
		Writer: writer,
		Cache:  cache,
		Clock:  fixedClock(refTime),
		NewID:  sequentialIDs(),
	})

	source := svc.Load(context.Background())
	assert.Equal(t, LoadSourceRemote, source)
	assert.True(t, svc.Ready())
	require.Len(t, svc.Snapshot().Fees, 1)
	assert.Equal(t, []string{IntentUpsertFee}, writer.kinds())
	assert.Equal(t, 1, cache.saves)
}

func TestLoadFallsBackToCacheWhenRemoteFails(t *testing.T) {
	cached := baseSnapshot(refTime, 3, activeStudent("cached"))
	writer := &recordingWriter{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{err: errors.New("connection refused")},
		Writer: writer,
		Cache:  &cacheStub{snap: &cached},
		Clock:  fixedClock(refTime),
	})

	assert.Equal(t, LoadSourceCache, svc.Load(context.Background()))
	_, idx := svc.Snapshot().FindStudent("cached")
	assert.GreaterOrEqual(t, idx, 0)
	assert.NotContains(t, writer.kinds(), IntentReplaceAll)
}

func TestLoadSeedsAndBackfillsEmptyRemote(t *testing.T) {
	writer := &recordingWriter{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: models.Snapshot{}},
		Writer: writer,
		Cache:  &cacheStub{},
		Clock:  fixedClock(refTime),
		Seed:   SeedOptions{DemoStudents: true},
	})

	assert.Equal(t, LoadSourceSeed, svc.Load(context.Background()))
	snap := svc.Snapshot()
	assert.Len(t, snap.Students, 4)
	assert.Len(t, snap.Fees, 4)

	require.Equal(t, []string{IntentReplaceAll}, writer.kinds())
	replaced, ok := writer.last().Payload.(models.Snapshot)
	require.True(t, ok)
	assert.Len(t, replaced.Fees, 4)
}

func TestLoadWithoutRemoteOrCache(t *testing.T) {
	svc := NewGymStateService(GymStateConfig{Clock: fixedClock(refTime)})
	assert.False(t, svc.Ready())
	assert.Equal(t, LoadSourceSeed, svc.Load(context.Background()))
	assert.Equal(t, models.DefaultGymName, svc.Settings().GymName)
}

func TestAddStudentDefaultsAndPersists(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10))

	student, err := svc.AddStudent(context.Background(), dto.StudentRequest{
		Name:     "  Lucía  ",
		Schedule: []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}, {Day: "Mie", StartTime: "08:00"}},
		Status:   "INACTIVE",
	})
	require.NoError(t, err)
	assert.Equal(t, "Lucía", student.Name)
	assert.Equal(t, models.StudentStatusActive, student.Status)
	assert.Equal(t, "2025-03-05", student.JoinDate)
	assert.Equal(t, "09:00", student.Schedule[0].EndTime)
	assert.NotNil(t, student.Evaluations)

	assert.Equal(t, []string{IntentUpsertStudent, IntentUpsertFee}, writer.kinds())
	fees := svc.ListFees(dto.FeeFilter{StudentID: student.ID})
	require.Len(t, fees, 1)
	assert.True(t, fees[0].AmountOwed.Equal(dec(18000)))
}

func TestAddStudentRejectsFullShift(t *testing.T) {
	snap := baseSnapshot(refTime, 1, activeStudent("s1", slot(models.Monday, "08:00")))
	svc, writer := newLoadedState(t, refTime, snap)

	_, err := svc.AddStudent(context.Background(), dto.StudentRequest{
		Name:     "Late",
		Schedule: []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}},
	})
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.Len(t, svc.Snapshot().Students, 1)
	assert.Empty(t, writer.kinds())

	_, err = svc.AddStudent(context.Background(), dto.StudentRequest{Name: ""})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestUpdateStudentKeepsHeldSlotInFullShift(t *testing.T) {
	snap := baseSnapshot(refTime, 1, activeStudent("s1", slot(models.Monday, "08:00")))
	svc, _ := newLoadedState(t, refTime, snap)

	updated, err := svc.UpdateStudent(context.Background(), "s1", dto.StudentRequest{
		Name:     "Renamed",
		Schedule: []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}, {Day: "Mar", StartTime: "10:00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Len(t, updated.Schedule, 2)

	_, err = svc.UpdateStudent(context.Background(), "missing", dto.StudentRequest{Name: "x"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestMoveSlotCapacity(t *testing.T) {
	snap := baseSnapshot(refTime, 2,
		activeStudent("s1", slot(models.Monday, "18:00")),
		activeStudent("s2", slot(models.Tuesday, "18:00")),
		activeStudent("s3", slot(models.Tuesday, "18:00")),
	)
	svc, writer := newLoadedState(t, refTime, snap)
	ctx := context.Background()
	req := dto.MoveSlotRequest{FromDay: "Mar", FromStartTime: "18:00", ToDay: "Lun", ToStartTime: "18:00"}

	moved, student, err := svc.MoveSlot(ctx, "s2", req)
	require.NoError(t, err)
	assert.True(t, moved)
	assert.True(t, student.HasSlot(models.Monday, "18:00"))

	before := svc.Snapshot()
	writer.reset()
	moved, _, err = svc.MoveSlot(ctx, "s3", req)
	assert.False(t, moved)
	assert.ErrorIs(t, err, appErrors.ErrCapacityExceeded)
	assert.Equal(t, before.Students, svc.Snapshot().Students)
	assert.Empty(t, writer.kinds())

	_, _, err = svc.MoveSlot(ctx, "s1", dto.MoveSlotRequest{FromDay: "Vie", FromStartTime: "18:00", ToDay: "Lun", ToStartTime: "19:00"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestCheckSlotReportsOccupancy(t *testing.T) {
	snap := baseSnapshot(refTime, 2, activeStudent("s1", slot(models.Monday, "08:00")))
	svc, _ := newLoadedState(t, refTime, snap)

	resp, err := svc.CheckSlot(dto.CheckSlotRequest{Candidate: dto.ScheduleSlotRequest{Day: "Lun", StartTime: "08:00"}})
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, 1, resp.Occupancy)
	assert.Equal(t, 2, resp.Capacity)

	_, err = svc.CheckSlot(dto.CheckSlotRequest{
		Schedule:  []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}},
		Candidate: dto.ScheduleSlotRequest{Day: "Lun", StartTime: "08:00"},
	})
	assert.ErrorIs(t, err, appErrors.ErrDuplicateSlot)
}

func TestPaymentsAndDebt(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1")))
	ctx := context.Background()

	debt, err := svc.StudentDebt("s1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, debt.Status)
	assert.True(t, debt.TotalDebt.Equal(dec(15000)))

	payment, err := svc.AddPayment(ctx, dto.PaymentRequest{StudentID: "s1", Month: intPtr(2), Year: 2025, Amount: dec(15000)})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-05", payment.Date)
	assert.Equal(t, []string{IntentUpsertPayment}, writer.kinds())

	status, err := svc.StudentStatus("s1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, status)

	require.NoError(t, svc.DeletePayment(ctx, payment.ID))
	assert.ErrorIs(t, svc.DeletePayment(ctx, payment.ID), appErrors.ErrNotFound)

	_, err = svc.AddPayment(ctx, dto.PaymentRequest{StudentID: "ghost", Month: intPtr(2), Year: 2025, Amount: dec(1)})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestExpressPaymentAllocatesOldestFirst(t *testing.T) {
	snap := baseSnapshot(refTime, 10, activeStudent("s1"))
	snap.Fees = []models.Fee{
		{ID: "f-feb", StudentID: "s1", Month: 1, Year: 2025, AmountOwed: dec(15000)},
		{ID: "f-jan", StudentID: "s1", Month: 0, Year: 2025, AmountOwed: dec(15000)},
	}
	snap.Payments = []models.Payment{{ID: "p0", StudentID: "s1", Month: 0, Year: 2025, Amount: dec(5000), Date: "2025-01-05"}}
	svc, _ := newLoadedState(t, refTime, snap)

	resp, err := svc.ExpressPayment(context.Background(), dto.ExpressPaymentRequest{
		StudentID: "s1",
		Periods:   []dto.PeriodRequest{{Month: intPtr(1), Year: 2025}, {Month: intPtr(0), Year: 2025}},
		Amount:    dec(30000),
	})
	require.NoError(t, err)
	require.Len(t, resp.Payments, 2)
	assert.Equal(t, 0, resp.Payments[0].Month)
	assert.True(t, resp.Payments[0].Amount.Equal(dec(10000)))
	assert.True(t, resp.Payments[1].Amount.Equal(dec(15000)))
	assert.True(t, resp.Remainder.Equal(dec(5000)))

	_, err = svc.ExpressPayment(context.Background(), dto.ExpressPaymentRequest{
		StudentID: "s1",
		Periods:   []dto.PeriodRequest{{Month: intPtr(0), Year: 2025}},
		Amount:    dec(100),
	})
	assert.ErrorIs(t, err, appErrors.ErrNothingToPay)
}

func TestToggleAttendanceIsAnInvolution(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1")))
	ctx := context.Background()
	req := dto.AttendanceToggleRequest{StudentID: "s1", Date: "2025-03-05", Time: "08:00"}

	first, err := svc.ToggleAttendance(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.Present)
	assert.Len(t, svc.ListAttendance("2025-03-05", ""), 1)

	second, err := svc.ToggleAttendance(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Present)
	assert.Empty(t, svc.ListAttendance("2025-03-05", ""))
	assert.Equal(t, []string{IntentUpsertAttendance, IntentDeleteAttendance}, writer.kinds())
}

func TestExpensesAndGuests(t *testing.T) {
	svc, _ := newLoadedState(t, refTime, baseSnapshot(refTime, 10))
	ctx := context.Background()

	expense, err := svc.AddExpense(ctx, dto.ExpenseRequest{Category: "Luz", Amount: dec(5000), Date: "2025-03-01"})
	require.NoError(t, err)
	updated, err := svc.UpdateExpense(ctx, expense.ID, dto.ExpenseRequest{Category: "Luz", Amount: dec(6000), Date: "2025-03-02"})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(dec(6000)))
	require.NoError(t, svc.DeleteExpense(ctx, expense.ID))
	assert.Empty(t, svc.ListExpenses())
	_, err = svc.UpdateExpense(ctx, expense.ID, dto.ExpenseRequest{Category: "Luz", Amount: dec(1), Date: "2025-03-02"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)

	guest, err := svc.AddGuest(ctx, dto.GuestRequest{Name: "Visita", Date: "2025-03-05", Time: "10:00"})
	require.NoError(t, err)
	assert.Len(t, svc.ListGuests("2025-03-05"), 1)
	require.NoError(t, svc.DeleteGuest(ctx, guest.ID))
	assert.ErrorIs(t, svc.DeleteGuest(ctx, guest.ID), appErrors.ErrNotFound)
}

func TestHistoricalRatesDriveNewFees(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10))
	ctx := context.Background()
	rates := models.RateTable{1: dec(100), 2: dec(200), 3: dec(300), 4: dec(400), 5: dec(500)}

	_, err := svc.SetHistoricalRates(ctx, 2, 2025, dto.RatesRequest{Rates: rates})
	require.NoError(t, err)
	assert.Equal(t, IntentUpsertRateHistory, writer.last().Kind)

	resolved, err := svc.RatesFor(4, 2025)
	require.NoError(t, err)
	assert.True(t, resolved.Rates[2].Equal(dec(200)))

	_, err = svc.SetHistoricalRates(ctx, 2, 2025, dto.RatesRequest{Rates: models.RateTable{1: dec(1)}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	student, err := svc.AddStudent(ctx, dto.StudentRequest{Name: "New", Schedule: []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}}})
	require.NoError(t, err)
	fees := svc.ListFees(dto.FeeFilter{StudentID: student.ID})
	require.Len(t, fees, 1)
	assert.True(t, fees[0].AmountOwed.Equal(dec(100)))

	require.NoError(t, svc.DeleteHistoricalRates(ctx, 2, 2025))
	writer.reset()
	require.NoError(t, svc.DeleteHistoricalRates(ctx, 2, 2025))
	assert.Empty(t, writer.kinds())
}

func TestGenerateFeesForExplicitPeriod(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1")))

	resp, err := svc.GenerateFees(context.Background(), dto.GenerateFeesRequest{Month: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Month)
	assert.Equal(t, 2025, resp.Year)
	assert.Len(t, resp.Created, 1)
	assert.Equal(t, []string{IntentUpsertFee}, writer.kinds())

	again, err := svc.GenerateFees(context.Background(), dto.GenerateFeesRequest{Month: intPtr(3)})
	require.NoError(t, err)
	assert.Empty(t, again.Created)
}

func TestSettingsChangesArePersisted(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10))
	ctx := context.Background()
	logo := "data:image/png;base64,AAA"

	settings, err := svc.UpdateGymInfo(ctx, dto.GymInfoRequest{GymName: "Iron", GymLogo: &logo})
	require.NoError(t, err)
	assert.Equal(t, "Iron", settings.GymName)
	require.NotNil(t, settings.GymLogo)

	settings, err = svc.UpdateGymInfo(ctx, dto.GymInfoRequest{GymName: "Iron"})
	require.NoError(t, err)
	assert.Nil(t, settings.GymLogo)

	settings, err = svc.UpdateMaxCapacity(ctx, dto.CapacityRequest{MaxCapacityPerShift: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, settings.MaxCapacityPerShift)

	_, err = svc.UpdateMaxCapacity(ctx, dto.CapacityRequest{MaxCapacityPerShift: 0})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.UpdateMessageTemplates(ctx, dto.TemplatesRequest{Agenda: "Hola {studentName}", Debt: "Debés"})
	require.NoError(t, err)
	_, err = svc.SetDefaultAmount(ctx, dto.DefaultAmountRequest{DefaultAmount: dec(30000)})
	require.NoError(t, err)

	assert.Equal(t, []string{IntentUpdateSettings, IntentUpdateSettings, IntentUpdateSettings, IntentUpdateSettings, IntentUpdateSettings}, writer.kinds())
	patch, ok := writer.last().Payload.(models.SettingsPatch)
	require.True(t, ok)
	require.NotNil(t, patch.DefaultAmount)
	assert.Nil(t, patch.GymName)
}

func TestSimulatedClockMovesBillFutureMonths(t *testing.T) {
	svc, writer := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1")))
	ctx := context.Background()

	info, err := svc.ShiftSimulatedDate(ctx, dto.ShiftClockRequest{Days: 30})
	require.NoError(t, err)
	assert.Equal(t, "2025-04-04", info.Date)
	assert.Equal(t, 3, info.Month)
	assert.True(t, info.Simulated)
	assert.Equal(t, []string{IntentUpdateSettings, IntentUpsertFee}, writer.kinds())
	assert.Len(t, svc.Snapshot().Fees, 2)

	status, err := svc.StudentStatus("s1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusDelinquent, status)

	info, err = svc.SetSimulatedDay(ctx, dto.ClockDayRequest{Day: 30})
	require.NoError(t, err)
	assert.Equal(t, 30, info.Day)
	_, err = svc.SetSimulatedDay(ctx, dto.ClockDayRequest{Day: 31})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.SetSimulatedDate(ctx, dto.ClockRequest{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	info, err = svc.ResetClock(ctx)
	require.NoError(t, err)
	assert.False(t, info.Simulated)
	assert.Equal(t, "2025-03-05", info.Date)
}

func TestEnsureCurrentFeesNoopDoesNotCommit(t *testing.T) {
	cache := &cacheStub{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: baseSnapshot(refTime, 10, activeStudent("s1"))},
		Cache:  cache,
		Clock:  fixedClock(refTime),
	})
	svc.Load(context.Background())
	saves := cache.saves

	assert.Empty(t, svc.EnsureCurrentFees(context.Background()))
	assert.Equal(t, saves, cache.saves)
}

func TestResetDataRestoresSeed(t *testing.T) {
	snap := baseSnapshot(refTime, 3, activeStudent("custom"))
	writer := &recordingWriter{}
	svc := NewGymStateService(GymStateConfig{
		Loader: loaderStub{snap: snap},
		Writer: writer,
		Clock:  fixedClock(refTime),
		Seed:   SeedOptions{DemoStudents: true},
	})
	svc.Load(context.Background())
	writer.reset()

	reset := svc.ResetData(context.Background())
	assert.Len(t, reset.Students, 4)
	assert.Equal(t, models.DefaultMaxCapacity, reset.Settings.MaxCapacityPerShift)
	assert.Len(t, reset.Fees, 4)

	require.Equal(t, []string{IntentReplaceAll}, writer.kinds())
	payload, ok := writer.last().Payload.(models.Snapshot)
	require.True(t, ok)
	assert.Len(t, payload.Fees, 4)
}

func TestListStudentsFilters(t *testing.T) {
	recent := activeStudent("s2")
	recent.Name = "María García"
	recent.JoinDate = "2025-03-01"
	inactive := activeStudent("s3")
	inactive.Status = models.StudentStatusInactive
	svc, _ := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1"), recent, inactive))

	all := svc.ListStudents(dto.StudentFilter{})
	assert.Len(t, all, 3)

	found := svc.ListStudents(dto.StudentFilter{Search: "garcía"})
	require.Len(t, found, 1)
	assert.True(t, found[0].IsNew)
	assert.Equal(t, models.PaymentStatusPending, found[0].PaymentStatus)

	assert.Len(t, svc.ListStudents(dto.StudentFilter{Status: "inactive"}), 1)
}

func TestAddEvaluation(t *testing.T) {
	svc, _ := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1")))

	waist := 80.5
	evaluation, err := svc.AddEvaluation(context.Background(), "s1", dto.EvaluationRequest{
		Date:         "2025-03-05",
		Weight:       72.3,
		Measurements: dto.MeasurementsRequest{Waist: &waist},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, evaluation.ID)

	student, err := svc.GetStudent("s1")
	require.NoError(t, err)
	require.Len(t, student.Evaluations, 1)
	assert.Equal(t, 80.5, *student.Evaluations[0].Measurements.Waist)
	assert.Nil(t, student.Evaluations[0].Measurements.Arms)
}

func TestSnapshotIsNotAliasedByMutations(t *testing.T) {
	svc, _ := newLoadedState(t, refTime, baseSnapshot(refTime, 10, activeStudent("s1", slot(models.Monday, "08:00"))))
	before := svc.Snapshot()

	_, _, err := svc.MoveSlot(context.Background(), "s1", dto.MoveSlotRequest{FromDay: "Lun", FromStartTime: "08:00", ToDay: "Mar", ToStartTime: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, models.Monday, before.Students[0].Schedule[0].Day)
	assert.WithinDuration(t, refTime, svc.Now(), time.Second)
}
