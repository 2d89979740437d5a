package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	"github.com/noah-isme/gym-manager-api/internal/service"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
	"github.com/noah-isme/gym-manager-api/pkg/storage"
)

const testPrefix = "/api/v1"

func newTestRouter(t *testing.T, load bool) (*gin.Engine, *service.GymStateService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2025, 3, 5, 9, 0, 0, 0, time.UTC)
	seq := 0
	state := service.NewGymStateService(service.GymStateConfig{
		Clock: service.NewClock(time.UTC, func() time.Time { return now }),
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	})
	if load {
		state.Load(context.Background())
	}

	store, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	dashboard := service.NewDashboardService(state, nil)
	reports := service.NewReportService(state, dashboard, store, storage.NewLinkSigner("secret", time.Hour),
		service.ReportConfig{APIPrefix: testPrefix}, nil)

	r := gin.New()
	Register(r, testPrefix, state.Ready, Handlers{
		Students:  NewStudentHandler(state, service.NewMessageService(state)),
		Billing:   NewBillingHandler(state),
		Ledger:    NewLedgerHandler(state),
		Settings:  NewSettingsHandler(state),
		Dashboard: NewDashboardHandler(dashboard),
		Reports:   NewReportHandler(reports),
		Metrics:   NewMetricsHandler(service.NewMetricsService(), state.Ready),
	})
	return r, state
}

func do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, testPrefix+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouterRejectsAPICallsUntilLoaded(t *testing.T) {
	r, _ := newTestRouter(t, false)

	w := do(r, http.MethodGet, "/state", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterCapacityFlow(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := do(r, http.MethodPut, "/settings/capacity", dto.CapacityRequest{MaxCapacityPerShift: 1})
	require.Equal(t, http.StatusOK, w.Code)

	monday := []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}}
	w = do(r, http.MethodPost, "/students", dto.StudentRequest{Name: "Ana", Phone: "11 2345", Schedule: monday})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodPost, "/students", dto.StudentRequest{Name: "Beto", Schedule: monday})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, decodeEnvelope(t, w).Error.Code)

	w = do(r, http.MethodPost, "/students", dto.StudentRequest{
		Name:     "Beto",
		Schedule: []dto.ScheduleSlotRequest{{Day: "Mar", StartTime: "08:00"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var beto models.Student
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &beto))

	w = do(r, http.MethodPost, "/students/"+beto.ID+"/schedule/move", dto.MoveSlotRequest{
		FromDay: "Mar", FromStartTime: "08:00", ToDay: "Lun", ToStartTime: "08:00",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	var moved dto.MoveSlotResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &moved))
	assert.False(t, moved.Moved)

	w = do(r, http.MethodPost, "/students/"+beto.ID+"/schedule/move", dto.MoveSlotRequest{
		FromDay: "Mar", FromStartTime: "08:00", ToDay: "Mie", ToStartTime: "19:00",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &moved))
	assert.True(t, moved.Moved)
	require.NotNil(t, moved.Student)
	assert.Equal(t, "20:00", moved.Student.Schedule[0].EndTime)

	w = do(r, http.MethodGet, "/students", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeEnvelope(t, w).Meta["total"])

	w = do(r, http.MethodGet, "/fees", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fees []models.Fee
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &fees))
	assert.Len(t, fees, 2)
}

func TestRouterPaymentAndDebt(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := do(r, http.MethodPost, "/students", dto.StudentRequest{
		Name:     "Ana",
		Phone:    "+54 9 11 2345",
		Schedule: []dto.ScheduleSlotRequest{{Day: "Lun", StartTime: "08:00"}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var ana models.Student
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &ana))

	w = do(r, http.MethodGet, "/students/"+ana.ID+"/debt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var debt dto.DebtResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &debt))
	require.Len(t, debt.Debts, 1)
	assert.Equal(t, models.PaymentStatusPending, debt.Status)

	month := 2
	w = do(r, http.MethodPost, "/payments", map[string]interface{}{
		"studentId": ana.ID, "month": month, "year": 2025, "amount": debt.TotalDebt.String(),
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(r, http.MethodGet, "/students/"+ana.ID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status dto.StatusResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &status))
	assert.Equal(t, models.PaymentStatusPaid, status.Status)

	w = do(r, http.MethodGet, "/students/"+ana.ID+"/messages/debt", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var msg dto.MessageResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &msg))
	assert.Contains(t, msg.Link, "https://wa.me/549112345?text=")

	w = do(r, http.MethodGet, "/students/missing/debt", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterArchivedReportDownload(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := do(r, http.MethodPost, "/reports/finance/archive?format=csv&period=NONE", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var link service.ReportLink
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &link))
	require.NotEmpty(t, link.URL)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, link.URL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "fecha,tipo,concepto,detalle,monto")

	w = do(r, http.MethodGet, "/reports/files/forged", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterClockShift(t *testing.T) {
	r, _ := newTestRouter(t, true)

	w := do(r, http.MethodPost, "/clock/shift", dto.ShiftClockRequest{Days: 30})
	require.Equal(t, http.StatusOK, w.Code)
	var clock dto.ClockResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &clock))
	assert.Equal(t, "2025-04-04", clock.Date)
	assert.True(t, clock.Simulated)

	w = do(r, http.MethodPost, "/clock/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &clock))
	assert.Equal(t, "2025-03-05", clock.Date)
	assert.False(t, clock.Simulated)
}
