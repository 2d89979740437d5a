package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	"github.com/noah-isme/gym-manager-api/internal/models"
	"github.com/noah-isme/gym-manager-api/internal/service"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
)

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

type studentServiceMock struct {
	studentService
	student  models.Student
	getErr   error
	moveErr  error
	moveCall int
}

func (m *studentServiceMock) GetStudent(id string) (models.Student, error) {
	return m.student, m.getErr
}

func (m *studentServiceMock) MoveSlot(ctx context.Context, studentID string, req dto.MoveSlotRequest) (bool, models.Student, error) {
	m.moveCall++
	if m.moveErr != nil {
		return false, models.Student{}, m.moveErr
	}
	return true, m.student, nil
}

func TestStudentHandlerMoveSlotCapacityCarriesMovedFalse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &studentServiceMock{moveErr: appErrors.Clone(appErrors.ErrCapacityExceeded, "shift Lun 08:00 is full")}
	handler := NewStudentHandler(mock, nil)

	body, _ := json.Marshal(dto.MoveSlotRequest{FromDay: "Mar", FromStartTime: "08:00", ToDay: "Lun", ToStartTime: "08:00"})
	c, w := newGinContext(http.MethodPost, "/students/s1/schedule/move", body)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.MoveSlot(c)
	require.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, env.Error.Code)
	var moved dto.MoveSlotResponse
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	assert.False(t, moved.Moved)
}

func TestStudentHandlerMoveSlotSameShiftIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &studentServiceMock{student: models.Student{ID: "s1", Name: "Juan"}}
	handler := NewStudentHandler(mock, nil)

	body, _ := json.Marshal(dto.MoveSlotRequest{FromDay: "Lun", FromStartTime: "08:00", ToDay: "Lun", ToStartTime: "08:00"})
	c, w := newGinContext(http.MethodPost, "/students/s1/schedule/move", body)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}

	handler.MoveSlot(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, mock.moveCall)
}

func TestStudentHandlerInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{}, nil)
	c, w := newGinContext(http.MethodPost, "/students", []byte(`invalid`))

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentHandlerListRejectsUnknownStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{}, nil)
	c, w := newGinContext(http.MethodGet, "/students?status=GONE", nil)

	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type billingServiceMock struct {
	billingService
	filter dto.FeeFilter
}

func (m *billingServiceMock) ListFees(filter dto.FeeFilter) []models.Fee {
	m.filter = filter
	return []models.Fee{}
}

func TestBillingHandlerListFeesParsesFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &billingServiceMock{}
	handler := NewBillingHandler(mock)

	c, w := newGinContext(http.MethodGet, "/fees?studentId=s1&month=2&year=2025", nil)
	handler.ListFees(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s1", mock.filter.StudentID)
	require.NotNil(t, mock.filter.Month)
	assert.Equal(t, 2, *mock.filter.Month)

	c, w = newGinContext(http.MethodGet, "/fees?month=march", nil)
	handler.ListFees(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandlerRatesPathMustBeNumeric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewBillingHandler(&billingServiceMock{})
	c, w := newGinContext(http.MethodDelete, "/rates/2025/feb", nil)
	c.Params = gin.Params{{Key: "year", Value: "2025"}, {Key: "month", Value: "feb"}}

	handler.DeleteRates(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type reportServiceMock struct {
	reportService
	report service.Report
	err    error
	file   string
}

func (m *reportServiceMock) FinanceReport(filter dto.FinanceFilter, format string) (service.Report, error) {
	return m.report, m.err
}

func (m *reportServiceMock) OpenArchived(token string) (*os.File, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	f, err := os.Open(m.file)
	return f, filepath.Base(m.file), err
}

func TestReportHandlerFinanceAttachment(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewReportHandler(&reportServiceMock{report: service.Report{
		Filename: "finanzas_current.csv", ContentType: "text/csv", Body: []byte("fecha,tipo\n"),
	}})

	c, w := newGinContext(http.MethodGet, "/reports/finance?format=csv", nil)
	handler.Finance(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "finanzas_current.csv")
	assert.Equal(t, "fecha,tipo\n", w.Body.String())
}

func TestReportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	path := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3"), 0o600))
	handler := NewReportHandler(&reportServiceMock{file: path})

	c, w := newGinContext(http.MethodGet, "/reports/files/token", nil)
	c.Params = gin.Params{{Key: "token", Value: "token"}}
	handler.Download(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "%PDF-1.3", w.Body.String())

	handler = NewReportHandler(&reportServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "report link invalid or expired")})
	c, w = newGinContext(http.MethodGet, "/reports/files/bad", nil)
	handler.Download(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboardHandlerAgendaValidatesFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(nil)

	c, w := newGinContext(http.MethodGet, "/dashboard/agenda?day=Dom", nil)
	handler.Agenda(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/dashboard/agenda?shift=late", nil)
	handler.Agenda(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ready := false
	handler := NewMetricsHandler(service.NewMetricsService(), func() bool { return ready })

	c, w := newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	ready = true
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	handler.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"persistence"`)
}
