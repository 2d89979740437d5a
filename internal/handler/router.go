package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/middleware"
)

// Handlers groups the HTTP handlers mounted under the API prefix.
type Handlers struct {
	Students  *StudentHandler
	Billing   *BillingHandler
	Ledger    *LedgerHandler
	Settings  *SettingsHandler
	Dashboard *DashboardHandler
	Reports   *ReportHandler
	Metrics   *MetricsHandler
}

// Register mounts ops endpoints on r and the gym API under prefix. API
// routes answer 503 until ready reports true.
func Register(r *gin.Engine, prefix string, ready func() bool, h Handlers) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.RequireReady(ready))

	api.GET("/state", h.Settings.State)
	api.POST("/reset", h.Settings.Reset)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.POST("/schedule/check", h.Students.CheckSlot)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.POST("/:id/evaluations", h.Students.AddEvaluation)
	students.GET("/:id/debt", h.Students.Debt)
	students.GET("/:id/status", h.Students.Status)
	students.POST("/:id/schedule/move", h.Students.MoveSlot)
	students.GET("/:id/messages/debt", h.Students.DebtMessage)
	students.GET("/:id/messages/agenda", h.Students.AgendaMessage)

	api.GET("/fees", h.Billing.ListFees)
	api.POST("/fees/generate", h.Billing.GenerateFees)
	api.GET("/payments", h.Billing.ListPayments)
	api.POST("/payments", h.Billing.CreatePayment)
	api.POST("/payments/express", h.Billing.ExpressPayment)
	api.DELETE("/payments/:id", h.Billing.DeletePayment)
	api.GET("/rates", h.Billing.Rates)
	api.GET("/rates/history", h.Billing.RateHistory)
	api.PUT("/rates/:year/:month", h.Billing.SetRates)
	api.DELETE("/rates/:year/:month", h.Billing.DeleteRates)

	api.GET("/expenses", h.Ledger.ListExpenses)
	api.POST("/expenses", h.Ledger.CreateExpense)
	api.PUT("/expenses/:id", h.Ledger.UpdateExpense)
	api.DELETE("/expenses/:id", h.Ledger.DeleteExpense)
	api.GET("/guests", h.Ledger.ListGuests)
	api.POST("/guests", h.Ledger.CreateGuest)
	api.DELETE("/guests/:id", h.Ledger.DeleteGuest)
	api.GET("/attendance", h.Ledger.ListAttendance)
	api.POST("/attendance/toggle", h.Ledger.ToggleAttendance)

	settings := api.Group("/settings")
	settings.GET("", h.Settings.Get)
	settings.PUT("/gym", h.Settings.UpdateGym)
	settings.PUT("/templates", h.Settings.UpdateTemplates)
	settings.PUT("/capacity", h.Settings.UpdateCapacity)
	settings.PUT("/default-amount", h.Settings.UpdateDefaultAmount)

	clock := api.Group("/clock")
	clock.GET("", h.Settings.Clock)
	clock.PUT("", h.Settings.SetClock)
	clock.POST("/shift", h.Settings.ShiftClock)
	clock.POST("/day", h.Settings.SetClockDay)
	clock.POST("/reset", h.Settings.ResetClock)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/finance", h.Dashboard.Finance)
	dashboard.GET("/yearly", h.Dashboard.Yearly)
	dashboard.GET("/agenda", h.Dashboard.Agenda)
	dashboard.GET("/delinquents", h.Dashboard.Delinquents)

	api.GET("/reports/finance", h.Reports.Finance)
	api.POST("/reports/finance/archive", h.Reports.Archive)
	api.GET("/reports/files/:token", h.Reports.Download)
}
