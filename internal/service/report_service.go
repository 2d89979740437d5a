package service

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/gym-manager-api/internal/dto"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
	"github.com/noah-isme/gym-manager-api/pkg/export"
)

// Report formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type reportRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

type reportStore interface {
	Put(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Prune(retention time.Duration, now time.Time) ([]string, error)
}

type linkSigner interface {
	Sign(name string, now time.Time) (string, time.Time, error)
	Verify(token string, now time.Time) (string, error)
}

// ReportConfig tunes archived report links.
type ReportConfig struct {
	APIPrefix string
	Retention time.Duration
}

// Report is a rendered export ready to stream.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportLink points at an archived report.
type ReportLink struct {
	Filename  string    `json:"filename"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReportService renders finance reports and archives them behind signed
// download links.
type ReportService struct {
	state     stateReader
	dashboard *DashboardService
	renderers map[string]reportRenderer
	store     reportStore
	signer    linkSigner
	cfg       ReportConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs the report service. Store and signer may be
// nil, which disables archiving.
func NewReportService(state stateReader, dashboard *DashboardService, store reportStore, signer linkSigner, cfg ReportConfig, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dashboard == nil {
		dashboard = NewDashboardService(state, logger)
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 7 * 24 * time.Hour
	}
	return &ReportService{
		state:     state,
		dashboard: dashboard,
		renderers: map[string]reportRenderer{
			ReportFormatCSV: export.NewCSVExporter(),
			ReportFormatPDF: export.NewPDFExporter(),
		},
		store:  store,
		signer: signer,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// FinanceReport renders the movements of the selected range.
func (s *ReportService) FinanceReport(filter dto.FinanceFilter, format string) (Report, error) {
	format = strings.ToLower(format)
	if format == "" {
		format = ReportFormatCSV
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return Report{}, validationError("unsupported report format " + format)
	}
	summary, err := s.dashboard.Finance(filter)
	if err != nil {
		return Report{}, err
	}
	dataset := s.financeDataset(summary)
	body, err := renderer.Render(dataset)
	if err != nil {
		return Report{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	return Report{
		Filename:    fmt.Sprintf("finanzas_%s_%s.%s", strings.ToLower(summary.Period), rangeLabel(summary), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func rangeLabel(summary dto.FinanceSummaryResponse) string {
	if summary.Start == "" {
		return "historico"
	}
	return summary.Start + "_" + summary.End
}

func (s *ReportService) financeDataset(summary dto.FinanceSummaryResponse) export.Dataset {
	snap := s.state.Snapshot()
	names := studentNames(snap.Students)
	rng := DateRange{Start: summary.Start, End: summary.End}

	type movement struct {
		date string
		row  map[string]string
	}
	var movements []movement
	for _, p := range snap.Payments {
		if !rng.Contains(p.Date) {
			continue
		}
		name, ok := names[p.StudentID]
		if !ok {
			name = unknownStudentName
		}
		movements = append(movements, movement{date: p.Date, row: map[string]string{
			"fecha":    p.Date,
			"tipo":     "Ingreso",
			"concepto": feeConcept(p.Month, p.Year),
			"detalle":  name,
			"monto":    p.Amount.String(),
		}})
	}
	for _, e := range snap.Expenses {
		if !rng.Contains(e.Date) {
			continue
		}
		movements = append(movements, movement{date: e.Date, row: map[string]string{
			"fecha":    e.Date,
			"tipo":     "Gasto",
			"concepto": e.Category,
			"detalle":  e.Description,
			"monto":    e.Amount.Neg().String(),
		}})
	}
	sort.SliceStable(movements, func(i, j int) bool { return movements[i].date < movements[j].date })

	rows := make([]map[string]string, 0, len(movements))
	for _, m := range movements {
		rows = append(rows, m.row)
	}
	return export.Dataset{
		Title:   fmt.Sprintf("%s - Finanzas %s", snap.Settings.GymName, periodTitle(summary)),
		Headers: []string{"fecha", "tipo", "concepto", "detalle", "monto"},
		Rows:    rows,
		Summary: []export.SummaryLine{
			{Label: "Ingresos", Value: summary.TotalCollected.String()},
			{Label: "Gastos", Value: summary.TotalExpenses.String()},
			{Label: "Neto", Value: summary.NetProfit.String()},
			{Label: "Deuda morosa", Value: summary.TotalDelinquentDebt.String()},
		},
	}
}

func feeConcept(month, year int) string {
	if month < 0 || month >= len(MonthNames) {
		return fmt.Sprintf("Cuota %d", year)
	}
	return fmt.Sprintf("Cuota %s %d", MonthNames[month], year)
}

func periodTitle(summary dto.FinanceSummaryResponse) string {
	if summary.Start == "" {
		return "(histórico)"
	}
	return summary.Start + " a " + summary.End
}

// Archive renders a report, stores it and returns a signed download link.
// Files older than the retention window are pruned on the way.
func (s *ReportService) Archive(filter dto.FinanceFilter, format string) (ReportLink, error) {
	if s.store == nil || s.signer == nil {
		return ReportLink{}, appErrors.Clone(appErrors.ErrUnavailable, "report archive disabled")
	}
	report, err := s.FinanceReport(filter, format)
	if err != nil {
		return ReportLink{}, err
	}
	now := s.now()
	if removed, err := s.store.Prune(s.cfg.Retention, now); err != nil {
		s.logger.Warn("report prune failed", zap.Error(err))
	} else if len(removed) > 0 {
		s.logger.Info("old reports pruned", zap.Int("count", len(removed)))
	}

	name := fmt.Sprintf("%s_%s", now.UTC().Format("20060102T150405"), report.Filename)
	stored, err := s.store.Put(name, report.Body)
	if err != nil {
		return ReportLink{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	token, expiresAt, err := s.signer.Sign(stored, now)
	if err != nil {
		return ReportLink{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return ReportLink{
		Filename:  stored,
		Token:     token,
		URL:       prefix + "/reports/files/" + token,
		ExpiresAt: expiresAt,
	}, nil
}

// OpenArchived resolves a download token to the stored file.
func (s *ReportService) OpenArchived(token string) (*os.File, string, error) {
	if s.store == nil || s.signer == nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnavailable, "report archive disabled")
	}
	name, err := s.signer.Verify(token, s.now())
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report link invalid or expired")
	}
	file, err := s.store.Open(name)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report not found")
	}
	return file, name, nil
}

// ContentTypeFor returns the MIME type of an archived report name.
func ContentTypeFor(name string) string {
	switch {
	case strings.HasSuffix(name, "."+ReportFormatPDF):
		return "application/pdf"
	case strings.HasSuffix(name, "."+ReportFormatCSV):
		return "text/csv"
	}
	return "application/octet-stream"
}
