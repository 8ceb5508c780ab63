package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/studyflow-api/internal/dto"
	appErrors "github.com/noah-isme/studyflow-api/pkg/errors"
	"github.com/noah-isme/studyflow-api/pkg/export"
)

// ExportFormat selects the rendered download format.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type currentPlanProvider interface {
	Current(ctx context.Context, userID string) (*dto.PlanResponse, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportPayload is a rendered plan ready for download.
type ExportPayload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the active plan as a weekly planner download.
type ExportService struct {
	plans  currentPlanProvider
	csv    csvRenderer
	pdf    pdfRenderer
	logger *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(plans currentPlanProvider, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{plans: plans, csv: csv, pdf: pdf, logger: logger}
}

// ExportCurrent renders the user's active plan in the requested format.
func (s *ExportService) ExportCurrent(ctx context.Context, userID string, format ExportFormat) (*ExportPayload, error) {
	plan, _, err := s.plans.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	dataset := planDataset(plan)
	stamp := plan.HorizonStart.Format("2006-01-02")

	switch format {
	case ExportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportPayload{
			Filename:    fmt.Sprintf("study-plan-%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case ExportFormatPDF:
		title := fmt.Sprintf("Study Plan - week of %s", stamp)
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportPayload{
			Filename:    fmt.Sprintf("study-plan-%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func planDataset(plan *dto.PlanResponse) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Day", "Start", "End", "Task", "Subject", "Priority", "Sessions", "Confidence"},
		Rows:    make([]map[string]string, 0, len(plan.Schedule)),
	}
	for _, item := range plan.Schedule {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Day":        item.ScheduledStart.Format("Monday"),
			"Start":      item.ScheduledStart.Format("15:04"),
			"End":        item.ScheduledEnd.Format("15:04"),
			"Task":       item.Title,
			"Subject":    item.Subject,
			"Priority":   strings.ToUpper(item.Priority),
			"Sessions":   fmt.Sprintf("%d", item.SlotCount),
			"Confidence": fmt.Sprintf("%.0f%%", item.Confidence*100),
		})
	}
	return dataset
}

// ParseExportFormat validates a raw query value. An empty value defaults to
// CSV.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "csv":
		return ExportFormatCSV, nil
	case "pdf":
		return ExportFormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}
