package export

import (
	"context"
	"fmt"

	"github.com/go-co-op/gocron"
	"github.com/shrimpsizemoose/trekker/logger"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/studieplan/internal/app"
)

const reportColumns = "A:G"

// ValuesWriter is the part of the Sheets values API the exporter needs.
type ValuesWriter interface {
	Clear(ctx context.Context, sheetID, rng string) error
	Update(ctx context.Context, sheetID, rng string, rows [][]interface{}) error
}

type sheetsWriter struct {
	svc *sheets.Service
}

func (w *sheetsWriter) Clear(ctx context.Context, sheetID, rng string) error {
	_, err := w.svc.Spreadsheets.Values.Clear(sheetID, rng, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (w *sheetsWriter) Update(ctx context.Context, sheetID, rng string, rows [][]interface{}) error {
	_, err := w.svc.Spreadsheets.Values.Update(sheetID, rng,
		&sheets.ValueRange{Values: rows}).ValueInputOption("RAW").Context(ctx).Do()
	return err
}

// GSheetExporter periodically overwrites a spreadsheet tab with the grade report.
type GSheetExporter struct {
	service   *app.Service
	writer    ValuesWriter
	scheduler *gocron.Scheduler
}

func NewGSheetExporter(service *app.Service) (*GSheetExporter, error) {
	cfg := service.Config.GSheet
	if cfg.SheetID == "" || cfg.Schedule == "" {
		return nil, fmt.Errorf("gsheet.sheet_id and gsheet.schedule must be set")
	}

	svc, err := sheets.NewService(context.Background(), option.WithCredentialsFile(cfg.CredentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	exporter := newExporter(service, &sheetsWriter{svc: svc})
	_, err = exporter.scheduler.Cron(cfg.Schedule).Do(func() {
		if err := exporter.Export(context.Background()); err != nil {
			logger.Error.Printf("Export failed: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule export: %w", err)
	}

	exporter.scheduler.StartAsync()
	return exporter, nil
}

func newExporter(service *app.Service, writer ValuesWriter) *GSheetExporter {
	return &GSheetExporter{
		service:   service,
		writer:    writer,
		scheduler: gocron.NewScheduler(service.Now().Location()),
	}
}

func (e *GSheetExporter) Stop() {
	e.scheduler.Stop()
}

func (e *GSheetExporter) Export(ctx context.Context) error {
	cfg := e.service.Config.GSheet

	overview, err := e.service.GradesOverview()
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	rows := ReportRows(overview)

	if err := e.writer.Clear(ctx, cfg.SheetID, fmt.Sprintf("%s!%s", cfg.SheetName, reportColumns)); err != nil {
		return fmt.Errorf("failed to clear sheet: %w", err)
	}
	if err := e.writer.Update(ctx, cfg.SheetID, fmt.Sprintf("%s!A1", cfg.SheetName), rows); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.TimestampRange != "" {
		timestamp := fmt.Sprintf("UPD: %s", e.service.Now().Format("2 January 15:04"))
		updateRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.TimestampRange)
		if err := e.writer.Update(ctx, cfg.SheetID, updateRange, [][]interface{}{{timestamp}}); err != nil {
			return fmt.Errorf("failed to write timestamp: %w", err)
		}
	}

	logger.Info.Printf("Exported %d courses to sheet %s", len(overview.Courses), cfg.SheetID)
	return nil
}

// ReportRows lays the report out as sheet rows: a header, one row per course
// and a trailing GPA row. Missing averages are written as "-".
func ReportRows(overview *app.GradesOverview) [][]interface{} {
	rows := [][]interface{}{
		{"Code", "Name", "Semester", "Credits", "Grades", "Average", "Band"},
	}

	for _, c := range overview.Courses {
		var average, band interface{} = "-", ""
		if c.Average != nil {
			average, band = *c.Average, string(c.Band)
		}
		rows = append(rows, []interface{}{
			c.Code, c.Name, c.Semester, c.Credits, c.Graded, average, band,
		})
	}

	var gpa interface{} = "-"
	if overview.GPA != nil {
		gpa = *overview.GPA
	}
	rows = append(rows,
		[]interface{}{},
		[]interface{}{"GPA", "", "", "", overview.GradedCount, gpa, fmt.Sprintf("%d%% passing", overview.PassingRate)},
	)
	return rows
}
