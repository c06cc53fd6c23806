package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ovolkov/finbot/internal/database/repository"
)

// Service builds reports from the ledger and materializes their artifacts.
type Service struct {
	transactions *repository.TransactionRepo
	workDir      string
	cleanupDelay time.Duration
	currency     string
	log          zerolog.Logger
}

func NewService(transactions *repository.TransactionRepo, workDir string, cleanupDelay time.Duration, currency string, log zerolog.Logger) *Service {
	return &Service{
		transactions: transactions,
		workDir:      workDir,
		cleanupDelay: cleanupDelay,
		currency:     currency,
		log:          log,
	}
}

// Artifacts are the generated files for one report, already scheduled for
// removal after the cleanup delay.
type Artifacts struct {
	Report  *Report
	CSVPath string
	PDFPath string
	Images  []ChartImage
}

// BuildForPeriod fetches the user's transactions for the inclusive day range
// and aggregates them. Returns ErrNoOperations when nothing matched.
func (s *Service) BuildForPeriod(ctx context.Context, userID int64, from, to time.Time) (*Report, error) {
	entries, err := s.transactions.ListJoined(ctx, userID, repository.EntryFilters{
		From:   from,
		To:     to,
		Oldest: true,
	})
	if err != nil {
		return nil, err
	}
	return Build(entries, from, to, s.currency)
}

// Generate materializes the CSV, chart and PDF artifacts for rep. Failed
// charts are logged and skipped; the remaining artifacts are still produced.
// Every generated file is scheduled for deletion after the cleanup delay,
// whether or not delivery succeeds.
func (s *Service) Generate(rep *Report, userID int64) (Artifacts, error) {
	a := Artifacts{Report: rep}

	csvPath := filepath.Join(s.workDir, fmt.Sprintf("report_%d.csv", userID))
	f, err := os.Create(csvPath)
	if err != nil {
		return a, fmt.Errorf("create csv: %w", err)
	}
	if err := rep.WriteCSV(f); err != nil {
		f.Close()
		return a, fmt.Errorf("write csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return a, err
	}
	a.CSVPath = csvPath

	images, errs := rep.RenderCharts(s.workDir, userID)
	for _, err := range errs {
		s.log.Warn().Err(err).Msg("chart skipped")
	}
	a.Images = images

	pdfPath := filepath.Join(s.workDir, fmt.Sprintf("report_%d.pdf", userID))
	if err := WritePDF(pdfPath, rep.Lines(), images); err != nil {
		s.log.Warn().Err(err).Msg("pdf skipped")
	} else {
		a.PDFPath = pdfPath
	}

	paths := []string{a.CSVPath}
	if a.PDFPath != "" {
		paths = append(paths, a.PDFPath)
	}
	for _, img := range images {
		paths = append(paths, img.Path)
	}
	CleanupAfter(s.log, s.cleanupDelay, paths...)

	return a, nil
}
