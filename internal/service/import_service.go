package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/internal/parser"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/spreadsheet"
)

type studentBatchWriter interface {
	UpsertBatch(ctx context.Context, students []models.StudentRecord) (int, error)
}

// Import outcomes used for logging and metrics.
const (
	ImportOutcomePersisted = "persisted"
	ImportOutcomeDryRun    = "dry_run"
	ImportOutcomeFailed    = "failed"
)

// ImportRequest describes an uploaded spreadsheet.
type ImportRequest struct {
	Filename string
	Sheet    string
	DryRun   bool
}

// ImportSummary reports what an import parsed and stored.
type ImportSummary struct {
	Filename    string                 `json:"filename"`
	Rows        int                    `json:"rows"`
	Persisted   int                    `json:"persisted"`
	Skipped     int                    `json:"skipped"`
	DryRun      bool                   `json:"dryRun"`
	Reasons     map[string]int         `json:"reasons"`
	Diagnostics []parser.Diagnostic    `json:"diagnostics"`
	Records     []models.StudentRecord `json:"records,omitempty"`
}

// ImportService turns spreadsheet uploads into stored student records.
type ImportService struct {
	parser       *parser.Parser
	repo         studentBatchWriter
	refresher    refreshScheduler
	metrics      *MetricsService
	logger       *zap.Logger
	maxSize      int64
	defaultSheet string
}

// ImportConfig holds the limits applied to uploads.
type ImportConfig struct {
	MaxFileSizeBytes int64
	DefaultSheet     string
}

// NewImportService constructs the import service. refresher and metrics may be nil.
func NewImportService(p *parser.Parser, repo studentBatchWriter, refresher refreshScheduler, metrics *MetricsService, cfg ImportConfig, logger *zap.Logger) *ImportService {
	if p == nil {
		p = parser.New(nil, logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		parser:       p,
		repo:         repo,
		refresher:    refresher,
		metrics:      metrics,
		logger:       logger,
		maxSize:      cfg.MaxFileSizeBytes,
		defaultSheet: cfg.DefaultSheet,
	}
}

// Import parses the spreadsheet and, unless DryRun is set, upserts every row
// carrying an EP ID. Rows without one, and repeats of an EP ID already seen in
// the sheet, are reported and skipped.
func (s *ImportService) Import(ctx context.Context, r io.Reader, req ImportRequest) (*ImportSummary, error) {
	table, err := s.read(r, req)
	if err != nil {
		s.metrics.RecordImport(ImportOutcomeFailed, 0, nil)
		return nil, err
	}

	result := s.parser.ParseTable(table)
	summary := &ImportSummary{
		Filename:    req.Filename,
		Rows:        len(result.Records),
		DryRun:      req.DryRun,
		Reasons:     make(map[string]int),
		Diagnostics: result.Diagnostics,
	}
	for _, diagnostic := range result.Diagnostics {
		summary.Reasons[diagnostic.Reason]++
	}

	// The first row carrying an EP ID wins; later rows with the same ID were
	// flagged duplicate_ep_id by the parser and are not stored.
	keyed := make([]models.StudentRecord, 0, len(result.Records))
	seen := make(map[int64]struct{}, len(result.Records))
	for _, record := range result.Records {
		if _, dup := seen[record.EpID]; record.EpID == 0 || dup {
			summary.Skipped++
			continue
		}
		seen[record.EpID] = struct{}{}
		keyed = append(keyed, record)
	}

	if req.DryRun {
		summary.Records = result.Records
		s.finish(summary, ImportOutcomeDryRun)
		return summary, nil
	}

	written, err := s.repo.UpsertBatch(ctx, keyed)
	if err != nil {
		s.metrics.RecordImport(ImportOutcomeFailed, summary.Rows, summary.Reasons)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store imported students")
	}
	summary.Persisted = written
	if written > 0 && s.refresher != nil {
		s.refresher.ScheduleRefresh(ctx, "student_import")
	}
	s.finish(summary, ImportOutcomePersisted)
	return summary, nil
}

func (s *ImportService) read(r io.Reader, req ImportRequest) (spreadsheet.Table, error) {
	if s.maxSize > 0 {
		r = io.LimitReader(r, s.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return spreadsheet.Table{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return spreadsheet.Table{}, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxSize))
	}

	sheet := req.Sheet
	if sheet == "" {
		sheet = s.defaultSheet
	}
	table, err := spreadsheet.Read(bytes.NewReader(data), req.Filename, sheet)
	switch {
	case err == nil:
		return table, nil
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		return spreadsheet.Table{}, appErrors.Wrap(err, appErrors.ErrUnsupportedFormat.Code, appErrors.ErrUnsupportedFormat.Status, "only .xlsx and .csv files are supported")
	default:
		return spreadsheet.Table{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to parse spreadsheet")
	}
}

func (s *ImportService) finish(summary *ImportSummary, outcome string) {
	s.metrics.RecordImport(outcome, summary.Rows, summary.Reasons)
	s.logger.Info("student import finished",
		zap.String("filename", summary.Filename),
		zap.String("outcome", outcome),
		zap.Int("rows", summary.Rows),
		zap.Int("persisted", summary.Persisted),
		zap.Int("skipped", summary.Skipped),
		zap.Int("diagnostics", len(summary.Diagnostics)),
	)
}
