package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/pkg/spreadsheet"
)

// Diagnostic reasons.
const (
	ReasonUnparseable      = "unparseable"
	ReasonUnknownEnum      = "unknown_enum"
	ReasonUnknownSession   = "unknown_session"
	ReasonNoAcademicRecord = "no_academic_record"
	ReasonMissingResult    = "missing_result"
	ReasonMissingEpID      = "missing_ep_id"
	ReasonDuplicateEpID    = "duplicate_ep_id"
)

// Diagnostic reports a cell that could not be applied. Row is the 1-based
// sheet row, counting the header as row 1.
type Diagnostic struct {
	Row    int    `json:"row"`
	Column string `json:"column"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Result is the outcome of parsing a table: one record per data row plus
// the diagnostics collected while building them.
type Result struct {
	Records     []models.StudentRecord `json:"records"`
	Diagnostics []Diagnostic           `json:"diagnostics"`
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, ErrUnknownEnum):
		return ReasonUnknownEnum
	case errors.Is(err, ErrUnknownSession):
		return ReasonUnknownSession
	case errors.Is(err, ErrNoAcademicRecord):
		return ReasonNoAcademicRecord
	case errors.Is(err, ErrMissingResult):
		return ReasonMissingResult
	default:
		return ReasonUnparseable
	}
}

// RecordBuilder assembles a single record from one row. Cells must be applied
// in column order so that academic columns land on the session appended before them.
type RecordBuilder struct {
	registry    *Registry
	row         int
	record      models.StudentRecord
	diagnostics []Diagnostic
}

// NewRecordBuilder starts a record with the empty-student defaults.
func NewRecordBuilder(registry *Registry, row int) *RecordBuilder {
	return &RecordBuilder{registry: registry, row: row, record: models.NewStudentRecord()}
}

// Apply dispatches one cell. Unknown headers are ignored.
func (b *RecordBuilder) Apply(header, value string) {
	op, ok := b.registry.Lookup(header)
	if !ok {
		return
	}
	if err := op.Apply(&b.record, header, value); err != nil {
		b.diagnostics = append(b.diagnostics, Diagnostic{
			Row:    b.row,
			Column: header,
			Value:  value,
			Reason: reasonFor(err),
			Detail: err.Error(),
		})
	}
}

// Finish normalises the record and returns it with the row diagnostics.
func (b *RecordBuilder) Finish() (models.StudentRecord, []Diagnostic) {
	b.record.Phone.Normalize()
	if b.record.EpID == 0 {
		b.diagnostics = append(b.diagnostics, Diagnostic{
			Row:    b.row,
			Column: "ID",
			Reason: ReasonMissingEpID,
		})
	}
	return b.record, b.diagnostics
}

// Parser turns spreadsheet tables into student records.
type Parser struct {
	registry *Registry
	logger   *zap.Logger
}

// New constructs a parser. A nil registry uses DefaultRegistry.
func New(registry *Registry, logger *zap.Logger) *Parser {
	if registry == nil {
		registry = DefaultRegistry(DefaultAcademicGroups)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{registry: registry, logger: logger}
}

// Registry exposes the column registry used by the parser.
func (p *Parser) Registry() *Registry {
	return p.registry
}

type expandedColumn struct {
	index   int
	headers []string
}

// ParseTable builds one record per data row. It never fails: problems are
// reported through Result.Diagnostics. A row repeating an EP ID seen on an
// earlier row is still returned and flagged duplicate_ep_id.
func (p *Parser) ParseTable(table spreadsheet.Table) Result {
	columns := make([]expandedColumn, 0, len(table.Header))
	for i, header := range table.Header {
		headers := ExpandHeader(header)
		if len(headers) == 0 {
			continue
		}
		columns = append(columns, expandedColumn{index: i, headers: headers})
	}

	result := Result{
		Records:     make([]models.StudentRecord, 0, len(table.Rows)),
		Diagnostics: []Diagnostic{},
	}
	firstSeen := make(map[int64]int)
	for i, row := range table.Rows {
		builder := NewRecordBuilder(p.registry, i+2)
		for _, column := range columns {
			value := ""
			if column.index < len(row) {
				value = strings.TrimSpace(row[column.index])
			}
			for _, header := range column.headers {
				builder.Apply(header, value)
			}
		}
		record, diagnostics := builder.Finish()
		if record.EpID != 0 {
			if first, dup := firstSeen[record.EpID]; dup {
				diagnostics = append(diagnostics, Diagnostic{
					Row:    i + 2,
					Column: "ID",
					Value:  strconv.FormatInt(record.EpID, 10),
					Reason: ReasonDuplicateEpID,
					Detail: fmt.Sprintf("ep id already used on row %d", first),
				})
			} else {
				firstSeen[record.EpID] = i + 2
			}
		}
		result.Records = append(result.Records, record)
		result.Diagnostics = append(result.Diagnostics, diagnostics...)
	}

	p.logger.Debug("parsed student table",
		zap.Int("rows", len(table.Rows)),
		zap.Int("columns", len(columns)),
		zap.Int("diagnostics", len(result.Diagnostics)),
	)
	return result
}
