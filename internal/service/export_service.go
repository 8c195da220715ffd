package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/export"
)

// ExportFormat selects the rendering of an export.
type ExportFormat string

// Supported export formats.
const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ContentType returns the MIME type of the format.
func (f ExportFormat) ContentType() string {
	if f == ExportFormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename string
	Format   ExportFormat
	Data     []byte
}

type statisticsProvider interface {
	Summary(ctx context.Context) (*models.Statistics, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	RenderReport(report export.Report) ([]byte, error)
}

type pdfRenderer interface {
	RenderReport(report export.Report) ([]byte, error)
}

// ExportService renders the statistics report and the student roster.
type ExportService struct {
	stats    statisticsProvider
	students studentSnapshotSource
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers use the defaults.
func NewExportService(stats statisticsProvider, students studentSnapshotSource, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{stats: stats, students: students, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Statistics renders the statistics bundle as a sectioned report.
func (s *ExportService) Statistics(ctx context.Context, format ExportFormat) (*ExportFile, error) {
	stats, _, err := s.stats.Summary(ctx)
	if err != nil {
		return nil, err
	}
	report := BuildStatisticsReport(stats)
	report.Subtitle = "Generated " + s.now().UTC().Format(time.RFC1123)

	var data []byte
	switch format {
	case ExportFormatCSV:
		data, err = s.csv.RenderReport(report)
	case ExportFormatPDF:
		data, err = s.pdf.RenderReport(report)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statistics")
	}
	s.logger.Info("statistics exported", zap.String("format", string(format)), zap.Int("bytes", len(data)))
	return &ExportFile{Filename: s.filename("statistics", format), Format: format, Data: data}, nil
}

// Roster renders every stored student as one CSV row.
func (s *ExportService) Roster(ctx context.Context) (*ExportFile, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	data, err := s.csv.Render(BuildRosterDataset(students))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster")
	}
	s.logger.Info("roster exported", zap.Int("students", len(students)))
	return &ExportFile{Filename: s.filename("students", ExportFormatCSV), Format: ExportFormatCSV, Data: data}, nil
}

func (s *ExportService) filename(prefix string, format ExportFormat) string {
	return fmt.Sprintf("%s_%s.%s", prefix, s.now().UTC().Format("20060102_150405"), format)
}

var rosterHeaders = []string{
	"EP ID", "Name", "Arabic Name", "Gender", "Age", "Nationality", "Status",
	"Current Level", "Initial Session", "Primary Phone", "Sessions Attended", "Last Result",
}

// BuildRosterDataset flattens student records into roster rows.
func BuildRosterDataset(students []models.StudentRecord) export.Dataset {
	rows := make([]map[string]string, 0, len(students))
	for i := range students {
		student := &students[i]
		age := models.UnknownAge
		if student.Age.Known {
			age = strconv.Itoa(student.Age.Years)
		}
		phone := ""
		if primary, ok := student.Phone.Primary(); ok {
			phone = strconv.FormatInt(primary.Number, 10)
		}
		lastResult := ""
		if last := student.LastAcademicRecord(); last != nil {
			lastResult = string(last.Result())
		}
		rows = append(rows, map[string]string{
			"EP ID":             strconv.FormatInt(student.EpID, 10),
			"Name":              student.Name.English,
			"Arabic Name":       student.Name.Arabic,
			"Gender":            student.Gender,
			"Age":               age,
			"Nationality":       string(student.Nationality),
			"Status":            string(student.Status.CurrentStatus),
			"Current Level":     string(student.CurrentLevel),
			"Initial Session":   student.InitialSession,
			"Primary Phone":     phone,
			"Sessions Attended": strconv.Itoa(len(student.AcademicRecords)),
			"Last Result":       lastResult,
		})
	}
	return export.Dataset{Headers: rosterHeaders, Rows: rows}
}

// BuildStatisticsReport lays the statistics bundle out as titled tables.
func BuildStatisticsReport(stats *models.Statistics) export.Report {
	report := export.Report{Title: "Student Statistics"}
	if stats.CurrentSession != "" {
		report.Title += " - " + stats.CurrentSession
	}

	report.Sections = append(report.Sections,
		export.Section{Title: "Totals", Data: pairs("Metric", "Value", [][2]string{
			{"Registered", strconv.Itoa(stats.TotalRegistered)},
			{"Active", strconv.Itoa(stats.TotalActive)},
			{"Enrollment", strconv.Itoa(stats.TotalEnrollment)},
			{"Eligible", strconv.Itoa(stats.TotalEligible)},
			{"New next session", strconv.Itoa(stats.TotalNewNextSession)},
			{"Placement pending", strconv.Itoa(stats.TotalPending)},
			{"No contact list", strconv.Itoa(stats.TotalNCL)},
			{"Teachers", strconv.Itoa(stats.TotalTeachers)},
			{"English teachers", strconv.Itoa(stats.TotalEnglishTeachers)},
			{"Illiterate (Arabic)", strconv.Itoa(stats.TotalIlliterateArabic)},
			{"Illiterate (English)", strconv.Itoa(stats.TotalIlliterateEnglish)},
			{"Average age", strconv.FormatFloat(stats.AverageAge, 'f', 1, 64)},
		})},
		countSection("Status", "Status", stats.StatusCounts),
		countSection("Active Status Details", "Detail", stats.ActiveStatusDetailsCounts),
		countSection("Active Nationality", "Nationality", stats.ActiveNationalityCounts),
		countSection("Active Gender", "Gender", stats.ActiveGenderCounts),
		countSection("Active Level", "Level", stats.ActiveLevelCounts),
		countSection("Active Initial Year", "Year", stats.ActiveInitialYearCounts),
		countSection("Sessions Attended", "Sessions", stats.SessionsAttendedCounts),
		countSection("Enrollment per Session", "Session", stats.SessionCounts),
		countSection("Placement Level", "Level", stats.PlacementLevelCounts),
		countSection("Withdraw Reasons", "Reason", stats.DroppedOutReasonCounts),
		countSection("Waiting List Outcomes", "Outcome", stats.WaitingListOutcomeCounts),
		resultsSection(stats),
		registrationSection(stats.PlacementRegistrationCounts),
	)
	return report
}

func pairs(keyHeader, valueHeader string, values [][2]string) export.Dataset {
	rows := make([]map[string]string, 0, len(values))
	for _, kv := range values {
		rows = append(rows, map[string]string{keyHeader: kv[0], valueHeader: kv[1]})
	}
	return export.Dataset{Headers: []string{keyHeader, valueHeader}, Rows: rows}
}

func countSection[K ~string](title, label string, counts map[K]int) export.Section {
	keys := make([]string, 0, len(counts))
	for key := range counts {
		keys = append(keys, string(key))
	}
	sort.Strings(keys)
	values := make([][2]string, 0, len(keys))
	for _, key := range keys {
		values = append(values, [2]string{key, strconv.Itoa(counts[K(key)])})
	}
	return export.Section{Title: title, Data: pairs(label, "Count", values)}
}

func resultsSection(stats *models.Statistics) export.Section {
	headers := []string{"Level", "P", "F", "WD", "Total"}
	levels := make([]string, 0, len(stats.OverallResultCountsByMergedLevel))
	for level := range stats.OverallResultCountsByMergedLevel {
		levels = append(levels, string(level))
	}
	sort.Strings(levels)

	row := func(label string, counts models.ResultCounts) map[string]string {
		return map[string]string{
			"Level": label,
			"P":     strconv.Itoa(counts.P),
			"F":     strconv.Itoa(counts.F),
			"WD":    strconv.Itoa(counts.WD),
			"Total": strconv.Itoa(counts.Total()),
		}
	}
	rows := make([]map[string]string, 0, len(levels)+1)
	for _, level := range levels {
		rows = append(rows, row(level, stats.OverallResultCountsByMergedLevel[models.Level(level)]))
	}
	rows = append(rows, row("All", stats.OverallResultCounts))
	return export.Section{Title: "Results by Level", Data: export.Dataset{Headers: headers, Rows: rows}}
}

func registrationSection(registrations []models.PlacementRegistration) export.Section {
	headers := []string{"Session", "Status", "Invited", "Registered", "Rate %"}
	rows := make([]map[string]string, 0, len(registrations)*2)
	for _, reg := range registrations {
		for _, status := range []models.Status{models.StatusNew, models.StatusReturn} {
			rows = append(rows, map[string]string{
				"Session":    reg.Session,
				"Status":     string(status),
				"Invited":    strconv.Itoa(reg.InviteCounts[status]),
				"Registered": strconv.Itoa(reg.RegistrationCounts[status]),
				"Rate %":     strconv.Itoa(reg.Rates[status]),
			})
		}
	}
	return export.Section{Title: "Placement Registrations", Data: export.Dataset{Headers: headers, Rows: rows}}
}
