package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/internal/parser"
	"github.com/noah-isme/epd-student-api/internal/repository"
	"github.com/noah-isme/epd-student-api/internal/service"
	"github.com/noah-isme/epd-student-api/pkg/config"
	"github.com/noah-isme/epd-student-api/pkg/database"
	"github.com/noah-isme/epd-student-api/pkg/logger"
)

// noopWriter satisfies the batch writer for dry runs that never reach the database.
type noopWriter struct{}

func (noopWriter) UpsertBatch(context.Context, []models.StudentRecord) (int, error) {
	return 0, nil
}

func main() {
	var (
		file           string
		sheet          string
		groups         int
		persist        bool
		asJSON         bool
		maxDiagnostics int
		timeout        time.Duration
	)

	flag.StringVar(&file, "file", "", "Path to the .xlsx or .csv student sheet")
	flag.StringVar(&sheet, "sheet", "", "Worksheet name (xlsx only, defaults to IMPORT_SHEET_NAME or the first sheet)")
	flag.IntVar(&groups, "groups", 0, "Number of repeated academic column groups (defaults to IMPORT_ACADEMIC_GROUPS)")
	flag.BoolVar(&persist, "persist", false, "Upsert parsed students into Postgres")
	flag.BoolVar(&asJSON, "json", false, "Print the full summary as JSON")
	flag.IntVar(&maxDiagnostics, "max-diagnostics", 50, "Diagnostics to print in table mode (0 for all)")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall import timeout")
	flag.Parse()

	if file == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if groups <= 0 {
		groups = cfg.Import.AcademicGroups
	}
	if sheet == "" {
		sheet = cfg.Import.SheetName
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var writer interface {
		UpsertBatch(context.Context, []models.StudentRecord) (int, error)
	} = noopWriter{}
	if persist {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect database", zap.Error(err))
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to migrate schema", zap.Error(err))
		}
		writer = repository.NewStudentRepository(db)
	}

	f, err := os.Open(file)
	if err != nil {
		logr.Fatal("failed to open spreadsheet", zap.String("file", file), zap.Error(err))
	}
	defer f.Close()

	importer := service.NewImportService(
		parser.New(parser.DefaultRegistry(groups), logr),
		writer,
		nil,
		nil,
		service.ImportConfig{DefaultSheet: sheet},
		logr,
	)
	summary, err := importer.Import(ctx, f, service.ImportRequest{
		Filename: filepath.Base(file),
		Sheet:    sheet,
		DryRun:   !persist,
	})
	if err != nil {
		logr.Fatal("import failed", zap.Error(err))
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			logr.Fatal("failed to encode summary", zap.Error(err))
		}
		return
	}
	printSummary(summary, maxDiagnostics)
}

func printSummary(summary *service.ImportSummary, maxDiagnostics int) {
	fmt.Printf("file:       %s\n", summary.Filename)
	fmt.Printf("rows:       %d\n", summary.Rows)
	fmt.Printf("skipped:    %d (missing or repeated EP ID)\n", summary.Skipped)
	if summary.DryRun {
		fmt.Println("persisted:  dry run")
	} else {
		fmt.Printf("persisted:  %d\n", summary.Persisted)
	}

	if len(summary.Reasons) > 0 {
		reasons := make([]string, 0, len(summary.Reasons))
		for reason := range summary.Reasons {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		fmt.Println("\ndiagnostics by reason:")
		for _, reason := range reasons {
			fmt.Printf("  %-20s %d\n", reason, summary.Reasons[reason])
		}
	}

	if len(summary.Diagnostics) == 0 {
		return
	}
	fmt.Println()
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROW\tCOLUMN\tREASON\tVALUE")
	for i, d := range summary.Diagnostics {
		if maxDiagnostics > 0 && i == maxDiagnostics {
			fmt.Fprintf(tw, "...\t%d more\t\t\n", len(summary.Diagnostics)-maxDiagnostics)
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", d.Row, d.Column, d.Reason, d.Value)
	}
	_ = tw.Flush()
}
