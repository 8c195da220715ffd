package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/epd-student-api/internal/models"
)

// StudentRepository persists student records as JSONB documents keyed by EP ID.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

type studentRow struct {
	EpID     int64          `db:"ep_id"`
	Document types.JSONText `db:"document"`
}

func (row studentRow) decode() (models.StudentRecord, error) {
	var student models.StudentRecord
	if err := json.Unmarshal(row.Document, &student); err != nil {
		return models.StudentRecord{}, fmt.Errorf("decode student %d: %w", row.EpID, err)
	}
	student.EpID = row.EpID
	return student, nil
}

func decodeStudents(rows []studentRow) ([]models.StudentRecord, error) {
	students := make([]models.StudentRecord, 0, len(rows))
	for _, row := range rows {
		student, err := row.decode()
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	return students, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns one page of students matching the filter, ordered by English name.
// Search matches an English-name prefix, an Arabic-name substring, the exact
// EP ID or a phone number prefix or suffix.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentRecord, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "document->'status'->>'currentStatus' = "+arg(string(filter.Status)))
	}
	if filter.ActiveOnly {
		conditions = append(conditions, fmt.Sprintf("document->'status'->>'currentStatus' IN (%s, %s)",
			arg(string(models.StatusNew)), arg(string(models.StatusReturn))))
	}
	if filter.Nationality != "" {
		conditions = append(conditions, "document->>'nationality' = "+arg(string(filter.Nationality)))
	}
	if filter.CurrentLevel != "" {
		conditions = append(conditions, "document->>'currentLevel' = "+arg(string(filter.CurrentLevel)))
	}
	if filter.InitialSession != "" {
		conditions = append(conditions, "document->>'initialSession' = "+arg(filter.InitialSession))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		escaped := likeEscaper.Replace(search)
		prefix := arg(strings.ToLower(escaped) + "%")
		substring := arg("%" + escaped + "%")
		exact := arg(search)
		phonePrefix := arg(escaped + "%")
		phoneSuffix := arg("%" + escaped)
		conditions = append(conditions, fmt.Sprintf(`(LOWER(document->'name'->>'english') LIKE %s
        OR document->'name'->>'arabic' LIKE %s
        OR ep_id::text = %s
        OR EXISTS (SELECT 1 FROM jsonb_array_elements(COALESCE(document->'phone'->'phoneNumbers', '[]'::jsonb)) p
            WHERE p->>'number' LIKE %s OR p->>'number' LIKE %s))`, prefix, substring, exact, phonePrefix, phoneSuffix))
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT ep_id, document FROM students %s
        ORDER BY LOWER(document->'name'->>'english') ASC, ep_id ASC LIMIT %d OFFSET %d`, where, size, offset)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	students, err := decodeStudents(rows)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// ListAll returns every student, ordered by EP ID.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.StudentRecord, error) {
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, "SELECT ep_id, document FROM students ORDER BY ep_id"); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return decodeStudents(rows)
}

// FindByEpID fetches a single student. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByEpID(ctx context.Context, epID int64) (*models.StudentRecord, error) {
	var row studentRow
	if err := r.db.GetContext(ctx, &row, "SELECT ep_id, document FROM students WHERE ep_id = $1", epID); err != nil {
		return nil, err
	}
	student, err := row.decode()
	if err != nil {
		return nil, err
	}
	return &student, nil
}

const insertStudentQuery = `INSERT INTO students (ep_id, document, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (ep_id) DO NOTHING`

// Insert stores a new record. It returns false when the EP ID is already taken,
// leaving the stored document untouched.
func (r *StudentRepository) Insert(ctx context.Context, student *models.StudentRecord) (bool, error) {
	doc, err := json.Marshal(student)
	if err != nil {
		return false, fmt.Errorf("encode student %d: %w", student.EpID, err)
	}
	res, err := r.db.ExecContext(ctx, insertStudentQuery, student.EpID, types.JSONText(doc), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("insert student %d: %w", student.EpID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert student %d: %w", student.EpID, err)
	}
	return affected == 1, nil
}

const upsertStudentQuery = `INSERT INTO students (ep_id, document, created_at, updated_at)
VALUES ($1, $2, $3, $3)
ON CONFLICT (ep_id) DO UPDATE SET document = EXCLUDED.document, updated_at = EXCLUDED.updated_at`

// Upsert stores the record, replacing any document with the same EP ID.
func (r *StudentRepository) Upsert(ctx context.Context, student *models.StudentRecord) error {
	doc, err := json.Marshal(student)
	if err != nil {
		return fmt.Errorf("encode student %d: %w", student.EpID, err)
	}
	if _, err := r.db.ExecContext(ctx, upsertStudentQuery, student.EpID, types.JSONText(doc), time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert student %d: %w", student.EpID, err)
	}
	return nil
}

// UpsertBatch stores all records in one transaction and returns how many were written.
func (r *StudentRepository) UpsertBatch(ctx context.Context, students []models.StudentRecord) (int, error) {
	if len(students) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin student batch: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, upsertStudentQuery)
	if err != nil {
		return 0, fmt.Errorf("prepare student batch: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for i := range students {
		doc, err := json.Marshal(&students[i])
		if err != nil {
			return 0, fmt.Errorf("encode student %d: %w", students[i].EpID, err)
		}
		if _, err := stmt.ExecContext(ctx, students[i].EpID, types.JSONText(doc), now); err != nil {
			return 0, fmt.Errorf("upsert student %d: %w", students[i].EpID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit student batch: %w", err)
	}
	commit = true
	return len(students), nil
}
