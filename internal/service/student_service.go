package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentRecord, int, error)
	FindByEpID(ctx context.Context, epID int64) (*models.StudentRecord, error)
	Insert(ctx context.Context, student *models.StudentRecord) (bool, error)
	Upsert(ctx context.Context, student *models.StudentRecord) error
}

// refreshScheduler is notified whenever stored students change.
type refreshScheduler interface {
	ScheduleRefresh(ctx context.Context, reason string)
}

// WithdrawRequest carries the withdraw form.
type WithdrawRequest struct {
	InviteTag        bool                     `json:"inviteTag"`
	NoContactList    bool                     `json:"noContactList"`
	WithdrawDate     string                   `json:"withdrawDate"`
	DroppedOutReason *models.DroppedOutReason `json:"droppedOutReason"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	refresher refreshScheduler
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service. refresher may be nil.
func NewStudentService(repo studentRepository, refresher refreshScheduler, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, refresher: refresher, validator: validate, logger: logger, now: time.Now}
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentRecord, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown status "+string(filter.Status))
	}
	if filter.Nationality != "" && !filter.Nationality.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown nationality "+string(filter.Nationality))
	}
	if filter.CurrentLevel != "" && !filter.CurrentLevel.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown level "+string(filter.CurrentLevel))
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one student by EP ID.
func (s *StudentService) Get(ctx context.Context, epID int64) (*models.StudentRecord, error) {
	student, err := s.repo.FindByEpID(ctx, epID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create stores a new student. A taken EP ID is a conflict and leaves the
// stored document untouched.
func (s *StudentService) Create(ctx context.Context, student models.StudentRecord) (*models.StudentRecord, error) {
	if err := s.validate(&student); err != nil {
		return nil, err
	}
	created, err := s.repo.Insert(ctx, &student)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	if !created {
		return nil, appErrors.Clone(appErrors.ErrConflict, "ep id already used")
	}
	s.stored(ctx, &student, "student_created")
	return &student, nil
}

// Update replaces the stored document of an existing student. The EP ID in
// the path wins over the one in the payload.
func (s *StudentService) Update(ctx context.Context, epID int64, student models.StudentRecord) (*models.StudentRecord, error) {
	if _, err := s.Get(ctx, epID); err != nil {
		return nil, err
	}
	student.EpID = epID
	if err := s.validate(&student); err != nil {
		return nil, err
	}
	if err := s.save(ctx, &student, "student_updated"); err != nil {
		return nil, err
	}
	return &student, nil
}

// Withdraw marks the student WD and records the withdraw on the latest session.
func (s *StudentService) Withdraw(ctx context.Context, epID int64, req WithdrawRequest) (*models.StudentRecord, error) {
	if req.DroppedOutReason != nil && !req.DroppedOutReason.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown withdraw reason")
	}
	student, err := s.Get(ctx, epID)
	if err != nil {
		return nil, err
	}

	student.Status.CurrentStatus = models.StatusWithdraw
	student.Status.InviteTag = req.InviteTag
	student.Status.NoContactList = req.NoContactList
	student.Status.WithdrawDate = req.WithdrawDate
	if student.Status.WithdrawDate == "" {
		student.Status.WithdrawDate = s.now().Format("1/2/2006")
	}
	if req.DroppedOutReason != nil {
		student.Status.DroppedOutReason = *req.DroppedOutReason
	}
	if last := student.LastAcademicRecord(); last != nil {
		if last.FinalResult == nil {
			last.FinalResult = &models.Grade{}
		}
		last.FinalResult.Result = models.ResultWithdraw
	}

	if err := s.save(ctx, student, "student_withdrawn"); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) validate(student *models.StudentRecord) error {
	if err := s.validator.Struct(student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if !student.Status.CurrentStatus.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown status")
	}
	if !student.Nationality.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown nationality")
	}
	if !student.CurrentLevel.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown level "+string(student.CurrentLevel))
	}
	if reason := student.Status.DroppedOutReason; reason != "" && !reason.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown withdraw reason "+string(reason))
	}
	placement := student.Placement.OrigPlacementData
	for _, level := range []models.LevelPlus{placement.Level, placement.Speaking, placement.Writing} {
		if level != "" && !level.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "unknown placement level "+string(level))
		}
	}
	for _, record := range student.AcademicRecords {
		if err := validateAcademicRecord(record); err != nil {
			return err
		}
	}
	student.Phone.Normalize()
	return nil
}

// validateAcademicRecord checks the closed sets of one session. Levels and
// grades are optional; when present they must be known values.
func validateAcademicRecord(record models.AcademicRecord) error {
	if !models.IsSessionLabel(record.Session) {
		return appErrors.Clone(appErrors.ErrValidation, "invalid session "+record.Session)
	}
	for _, level := range []models.GenderedLevel{record.Level, record.LevelAudited} {
		if level != "" && !level.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown level %s in %s", level, record.Session))
		}
	}
	for _, grade := range []*models.Grade{record.FinalResult, record.ExitWritingExam, record.ExitSpeakingExam} {
		if grade != nil && !grade.Result.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown result %q in %s", grade.Result, record.Session))
		}
	}
	return nil
}

func (s *StudentService) save(ctx context.Context, student *models.StudentRecord, event string) error {
	if err := s.repo.Upsert(ctx, student); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
	}
	s.stored(ctx, student, event)
	return nil
}

func (s *StudentService) stored(ctx context.Context, student *models.StudentRecord, event string) {
	s.logger.Info(event, zap.Int64("ep_id", student.EpID))
	if s.refresher != nil {
		s.refresher.ScheduleRefresh(ctx, event)
	}
}
