package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/epd-student-api/internal/models"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
)

type waitingListRepository interface {
	List(ctx context.Context, search string) ([]models.WaitingListEntry, error)
	Create(ctx context.Context, entry *models.WaitingListEntry) error
}

// CreateWaitingListRequest is the payload for adding someone to the waiting list.
type CreateWaitingListRequest struct {
	Name         string               `json:"name" validate:"required"`
	PhoneNumbers []models.PhoneNumber `json:"phoneNumbers" validate:"dive"`
	Referral     string               `json:"referral"`
	Outcome      string               `json:"outcome"`
}

// WaitingListService manages prospective students.
type WaitingListService struct {
	repo      waitingListRepository
	refresher refreshScheduler
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewWaitingListService constructs the waiting-list service. refresher may be nil.
func NewWaitingListService(repo waitingListRepository, refresher refreshScheduler, validate *validator.Validate, logger *zap.Logger) *WaitingListService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitingListService{repo: repo, refresher: refresher, validator: validate, logger: logger, now: time.Now}
}

// List returns entries in the order they were added.
func (s *WaitingListService) List(ctx context.Context, search string) ([]models.WaitingListEntry, error) {
	entries, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list waiting list")
	}
	return entries, nil
}

// Create adds an entry and assigns its id.
func (s *WaitingListService) Create(ctx context.Context, req CreateWaitingListRequest) (*models.WaitingListEntry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid waiting list payload")
	}
	entry := &models.WaitingListEntry{
		ID:           uuid.NewString(),
		Name:         req.Name,
		PhoneNumbers: req.PhoneNumbers,
		Referral:     strings.TrimSpace(req.Referral),
		Outcome:      strings.TrimSpace(req.Outcome),
		CreatedAt:    s.now().UTC(),
	}
	if entry.PhoneNumbers == nil {
		entry.PhoneNumbers = []models.PhoneNumber{}
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create waiting list entry")
	}
	s.logger.Info("waiting_list_created", zap.String("id", entry.ID))
	if s.refresher != nil {
		s.refresher.ScheduleRefresh(ctx, "waiting_list_created")
	}
	return entry, nil
}
