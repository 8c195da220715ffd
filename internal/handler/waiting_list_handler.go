package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/epd-student-api/internal/models"
	"github.com/noah-isme/epd-student-api/internal/service"
	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
	"github.com/noah-isme/epd-student-api/pkg/response"
)

type waitingListService interface {
	List(ctx context.Context, search string) ([]models.WaitingListEntry, error)
	Create(ctx context.Context, req service.CreateWaitingListRequest) (*models.WaitingListEntry, error)
}

// WaitingListHandler exposes waiting-list endpoints.
type WaitingListHandler struct {
	waiting waitingListService
}

// NewWaitingListHandler constructs WaitingListHandler.
func NewWaitingListHandler(waiting waitingListService) *WaitingListHandler {
	return &WaitingListHandler{waiting: waiting}
}

// List godoc
// @Summary List waiting-list entries
// @Tags WaitingList
// @Produce json
// @Param search query string false "Name, referral or phone number"
// @Success 200 {object} response.Envelope
// @Router /waiting-list [get]
func (h *WaitingListHandler) List(c *gin.Context) {
	entries, err := h.waiting.List(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Create godoc
// @Summary Add a waiting-list entry
// @Tags WaitingList
// @Accept json
// @Produce json
// @Param payload body service.CreateWaitingListRequest true "Entry"
// @Success 201 {object} response.Envelope
// @Router /waiting-list [post]
func (h *WaitingListHandler) Create(c *gin.Context) {
	var req service.CreateWaitingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.waiting.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}
