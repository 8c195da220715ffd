package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/epd-student-api/pkg/errors"
)

func epIDParam(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Param("epId"))
	epID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || epID <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "epId must be a positive integer")
	}
	return epID, nil
}

func boolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.Query(key)))
	return err == nil && value
}

func intQuery(c *gin.Context, key string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return fallback
	}
	return value
}
