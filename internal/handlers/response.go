package handlers

import (
	"errors"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parishrama/diagnostic-api/internal/apperr"
)

// Pagination describes the page returned by a list endpoint.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
	Limit   int   `json:"limit"`
}

func newPagination(page, limit int, total int64) *Pagination {
	return &Pagination{
		Current: page,
		Pages:   int(math.Ceil(float64(total) / float64(limit))),
		Total:   total,
		Limit:   limit,
	}
}

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
	Errors     []string    `json:"errors,omitempty"`
	Count      *int        `json:"count,omitempty"`
	Total      *int64      `json:"total,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func ok(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

// listed answers with a slice and its size. total and page are optional.
func listed(c *gin.Context, data interface{}, count int, total *int64, page *Pagination) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Count:      &count,
		Total:      total,
		Pagination: page,
	})
}

// statusOf maps every error kind to its HTTP status.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation,
		apperr.KindInvalidID,
		apperr.KindDuplicate,
		apperr.KindDuplicateSlot,
		apperr.KindDuplicateAccount,
		apperr.KindUnsupportedMedia:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidCredentials, apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindInternal:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// fail converts err into the failure envelope. Internal errors are logged
// and their cause is never sent to the client.
func (h *Handler) fail(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := statusOf(kind)

	body := Envelope{Success: false, Error: kind.String()}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Errors = appErr.Fields
	}

	if status == http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		body.Message = "Internal server error"
		body.Errors = nil
	}
	if body.Message == "" {
		body.Message = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, body)
}
