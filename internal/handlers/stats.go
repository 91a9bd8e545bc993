package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// activeStats answers with the total/active/inactive breakdown.
func activeStats[T any](h *Handler, c *gin.Context, r *resource[T]) {
	counts, err := r.activeCounts(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", counts)
}

// priceStats answers with the record count and the mean price.
func priceStats[T any](h *Handler, c *gin.Context, r *resource[T]) {
	ctx := c.Request.Context()
	total, err := r.repo.Count(ctx, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	avg, err := r.repo.Average(ctx, "price", nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", gin.H{"total": total, "averagePrice": avg})
}
