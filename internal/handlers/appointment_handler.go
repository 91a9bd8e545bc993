package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/models"
	"github.com/parishrama/diagnostic-api/internal/validation"
)

var errDuplicateSlot = apperr.New(apperr.KindDuplicateSlot, "An appointment already exists for this time slot")

// checkSlot fails when another appointment holds the same email, date and
// time. The check and the following write are not atomic.
func (h *Handler) checkSlot(c *gin.Context, filter bson.M) error {
	_, err := h.stores.Appointments.FindOne(c.Request.Context(), filter)
	switch {
	case err == nil:
		return errDuplicateSlot
	case apperr.Is(err, apperr.KindNotFound):
		return nil
	}
	return err
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var in models.AppointmentInput
	if _, err := h.bindInput(c, &in, nil, nil, ""); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.checkSlot(c, in.SlotFilter()); err != nil {
		h.fail(c, err)
		return
	}

	apt := models.NewAppointment(in, h.now())
	if err := h.stores.Appointments.Insert(c.Request.Context(), &apt); err != nil {
		h.fail(c, err)
		return
	}

	h.notifier.AppointmentBooked(c.Request.Context(), &apt)
	ok(c, http.StatusCreated, "Appointment created successfully", apt)
}

// GetAppointments lists appointments, optionally narrowed by service,
// category and calendar day.
func (h *Handler) GetAppointments(c *gin.Context) {
	filter := bson.M{}
	if service := c.Query("service"); service != "" {
		filter["service"] = service
	}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if date := c.Query("date"); date != "" {
		day, err := validation.ParseDate(date)
		if err != nil {
			h.fail(c, apperr.Validation("Validation failed", "date: please enter a valid date"))
			return
		}
		filter["date"] = bson.M{"$gte": day, "$lt": day.AddDate(0, 0, 1)}
	}
	h.appointments.list(h, c, filter)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	h.appointments.get(h, c)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, err := parseID(c, "appointment")
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.appointments.find(c, id); err != nil {
		h.fail(c, err)
		return
	}

	var in models.AppointmentInput
	if _, err := h.bindInput(c, &in, nil, nil, ""); err != nil {
		h.fail(c, err)
		return
	}
	slot := in.SlotFilter()
	slot["_id"] = bson.M{"$ne": id}
	if err := h.checkSlot(c, slot); err != nil {
		h.fail(c, err)
		return
	}

	apt, err := h.stores.Appointments.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		h.fail(c, h.appointments.named(err))
		return
	}
	ok(c, http.StatusOK, "Appointment updated successfully", apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	h.appointments.remove(h, c)
}

func (h *Handler) SearchAppointments(c *gin.Context) {
	h.appointments.searchBy(h, c, c.Param("query"), nil)
}

func (h *Handler) AppointmentStats(c *gin.Context) {
	ctx := c.Request.Context()
	repo := h.stores.Appointments

	today := startOfDay(h.now())
	todayCount, err := repo.Count(ctx, bson.M{"date": bson.M{"$gte": today, "$lt": today.AddDate(0, 0, 1)}})
	if err != nil {
		h.fail(c, err)
		return
	}
	total, err := repo.Count(ctx, nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	byCategory, err := repo.CountBy(ctx, "category", nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	byService, err := repo.CountBy(ctx, "service", nil)
	if err != nil {
		h.fail(c, err)
		return
	}

	ok(c, http.StatusOK, "", gin.H{
		"today":      todayCount,
		"total":      total,
		"byCategory": byCategory,
		"byService":  byService,
	})
}

type categoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// GetCategories lists the distinct appointment categories in name order,
// with and without their counts.
func (h *Handler) GetCategories(c *gin.Context) {
	groups, err := h.stores.Appointments.CountBy(c.Request.Context(), "category", nil)
	if err != nil {
		h.fail(c, err)
		return
	}

	withCounts := make([]categoryCount, 0, len(groups))
	for _, g := range groups {
		withCounts = append(withCounts, categoryCount{Category: g.Key, Count: g.Count})
	}
	sort.Slice(withCounts, func(i, j int) bool { return withCounts[i].Category < withCounts[j].Category })

	names := make([]string, 0, len(withCounts))
	for _, cc := range withCounts {
		names = append(names, cc.Category)
	}

	count := len(names)
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Count:   &count,
		Data:    gin.H{"categories": names, "categoriesWithCounts": withCounts},
	})
}

func (h *Handler) GetAppointmentsByCategory(c *gin.Context) {
	h.appointments.list(h, c, bson.M{"category": c.Param("category")})
}
