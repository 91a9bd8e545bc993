package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func (h *Handler) CreatePrecision(c *gin.Context) {
	var in models.PrecisionInput
	up := h.uploads.Precision
	stored, err := h.bindInput(c, &in, up, &in.Image, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	section := models.NewPrecision(in, h.now())
	if err := h.stores.Precision.Insert(c.Request.Context(), &section); err != nil {
		discardUpload(up, stored)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Precision section created successfully", section)
}

func (h *Handler) GetPrecisions(c *gin.Context) {
	filter := bson.M{}
	if active, set := boolQuery(c, "isActive"); set {
		filter["isActive"] = active
	}
	h.precision.list(h, c, filter)
}

func (h *Handler) GetActivePrecisions(c *gin.Context) {
	h.precision.active(h, c)
}

func (h *Handler) GetPrecision(c *gin.Context) {
	h.precision.get(h, c)
}

func (h *Handler) UpdatePrecision(c *gin.Context) {
	id, err := parseID(c, "precision section")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.precision.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in models.PrecisionInput
	up := h.uploads.Precision
	stored, err := h.bindInput(c, &in, up, &in.Image, existing.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	section, err := h.stores.Precision.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		discardUpload(up, stored)
		h.fail(c, h.precision.named(err))
		return
	}
	replaceImage(up, stored, existing.Image, section.Image)
	ok(c, http.StatusOK, "Precision section updated successfully", section)
}

func (h *Handler) DeletePrecision(c *gin.Context) {
	h.precision.remove(h, c)
}

func (h *Handler) SearchPrecisions(c *gin.Context) {
	h.precision.searchBy(h, c, c.Param("query"), nil)
}

// PrecisionStats adds the number of sections created in the last 7 days to
// the active breakdown.
func (h *Handler) PrecisionStats(c *gin.Context) {
	counts, err := h.precision.activeCounts(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	since := h.now().AddDate(0, 0, -7)
	recent, err := h.stores.Precision.Count(c.Request.Context(), bson.M{"createdAt": bson.M{"$gte": since}})
	if err != nil {
		h.fail(c, err)
		return
	}
	counts["recent"] = recent
	ok(c, http.StatusOK, "", counts)
}
