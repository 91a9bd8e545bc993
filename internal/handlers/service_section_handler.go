package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/parishrama/diagnostic-api/internal/models"
)

// Service sections are JSON only; their sub-service images are plain paths.

func (h *Handler) CreateServiceSection(c *gin.Context) {
	var in models.ServiceSectionInput
	if _, err := h.bindInput(c, &in, nil, nil, ""); err != nil {
		h.fail(c, err)
		return
	}

	section := models.NewServiceSection(in, h.now())
	if err := h.stores.ServiceSections.Insert(c.Request.Context(), &section); err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Service section created successfully", section)
}

func (h *Handler) GetServiceSections(c *gin.Context) {
	filter := bson.M{}
	if active, set := boolQuery(c, "isActive"); set {
		filter["isActive"] = active
	}
	h.serviceSections.list(h, c, filter)
}

func (h *Handler) GetActiveServiceSections(c *gin.Context) {
	h.serviceSections.active(h, c)
}

func (h *Handler) GetServiceSection(c *gin.Context) {
	h.serviceSections.get(h, c)
}

func (h *Handler) UpdateServiceSection(c *gin.Context) {
	id, err := parseID(c, "service section")
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.serviceSections.find(c, id); err != nil {
		h.fail(c, err)
		return
	}

	var in models.ServiceSectionInput
	if _, err := h.bindInput(c, &in, nil, nil, ""); err != nil {
		h.fail(c, err)
		return
	}

	section, err := h.stores.ServiceSections.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		h.fail(c, h.serviceSections.named(err))
		return
	}
	ok(c, http.StatusOK, "Service section updated successfully", section)
}

func (h *Handler) DeleteServiceSection(c *gin.Context) {
	h.serviceSections.remove(h, c)
}

func (h *Handler) SearchServiceSections(c *gin.Context) {
	h.serviceSections.searchBy(h, c, c.Param("query"), nil)
}

func (h *Handler) ServiceSectionStats(c *gin.Context) {
	activeStats(h, c, h.serviceSections)
}
