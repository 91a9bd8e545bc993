package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func (h *Handler) CreateHomeItem(c *gin.Context) {
	var in models.HomeItemInput
	up := h.uploads.Home
	stored, err := h.bindInput(c, &in, up, &in.Image, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	item := models.NewHomeItem(in, h.now())
	if err := h.stores.Home.Insert(c.Request.Context(), &item); err != nil {
		discardUpload(up, stored)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Home item created successfully", item)
}

func (h *Handler) GetHomeItems(c *gin.Context) {
	filter := bson.M{}
	if active, set := boolQuery(c, "isActive"); set {
		filter["isActive"] = active
	}
	h.home.list(h, c, filter)
}

func (h *Handler) GetActiveHomeItems(c *gin.Context) {
	h.home.active(h, c)
}

func (h *Handler) GetHomeItem(c *gin.Context) {
	h.home.get(h, c)
}

func (h *Handler) UpdateHomeItem(c *gin.Context) {
	id, err := parseID(c, "home item")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.home.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in models.HomeItemInput
	up := h.uploads.Home
	stored, err := h.bindInput(c, &in, up, &in.Image, existing.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	item, err := h.stores.Home.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		discardUpload(up, stored)
		h.fail(c, h.home.named(err))
		return
	}
	replaceImage(up, stored, existing.Image, item.Image)
	ok(c, http.StatusOK, "Home item updated successfully", item)
}

func (h *Handler) DeleteHomeItem(c *gin.Context) {
	h.home.remove(h, c)
}

func (h *Handler) SearchHomeItems(c *gin.Context) {
	h.home.searchBy(h, c, c.Param("query"), nil)
}

func (h *Handler) HomeStats(c *gin.Context) {
	activeStats(h, c, h.home)
}
