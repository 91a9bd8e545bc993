package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func (h *Handler) CreateSampleCollection(c *gin.Context) {
	var in models.SampleCollectionInput
	up := h.uploads.SampleCollections
	stored, err := h.bindInput(c, &in, up, &in.Image, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	sample := models.NewSampleCollection(in, h.now())
	if err := h.stores.SampleCollections.Insert(c.Request.Context(), &sample); err != nil {
		discardUpload(up, stored)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Sample collection created successfully", sample)
}

func (h *Handler) GetSampleCollections(c *gin.Context) {
	h.samples.list(h, c, nil)
}

func (h *Handler) GetSampleCollection(c *gin.Context) {
	h.samples.get(h, c)
}

func (h *Handler) UpdateSampleCollection(c *gin.Context) {
	id, err := parseID(c, "sample collection")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.samples.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in models.SampleCollectionInput
	up := h.uploads.SampleCollections
	stored, err := h.bindInput(c, &in, up, &in.Image, existing.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	sample, err := h.stores.SampleCollections.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		discardUpload(up, stored)
		h.fail(c, h.samples.named(err))
		return
	}
	replaceImage(up, stored, existing.Image, sample.Image)
	ok(c, http.StatusOK, "Sample collection updated successfully", sample)
}

func (h *Handler) DeleteSampleCollection(c *gin.Context) {
	h.samples.remove(h, c)
}

func (h *Handler) SearchSampleCollections(c *gin.Context) {
	h.samples.searchBy(h, c, c.Param("query"), nil)
}

func (h *Handler) SampleCollectionStats(c *gin.Context) {
	priceStats(h, c, h.samples)
}
