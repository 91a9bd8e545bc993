package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func (h *Handler) CreateLaboratoryTest(c *gin.Context) {
	var in models.LaboratoryTestInput
	up := h.uploads.Laboratory
	stored, err := h.bindInput(c, &in, up, &in.Image, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	test := models.NewLaboratoryTest(in, h.now())
	if err := h.stores.Laboratory.Insert(c.Request.Context(), &test); err != nil {
		discardUpload(up, stored)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Laboratory test created successfully", test)
}

func (h *Handler) GetLaboratoryTests(c *gin.Context) {
	h.laboratory.list(h, c, nil)
}

func (h *Handler) GetLaboratoryTest(c *gin.Context) {
	h.laboratory.get(h, c)
}

func (h *Handler) UpdateLaboratoryTest(c *gin.Context) {
	id, err := parseID(c, "laboratory test")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.laboratory.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in models.LaboratoryTestInput
	up := h.uploads.Laboratory
	stored, err := h.bindInput(c, &in, up, &in.Image, existing.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	test, err := h.stores.Laboratory.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		discardUpload(up, stored)
		h.fail(c, h.laboratory.named(err))
		return
	}
	replaceImage(up, stored, existing.Image, test.Image)
	ok(c, http.StatusOK, "Laboratory test updated successfully", test)
}

func (h *Handler) DeleteLaboratoryTest(c *gin.Context) {
	h.laboratory.remove(h, c)
}

func (h *Handler) SearchLaboratoryTests(c *gin.Context) {
	h.laboratory.searchBy(h, c, c.Param("query"), nil)
}

func (h *Handler) LaboratoryStats(c *gin.Context) {
	priceStats(h, c, h.laboratory)
}
