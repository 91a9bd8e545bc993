package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func (h *Handler) CreatePackageTest(c *gin.Context) {
	var in models.PackageTestInput
	up := h.uploads.PackageTests
	stored, err := h.bindInput(c, &in, up, &in.Image, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	test := models.NewPackageTest(in, h.now())
	if err := h.stores.PackageTests.Insert(c.Request.Context(), &test); err != nil {
		discardUpload(up, stored)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Package laboratory test created successfully", test)
}

// GetPackageTests lists active packages, oldest first. includeInactive=true
// lists every package.
func (h *Handler) GetPackageTests(c *gin.Context) {
	filter := bson.M{"isActive": true}
	if all, _ := boolQuery(c, "includeInactive"); all {
		filter = nil
	}
	h.packageTests.list(h, c, filter)
}

func (h *Handler) GetPackageTest(c *gin.Context) {
	h.packageTests.get(h, c)
}

func (h *Handler) UpdatePackageTest(c *gin.Context) {
	id, err := parseID(c, "package laboratory test")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.packageTests.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in models.PackageTestInput
	up := h.uploads.PackageTests
	stored, err := h.bindInput(c, &in, up, &in.Image, existing.ImagePath())
	if err != nil {
		h.fail(c, err)
		return
	}

	test, err := h.stores.PackageTests.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		discardUpload(up, stored)
		h.fail(c, h.packageTests.named(err))
		return
	}
	replaceImage(up, stored, existing.ImagePath(), test.ImagePath())
	ok(c, http.StatusOK, "Package laboratory test updated successfully", test)
}

// DeletePackageTest deactivates the package; the record is kept.
func (h *Handler) DeletePackageTest(c *gin.Context) {
	id, err := parseID(c, "package laboratory test")
	if err != nil {
		h.fail(c, err)
		return
	}
	_, err = h.stores.PackageTests.UpdateByID(c.Request.Context(), id, bson.M{
		"isActive":  false,
		"updatedAt": h.now(),
	})
	if err != nil {
		h.fail(c, h.packageTests.named(err))
		return
	}
	ok(c, http.StatusOK, "Package laboratory test deleted successfully", nil)
}

// DeletePackageTestPermanently removes the record.
func (h *Handler) DeletePackageTestPermanently(c *gin.Context) {
	id, err := parseID(c, "package laboratory test")
	if err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.stores.PackageTests.DeleteByID(c.Request.Context(), id); err != nil {
		h.fail(c, h.packageTests.named(err))
		return
	}
	ok(c, http.StatusOK, "Package laboratory test permanently deleted", nil)
}

func (h *Handler) SearchPackageTests(c *gin.Context) {
	h.packageTests.searchBy(h, c, c.Param("query"), bson.M{"isActive": true})
}

func (h *Handler) PackageTestStats(c *gin.Context) {
	counts, err := h.packageTests.activeCounts(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	avg, err := h.stores.PackageTests.Average(c.Request.Context(), "price", nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	counts["averagePrice"] = avg
	ok(c, http.StatusOK, "", counts)
}
