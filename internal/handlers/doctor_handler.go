package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/parishrama/diagnostic-api/internal/models"
)

func (h *Handler) CreateDoctor(c *gin.Context) {
	var in models.DoctorInput
	up := h.uploads.Doctors
	stored, err := h.bindInput(c, &in, up, &in.Image, "")
	if err != nil {
		h.fail(c, err)
		return
	}

	doctor := models.NewDoctor(in, h.now())
	if err := h.stores.Doctors.Insert(c.Request.Context(), &doctor); err != nil {
		discardUpload(up, stored)
		h.fail(c, err)
		return
	}
	ok(c, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *Handler) GetDoctors(c *gin.Context) {
	filter := bson.M{}
	if active, set := boolQuery(c, "isActive"); set {
		filter["isActive"] = active
	}
	if spec := c.Query("specialization"); spec != "" {
		filter["specialization"] = spec
	}
	h.doctors.list(h, c, filter)
}

func (h *Handler) GetActiveDoctors(c *gin.Context) {
	h.doctors.active(h, c)
}

func (h *Handler) GetDoctor(c *gin.Context) {
	h.doctors.get(h, c)
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, err := parseID(c, "doctor")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.doctors.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in models.DoctorInput
	up := h.uploads.Doctors
	stored, err := h.bindInput(c, &in, up, &in.Image, existing.Image)
	if err != nil {
		h.fail(c, err)
		return
	}

	doctor, err := h.stores.Doctors.UpdateByID(c.Request.Context(), id, in.Changes(h.now()))
	if err != nil {
		discardUpload(up, stored)
		h.fail(c, h.doctors.named(err))
		return
	}
	replaceImage(up, stored, existing.Image, doctor.Image)
	ok(c, http.StatusOK, "Doctor updated successfully", doctor)
}

// ToggleDoctorStatus flips isActive.
func (h *Handler) ToggleDoctorStatus(c *gin.Context) {
	id, err := parseID(c, "doctor")
	if err != nil {
		h.fail(c, err)
		return
	}
	existing, err := h.doctors.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}

	doctor, err := h.stores.Doctors.UpdateByID(c.Request.Context(), id, bson.M{
		"isActive":  !existing.IsActive,
		"updatedAt": h.now(),
	})
	if err != nil {
		h.fail(c, h.doctors.named(err))
		return
	}

	state := "Inactive"
	if doctor.IsActive {
		state = "Active"
	}
	ok(c, http.StatusOK, "Doctor is now "+state, doctor)
}

func (h *Handler) DeleteDoctor(c *gin.Context) {
	h.doctors.remove(h, c)
}

func (h *Handler) SearchDoctors(c *gin.Context) {
	h.doctors.searchBy(h, c, c.Param("query"), nil)
}

func (h *Handler) DoctorStats(c *gin.Context) {
	counts, err := h.doctors.activeCounts(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	bySpecialization, err := h.stores.Doctors.CountBy(c.Request.Context(), "specialization", nil)
	if err != nil {
		h.fail(c, err)
		return
	}
	counts["bySpecialization"] = bySpecialization
	ok(c, http.StatusOK, "", counts)
}
