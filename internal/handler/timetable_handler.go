package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrann-dev/school-erp-api/internal/dto"
	"github.com/imrann-dev/school-erp-api/internal/service"
	appErrors "github.com/imrann-dev/school-erp-api/pkg/errors"
	"github.com/imrann-dev/school-erp-api/pkg/response"
)

// TimetableHandler exposes school timetable endpoints.
type TimetableHandler struct {
	timetables *service.TimetableService
}

// NewTimetableHandler constructs TimetableHandler.
func NewTimetableHandler(timetables *service.TimetableService) *TimetableHandler {
	return &TimetableHandler{timetables: timetables}
}

// GetAll godoc
// @Summary Get the full timetable document
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables [get]
func (h *TimetableHandler) GetAll(c *gin.Context) {
	doc, err := h.timetables.GetAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// ListTeachers godoc
// @Summary List teacher timetables
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables/teachers [get]
func (h *TimetableHandler) ListTeachers(c *gin.Context) {
	entries, err := h.timetables.ListTeacherTimetables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// SaveTeacher godoc
// @Summary Create or replace a teacher timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param payload body dto.SaveTeacherTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/teachers [put]
func (h *TimetableHandler) SaveTeacher(c *gin.Context) {
	var req dto.SaveTeacherTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.timetables.SaveTeacherTimetable(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// GetTeacher godoc
// @Summary Get one teacher's timetable
// @Tags Timetables
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /timetables/teachers/{id} [get]
func (h *TimetableHandler) GetTeacher(c *gin.Context) {
	entry, err := h.timetables.GetTeacherTimetable(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteTeacher godoc
// @Summary Delete one teacher's timetable
// @Tags Timetables
// @Param id path string true "Teacher ID"
// @Success 204
// @Router /timetables/teachers/{id} [delete]
func (h *TimetableHandler) DeleteTeacher(c *gin.Context) {
	if err := h.timetables.DeleteTeacherTimetable(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListClasses godoc
// @Summary List class timetables
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables/classes [get]
func (h *TimetableHandler) ListClasses(c *gin.Context) {
	entries, err := h.timetables.ListClassTimetables(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// SaveClass godoc
// @Summary Create or replace a class timetable
// @Tags Timetables
// @Accept json
// @Produce json
// @Param name path string true "Class name"
// @Param payload body dto.SaveClassTimetableRequest true "Timetable payload"
// @Success 200 {object} response.Envelope
// @Router /timetables/classes/{name} [put]
func (h *TimetableHandler) SaveClass(c *gin.Context) {
	var req dto.SaveClassTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.timetables.SaveClassTimetable(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// GetClass godoc
// @Summary Get one class timetable
// @Tags Timetables
// @Produce json
// @Param name path string true "Class name"
// @Success 200 {object} response.Envelope
// @Router /timetables/classes/{name} [get]
func (h *TimetableHandler) GetClass(c *gin.Context) {
	entry, err := h.timetables.GetClassTimetable(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// DeleteClass godoc
// @Summary Delete one class timetable
// @Tags Timetables
// @Param name path string true "Class name"
// @Success 204
// @Router /timetables/classes/{name} [delete]
func (h *TimetableHandler) DeleteClass(c *gin.Context) {
	if err := h.timetables.DeleteClassTimetable(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Stats godoc
// @Summary Timetable counts
// @Tags Timetables
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetables/stats [get]
func (h *TimetableHandler) Stats(c *gin.Context) {
	stats, err := h.timetables.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
