package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Josepmarimon/bau-assist-sub000/internal/service"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/response"
)

// SemesterHandler serves the semester picker endpoints.
type SemesterHandler struct {
	service *service.SemesterService
}

// NewSemesterHandler constructs handler.
func NewSemesterHandler(svc *service.SemesterService) *SemesterHandler {
	return &SemesterHandler{service: svc}
}

// List godoc
// @Summary List semesters of an academic year
// @Tags Semesters
// @Produce json
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /semesters [get]
func (h *SemesterHandler) List(c *gin.Context) {
	academicYearID := c.Query("academicYearId")
	if academicYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYearId is required"))
		return
	}
	semesters, err := h.service.ListByAcademicYear(c.Request.Context(), academicYearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semesters, nil)
}

// Get godoc
// @Summary Get one semester
// @Tags Semesters
// @Produce json
// @Param id path string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /semesters/{id} [get]
func (h *SemesterHandler) Get(c *gin.Context) {
	semester, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, semester, nil)
}
