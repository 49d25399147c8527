package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Josepmarimon/bau-assist-sub000/internal/service"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/response"
)

// OccupancyHandler serves the classroom occupancy grids.
type OccupancyHandler struct {
	service *service.OccupancyService
}

// NewOccupancyHandler constructs handler.
func NewOccupancyHandler(svc *service.OccupancyService) *OccupancyHandler {
	return &OccupancyHandler{service: svc}
}

// GetClassroom godoc
// @Summary Occupancy grid of one classroom per semester
// @Tags Occupancy
// @Produce json
// @Param id path string true "Classroom ID"
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{id}/occupancy [get]
func (h *OccupancyHandler) GetClassroom(c *gin.Context) {
	academicYearID := c.Query("academicYearId")
	if academicYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYearId is required"))
		return
	}
	occupancy, err := h.service.GetClassroomOccupancy(c.Request.Context(), c.Param("id"), academicYearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupancy, nil)
}

// List godoc
// @Summary Occupancy grids of every classroom
// @Tags Occupancy
// @Produce json
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /classrooms/occupancy [get]
func (h *OccupancyHandler) List(c *gin.Context) {
	academicYearID := c.Query("academicYearId")
	if academicYearID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYearId is required"))
		return
	}
	occupancy, err := h.service.ListOccupancy(c.Request.Context(), academicYearID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, occupancy, nil)
}
