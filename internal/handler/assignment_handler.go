package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	"github.com/Josepmarimon/bau-assist-sub000/internal/service"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/response"
)

// AssignmentHandler manages assignment endpoints.
type AssignmentHandler struct {
	service *service.BookingService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc *service.BookingService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// saveAssignmentPayload extends the save request with the gate override.
type saveAssignmentPayload struct {
	service.SaveAssignmentRequest
	SkipConflictCheck bool `json:"skip_conflict_check"`
}

// List godoc
// @Summary List assignments with their slot and classroom bookings
// @Tags Assignments
// @Produce json
// @Param subjectGroupId query string false "Filter by subject group"
// @Param semesterId query string false "Filter by semester"
// @Param classroomId query string false "Filter by classroom"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	filter := models.AssignmentFilter{
		SubjectGroupID: c.Query("subjectGroupId"),
		SemesterID:     c.Query("semesterId"),
		ClassroomID:    c.Query("classroomId"),
	}
	assignments, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}

// Get godoc
// @Summary Get one assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} response.Envelope
// @Router /assignments/{id} [get]
func (h *AssignmentHandler) Get(c *gin.Context) {
	assignment, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Create godoc
// @Summary Book a subject group into a time slot
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body saveAssignmentPayload true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflicts with existing bookings"
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var payload saveAssignmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), payload.SaveAssignmentRequest,
		service.BookingOptions{SkipConflictCheck: payload.SkipConflictCheck})
	if err != nil {
		renderBookingError(c, err)
		return
	}
	response.Created(c, assignment)
}

// Update godoc
// @Summary Replace an assignment's slot, teacher and bookings
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Assignment ID"
// @Param payload body saveAssignmentPayload true "Booking payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope "Conflicts with existing bookings"
// @Router /assignments/{id} [put]
func (h *AssignmentHandler) Update(c *gin.Context) {
	var payload saveAssignmentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Update(c.Request.Context(), c.Param("id"), payload.SaveAssignmentRequest,
		service.BookingOptions{SkipConflictCheck: payload.SkipConflictCheck})
	if err != nil {
		renderBookingError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignment, nil)
}

// Delete godoc
// @Summary Delete an assignment and its bookings
// @Tags Assignments
// @Param id path string true "Assignment ID"
// @Success 204
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// renderBookingError renders conflict rejections as a 409 envelope carrying
// the full conflict list, so the dialog can offer an override or another
// classroom. Everything else goes through the common error path.
func renderBookingError(c *gin.Context, err error) {
	var conflictErr *models.BookingConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, response.Envelope{
			Error: appErrors.Clone(appErrors.ErrConflict, conflictErr.Message),
			Meta:  map[string]interface{}{"conflicts": conflictErr.Conflicts},
		})
		return
	}
	response.Error(c, err)
}
