package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Josepmarimon/bau-assist-sub000/internal/models"
	"github.com/Josepmarimon/bau-assist-sub000/internal/service"
	appErrors "github.com/Josepmarimon/bau-assist-sub000/pkg/errors"
	"github.com/Josepmarimon/bau-assist-sub000/pkg/response"
)

// ConflictHandler serves the pre-save conflict checks the scheduling dialog
// runs while the user is still picking classrooms and weeks.
type ConflictHandler struct {
	service *service.ConflictService
}

// NewConflictHandler constructs handler.
func NewConflictHandler(svc *service.ConflictService) *ConflictHandler {
	return &ConflictHandler{service: svc}
}

type classroomCheckPayload struct {
	service.SlotCheckRequest
	ClassroomIDs        []string `json:"classroom_ids" binding:"required,min=1"`
	SemesterID          string   `json:"semester_id" binding:"required"`
	FullSemester        bool     `json:"is_full_semester"`
	Weeks               []int    `json:"weeks,omitempty"`
	ExcludeAssignmentID string   `json:"exclude_assignment_id,omitempty"`
}

type teacherCheckPayload struct {
	service.SlotCheckRequest
	TeacherID           string `json:"teacher_id" binding:"required"`
	SemesterID          string `json:"semester_id" binding:"required"`
	ExcludeAssignmentID string `json:"exclude_assignment_id,omitempty"`
}

type conflictCheckResult struct {
	HasConflicts bool                     `json:"has_conflicts"`
	Conflicts    []models.BookingConflict `json:"conflicts"`
}

// CheckClassrooms godoc
// @Summary Check classroom availability for a slot and week set
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body classroomCheckPayload true "Check payload"
// @Success 200 {object} response.Envelope
// @Router /conflicts/classrooms [post]
func (h *ConflictHandler) CheckClassrooms(c *gin.Context) {
	var payload classroomCheckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	ctx := c.Request.Context()
	slot, err := h.service.ResolveSlot(ctx, payload.SlotCheckRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	// No slot row means nothing has ever booked this tuple.
	if slot == nil {
		response.JSON(c, http.StatusOK, conflictCheckResult{Conflicts: []models.BookingConflict{}}, nil)
		return
	}

	weekSet := models.ExplicitWeekSet(payload.Weeks)
	if payload.FullSemester {
		weekSet = models.FullWeekSet()
	}

	checks := make([]service.ClassroomCheckRequest, 0, len(payload.ClassroomIDs))
	for _, classroomID := range payload.ClassroomIDs {
		checks = append(checks, service.ClassroomCheckRequest{
			ClassroomID:         classroomID,
			TimeSlotID:          slot.ID,
			SemesterID:          payload.SemesterID,
			WeekSet:             weekSet,
			ExcludeAssignmentID: payload.ExcludeAssignmentID,
		})
	}
	conflicts, err := h.service.CheckClassrooms(ctx, checks)
	if err != nil {
		response.Error(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []models.BookingConflict{}
	}
	response.JSON(c, http.StatusOK, conflictCheckResult{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}, nil)
}

// CheckTeacher godoc
// @Summary Check whether a teacher is free for a slot
// @Tags Conflicts
// @Accept json
// @Produce json
// @Param payload body teacherCheckPayload true "Check payload"
// @Success 200 {object} response.Envelope
// @Router /conflicts/teachers [post]
func (h *ConflictHandler) CheckTeacher(c *gin.Context) {
	var payload teacherCheckPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	ctx := c.Request.Context()
	slot, err := h.service.ResolveSlot(ctx, payload.SlotCheckRequest)
	if err != nil {
		response.Error(c, err)
		return
	}
	if slot == nil {
		response.JSON(c, http.StatusOK, conflictCheckResult{Conflicts: []models.BookingConflict{}}, nil)
		return
	}

	conflicts, err := h.service.CheckTeacher(ctx, payload.TeacherID, slot.ID, payload.SemesterID, payload.ExcludeAssignmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if conflicts == nil {
		conflicts = []models.BookingConflict{}
	}
	response.JSON(c, http.StatusOK, conflictCheckResult{HasConflicts: len(conflicts) > 0, Conflicts: conflicts}, nil)
}
