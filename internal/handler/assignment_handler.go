package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type assignmentService interface {
	List(ctx context.Context) ([]models.Assignment, error)
	Assign(ctx context.Context, req service.AssignRequest) (*models.Assignment, error)
	Unassign(ctx context.Context, key models.AssignmentKey) ([]models.Assignment, error)
}

// AssignmentHandler exposes trainer assignments.
type AssignmentHandler struct {
	service assignmentService
	ops     OperationRecorder
}

// NewAssignmentHandler builds an assignment handler.
func NewAssignmentHandler(svc assignmentService, ops OperationRecorder) *AssignmentHandler {
	return &AssignmentHandler{service: svc, ops: ops}
}

// List godoc
// @Summary List assignments, oldest first
// @Tags Assignments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Assign godoc
// @Summary Assign a trainer to a class
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.AssignRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Assign(c *gin.Context) {
	var req service.AssignRequest
	if !bindJSON(c, &req, "assignment") {
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req)
	record(h.ops, "assign", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Unassign godoc
// @Summary Remove an assignment and its booked hours
// @Tags Assignments
// @Produce json
// @Param class_id query string true "Class ID"
// @Param trainer_id query string true "Trainer ID"
// @Param date query string true "Class date"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /assignments [delete]
func (h *AssignmentHandler) Unassign(c *gin.Context) {
	var key models.AssignmentKey
	if err := c.ShouldBindQuery(&key); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidInput.Code, http.StatusBadRequest, "invalid assignment key"))
		return
	}
	removed, err := h.service.Unassign(c.Request.Context(), key)
	record(h.ops, "unassign", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, removed, nil, map[string]interface{}{"removed": len(removed)})
}
