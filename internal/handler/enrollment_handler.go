package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type enrollmentService interface {
	Signup(ctx context.Context, req service.SignupRequest) (*models.Enrollment, error)
	ListAvailability(ctx context.Context, classID string) ([]models.ClassAvailability, error)
}

// EnrollmentHandler exposes signups and remaining capacity.
type EnrollmentHandler struct {
	service enrollmentService
	ops     OperationRecorder
}

// NewEnrollmentHandler builds an enrollment handler.
func NewEnrollmentHandler(svc enrollmentService, ops OperationRecorder) *EnrollmentHandler {
	return &EnrollmentHandler{service: svc, ops: ops}
}

// Signup godoc
// @Summary Sign a member up for a class
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.SignupRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Signup(c *gin.Context) {
	var req service.SignupRequest
	if !bindJSON(c, &req, "signup") {
		return
	}
	enrollment, err := h.service.Signup(c.Request.Context(), req)
	record(h.ops, "signup", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Availability godoc
// @Summary Remaining places per class
// @Tags Enrollments
// @Produce json
// @Param class_id query string false "Restrict to one class"
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *EnrollmentHandler) Availability(c *gin.Context) {
	items, err := h.service.ListAvailability(c.Request.Context(), c.Query("class_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
