package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type classService interface {
	List(ctx context.Context) ([]models.Class, error)
	Get(ctx context.Context, id string) (*models.Class, error)
	Create(ctx context.Context, req service.ClassRequest) (*models.Class, error)
	Update(ctx context.Context, oldID string, req service.ClassRequest) (*models.Class, error)
	Delete(ctx context.Context, id string) error
}

type classEnrollmentLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.Enrollment, error)
}

// ClassHandler exposes the class catalog.
type ClassHandler struct {
	service     classService
	enrollments classEnrollmentLister
	ops         OperationRecorder
}

// NewClassHandler builds a class handler.
func NewClassHandler(svc classService, enrollments classEnrollmentLister, ops OperationRecorder) *ClassHandler {
	return &ClassHandler{service: svc, enrollments: enrollments, ops: ops}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.ClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.ClassRequest
	if !bindJSON(c, &req, "class") {
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	record(h.ops, "create_class", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Update godoc
// @Summary Update class, including its id
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Current class ID"
// @Param payload body service.ClassRequest true "Class payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.ClassRequest
	if !bindJSON(c, &req, "class") {
		return
	}
	class, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	record(h.ops, "update_class", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// Delete godoc
// @Summary Delete class and its signups
// @Tags Classes
// @Param id path string true "Class ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"))
	record(h.ops, "delete_class", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Enrollments godoc
// @Summary List signups of a class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/enrollments [get]
func (h *ClassHandler) Enrollments(c *gin.Context) {
	items, err := h.enrollments.ListByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
