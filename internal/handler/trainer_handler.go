package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/internal/service"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type trainerService interface {
	Roster(ctx context.Context) ([]models.TrainerRosterEntry, error)
	Get(ctx context.Context, id string) (*models.Trainer, error)
	Create(ctx context.Context, req service.TrainerRequest) (*models.Trainer, error)
	Update(ctx context.Context, oldID string, req service.TrainerRequest) (*models.Trainer, error)
	Delete(ctx context.Context, id string) error
}

// TrainerHandler exposes trainer management.
type TrainerHandler struct {
	service trainerService
	ops     OperationRecorder
}

// NewTrainerHandler builds a trainer handler.
func NewTrainerHandler(svc trainerService, ops OperationRecorder) *TrainerHandler {
	return &TrainerHandler{service: svc, ops: ops}
}

// List godoc
// @Summary List trainers with assignment status
// @Description Ordered Assigned, Not Assigned, then surname and forename.
// @Tags Trainers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /trainers [get]
func (h *TrainerHandler) List(c *gin.Context) {
	roster, err := h.service.Roster(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Get godoc
// @Summary Get trainer
// @Tags Trainers
// @Produce json
// @Param id path string true "Trainer ID"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id} [get]
func (h *TrainerHandler) Get(c *gin.Context) {
	trainer, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainer, nil)
}

// Create godoc
// @Summary Create trainer
// @Tags Trainers
// @Accept json
// @Produce json
// @Param payload body service.TrainerRequest true "Trainer payload"
// @Success 201 {object} response.Envelope
// @Router /trainers [post]
func (h *TrainerHandler) Create(c *gin.Context) {
	var req service.TrainerRequest
	if !bindJSON(c, &req, "trainer") {
		return
	}
	trainer, err := h.service.Create(c.Request.Context(), req)
	record(h.ops, "create_trainer", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, trainer)
}

// Update godoc
// @Summary Update trainer and the ledgers that reference it
// @Tags Trainers
// @Accept json
// @Produce json
// @Param id path string true "Current trainer ID"
// @Param payload body service.TrainerRequest true "Trainer payload"
// @Success 200 {object} response.Envelope
// @Router /trainers/{id} [put]
func (h *TrainerHandler) Update(c *gin.Context) {
	var req service.TrainerRequest
	if !bindJSON(c, &req, "trainer") {
		return
	}
	trainer, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	record(h.ops, "update_trainer", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainer, nil)
}

// Delete godoc
// @Summary Delete trainer without assignments
// @Tags Trainers
// @Param id path string true "Trainer ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /trainers/{id} [delete]
func (h *TrainerHandler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"))
	record(h.ops, "delete_trainer", err)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
