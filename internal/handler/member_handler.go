package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-ops-api/internal/models"
	"github.com/noah-isme/gym-ops-api/pkg/response"
)

type memberService interface {
	List(ctx context.Context, filter models.MemberFilter) ([]models.Member, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Member, error)
}

// MemberHandler exposes read access to members.
type MemberHandler struct {
	service memberService
}

// NewMemberHandler builds a member handler.
func NewMemberHandler(svc memberService) *MemberHandler {
	return &MemberHandler{service: svc}
}

// List godoc
// @Summary List members
// @Tags Members
// @Produce json
// @Param search query string false "Matches username, id or email"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /members [get]
func (h *MemberHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := models.MemberFilter{Search: c.Query("search"), Page: page, PageSize: size}

	members, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, members, pagination)
}

// Get godoc
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Router /members/{id} [get]
func (h *MemberHandler) Get(c *gin.Context) {
	member, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}
