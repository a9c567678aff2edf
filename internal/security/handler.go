package security

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tallerhub/backend/pkg/response"
)

// Handler serves the security event log to the admin surfaces.
type Handler struct {
	repo *Repository
}

// NewHandler creates a security events handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListEvents handles GET /api/admin/security/events?limit=N (admin only).
func (h *Handler) ListEvents(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		response.Internal(c, "Error al listar eventos", err.Error())
		return
	}
	response.OK(c, list)
}
