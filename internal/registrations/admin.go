package registrations

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/pkg/response"
)

// AdminHandler serves registration listings to the dashboard/backoffice.
type AdminHandler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewAdminHandler creates an admin registrations handler.
func NewAdminHandler(repo *Repository, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{repo: repo, logger: logger}
}

// ListByTaller handles GET /api/admin/talleres/:id/registros.
func (h *AdminHandler) ListByTaller(c *gin.Context) {
	tallerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de taller inválido")
		return
	}
	list, err := h.repo.ListByTaller(c.Request.Context(), tallerID)
	if err != nil {
		h.logger.Error("list registros failed", zap.Error(err), zap.Int64("taller_id", tallerID))
		response.Internal(c, "Error al listar registros", err.Error())
		return
	}
	total, pending, err := h.repo.CountByTaller(c.Request.Context(), tallerID)
	if err != nil {
		h.logger.Error("count registros failed", zap.Error(err), zap.Int64("taller_id", tallerID))
		response.Internal(c, "Error al contar registros", err.Error())
		return
	}
	response.OK(c, gin.H{
		"registros": list,
		"total":     total,
		"pending":   pending,
	})
}
