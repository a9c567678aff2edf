package registrations

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/security"
	"github.com/tallerhub/backend/pkg/response"
)

// RegisterRequest is the body for POST /api/register. TallerID is kept raw
// because clients send it as either a number or a string.
type RegisterRequest struct {
	Name     string          `json:"name"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	TallerID json.RawMessage `json:"tallerId"`
}

// Store is the persistence surface the register flow needs.
type Store interface {
	Preflight(ctx context.Context) error
	UpsertRegistrant(ctx context.Context, nombre, email, telefono string) (int64, error)
	UpsertRegistration(ctx context.Context, registrantID, tallerID int64) (int64, error)
}

// Notifier delivers the best-effort registration webhook. Implementations
// must never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, registrationID, registrantID, tallerID int64)
}

// Handler handles the public registration endpoint.
type Handler struct {
	store    Store
	notifier Notifier
	monitor  *security.Monitor
	logger   *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(store Store, notifier Notifier, monitor *security.Monitor, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, notifier: notifier, monitor: monitor, logger: logger}
}

// Register handles POST /api/register. Steps are strictly ordered: validate,
// resolve registrant, resolve registration, then the webhook notification.
// Only the webhook step is allowed to fail without failing the request; the
// response is not written until its retry loop finishes.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}

	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(req.Phone) == "" {
		missing = append(missing, "phone")
	}
	if len(req.TallerID) == 0 {
		missing = append(missing, "tallerId")
	}
	if len(missing) > 0 {
		response.BadRequest(c, "Campos requeridos faltantes", strings.Join(missing, ", "))
		return
	}

	telefono := security.NormalizePhone(req.Phone)
	if telefono == "" {
		response.BadRequest(c, "Teléfono inválido", "el teléfono no contiene dígitos")
		return
	}

	tallerID, ok := security.CoerceTallerID(req.TallerID)
	if !ok {
		if h.monitor != nil {
			h.monitor.Record(c.Request.Context(), models.EventInvalidTallerID,
				"tallerId rejected: "+string(req.TallerID), c.ClientIP())
		}
		response.BadRequest(c, "ID de taller inválido", "tallerId debe ser un entero dentro del rango permitido")
		return
	}

	if h.monitor != nil {
		h.monitor.CheckPhone(c.Request.Context(), telefono, c.ClientIP())
	}

	if err := h.store.Preflight(c.Request.Context()); err != nil {
		h.logger.Error("registration preflight failed", zap.Error(err))
		response.ConfigError(c, "Error de configuración",
			"las tablas de registro no están disponibles", err.Error())
		return
	}

	registrantID, err := h.store.UpsertRegistrant(c.Request.Context(), req.Name, req.Email, telefono)
	if err != nil {
		h.logger.Error("upsert registrant failed", zap.Error(err), zap.String("telefono", telefono))
		response.Internal(c, "Error al registrar usuario", err.Error())
		return
	}

	registrationID, err := h.store.UpsertRegistration(c.Request.Context(), registrantID, tallerID)
	if err != nil {
		h.logger.Error("upsert registration failed", zap.Error(err),
			zap.Int64("usuario_id", registrantID), zap.Int64("taller_id", tallerID))
		response.Internal(c, "Error al crear el registro", err.Error())
		return
	}

	// Inline on purpose: the caller waits for the retry loop, but its outcome
	// cannot change the response.
	if h.notifier != nil {
		h.notifier.Notify(c.Request.Context(), registrationID, registrantID, tallerID)
	}

	response.OKMessage(c, "Registro exitoso", gin.H{
		"usuario_id":  registrantID,
		"registro_id": registrationID,
	})
}
