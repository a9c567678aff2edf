package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/internal/security"
	"github.com/tallerhub/backend/pkg/response"
	"github.com/tallerhub/backend/pkg/utils"
)

// CreateUserRequest is the body for POST /api/admin/users (admin only).
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role"` // optional, defaults to editor
}

// LoginRequest is the body for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string                 `json:"token"`
	User  models.AdminUserPublic `json:"user"`
}

// Handler handles admin auth HTTP endpoints.
type Handler struct {
	repo    *Repository
	jwt     *JWTService
	monitor *security.Monitor
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, monitor *security.Monitor, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, jwt: jwt, monitor: monitor, logger: logger}
}

// Login handles POST /api/auth/login for the dashboard/backoffice surfaces.
// Failed attempts are recorded as security events.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}

	user, err := h.repo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || user == nil || !utils.CheckPassword(req.Password, user.Password) {
		if h.monitor != nil {
			h.monitor.Record(c.Request.Context(), models.EventLoginFailed,
				"failed admin login for "+req.Email, c.ClientIP())
		}
		response.Unauthorized(c, "credenciales inválidas")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Email, string(user.Role))
	if err != nil {
		response.Internal(c, "Error al generar el token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// CreateUser handles POST /api/admin/users (admin only).
func (h *Handler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}

	role := models.RoleEditor
	switch req.Role {
	case "":
	case "admin":
		role = models.RoleAdmin
	case "editor":
		role = models.RoleEditor
	default:
		response.BadRequest(c, "rol inválido")
		return
	}

	if _, err := h.repo.GetByEmail(c.Request.Context(), req.Email); err == nil {
		response.Conflict(c, "el email ya está registrado")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "Error al procesar la contraseña")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), req.Email, hash, req.FullName, role)
	if err != nil {
		h.logger.Error("create admin user failed", zap.Error(err), zap.String("email", req.Email))
		response.Internal(c, "Error al crear el usuario", err.Error())
		return
	}

	response.Created(c, user.ToPublic())
}

// List handles GET /api/admin/users (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "Error al listar usuarios", err.Error())
		return
	}
	response.OK(c, list)
}
