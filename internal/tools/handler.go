package tools

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/response"
	"github.com/tallerhub/backend/pkg/storage"
)

// CreateRequest is the body for POST /api/admin/herramientas.
type CreateRequest struct {
	Nombre      string `json:"nombre" binding:"required"`
	Descripcion string `json:"descripcion"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Active      *bool  `json:"active"`
}

// UpdateRequest is the body for PATCH /api/admin/herramientas/:id.
type UpdateRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Active      *bool  `json:"active"`
}

// Handler handles herramienta HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3 // may be nil when object storage is disabled
	logger *zap.Logger
}

// NewHandler creates a tools handler.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// List handles GET /api/herramientas (public; active only) and
// GET /api/admin/herramientas (?all=true includes inactive).
func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	list, err := h.repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list herramientas failed", zap.Error(err))
		response.Internal(c, "Error al listar herramientas", err.Error())
		return
	}
	response.OK(c, list)
}

// Create handles POST /api/admin/herramientas.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	t := &models.Tool{
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		URL:         req.URL,
		Category:    req.Category,
		Active:      active,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create herramienta failed", zap.Error(err))
		response.Internal(c, "Error al crear la herramienta", err.Error())
		return
	}
	response.Created(c, t)
}

// Update handles PATCH /api/admin/herramientas/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de herramienta inválido")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Nombre, req.Descripcion, req.URL, req.Category, req.Active); err != nil {
		h.logger.Error("update herramienta failed", zap.Error(err), zap.Int64("tool_id", id))
		response.Internal(c, "Error al actualizar la herramienta", err.Error())
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "Herramienta no encontrada")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /api/admin/herramientas/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de herramienta inválido")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete herramienta failed", zap.Error(err), zap.Int64("tool_id", id))
		response.Internal(c, "Error al eliminar la herramienta", err.Error())
		return
	}
	response.NoContent(c)
}

// UploadImage handles POST /api/admin/herramientas/:id/image.
func (h *Handler) UploadImage(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "almacenamiento de imágenes no configurado")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de herramienta inválido")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "Herramienta no encontrada")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "archivo requerido", err.Error())
		return
	}
	if fileHeader.Size > storage.MaxImageFileSize {
		response.BadRequest(c, "archivo demasiado grande")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateImageFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "tipo de archivo no permitido")
		return
	}
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "Error al leer el archivo", err.Error())
		return
	}
	defer f.Close()

	key := storage.ToolImageKey(strconv.FormatInt(id, 10), fileHeader.Filename)
	url, err := h.s3.UploadImage(c.Request.Context(), key, contentType, f, fileHeader.Size)
	if err != nil {
		h.logger.Error("upload herramienta image failed", zap.Error(err), zap.Int64("tool_id", id))
		response.Internal(c, "Error al subir la imagen", err.Error())
		return
	}
	if err := h.repo.SetImageURL(c.Request.Context(), id, url); err != nil {
		h.logger.Error("set image url failed", zap.Error(err), zap.Int64("tool_id", id))
		response.Internal(c, "Error al guardar la imagen", err.Error())
		return
	}
	response.OK(c, gin.H{"image_url": url})
}
