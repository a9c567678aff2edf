package talleres

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallerhub/backend/internal/models"
	"github.com/tallerhub/backend/pkg/response"
	"github.com/tallerhub/backend/pkg/storage"
)

// CreateRequest is the body for POST /api/admin/talleres.
type CreateRequest struct {
	Nombre      string  `json:"nombre" binding:"required"`
	Slug        string  `json:"slug" binding:"required"`
	Descripcion string  `json:"descripcion"`
	PriceCents  int     `json:"price_cents"`
	Currency    string  `json:"currency"`
	StartsAt    *string `json:"starts_at"`
	Capacity    int     `json:"capacity"`
	Active      *bool   `json:"active"`
}

// UpdateRequest is the body for PATCH /api/admin/talleres/:id.
type UpdateRequest struct {
	Nombre      string  `json:"nombre"`
	Descripcion string  `json:"descripcion"`
	PriceCents  *int    `json:"price_cents"`
	Capacity    *int    `json:"capacity"`
	StartsAt    *string `json:"starts_at"`
	Active      *bool   `json:"active"`
}

// Handler handles taller HTTP endpoints for both the public catalog and the
// admin surfaces.
type Handler struct {
	repo   *Repository
	s3     *storage.S3 // may be nil when object storage is disabled
	logger *zap.Logger
}

// NewHandler creates a talleres handler.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// List handles GET /api/talleres (public; active only) and
// GET /api/admin/talleres (?all=true includes inactive).
func (h *Handler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	list, err := h.repo.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.logger.Error("list talleres failed", zap.Error(err))
		response.Internal(c, "Error al listar talleres", err.Error())
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/talleres/:id. The parameter may be a numeric id or
// a catalog slug.
func (h *Handler) GetByID(c *gin.Context) {
	param := c.Param("id")
	var (
		t   *models.Taller
		err error
	)
	if id, perr := strconv.ParseInt(param, 10, 64); perr == nil {
		t, err = h.repo.GetByID(c.Request.Context(), id)
	} else {
		t, err = h.repo.GetBySlug(c.Request.Context(), param)
	}
	if err != nil {
		response.NotFound(c, "Taller no encontrado")
		return
	}
	response.OK(c, t)
}

// Create handles POST /api/admin/talleres.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}
	startsAt, ok := parseStartsAt(c, req.StartsAt)
	if !ok {
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	currency := req.Currency
	if currency == "" {
		currency = "COP"
	}
	t := &models.Taller{
		Nombre:      req.Nombre,
		Slug:        req.Slug,
		Descripcion: req.Descripcion,
		PriceCents:  req.PriceCents,
		Currency:    currency,
		StartsAt:    startsAt,
		Capacity:    req.Capacity,
		Active:      active,
	}
	if err := h.repo.Create(c.Request.Context(), t); err != nil {
		h.logger.Error("create taller failed", zap.Error(err), zap.String("slug", req.Slug))
		response.Internal(c, "Error al crear el taller", err.Error())
		return
	}
	response.Created(c, t)
}

// Update handles PATCH /api/admin/talleres/:id.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de taller inválido")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Solicitud inválida", err.Error())
		return
	}
	startsAt, ok := parseStartsAt(c, req.StartsAt)
	if !ok {
		return
	}
	if err := h.repo.Update(c.Request.Context(), id, req.Nombre, req.Descripcion, req.PriceCents, req.Capacity, startsAt, req.Active); err != nil {
		h.logger.Error("update taller failed", zap.Error(err), zap.Int64("taller_id", id))
		response.Internal(c, "Error al actualizar el taller", err.Error())
		return
	}
	t, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "Taller no encontrado")
		return
	}
	response.OK(c, t)
}

// Delete handles DELETE /api/admin/talleres/:id.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de taller inválido")
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		h.logger.Error("delete taller failed", zap.Error(err), zap.Int64("taller_id", id))
		response.Internal(c, "Error al eliminar el taller", err.Error())
		return
	}
	response.NoContent(c)
}

// UploadImage handles POST /api/admin/talleres/:id/image (multipart form,
// field "file"). The image lands in the public S3 bucket and its URL is
// stored on the taller.
func (h *Handler) UploadImage(c *gin.Context) {
	if h.s3 == nil {
		response.ServiceUnavailable(c, "almacenamiento de imágenes no configurado")
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "ID de taller inválido")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), id); err != nil {
		response.NotFound(c, "Taller no encontrado")
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

	key := storage.TallerImageKey(strconv.FormatInt(id, 10), fileHeader.Filename)
	url, err := h.s3.UploadImage(c.Request.Context(), key, contentType, f, fileHeader.Size)
	if err != nil {
		h.logger.Error("upload taller image failed", zap.Error(err), zap.Int64("taller_id", id))
		response.Internal(c, "Error al subir la imagen", err.Error())
		return
	}
	if err := h.repo.SetImageURL(c.Request.Context(), id, url); err != nil {
		h.logger.Error("set image url failed", zap.Error(err), zap.Int64("taller_id", id))
		response.Internal(c, "Error al guardar la imagen", err.Error())
		return
	}
	response.OK(c, gin.H{"image_url": url})
}

func parseStartsAt(c *gin.Context, s *string) (*time.Time, bool) {
	if s == nil {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		response.BadRequest(c, "starts_at inválido", "se espera formato RFC3339")
		return nil, false
	}
	return &t, true
}
