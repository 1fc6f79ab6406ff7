package documents

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/quota"
	"vault-backend/internal/shared/server/middleware"
	"vault-backend/internal/shared/server/respond"
	"vault-backend/internal/shared/storage/object"
)

// Handler serves the document endpoints.
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{service: service, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the document endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
	rg.GET("/documents/:id", h.get)
	rg.PUT("/documents/:id", h.update)
	rg.DELETE("/documents/:id", h.remove)
	rg.POST("/documents/:id/archive", h.toggleArchive)
	rg.POST("/documents/:id/favorite", h.toggleFavorite)
	rg.GET("/documents/:id/download", h.download)
}

func (h *Handler) upload(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}

	// Cap the request body before multipart parsing touches it.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusBadRequest,
				fmt.Sprintf("File too large, the limit is %d bytes", h.maxUploadBytes))
			return
		}
		respond.Error(c, http.StatusBadRequest, "No file provided")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "Unable to read file")
		return
	}
	defer file.Close()

	doc, err := h.service.Upload(c.Request.Context(), userID, UploadInput{
		FileName:     fileHeader.Filename,
		ContentType:  fileHeader.Header.Get("Content-Type"),
		Reader:       file,
		Name:         c.PostForm("name"),
		Type:         c.PostForm("type"),
		Category:     c.PostForm("category"),
		TagsJSON:     c.PostForm("tags"),
		MetadataJSON: c.PostForm("metadata"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.Data(c, http.StatusCreated, doc)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}

	filter := ListFilter{Search: c.Query("search")}
	if raw := c.Query("category"); raw != "" {
		filter.Category = ParseCategory(raw)
	}
	if raw := c.Query("favorite"); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid favorite flag")
			return
		}
		filter.FavoriteOnly = fav
	}
	if raw := c.Query("archived"); raw != "" {
		archived, err := strconv.ParseBool(raw)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "Invalid archived flag")
			return
		}
		filter.Archived = archived
	}

	docs, err := h.service.List(c.Request.Context(), userID, filter)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.List(c, docs, len(docs))
}

func (h *Handler) get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	doc, err := h.service.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) update(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	doc, err := h.service.Update(c.Request.Context(), userID, c.Param("id"), req.toUpdate())
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) remove(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	respond.Message(c, http.StatusOK, "Document deleted")
}

func (h *Handler) toggleArchive(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	doc, err := h.service.ToggleArchive(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	doc, err := h.service.ToggleFavorite(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, doc)
}

func (h *Handler) download(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	doc, err := h.service.Download(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	// Remote providers serve bytes themselves; local files stream through us.
	if doc.StorageProvider != object.ProviderLocal {
		c.Redirect(http.StatusFound, doc.FileURL)
		return
	}
	reader, err := h.service.OpenFile(c.Request.Context(), doc)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to open file")
		return
	}
	defer reader.Close()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", attachmentName(doc.Name, doc.FileType)))
	c.DataFromReader(http.StatusOK, doc.SizeBytes, contentTypeFor(doc.FileType), reader, nil)
}

// attachmentName appends the file extension unless the document name
// already ends with it.
func attachmentName(name string, ft FileType) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "."+string(ft) || (ft == FileJPG && ext == ".jpeg") {
		return name
	}
	return name + "." + string(ft)
}

func contentTypeFor(ft FileType) string {
	switch ft {
	case FilePDF:
		return "application/pdf"
	case FileJPG:
		return "image/jpeg"
	case FilePNG:
		return "image/png"
	case FileWebP:
		return "image/webp"
	case FileGIF:
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func (h *Handler) writeError(c *gin.Context, err error) {
	var exceeded *quota.ExceededError
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "Document not found")
	case errors.Is(err, ErrNoFile):
		respond.Error(c, http.StatusBadRequest, "No file provided")
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusBadRequest, "Unsupported file type")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, err.Error())
	case errors.As(err, &exceeded):
		respond.Error(c, http.StatusBadRequest, fmt.Sprintf(
			"Storage limit exceeded: using %d of %d bytes, requested %d more",
			exceeded.Used, exceeded.Limit, exceeded.Requested))
	default:
		respond.Error(c, http.StatusInternalServerError, "Something went wrong")
	}
}
