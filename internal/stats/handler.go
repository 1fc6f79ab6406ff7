package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/shared/server/middleware"
	"vault-backend/internal/shared/server/respond"
)

// Handler serves the storage stats endpoint.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the stats endpoint on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.overview)
}

func (h *Handler) overview(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	overview, err := h.service.Overview(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to compute stats")
		return
	}
	respond.OK(c, overview)
}
