package activity

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vault-backend/internal/shared/server/middleware"
	"vault-backend/internal/shared/server/respond"
)

// Handler serves the activity feed endpoints.
type Handler struct {
	recorder *Recorder
}

func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// RegisterRoutes mounts the activity endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/activities", h.list)
}

func (h *Handler) list(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respond.Error(c, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	entries, err := h.recorder.ListForUser(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch activities")
		return
	}
	respond.List(c, entries, len(entries))
}
