package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vault-backend/internal/quota"
	"vault-backend/internal/shared/server/middleware"
	"vault-backend/internal/shared/server/respond"
)

// Handler serves auth and profile endpoints.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the auth and profile endpoints on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/guest", h.guest)
	rg.GET("/user/profile", h.profile)
	rg.PUT("/user/profile", h.updateProfile)
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type profileResponse struct {
	User    User        `json:"user"`
	Storage quota.Usage `json:"storage"`
}

type updateProfileRequest struct {
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, token, err := h.service.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.Data(c, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, token, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, sessionResponse{Token: token, User: user})
}

// guest issues a fresh guest session ID. The client sends it back in the
// X-Guest-Id header; nothing is persisted server side.
func (h *Handler) guest(c *gin.Context) {
	respond.Data(c, http.StatusCreated, gin.H{"guestId": uuid.NewString()})
}

func (h *Handler) profile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	usage, err := h.service.StorageUsage(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Failed to fetch storage usage")
		return
	}
	respond.OK(c, profileResponse{User: user, Storage: usage})
}

func (h *Handler) updateProfile(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respond.Error(c, http.StatusUnauthorized, "Missing identity")
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	user, err := h.service.UpdateProfile(c.Request.Context(), userID,
		ProfileUpdate{Name: req.Name, Avatar: req.Avatar})
	if err != nil {
		h.writeError(c, err)
		return
	}
	respond.OK(c, user)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmailTaken):
		respond.Error(c, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, ErrInvalidCredentials):
		respond.Error(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "User not found")
	default:
		respond.Error(c, http.StatusInternalServerError, "Something went wrong")
	}
}
