package api

import (
	"net/http"

	"github.com/Domenick1991/flightbot/internal/domain"
	"github.com/Domenick1991/flightbot/internal/service/users"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	service users.UserUseCase
}

type upsertUserRequest struct {
	UserID            string `json:"userId" binding:"required"`
	Name              string `json:"name"`
	Email             string `json:"email" binding:"omitempty,email"`
	Phone             string `json:"phone"`
	PreferredLanguage string `json:"preferredLanguage"`
}

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

func NewUserHandler(service users.UserUseCase) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.upsert)
	router.GET("/:userId", h.get)
	router.PATCH("/:userId/language", h.setLanguage)
}

func (h *UserHandler) upsert(c *gin.Context) {
	var req upsertUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user := domain.User{
		UserID:            req.UserID,
		Name:              req.Name,
		Email:             req.Email,
		Phone:             req.Phone,
		PreferredLanguage: req.PreferredLanguage,
	}
	if _, err := h.service.Upsert(c.Request.Context(), user); err != nil {
		abort(c, err, "Failed to update user profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "User profile updated successfully"})
}

func (h *UserHandler) get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		abort(c, err, "Failed to retrieve user")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) setLanguage(c *gin.Context) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.SetLanguage(c.Request.Context(), c.Param("userId"), req.Language); err != nil {
		abort(c, err, "Failed to update language preference")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Language preference updated"})
}
