package handler

import (
	"net/http"

	"tapin/internal/app/tapin/entity"
	"tapin/internal/app/tapin/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler проксирует аутентификацию в backend и поддерживает
// сессию шлюза в актуальном состоянии
type AuthHandler struct {
	sessions  *service.SessionService
	validator *validator.Validate
}

func NewAuthHandler(sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{
		sessions:  sessions,
		validator: validator.New(),
	}
}

// Login выполняет вход, сохраняет credential и загружает профиль
func (h *AuthHandler) Login(c *gin.Context) {
	var req entity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.sessions.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.MeResponse{User: user})
}

// Register регистрирует пользователя и сразу открывает сессию
func (h *AuthHandler) Register(c *gin.Context) {
	var req entity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	user, err := h.sessions.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entity.MeResponse{User: user})
}

// Logout очищает credential и профиль
func (h *AuthHandler) Logout(c *gin.Context) {
	h.sessions.Logout(c.Request.Context())
	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Logged out"})
}

// Me отдаёт профиль текущей сессии
func (h *AuthHandler) Me(c *gin.Context) {
	user := h.sessions.CurrentUser()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": service.ErrNotAuthenticated.Error()})
		return
	}

	c.JSON(http.StatusOK, entity.MeResponse{User: user})
}

// ResetPassword запрашивает сброс пароля по email
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req entity.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.sessions.ResetPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Reset instructions sent"})
}

// ResetPasswordConfirm завершает сброс пароля по токену из письма
func (h *AuthHandler) ResetPasswordConfirm(c *gin.Context) {
	resetToken := c.Param("token")
	if resetToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reset token is required"})
		return
	}

	var req entity.ResetPasswordConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	if err := h.sessions.ResetPasswordConfirm(c.Request.Context(), resetToken, req.Password); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{Message: "Password updated"})
}
