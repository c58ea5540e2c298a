package handlers

import (
	"net/http"

	"companionhub/services/user"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	UserService user.UserService
	Logger      *zap.Logger
}

func NewAuthHandler(svc user.UserService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{UserService: svc, Logger: logger}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var in user.RegisterInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	resp, err := h.UserService.Register(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var in user.LoginInput
	if err := utils.BindJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, utils.ValidationError("Please provide email and password"))
		return
	}
	resp, err := h.UserService.Login(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Login successful", resp)
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so the client
// simply discards its copy.
func (h *AuthHandler) Logout(c *gin.Context) {
	utils.RespondOK(c, http.StatusOK, "Logged out successfully", nil)
}
