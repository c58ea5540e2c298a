package handlers

import (
	"net/http"

	"companionhub/middleware"
	"companionhub/services/user"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	UserService user.UserService
	Logger      *zap.Logger
}

func NewUserHandler(svc user.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{UserService: svc, Logger: logger}
}

// GetProfile handles GET /api/users/profile.
func (h *UserHandler) GetProfile(c *gin.Context) {
	profile, err := h.UserService.GetProfile(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", profile)
}

// UpdateProfile handles PUT /api/users/profile. Fields outside the allow-list
// are rejected rather than ignored.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var in user.ProfileUpdate
	if err := utils.BindStrictJSON(c, &in); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	updated, err := h.UserService.UpdateProfile(c.Request.Context(), middleware.CurrentUser(c), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Profile updated", updated)
}

// ListCompanions handles GET /api/users/companions.
func (h *UserHandler) ListCompanions(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	page, err := h.UserService.ListCompanions(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", page)
}
