package handlers

import (
	"net/http"

	"companionhub/models"
	"companionhub/services/user"
	"companionhub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminHandler struct {
	UserService user.UserService
	Logger      *zap.Logger
}

func NewAdminHandler(svc user.UserService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{UserService: svc, Logger: logger}
}

type verifyRequest struct {
	IsVerified *bool `json:"isVerified" validate:"required"`
}

type activeRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	q, err := bindListQuery(c)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	page, err := h.UserService.ListUsers(c.Request.Context(), models.Role(q.Role), q.Page, q.Limit)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "", page)
}

// SetVerified handles PUT /api/admin/users/:id/verify.
func (h *AdminHandler) SetVerified(c *gin.Context) {
	var req verifyRequest
	if err := bindFlag(c, &req); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	u, err := h.UserService.SetVerified(c.Request.Context(), c.Param("id"), *req.IsVerified)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Verification updated", u)
}

// SetActive handles PUT /api/admin/users/:id/active.
func (h *AdminHandler) SetActive(c *gin.Context) {
	var req activeRequest
	if err := bindFlag(c, &req); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	u, err := h.UserService.SetActive(c.Request.Context(), c.Param("id"), *req.IsActive)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, "Account status updated", u)
}

func bindFlag(c *gin.Context, dst any) error {
	if err := utils.BindJSON(c, dst); err != nil {
		return err
	}
	return utils.Validate(dst)
}
