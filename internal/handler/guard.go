package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oa-suite-cn/oa-auth-backend/internal/service"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
)

// GuardHandler 路由守卫处理器
// 前端路由跳转前调用，返回放行或跳转裁决
type GuardHandler struct {
	guard *service.RouteGuard
}

// NewGuardHandler 创建路由守卫处理器
func NewGuardHandler(guard *service.RouteGuard) *GuardHandler {
	return &GuardHandler{guard: guard}
}

// GuardCheckRequest 导航裁决请求
type GuardCheckRequest struct {
	Path          string   `json:"path" binding:"required"`
	RequiredCodes []string `json:"required_codes"`
}

// CheckNavigation 评估一次前端导航
// POST /api/v1/auth/guard
// 通过可选认证中间件取得登录态，未登录时 user_id 为空
func (h *GuardHandler) CheckNavigation(c *gin.Context) {
	var req GuardCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	userID := c.GetString("user_id")
	verdict := h.guard.Check(c.Request.Context(), service.Route{
		Path:          req.Path,
		RequiredCodes: req.RequiredCodes,
	}, userID)

	response.Success(c, verdict)
}
