// Package handler HTTP 处理器
package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
	"github.com/oa-suite-cn/oa-auth-backend/internal/service"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
)

// RBACHandler 角色与权限管理处理器
type RBACHandler struct {
	rbacService service.RBACService
	authz       service.AuthzService
}

// NewRBACHandler 创建 RBAC 处理器
func NewRBACHandler(rbacSvc service.RBACService, authz service.AuthzService) *RBACHandler {
	return &RBACHandler{rbacService: rbacSvc, authz: authz}
}

// CreateRoleRequest 创建角色请求
type CreateRoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Code        string   `json:"code" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"` // 权限节点 ID 列表
}

// UpdateRoleRequest 更新角色请求
type UpdateRoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

// CreateRole 创建角色
// POST /api/v1/roles
func (h *RBACHandler) CreateRole(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	role := &model.Role{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		Type:        model.RoleTypeCustom,
		Status:      model.StatusActive,
	}

	if err := h.rbacService.CreateRole(c.Request.Context(), role); err != nil {
		if err == service.ErrRoleCodeExists {
			response.Error(c, response.CodeCodeExists)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}

	// 添加权限
	if len(req.Permissions) > 0 {
		_ = h.rbacService.AddPermissionsToRole(c.Request.Context(), role.ID, req.Permissions)
	}

	response.Success(c, role)
}

// GetRole 获取角色详情
// GET /api/v1/roles/:id
func (h *RBACHandler) GetRole(c *gin.Context) {
	id := c.Param("id")
	role, err := h.rbacService.GetRole(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.CodeRoleNotFound)
		return
	}
	response.Success(c, role)
}

// UpdateRole 更新角色
// PUT /api/v1/roles/:id
func (h *RBACHandler) UpdateRole(c *gin.Context) {
	id := c.Param("id")
	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	role, err := h.rbacService.GetRole(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.CodeRoleNotFound)
		return
	}

	if req.Name != "" {
		role.Name = req.Name
	}
	if req.Description != "" {
		role.Description = req.Description
	}
	if req.Status != "" {
		role.Status = req.Status
	}

	if err := h.rbacService.UpdateRole(c.Request.Context(), role); err != nil {
		if err == service.ErrPresetRole {
			response.Error(c, response.CodePresetReadonly)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, role)
}

// DeleteRole 删除角色
// DELETE /api/v1/roles/:id
func (h *RBACHandler) DeleteRole(c *gin.Context) {
	id := c.Param("id")
	if err := h.rbacService.DeleteRole(c.Request.Context(), id); err != nil {
		switch err {
		case service.ErrRoleNotFound:
			response.Error(c, response.CodeRoleNotFound)
		case service.ErrPresetRole:
			response.Error(c, response.CodePresetReadonly)
		default:
			response.Error(c, response.CodeServerError)
		}
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// ListRoles 获取角色列表
// GET /api/v1/roles
func (h *RBACHandler) ListRoles(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	pagination := &repository.Pagination{
		Page:     page,
		PageSize: pageSize,
	}

	roles, total, err := h.rbacService.ListRoles(c.Request.Context(), pagination)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, gin.H{
		"list":      roles,
		"total":     total,
		"page":      pagination.Page,
		"page_size": pagination.PageSize,
	})
}

// CreatePermissionRequest 创建权限节点请求
type CreatePermissionRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type" binding:"required"`
	Module    string `json:"module"`
	ParentID  string `json:"parent_id"`
	Path      string `json:"path"`
	Component string `json:"component"`
	Icon      string `json:"icon"`
	APIPath   string `json:"api_path"`
	APIMethod string `json:"api_method"`
	DataScope string `json:"data_scope"`
	SortOrder int    `json:"sort_order"`
}

// CreatePermission 创建权限节点
// POST /api/v1/permissions
func (h *RBACHandler) CreatePermission(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	perm := &model.PermissionNode{
		Code:      req.Code,
		Name:      req.Name,
		Type:      req.Type,
		Module:    req.Module,
		ParentID:  req.ParentID,
		Path:      req.Path,
		Component: req.Component,
		Icon:      req.Icon,
		APIPath:   req.APIPath,
		APIMethod: req.APIMethod,
		DataScope: req.DataScope,
		SortOrder: req.SortOrder,
		Status:    model.StatusActive,
	}

	if err := h.rbacService.CreatePermission(c.Request.Context(), perm); err != nil {
		switch err {
		case service.ErrPermissionExists:
			response.Error(c, response.CodeCodeExists)
		case service.ErrInvalidPermType, service.ErrInvalidDataScope:
			response.ErrorWithMsg(c, response.CodeInvalidRequest, err.Error())
		default:
			response.Error(c, response.CodeServerError)
		}
		return
	}

	response.Success(c, perm)
}

// GetPermission 获取权限节点详情
// GET /api/v1/permissions/:id
func (h *RBACHandler) GetPermission(c *gin.Context) {
	id := c.Param("id")
	perm, err := h.rbacService.GetPermission(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.CodePermNotFound)
		return
	}
	response.Success(c, perm)
}

// DeletePermission 删除权限节点
// DELETE /api/v1/permissions/:id
func (h *RBACHandler) DeletePermission(c *gin.Context) {
	id := c.Param("id")
	if err := h.rbacService.DeletePermission(c.Request.Context(), id); err != nil {
		switch err {
		case service.ErrPermissionNotFound:
			response.Error(c, response.CodePermNotFound)
		case service.ErrPresetPermission:
			response.Error(c, response.CodePresetReadonly)
		default:
			response.Error(c, response.CodeServerError)
		}
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// ListPermissions 获取权限节点列表
// GET /api/v1/permissions
func (h *RBACHandler) ListPermissions(c *gin.Context) {
	module := c.Query("module")
	permissions, err := h.rbacService.ListPermissions(c.Request.Context(), module)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, permissions)
}

// GetPermissionTree 获取权限目录树
// GET /api/v1/permissions/tree
func (h *RBACHandler) GetPermissionTree(c *gin.Context) {
	permType := c.Query("type")
	tree, err := h.rbacService.GetPermissionTree(c.Request.Context(), permType)
	if err != nil {
		if err == service.ErrCycleDetected {
			response.ErrorWithMsg(c, response.CodeServerError, err.Error())
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, tree)
}

// GetRolePermissions 获取角色权限
// GET /api/v1/roles/:id/permissions
func (h *RBACHandler) GetRolePermissions(c *gin.Context) {
	roleID := c.Param("id")
	permissions, err := h.rbacService.GetRolePermissions(c.Request.Context(), roleID)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, permissions)
}

// AddPermissionsToRole 添加权限到角色
// POST /api/v1/roles/:id/permissions
func (h *RBACHandler) AddPermissionsToRole(c *gin.Context) {
	roleID := c.Param("id")
	var req struct {
		PermissionIDs []string `json:"permission_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	if err := h.rbacService.AddPermissionsToRole(c.Request.Context(), roleID, req.PermissionIDs); err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, gin.H{"message": "权限添加成功"})
}

// RemovePermissionsFromRole 从角色移除权限
// DELETE /api/v1/roles/:id/permissions
func (h *RBACHandler) RemovePermissionsFromRole(c *gin.Context) {
	roleID := c.Param("id")
	var req struct {
		PermissionIDs []string `json:"permission_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	if err := h.rbacService.RemovePermissionsFromRole(c.Request.Context(), roleID, req.PermissionIDs); err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, gin.H{"message": "权限移除成功"})
}

// AssignRole 分配角色给用户
// POST /api/v1/users/:id/roles
func (h *RBACHandler) AssignRole(c *gin.Context) {
	userID := c.Param("id")
	var req struct {
		RoleID string `json:"role_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	if err := h.rbacService.AssignRole(c.Request.Context(), userID, req.RoleID); err != nil {
		if err == service.ErrRoleNotFound {
			response.Error(c, response.CodeRoleNotFound)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, gin.H{"message": "角色分配成功"})
}

// RevokeRole 撤销用户角色
// DELETE /api/v1/users/:id/roles/:role_id
func (h *RBACHandler) RevokeRole(c *gin.Context) {
	userID := c.Param("id")
	roleID := c.Param("role_id")

	if err := h.rbacService.RevokeRole(c.Request.Context(), userID, roleID); err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, gin.H{"message": "角色撤销成功"})
}

// GetUserRoles 获取用户角色
// GET /api/v1/users/:id/roles
func (h *RBACHandler) GetUserRoles(c *gin.Context) {
	userID := c.Param("id")
	roles, err := h.rbacService.GetUserRoles(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, roles)
}

// GetCurrentUserPermissions 获取当前用户的权限集合
// GET /api/v1/auth/permissions
func (h *RBACHandler) GetCurrentUserPermissions(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	set, err := h.authz.ResolveUserPermissions(c.Request.Context(), userID.(string))
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	roleCodes := make([]string, len(set.Roles))
	for i, role := range set.Roles {
		roleCodes[i] = role.Code
	}

	codes := make([]string, 0, len(set.PermissionCodes))
	for code := range set.PermissionCodes {
		codes = append(codes, code)
	}

	response.Success(c, gin.H{
		"roles":       roleCodes,
		"permissions": codes,
		"data_scopes": set.DataScopeByModule,
	})
}

// GetCurrentUserMenus 获取当前用户的菜单树
// GET /api/v1/auth/menus
func (h *RBACHandler) GetCurrentUserMenus(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Error(c, response.CodeInvalidToken)
		return
	}

	menus, err := h.authz.GetUserMenuTree(c.Request.Context(), userID.(string))
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, menus)
}
