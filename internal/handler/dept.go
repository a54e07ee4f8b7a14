// Package handler HTTP 处理器
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
	"github.com/oa-suite-cn/oa-auth-backend/internal/service"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
)

// DeptHandler 部门管理处理器
type DeptHandler struct {
	deptService service.DepartmentService
}

// NewDeptHandler 创建部门管理处理器
func NewDeptHandler(deptSvc service.DepartmentService) *DeptHandler {
	return &DeptHandler{deptService: deptSvc}
}

// CreateDeptRequest 创建部门请求
type CreateDeptRequest struct {
	Name      string `json:"name" binding:"required"`
	Code      string `json:"code" binding:"required"`
	ParentID  string `json:"parent_id"`
	LeaderID  string `json:"leader_id"`
	SortOrder int    `json:"sort_order"`
}

// UpdateDeptRequest 更新部门请求
type UpdateDeptRequest struct {
	Name      string  `json:"name"`
	ParentID  *string `json:"parent_id"`
	LeaderID  string  `json:"leader_id"`
	SortOrder *int    `json:"sort_order"`
	Status    string  `json:"status"`
}

// CreateDept 创建部门
// POST /api/v1/departments
func (h *DeptHandler) CreateDept(c *gin.Context) {
	var req CreateDeptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	dept := &model.Department{
		Name:      req.Name,
		Code:      req.Code,
		ParentID:  req.ParentID,
		LeaderID:  req.LeaderID,
		SortOrder: req.SortOrder,
		Status:    model.StatusActive,
	}

	if err := h.deptService.Create(c.Request.Context(), dept); err != nil {
		switch err {
		case repository.ErrDeptCodeExists:
			response.Error(c, response.CodeCodeExists)
		case service.ErrDeptParentMissing:
			response.Error(c, response.CodeDeptNotFound)
		case service.ErrDeptNameEmpty, service.ErrDeptCodeEmpty:
			response.ErrorWithMsg(c, response.CodeInvalidRequest, err.Error())
		default:
			response.Error(c, response.CodeServerError)
		}
		return
	}

	response.Success(c, dept)
}

// GetDept 获取部门详情
// GET /api/v1/departments/:id
func (h *DeptHandler) GetDept(c *gin.Context) {
	id := c.Param("id")
	dept, err := h.deptService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.CodeDeptNotFound)
		return
	}
	response.Success(c, dept)
}

// UpdateDept 更新部门
// PUT /api/v1/departments/:id
func (h *DeptHandler) UpdateDept(c *gin.Context) {
	id := c.Param("id")
	var req UpdateDeptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	dept, err := h.deptService.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.CodeDeptNotFound)
		return
	}

	if req.Name != "" {
		dept.Name = req.Name
	}
	if req.ParentID != nil {
		dept.ParentID = *req.ParentID
	}
	if req.LeaderID != "" {
		dept.LeaderID = req.LeaderID
	}
	if req.SortOrder != nil {
		dept.SortOrder = *req.SortOrder
	}
	if req.Status != "" {
		dept.Status = req.Status
	}

	if err := h.deptService.Update(c.Request.Context(), dept); err != nil {
		switch err {
		case service.ErrDeptParentMissing:
			response.Error(c, response.CodeDeptNotFound)
		case service.ErrDeptParentSelf:
			response.ErrorWithMsg(c, response.CodeInvalidRequest, err.Error())
		default:
			response.Error(c, response.CodeServerError)
		}
		return
	}

	response.Success(c, dept)
}

// DeleteDept 删除部门
// DELETE /api/v1/departments/:id
func (h *DeptHandler) DeleteDept(c *gin.Context) {
	id := c.Param("id")
	if err := h.deptService.Delete(c.Request.Context(), id); err != nil {
		switch err {
		case repository.ErrDeptNotFound:
			response.Error(c, response.CodeDeptNotFound)
		case repository.ErrDeptHasChildren:
			response.Error(c, response.CodeHasChildren)
		default:
			response.Error(c, response.CodeServerError)
		}
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// GetDeptTree 获取部门树
// GET /api/v1/departments/tree
func (h *DeptHandler) GetDeptTree(c *gin.Context) {
	status := c.Query("status")
	tree, err := h.deptService.GetTree(c.Request.Context(), status)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, tree)
}

// ListDepts 获取部门扁平列表（按树的先序排列）
// GET /api/v1/departments
func (h *DeptHandler) ListDepts(c *gin.Context) {
	status := c.Query("status")
	list, err := h.deptService.GetFlatList(c.Request.Context(), status)
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, list)
}
