// Package handler HTTP 处理器
package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
	"github.com/oa-suite-cn/oa-auth-backend/internal/service"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
)

// DictHandler 数据字典处理器
type DictHandler struct {
	dictService service.DictService
}

// NewDictHandler 创建数据字典处理器
func NewDictHandler(dictSvc service.DictService) *DictHandler {
	return &DictHandler{dictService: dictSvc}
}

// CreateDictTypeRequest 创建字典类型请求
type CreateDictTypeRequest struct {
	Name   string `json:"name" binding:"required"`
	Code   string `json:"code" binding:"required"`
	Remark string `json:"remark"`
}

// CreateDictType 创建字典类型
// POST /api/v1/dicts/types
func (h *DictHandler) CreateDictType(c *gin.Context) {
	var req CreateDictTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	dt := &model.DictType{
		Name:   req.Name,
		Code:   req.Code,
		Remark: req.Remark,
		Status: model.StatusActive,
	}

	if err := h.dictService.CreateType(c.Request.Context(), dt); err != nil {
		if err == repository.ErrDictTypeCodeExists {
			response.Error(c, response.CodeCodeExists)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, dt)
}

// ListDictTypes 获取字典类型列表
// GET /api/v1/dicts/types
func (h *DictHandler) ListDictTypes(c *gin.Context) {
	types, err := h.dictService.ListTypes(c.Request.Context())
	if err != nil {
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, types)
}

// DeleteDictType 删除字典类型（连带删除其条目）
// DELETE /api/v1/dicts/types/:code
func (h *DictHandler) DeleteDictType(c *gin.Context) {
	code := c.Param("code")
	if err := h.dictService.DeleteType(c.Request.Context(), code); err != nil {
		if err == repository.ErrDictTypeNotFound {
			response.Error(c, response.CodeDictNotFound)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, gin.H{"message": "删除成功"})
}

// CreateDictEntryRequest 创建字典条目请求
type CreateDictEntryRequest struct {
	TypeCode  string `json:"type_code" binding:"required"`
	Label     string `json:"label" binding:"required"`
	Value     string `json:"value" binding:"required"`
	SortOrder int    `json:"sort_order"`
	IsDefault bool   `json:"is_default"`
}

// CreateDictEntry 创建字典条目
// POST /api/v1/dicts/entries
func (h *DictHandler) CreateDictEntry(c *gin.Context) {
	var req CreateDictEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	entry := &model.DictEntry{
		TypeCode:  req.TypeCode,
		Label:     req.Label,
		Value:     req.Value,
		SortOrder: req.SortOrder,
		IsDefault: req.IsDefault,
		Status:    model.StatusActive,
	}

	if err := h.dictService.CreateEntry(c.Request.Context(), entry); err != nil {
		if err == repository.ErrDictTypeNotFound {
			response.Error(c, response.CodeDictNotFound)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, entry)
}

// UpdateDictEntryRequest 更新字典条目请求
type UpdateDictEntryRequest struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	SortOrder *int   `json:"sort_order"`
	IsDefault *bool  `json:"is_default"`
	Status    string `json:"status"`
}

// UpdateDictEntry 更新字典条目
// PUT /api/v1/dicts/entries/:id
func (h *DictHandler) UpdateDictEntry(c *gin.Context) {
	id := c.Param("id")
	var req UpdateDictEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithMsg(c, response.CodeInvalidRequest, "参数错误: "+err.Error())
		return
	}

	entry, err := h.dictService.GetEntry(c.Request.Context(), id)
	if err != nil {
		response.Error(c, response.CodeDictNotFound)
		return
	}

	if req.Label != "" {
		entry.Label = req.Label
	}
	if req.Value != "" {
		entry.Value = req.Value
	}
	if req.SortOrder != nil {
		entry.SortOrder = *req.SortOrder
	}
	if req.IsDefault != nil {
		entry.IsDefault = *req.IsDefault
	}
	if req.Status != "" {
		entry.Status = req.Status
	}

	if err := h.dictService.UpdateEntry(c.Request.Context(), entry); err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, entry)
}

// DeleteDictEntry 删除字典条目
// DELETE /api/v1/dicts/entries/:id
func (h *DictHandler) DeleteDictEntry(c *gin.Context) {
	id := c.Param("id")
	typeCode := c.Query("type_code")

	if err := h.dictService.DeleteEntry(c.Request.Context(), id, typeCode); err != nil {
		response.Error(c, response.CodeServerError)
		return
	}

	response.Success(c, gin.H{"message": "删除成功"})
}

// GetDictEntries 获取字典条目（带缓存）
// GET /api/v1/dicts/:code/entries
func (h *DictHandler) GetDictEntries(c *gin.Context) {
	code := c.Param("code")
	entries, err := h.dictService.GetEntries(c.Request.Context(), code)
	if err != nil {
		if err == service.ErrDictTypeCodeEmpty {
			response.Error(c, response.CodeInvalidRequest)
			return
		}
		response.Error(c, response.CodeServerError)
		return
	}
	response.Success(c, entries)
}
