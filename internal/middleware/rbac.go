// Package middleware 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/oa-suite-cn/oa-auth-backend/internal/service"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
)

// RequirePermission 权限检查中间件
// 检查当前用户是否拥有指定的权限编码
func RequirePermission(authz service.AuthzService, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取用户 ID
		userID, exists := c.Get("user_id")
		if !exists {
			response.Error(c, response.CodeInvalidToken)
			c.Abort()
			return
		}

		// 检查权限
		allowed, err := authz.CheckPermission(c.Request.Context(), userID.(string), code)
		if err != nil {
			response.Error(c, response.CodeServerError)
			c.Abort()
			return
		}

		if !allowed {
			response.ErrorWithMsg(c, response.CodeForbidden, "没有权限执行此操作")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyPermission 任一权限检查中间件
// 用户拥有任一指定权限编码即放行
func RequireAnyPermission(authz service.AuthzService, codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			response.Error(c, response.CodeInvalidToken)
			c.Abort()
			return
		}

		allowed, err := authz.CheckAnyPermission(c.Request.Context(), userID.(string), codes)
		if err != nil {
			response.Error(c, response.CodeServerError)
			c.Abort()
			return
		}

		if !allowed {
			response.ErrorWithMsg(c, response.CodeForbidden, "没有权限执行此操作")
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole 角色检查中间件
// 检查当前用户是否拥有指定的角色
func RequireRole(authz service.AuthzService, roleCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			response.Error(c, response.CodeInvalidToken)
			c.Abort()
			return
		}

		hasRole, err := authz.CheckRole(c.Request.Context(), userID.(string), roleCode)
		if err != nil {
			response.Error(c, response.CodeServerError)
			c.Abort()
			return
		}

		if !hasRole {
			response.ErrorWithMsg(c, response.CodeForbidden, "没有权限执行此操作")
			c.Abort()
			return
		}

		c.Next()
	}
}

// LoadUserPermissions 加载用户权限集合到上下文
// 后续处理器可通过 "perm_set" 直接读取已解析的权限，避免重复解析
func LoadUserPermissions(authz service.AuthzService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.Next()
			return
		}

		set, err := authz.ResolveUserPermissions(c.Request.Context(), userID.(string))
		if err == nil {
			c.Set("perm_set", set)

			roleCodes := make([]string, len(set.Roles))
			for i, role := range set.Roles {
				roleCodes[i] = role.Code
			}
			c.Set("roles", roleCodes)
		}

		c.Next()
	}
}
