package service

import (
	"go.uber.org/zap"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
)

// ResolveUserPermissionSet 由用户角色与权限目录计算有效权限集合
//
// 解析是跨角色的并集，永远做加法：权限代码取所有角色引用权限的并集，
// 数据范围按模块取最宽（同一模块同时持有 dept 与 all 时 all 生效）。
// 角色引用了目录中不存在的权限 ID 时静默忽略该引用（容忍过期引用），
// 仅记录日志供排查。纯函数，无网络与存储副作用。
//
// 菜单桶经 BuildPermissionTree(type=menu) 组装为导航树：祖先菜单不在
// 用户权限范围内的节点被丢弃，不会提升为根。
func ResolveUserPermissionSet(userID string, roles []*model.Role, catalog []*model.PermissionNode, logger *zap.Logger) *model.UserPermissionSet {
	set := model.NewUserPermissionSet(userID)
	if len(roles) == 0 {
		return set
	}
	set.Roles = roles

	catalogByID := make(map[string]*model.PermissionNode, len(catalog))
	for _, node := range catalog {
		catalogByID[node.ID] = node
	}

	// 跨角色并集去重
	grantedByID := make(map[string]*model.PermissionNode)
	for _, role := range roles {
		if !role.IsActive() {
			continue
		}
		for i := range role.Permissions {
			id := role.Permissions[i].ID
			node, ok := catalogByID[id]
			if !ok {
				if logger != nil {
					logger.Warn("角色引用了目录中不存在的权限，已忽略",
						zap.String("user_id", userID),
						zap.String("role_code", role.Code),
						zap.String("permission_id", id),
					)
				}
				continue
			}
			if !node.IsActive() {
				continue
			}
			grantedByID[id] = node
		}
	}

	var menuNodes []*model.PermissionNode
	for _, node := range grantedByID {
		set.PermissionCodes[node.Code] = true
		switch node.Type {
		case model.PermTypeMenu:
			// 建树会挂接 Children，复制节点避免污染共享目录
			clone := *node
			clone.Children = nil
			menuNodes = append(menuNodes, &clone)
		case model.PermTypeButton:
			set.ButtonCodes[node.Code] = true
		case model.PermTypeAPI:
			set.APICodes[node.Code] = true
		case model.PermTypeData:
			current := set.DataScopeByModule[node.Module]
			set.DataScopeByModule[node.Module] = model.BroaderDataScope(current, node.DataScope)
		}
	}

	// 菜单桶过滤自 grantedByID，不含环（目录建树前已校验），错误不可达
	menuTree, err := BuildPermissionTree(menuNodes, PermTreeOptions{Type: model.PermTypeMenu})
	if err != nil {
		if logger != nil {
			logger.Error("菜单树构建失败", zap.String("user_id", userID), zap.Error(err))
		}
		menuTree = []*model.PermissionNode{}
	}
	if menuTree == nil {
		menuTree = []*model.PermissionNode{}
	}
	set.MenuPermissions = menuTree

	return set
}
