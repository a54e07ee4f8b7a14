package service

import (
	"context"
	"errors"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
)

var (
	ErrRoleNotFound       = errors.New("角色不存在")
	ErrRoleCodeExists     = errors.New("角色代码已存在")
	ErrPermissionNotFound = errors.New("权限不存在")
	ErrPermissionExists   = errors.New("权限代码已存在")
	ErrPresetRole         = errors.New("系统预置角色不能删除")
	ErrPresetPermission   = errors.New("系统预置权限不能删除")
	ErrInvalidPermType    = errors.New("无效的权限节点类型")
	ErrInvalidDataScope   = errors.New("无效的数据范围")
)

// RBACService RBAC 管理服务接口
// 所有结构性变更（角色、权限、授权关系）都会失效相关用户的缓存权限集合
type RBACService interface {
	// 角色管理
	CreateRole(ctx context.Context, role *model.Role) error
	GetRole(ctx context.Context, id string) (*model.Role, error)
	GetRoleByCode(ctx context.Context, code string) (*model.Role, error)
	UpdateRole(ctx context.Context, role *model.Role) error
	DeleteRole(ctx context.Context, id string) error
	ListRoles(ctx context.Context, page *repository.Pagination) ([]*model.Role, int64, error)

	// 权限目录管理
	CreatePermission(ctx context.Context, perm *model.PermissionNode) error
	GetPermission(ctx context.Context, id string) (*model.PermissionNode, error)
	DeletePermission(ctx context.Context, id string) error
	ListPermissions(ctx context.Context, module string) ([]*model.PermissionNode, error)
	// GetPermissionTree 返回全量权限目录树，permType 非空时按类型过滤
	GetPermissionTree(ctx context.Context, permType string) ([]*model.PermissionNode, error)

	// 角色权限关联
	AddPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string) error
	RemovePermissionsFromRole(ctx context.Context, roleID string, permissionIDs []string) error
	GetRolePermissions(ctx context.Context, roleID string) ([]model.PermissionNode, error)

	// 用户角色
	AssignRole(ctx context.Context, userID, roleID string) error
	AssignRoleByCode(ctx context.Context, userID, roleCode string) error
	RevokeRole(ctx context.Context, userID, roleID string) error
	GetUserRoles(ctx context.Context, userID string) ([]*model.Role, error)

	// 初始化预置角色与权限目录
	InitDefaultRolesAndPermissions(ctx context.Context) error
}

type rbacService struct {
	roleRepo     repository.RoleRepository
	permRepo     repository.PermissionRepository
	userRoleRepo repository.UserRoleRepository
	authz        AuthzService
}

// NewRBACService 创建 RBAC 管理服务
func NewRBACService(roleRepo repository.RoleRepository, permRepo repository.PermissionRepository, userRoleRepo repository.UserRoleRepository, authz AuthzService) RBACService {
	return &rbacService{
		roleRepo:     roleRepo,
		permRepo:     permRepo,
		userRoleRepo: userRoleRepo,
		authz:        authz,
	}
}

// validPermTypes 合法的权限节点类型
var validPermTypes = map[string]bool{
	model.PermTypeMenu:   true,
	model.PermTypeButton: true,
	model.PermTypeAPI:    true,
	model.PermTypeData:   true,
}

// validDataScopes 合法的数据范围
var validDataScopes = map[string]bool{
	model.DataScopeSelf:       true,
	model.DataScopeDept:       true,
	model.DataScopeDeptAndSub: true,
	model.DataScopeAll:        true,
}

// 角色管理

func (s *rbacService) CreateRole(ctx context.Context, role *model.Role) error {
	existing, err := s.roleRepo.GetByCode(ctx, role.Code)
	if err == nil && existing != nil {
		return ErrRoleCodeExists
	}

	if role.Type == "" {
		role.Type = model.RoleTypeCustom
	}
	if role.Status == "" {
		role.Status = model.StatusActive
	}

	return s.roleRepo.Create(ctx, role)
}

func (s *rbacService) GetRole(ctx context.Context, id string) (*model.Role, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func (s *rbacService) GetRoleByCode(ctx context.Context, code string) (*model.Role, error) {
	role, err := s.roleRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func (s *rbacService) UpdateRole(ctx context.Context, role *model.Role) error {
	existing, err := s.roleRepo.GetByID(ctx, role.ID)
	if err != nil {
		return ErrRoleNotFound
	}

	// 预置角色不能修改代码
	if existing.IsPreset && role.Code != existing.Code {
		return ErrPresetRole
	}

	if err := s.roleRepo.Update(ctx, role); err != nil {
		return err
	}
	return s.invalidateRoleUsers(ctx, role.ID)
}

func (s *rbacService) DeleteRole(ctx context.Context, id string) error {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return ErrRoleNotFound
	}

	if role.IsPreset {
		return ErrPresetRole
	}

	if err := s.invalidateRoleUsers(ctx, id); err != nil {
		return err
	}
	return s.roleRepo.Delete(ctx, id)
}

func (s *rbacService) ListRoles(ctx context.Context, page *repository.Pagination) ([]*model.Role, int64, error) {
	return s.roleRepo.List(ctx, page)
}

// 权限目录管理

func (s *rbacService) CreatePermission(ctx context.Context, perm *model.PermissionNode) error {
	if !validPermTypes[perm.Type] {
		return ErrInvalidPermType
	}
	if perm.Type == model.PermTypeData && !validDataScopes[perm.DataScope] {
		return ErrInvalidDataScope
	}

	existing, err := s.permRepo.GetByCode(ctx, perm.Code)
	if err == nil && existing != nil {
		return ErrPermissionExists
	}

	if perm.Status == "" {
		perm.Status = model.StatusActive
	}

	return s.permRepo.Create(ctx, perm)
}

func (s *rbacService) GetPermission(ctx context.Context, id string) (*model.PermissionNode, error) {
	perm, err := s.permRepo.GetByID(ctx, id)
	if err != nil {
		return nil, ErrPermissionNotFound
	}
	return perm, nil
}

func (s *rbacService) DeletePermission(ctx context.Context, id string) error {
	perm, err := s.permRepo.GetByID(ctx, id)
	if err != nil {
		return ErrPermissionNotFound
	}

	if perm.IsPreset {
		return ErrPresetPermission
	}

	if err := s.permRepo.Delete(ctx, id); err != nil {
		return err
	}
	// 目录级变更，清空全部已解析集合
	return s.authz.InvalidateAllUserPermissions(ctx)
}

func (s *rbacService) ListPermissions(ctx context.Context, module string) ([]*model.PermissionNode, error) {
	return s.permRepo.List(ctx, module)
}

func (s *rbacService) GetPermissionTree(ctx context.Context, permType string) ([]*model.PermissionNode, error) {
	catalog, err := s.permRepo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	return BuildPermissionTree(catalog, PermTreeOptions{Type: permType})
}

// 角色权限关联

func (s *rbacService) AddPermissionsToRole(ctx context.Context, roleID string, permissionIDs []string) error {
	if err := s.roleRepo.AddPermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	return s.invalidateRoleUsers(ctx, roleID)
}

func (s *rbacService) RemovePermissionsFromRole(ctx context.Context, roleID string, permissionIDs []string) error {
	if err := s.roleRepo.RemovePermissions(ctx, roleID, permissionIDs); err != nil {
		return err
	}
	return s.invalidateRoleUsers(ctx, roleID)
}

func (s *rbacService) GetRolePermissions(ctx context.Context, roleID string) ([]model.PermissionNode, error) {
	return s.roleRepo.GetPermissions(ctx, roleID)
}

// 用户角色

func (s *rbacService) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := s.roleRepo.GetByID(ctx, roleID)
	if err != nil {
		return ErrRoleNotFound
	}

	if err := s.userRoleRepo.Assign(ctx, userID, roleID); err != nil {
		return err
	}
	return s.authz.InvalidateUserPermissions(ctx, userID)
}

func (s *rbacService) AssignRoleByCode(ctx context.Context, userID, roleCode string) error {
	role, err := s.roleRepo.GetByCode(ctx, roleCode)
	if err != nil {
		return ErrRoleNotFound
	}

	if err := s.userRoleRepo.Assign(ctx, userID, role.ID); err != nil {
		return err
	}
	return s.authz.InvalidateUserPermissions(ctx, userID)
}

func (s *rbacService) RevokeRole(ctx context.Context, userID, roleID string) error {
	if err := s.userRoleRepo.Revoke(ctx, userID, roleID); err != nil {
		return err
	}
	return s.authz.InvalidateUserPermissions(ctx, userID)
}

func (s *rbacService) GetUserRoles(ctx context.Context, userID string) ([]*model.Role, error) {
	return s.userRoleRepo.GetUserRoles(ctx, userID)
}

// invalidateRoleUsers 失效持有指定角色的全部用户的缓存集合
func (s *rbacService) invalidateRoleUsers(ctx context.Context, roleID string) error {
	userIDs, err := s.userRoleRepo.GetRoleUserIDs(ctx, roleID)
	if err != nil {
		return err
	}
	for _, uid := range userIDs {
		if err := s.authz.InvalidateUserPermissions(ctx, uid); err != nil {
			return err
		}
	}
	return nil
}

// 初始化预置角色与权限目录

func (s *rbacService) InitDefaultRolesAndPermissions(ctx context.Context) error {
	// 按 Code 幂等创建预置权限
	defaultPerms := model.DefaultSystemPermissions()
	for i := range defaultPerms {
		existing, _ := s.permRepo.GetByCode(ctx, defaultPerms[i].Code)
		if existing == nil {
			if err := s.permRepo.Create(ctx, &defaultPerms[i]); err != nil {
				return err
			}
		}
	}

	// 二级菜单挂到 system 根节点下
	if root, _ := s.permRepo.GetByCode(ctx, "system"); root != nil {
		children, err := s.permRepo.List(ctx, "system")
		if err != nil {
			return err
		}
		for _, child := range children {
			if child.ID != root.ID && child.Type == model.PermTypeMenu && child.ParentID == "" {
				child.ParentID = root.ID
				if err := s.permRepo.Update(ctx, child); err != nil {
					return err
				}
			}
		}
	}

	allPerms, err := s.permRepo.List(ctx, "")
	if err != nil {
		return err
	}
	allPermIDs := make([]string, len(allPerms))
	for i, p := range allPerms {
		allPermIDs[i] = p.ID
	}

	// 按 Code 幂等创建预置角色，管理员授予全量权限
	defaultRoles := model.DefaultSystemRoles()
	for i := range defaultRoles {
		existing, _ := s.roleRepo.GetByCode(ctx, defaultRoles[i].Code)
		if existing != nil {
			continue
		}
		if err := s.roleRepo.Create(ctx, &defaultRoles[i]); err != nil {
			return err
		}
		if defaultRoles[i].Code == model.RoleAdmin {
			created, _ := s.roleRepo.GetByCode(ctx, defaultRoles[i].Code)
			if created != nil {
				_ = s.roleRepo.AddPermissions(ctx, created.ID, allPermIDs)
			}
		}
	}

	return nil
}
