package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
)

// ErrPermissionResolveFailed 角色或权限目录获取失败，权限集合无法解析
var ErrPermissionResolveFailed = errors.New("权限解析失败")

// AuthzService 授权服务接口
// 对外暴露缓存检查过的权限解析与权限判定，供中间件与路由守卫消费
type AuthzService interface {
	// ResolveUserPermissions 解析用户有效权限集合，优先读缓存，未命中时重算并回填
	ResolveUserPermissions(ctx context.Context, userID string) (*model.UserPermissionSet, error)

	// InvalidateUserPermissions 失效指定用户的缓存集合，角色或权限目录变更后调用
	InvalidateUserPermissions(ctx context.Context, userID string) error
	// InvalidateAllUserPermissions 清空全部已缓存的权限集合，目录级变更后调用
	InvalidateAllUserPermissions(ctx context.Context) error

	// 权限判定，多代码判定为任一命中（OR 语义）
	CheckPermission(ctx context.Context, userID, code string) (bool, error)
	CheckAnyPermission(ctx context.Context, userID string, codes []string) (bool, error)
	CheckAllPermissions(ctx context.Context, userID string, codes []string) (bool, error)
	CheckRole(ctx context.Context, userID, roleCode string) (bool, error)

	// GetUserMenuTree 返回用户可见的菜单树
	GetUserMenuTree(ctx context.Context, userID string) ([]*model.PermissionNode, error)
}

type authzService struct {
	userRoleRepo repository.UserRoleRepository
	permRepo     repository.PermissionRepository
	cache        PermissionCache
	logger       *zap.Logger
}

// NewAuthzService 创建授权服务
func NewAuthzService(userRoleRepo repository.UserRoleRepository, permRepo repository.PermissionRepository, cache PermissionCache, logger *zap.Logger) AuthzService {
	return &authzService{
		userRoleRepo: userRoleRepo,
		permRepo:     permRepo,
		cache:        cache,
		logger:       logger,
	}
}

func (s *authzService) ResolveUserPermissions(ctx context.Context, userID string) (*model.UserPermissionSet, error) {
	key := UserPermKey(userID)

	var cached model.UserPermissionSet
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil && s.logger != nil {
		// 缓存读取错误降级为未命中
		s.logger.Warn("权限缓存读取失败，回退重算", zap.String("user_id", userID), zap.Error(err))
	}
	if hit {
		return &cached, nil
	}

	roles, err := s.userRoleRepo.GetUserRoles(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: 获取用户角色失败: %v", ErrPermissionResolveFailed, err)
	}
	catalog, err := s.permRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("%w: 获取权限目录失败: %v", ErrPermissionResolveFailed, err)
	}

	set := ResolveUserPermissionSet(userID, roles, catalog, s.logger)

	if err := s.cache.Set(ctx, key, set, s.cache.UserSetTTL()); err != nil && s.logger != nil {
		// 回填失败不影响本次解析结果
		s.logger.Warn("权限缓存写入失败", zap.String("user_id", userID), zap.Error(err))
	}
	return set, nil
}

func (s *authzService) InvalidateUserPermissions(ctx context.Context, userID string) error {
	return s.cache.Clear(ctx, UserPermKey(userID))
}

func (s *authzService) InvalidateAllUserPermissions(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

func (s *authzService) CheckPermission(ctx context.Context, userID, code string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Has(code), nil
}

func (s *authzService) CheckAnyPermission(ctx context.Context, userID string, codes []string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasAny(codes...), nil
}

func (s *authzService) CheckAllPermissions(ctx context.Context, userID string, codes []string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasAll(codes...), nil
}

func (s *authzService) CheckRole(ctx context.Context, userID, roleCode string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasRole(roleCode), nil
}

func (s *authzService) GetUserMenuTree(ctx context.Context, userID string) ([]*model.PermissionNode, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.MenuPermissions, nil
}
