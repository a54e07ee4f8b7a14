package service

import (
	"context"
	"testing"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
)

// stubAuthz 返回预设权限集合或错误的授权服务桩
// onResolve 在解析时触发，用于模拟解析期间发生的新导航
type stubAuthz struct {
	set       *model.UserPermissionSet
	err       error
	onResolve func()
}

func (s *stubAuthz) ResolveUserPermissions(ctx context.Context, userID string) (*model.UserPermissionSet, error) {
	if s.onResolve != nil {
		s.onResolve()
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.set != nil {
		return s.set, nil
	}
	return model.NewUserPermissionSet(userID), nil
}

func (s *stubAuthz) InvalidateUserPermissions(ctx context.Context, userID string) error { return nil }
func (s *stubAuthz) InvalidateAllUserPermissions(ctx context.Context) error            { return nil }

func (s *stubAuthz) CheckPermission(ctx context.Context, userID, code string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.Has(code), nil
}

func (s *stubAuthz) CheckAnyPermission(ctx context.Context, userID string, codes []string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasAny(codes...), nil
}

func (s *stubAuthz) CheckAllPermissions(ctx context.Context, userID string, codes []string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasAll(codes...), nil
}

func (s *stubAuthz) CheckRole(ctx context.Context, userID, roleCode string) (bool, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	return set.HasRole(roleCode), nil
}

func (s *stubAuthz) GetUserMenuTree(ctx context.Context, userID string) ([]*model.PermissionNode, error) {
	set, err := s.ResolveUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	return set.MenuPermissions, nil
}

// grantedSet 构造持有指定权限代码的集合
func grantedSet(userID string, codes ...string) *model.UserPermissionSet {
	set := model.NewUserPermissionSet(userID)
	for _, code := range codes {
		set.PermissionCodes[code] = true
	}
	return set
}

// TestRouteGuard_PublicPath 测试公开路径无条件放行
func TestRouteGuard_PublicPath(t *testing.T) {
	guard := NewRouteGuard(&stubAuthz{}, nil, nil, nil)
	ctx := context.Background()

	// 未登录访问登录页不得再跳登录页
	verdict := guard.Check(ctx, Route{Path: "/login"}, "")
	if verdict.Decision != VerdictAllow {
		t.Errorf("公开路径期望放行, 实际 %s", verdict.Decision)
	}

	verdict = guard.Check(ctx, Route{Path: "/403"}, "")
	if verdict.Decision != VerdictAllow {
		t.Errorf("公开路径期望放行, 实际 %s", verdict.Decision)
	}
}

// TestRouteGuard_Anonymous 测试未登录跳转登录页并携带回跳目标
func TestRouteGuard_Anonymous(t *testing.T) {
	guard := NewRouteGuard(&stubAuthz{}, nil, nil, nil)
	ctx := context.Background()

	verdict := guard.Check(ctx, Route{Path: "/system/user"}, "")

	if verdict.Decision != VerdictRedirectLogin {
		t.Fatalf("未登录期望跳转登录页, 实际 %s", verdict.Decision)
	}
	if verdict.Redirect != "/login" {
		t.Errorf("跳转目标期望 /login, 实际 %s", verdict.Redirect)
	}
	if verdict.ReturnTo != "/system/user" {
		t.Errorf("回跳目标期望 /system/user, 实际 %s", verdict.ReturnTo)
	}
}

// TestRouteGuard_AllowNoRequirement 测试无权限要求的路径对登录用户放行
func TestRouteGuard_AllowNoRequirement(t *testing.T) {
	guard := NewRouteGuard(&stubAuthz{set: grantedSet("u1")}, nil, nil, nil)
	ctx := context.Background()

	verdict := guard.Check(ctx, Route{Path: "/home"}, "u1")
	if verdict.Decision != VerdictAllow {
		t.Errorf("无要求路径期望放行, 实际 %s", verdict.Decision)
	}
}

// TestRouteGuard_AnyCodeAllows 测试任一代码命中即放行
func TestRouteGuard_AnyCodeAllows(t *testing.T) {
	authz := &stubAuthz{set: grantedSet("u1", "system:user:list")}
	guard := NewRouteGuard(authz, nil, nil, nil)
	ctx := context.Background()

	route := Route{
		Path:          "/system/user",
		RequiredCodes: []string{"system:admin", "system:user:list"},
	}

	verdict := guard.Check(ctx, route, "u1")
	if verdict.Decision != VerdictAllow {
		t.Errorf("任一代码命中期望放行, 实际 %s", verdict.Decision)
	}
}

// TestRouteGuard_Forbidden 测试已登录无权限跳转无权访问页
func TestRouteGuard_Forbidden(t *testing.T) {
	authz := &stubAuthz{set: grantedSet("u1", "system:user:list")}
	guard := NewRouteGuard(authz, nil, nil, nil)
	ctx := context.Background()

	route := Route{
		Path:          "/system/role",
		RequiredCodes: []string{"system:role:list"},
	}

	verdict := guard.Check(ctx, route, "u1")
	if verdict.Decision != VerdictRedirectForbidden {
		t.Fatalf("无权限期望跳转无权访问页, 实际 %s", verdict.Decision)
	}
	if verdict.Redirect != "/403" {
		t.Errorf("跳转目标期望 /403, 实际 %s", verdict.Redirect)
	}
}

// TestRouteGuard_ResolveFailureClearsSession 测试解析失败清理会话并回登录页
func TestRouteGuard_ResolveFailureClearsSession(t *testing.T) {
	var clearedUser string
	onClear := func(ctx context.Context, userID string) {
		clearedUser = userID
	}
	guard := NewRouteGuard(&stubAuthz{err: ErrPermissionResolveFailed}, nil, onClear, nil)
	ctx := context.Background()

	verdict := guard.Check(ctx, Route{Path: "/system/user"}, "u1")

	if verdict.Decision != VerdictRedirectLogin {
		t.Fatalf("解析失败期望回登录页, 实际 %s", verdict.Decision)
	}
	if verdict.ReturnTo != "/system/user" {
		t.Errorf("回跳目标期望 /system/user, 实际 %s", verdict.ReturnTo)
	}
	if clearedUser != "u1" {
		t.Errorf("会话清理回调应收到 u1, 实际 %q", clearedUser)
	}
}

// TestRouteGuard_Superseded 测试解析期间的新导航取代旧导航
func TestRouteGuard_Superseded(t *testing.T) {
	guard := NewRouteGuard(nil, nil, nil, nil)
	authz := &stubAuthz{set: grantedSet("u1", "system:user:list")}
	// 解析期间发起新导航
	authz.onResolve = func() {
		guard.Begin()
	}
	guard.authz = authz
	ctx := context.Background()

	seq := guard.Begin()
	verdict := guard.Evaluate(ctx, seq, Route{Path: "/system/user", RequiredCodes: []string{"system:user:list"}}, "u1")

	if verdict.Decision != VerdictSuperseded {
		t.Errorf("被取代的导航期望作废, 实际 %s", verdict.Decision)
	}
	if verdict.Redirect != "" {
		t.Errorf("被取代的导航不得触发跳转, 实际 %s", verdict.Redirect)
	}
}

// TestRouteGuard_SupersededOnFailure 测试解析失败但已被取代时不清会话
func TestRouteGuard_SupersededOnFailure(t *testing.T) {
	cleared := false
	onClear := func(ctx context.Context, userID string) {
		cleared = true
	}
	guard := NewRouteGuard(nil, nil, onClear, nil)
	authz := &stubAuthz{err: ErrPermissionResolveFailed}
	authz.onResolve = func() {
		guard.Begin()
	}
	guard.authz = authz
	ctx := context.Background()

	seq := guard.Begin()
	verdict := guard.Evaluate(ctx, seq, Route{Path: "/system/user"}, "u1")

	if verdict.Decision != VerdictSuperseded {
		t.Fatalf("被取代的导航期望作废, 实际 %s", verdict.Decision)
	}
	if cleared {
		t.Error("被取代的导航不得触发会话清理")
	}
}

// TestRouteGuard_CustomConfig 测试自定义路径配置
func TestRouteGuard_CustomConfig(t *testing.T) {
	cfg := &GuardConfig{
		LoginPath:     "/signin",
		ForbiddenPath: "/no-access",
		PublicPaths:   []string{"/signin", "/about"},
	}
	guard := NewRouteGuard(&stubAuthz{set: grantedSet("u1")}, cfg, nil, nil)
	ctx := context.Background()

	verdict := guard.Check(ctx, Route{Path: "/about"}, "")
	if verdict.Decision != VerdictAllow {
		t.Errorf("自定义公开路径期望放行, 实际 %s", verdict.Decision)
	}

	verdict = guard.Check(ctx, Route{Path: "/secret"}, "")
	if verdict.Redirect != "/signin" {
		t.Errorf("跳转目标期望 /signin, 实际 %s", verdict.Redirect)
	}

	verdict = guard.Check(ctx, Route{Path: "/secret", RequiredCodes: []string{"x"}}, "u1")
	if verdict.Redirect != "/no-access" {
		t.Errorf("跳转目标期望 /no-access, 实际 %s", verdict.Redirect)
	}
}

// TestRouteGuard_Deterministic 测试相同输入重复评估得到相同裁决
func TestRouteGuard_Deterministic(t *testing.T) {
	authz := &stubAuthz{set: grantedSet("u1", "system:user:list")}
	guard := NewRouteGuard(authz, nil, nil, nil)
	ctx := context.Background()

	route := Route{Path: "/system/user", RequiredCodes: []string{"system:user:list"}}

	first := guard.Check(ctx, route, "u1")
	second := guard.Check(ctx, route, "u1")

	if first.Decision != second.Decision {
		t.Errorf("相同输入裁决不一致: %s vs %s", first.Decision, second.Decision)
	}
}
