package service

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Route 一次导航的目标
// RequiredCodes 为空表示公共可达；非空时命中任一代码即放行（OR 语义，永不 AND）
type Route struct {
	Path          string   `json:"path"`
	RequiredCodes []string `json:"required_codes,omitempty"`
}

// 守卫裁决
const (
	VerdictAllow             = "allow"              // 放行
	VerdictRedirectLogin     = "redirect_login"     // 未登录或会话失效，跳转登录页
	VerdictRedirectForbidden = "redirect_forbidden" // 已登录但无权限，跳转无权访问页
	VerdictSuperseded        = "superseded"         // 导航已被更新的导航取代，丢弃
)

// GuardVerdict 一次导航裁决
// 每次评估必然终止于放行或跳转，不存在无结果的导航
type GuardVerdict struct {
	Decision string `json:"decision"`
	Redirect string `json:"redirect,omitempty"` // 跳转目标路径
	ReturnTo string `json:"return_to,omitempty"` // 登录后回跳的原始目标
}

// GuardConfig 路由守卫配置
type GuardConfig struct {
	LoginPath     string   // 登录页路径，默认 /login
	ForbiddenPath string   // 无权访问页路径，默认 /403
	PublicPaths   []string // 公开路径白名单，未登录也放行
}

// SessionCleared 会话清理回调，权限解析失败时由守卫触发
type SessionCleared func(ctx context.Context, userID string)

// RouteGuard 路由守卫
// 仅消费授权服务解析出的权限集合，自身不重算；
// 相同的目标与不变的权限集合重复评估得到相同裁决
type RouteGuard struct {
	authz          AuthzService
	config         *GuardConfig
	onSessionClear SessionCleared
	logger         *zap.Logger

	// 最近一次导航序号，后发导航取代先发导航
	latestSeq atomic.Uint64
}

// NewRouteGuard 创建路由守卫
func NewRouteGuard(authz AuthzService, config *GuardConfig, onSessionClear SessionCleared, logger *zap.Logger) *RouteGuard {
	if config == nil {
		config = &GuardConfig{}
	}
	if config.LoginPath == "" {
		config.LoginPath = "/login"
	}
	if config.ForbiddenPath == "" {
		config.ForbiddenPath = "/403"
	}
	if len(config.PublicPaths) == 0 {
		config.PublicPaths = []string{config.LoginPath, config.ForbiddenPath, "/404"}
	}
	return &RouteGuard{
		authz:          authz,
		config:         config,
		onSessionClear: onSessionClear,
		logger:         logger,
	}
}

// Begin 登记一次新的导航意图，返回其序号
// 权限解析是异步耗时操作，期间发起的新导航会取代旧导航的裁决
func (g *RouteGuard) Begin() uint64 {
	return g.latestSeq.Add(1)
}

// Evaluate 评估序号为 seq 的导航，subjectID 为空表示未登录
func (g *RouteGuard) Evaluate(ctx context.Context, seq uint64, to Route, subjectID string) GuardVerdict {
	// 公开路径无条件放行，避免登录页重定向循环
	if g.isPublic(to.Path) {
		return GuardVerdict{Decision: VerdictAllow}
	}

	if subjectID == "" {
		return GuardVerdict{
			Decision: VerdictRedirectLogin,
			Redirect: g.config.LoginPath,
			ReturnTo: to.Path,
		}
	}

	// 解析可能经历缓存未命中后的重算与网络往返
	set, err := g.authz.ResolveUserPermissions(ctx, subjectID)

	// 解析期间被新导航取代，裁决作废，不得触发跳转
	if g.latestSeq.Load() != seq {
		return GuardVerdict{Decision: VerdictSuperseded}
	}

	if err != nil {
		// 反复解析失败视为会话失效：清理会话标记并回登录页
		if g.logger != nil {
			g.logger.Warn("导航权限解析失败，按会话失效处理",
				zap.String("user_id", subjectID),
				zap.String("path", to.Path),
				zap.Error(err),
			)
		}
		if g.onSessionClear != nil {
			g.onSessionClear(ctx, subjectID)
		}
		return GuardVerdict{
			Decision: VerdictRedirectLogin,
			Redirect: g.config.LoginPath,
			ReturnTo: to.Path,
		}
	}

	if len(to.RequiredCodes) == 0 || set.HasAny(to.RequiredCodes...) {
		return GuardVerdict{Decision: VerdictAllow}
	}

	return GuardVerdict{
		Decision: VerdictRedirectForbidden,
		Redirect: g.config.ForbiddenPath,
	}
}

// Check 评估一次独立导航，忽略取代规则，适用于无并发导航的调用方
func (g *RouteGuard) Check(ctx context.Context, to Route, subjectID string) GuardVerdict {
	return g.Evaluate(ctx, g.Begin(), to, subjectID)
}

func (g *RouteGuard) isPublic(path string) bool {
	for _, p := range g.config.PublicPaths {
		if p == path {
			return true
		}
	}
	return false
}
