// Package service 认证服务
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
)

// 认证相关错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrAccountLocked      = errors.New("账户已锁定，请稍后再试")
	ErrAccountDisabled    = errors.New("账户已禁用")
	ErrUserNotFound       = errors.New("用户不存在")
	ErrWeakPassword       = errors.New("密码强度不足")
	ErrPasswordReused     = errors.New("新密码不能与当前密码相同")
)

// LockoutPolicy 登录失败锁定策略
type LockoutPolicy struct {
	MaxFailedAttempts int           // 连续失败达到该次数后锁定
	LockDuration      time.Duration // 锁定时长
}

// DefaultLockoutPolicy 默认锁定策略：连续 5 次失败锁定 15 分钟
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxFailedAttempts: 5,
		LockDuration:      15 * time.Minute,
	}
}

// LoginResult 登录结果
// 附带所属部门信息，前端登录后直接展示，无需二次请求
type LoginResult struct {
	User *model.User       `json:"user"`
	Dept *model.Department `json:"dept,omitempty"` // 未分配部门或部门已删除时为 nil
}

// AuthService 认证服务接口
type AuthService interface {
	// Authenticate 验证用户凭据
	Authenticate(ctx context.Context, username, password string) (*LoginResult, error)
	// AuthenticateByEmail 通过邮箱验证用户凭据
	AuthenticateByEmail(ctx context.Context, email, password string) (*LoginResult, error)
	// ChangePassword 修改密码，校验旧密码与新密码强度
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	// ResetPassword 重置密码（管理员操作），同时清除锁定状态
	ResetPassword(ctx context.Context, userID, newPassword string) error
	// UnlockAccount 解锁账户
	UnlockAccount(ctx context.Context, userID string) error
}

// authService 认证服务实现
type authService struct {
	userRepo repository.UserRepository
	deptRepo repository.DepartmentRepository
	policy   LockoutPolicy
}

// NewAuthService 创建认证服务，使用默认锁定策略
func NewAuthService(userRepo repository.UserRepository, deptRepo repository.DepartmentRepository) AuthService {
	return NewAuthServiceWithPolicy(userRepo, deptRepo, DefaultLockoutPolicy())
}

// NewAuthServiceWithPolicy 创建认证服务并指定锁定策略
func NewAuthServiceWithPolicy(userRepo repository.UserRepository, deptRepo repository.DepartmentRepository, policy LockoutPolicy) AuthService {
	if policy.MaxFailedAttempts <= 0 {
		policy.MaxFailedAttempts = DefaultLockoutPolicy().MaxFailedAttempts
	}
	if policy.LockDuration <= 0 {
		policy.LockDuration = DefaultLockoutPolicy().LockDuration
	}
	return &authService{
		userRepo: userRepo,
		deptRepo: deptRepo,
		policy:   policy,
	}
}

// Authenticate 验证用户凭据
func (s *authService) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.validateAndAuthenticate(ctx, user, password)
}

// AuthenticateByEmail 通过邮箱验证用户凭据
func (s *authService) AuthenticateByEmail(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.validateAndAuthenticate(ctx, user, password)
}

// validateAndAuthenticate 验证用户并执行认证
func (s *authService) validateAndAuthenticate(ctx context.Context, user *model.User, password string) (*LoginResult, error) {
	// 检查账户是否被锁定
	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	// 检查账户是否被禁用
	if !user.IsActive() {
		return nil, ErrAccountDisabled
	}

	// 验证密码
	if !user.VerifyPassword(password) {
		// 增加失败次数，达到阈值后按策略锁定
		user.RegisterFailedLogin(s.policy.MaxFailedAttempts, s.policy.LockDuration)
		_ = s.userRepo.Update(ctx, user)
		return nil, ErrInvalidCredentials
	}

	// 登录成功，重置失败次数
	if user.FailedLoginCount > 0 {
		user.ResetFailedLogin()
		_ = s.userRepo.Update(ctx, user)
	}

	return &LoginResult{
		User: user,
		Dept: s.lookupDept(ctx, user.DeptID),
	}, nil
}

// lookupDept 查询用户所属部门
// 部门不存在或查询失败不阻断登录，结果为 nil
func (s *authService) lookupDept(ctx context.Context, deptID string) *model.Department {
	if deptID == "" || s.deptRepo == nil {
		return nil
	}
	dept, err := s.deptRepo.GetByID(ctx, deptID)
	if err != nil {
		return nil
	}
	return dept
}

// ChangePassword 修改密码
func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	// 验证旧密码
	if !user.VerifyPassword(oldPassword) {
		return ErrInvalidCredentials
	}

	if err := s.validateNewPassword(user, newPassword); err != nil {
		return err
	}
	if user.VerifyPassword(newPassword) {
		return ErrPasswordReused
	}

	// 设置新密码
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	return s.userRepo.Update(ctx, user)
}

// ResetPassword 重置密码（管理员操作）
func (s *authService) ResetPassword(ctx context.Context, userID, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.validateNewPassword(user, newPassword); err != nil {
		return err
	}

	// 设置新密码
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}

	// 重置登录失败次数和锁定状态
	user.ResetFailedLogin()

	return s.userRepo.Update(ctx, user)
}

// UnlockAccount 解锁账户
func (s *authService) UnlockAccount(ctx context.Context, userID string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return ErrUserNotFound
	}

	user.ResetFailedLogin()

	return s.userRepo.Update(ctx, user)
}

// validateNewPassword 校验新密码
// 除字符类别要求外，密码不得包含用户名，避免员工用工号做密码
func (s *authService) validateNewPassword(user *model.User, password string) error {
	if !IsPasswordStrong(password) {
		return ErrWeakPassword
	}
	if user.Username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(user.Username)) {
		return ErrWeakPassword
	}
	return nil
}

// IsPasswordStrong 检查密码强度
// 密码要求：最小 8 位，包含大写字母、小写字母、数字
func IsPasswordStrong(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}

	return hasUpper && hasLower && hasDigit
}
