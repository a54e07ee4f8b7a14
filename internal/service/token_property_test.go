package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: JWT 签名验证
// *For any* 有效令牌，验证应成功；篡改后验证应失败
func TestProperty_JWTSignatureVerification(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	userIDGen := gen.AlphaString().Map(func(s string) string {
		if len(s) == 0 {
			return "user-default"
		}
		return "user-" + s
	})

	properties.Property("签名验证正确性", prop.ForAll(
		func(userID string) bool {
			privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)
			svc := NewTokenService(&TokenServiceConfig{
				PrivateKey:    privateKey,
				PublicKey:     &privateKey.PublicKey,
				KeyID:         "test-key",
				Issuer:        "test-issuer",
				AccessExpiry:  15 * time.Minute,
				RefreshExpiry: 7 * 24 * time.Hour,
			})
			ctx := context.Background()

			claims := &TokenClaims{UserID: userID}
			token, err := svc.GenerateAccessToken(ctx, claims)
			if err != nil {
				return true // 跳过无效输入
			}

			// 验证有效令牌
			_, err = svc.ValidateToken(ctx, token)
			if err != nil {
				t.Logf("有效令牌验证失败: %v", err)
				return false
			}

			// 篡改令牌
			if len(token) > 10 {
				tamperedToken := token[:len(token)-5] + "xxxxx"
				_, err = svc.ValidateToken(ctx, tamperedToken)
				if err == nil {
					t.Log("篡改令牌应该验证失败")
					return false
				}
			}

			return true
		},
		userIDGen,
	))

	properties.TestingRun(t)
}

// Property: 令牌声明往返一致性
// *For any* 用户声明，签发后验证应还原相同的业务字段
func TestProperty_TokenClaimsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	userIDGen := gen.AlphaString().Map(func(s string) string {
		if len(s) == 0 {
			return "user-default"
		}
		return "user-" + s
	})

	usernameGen := gen.AlphaString().Map(func(s string) string {
		if len(s) == 0 {
			return "username"
		}
		if len(s) > 20 {
			return s[:20]
		}
		return s
	})

	deptIDGen := gen.AlphaString().Map(func(s string) string {
		if len(s) == 0 {
			return ""
		}
		return "dept-" + s
	})

	privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	svc := NewTokenService(&TokenServiceConfig{
		PrivateKey:    privateKey,
		PublicKey:     &privateKey.PublicKey,
		KeyID:         "test-key",
		Issuer:        "test-issuer",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
	})

	properties.Property("声明往返一致", prop.ForAll(
		func(userID, username, deptID string) bool {
			ctx := context.Background()

			claims := &TokenClaims{
				UserID:   userID,
				Username: username,
				DeptID:   deptID,
			}

			token, err := svc.GenerateAccessToken(ctx, claims)
			if err != nil {
				t.Logf("签发失败: %v", err)
				return false
			}

			restored, err := svc.ValidateToken(ctx, token)
			if err != nil {
				t.Logf("验证失败: %v", err)
				return false
			}

			if restored.UserID != userID {
				t.Log("UserID 不一致")
				return false
			}
			if restored.Username != username {
				t.Log("Username 不一致")
				return false
			}
			if restored.DeptID != deptID {
				t.Log("DeptID 不一致")
				return false
			}

			return true
		},
		userIDGen,
		usernameGen,
		deptIDGen,
	))

	properties.TestingRun(t)
}

// Property: 过期访问令牌拒绝
// *For any* 过期的访问令牌，验证应返回过期错误
func TestProperty_ExpiredAccessTokenRejection(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	userIDGen := gen.AlphaString().Map(func(s string) string {
		if len(s) == 0 {
			return "user-default"
		}
		return "user-" + s
	})

	properties.Property("过期令牌被拒绝", prop.ForAll(
		func(userID string) bool {
			privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)
			svc := NewTokenService(&TokenServiceConfig{
				PrivateKey:    privateKey,
				PublicKey:     &privateKey.PublicKey,
				KeyID:         "test-key",
				Issuer:        "test-issuer",
				AccessExpiry:  -1 * time.Hour, // 已过期
				RefreshExpiry: 7 * 24 * time.Hour,
			})
			ctx := context.Background()

			claims := &TokenClaims{UserID: userID}
			token, err := svc.GenerateAccessToken(ctx, claims)
			if err != nil {
				return true
			}

			_, err = svc.ValidateToken(ctx, token)
			if err != ErrTokenExpired {
				t.Logf("期望 ErrTokenExpired, 实际 %v", err)
				return false
			}

			return true
		},
		userIDGen,
	))

	properties.TestingRun(t)
}

// Property: 刷新令牌轮换
// *For any* 刷新令牌，轮换后旧令牌失效、新令牌有效
func TestProperty_RefreshTokenRotation(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	userIDGen := gen.AlphaString().Map(func(s string) string {
		if len(s) == 0 {
			return "user-default"
		}
		return "user-" + s
	})

	properties.Property("刷新令牌轮换后旧令牌失效", prop.ForAll(
		func(userID string) bool {
			privateKey, _ := rsa.GenerateKey(rand.Reader, 2048)
			svc := NewTokenService(&TokenServiceConfig{
				PrivateKey:    privateKey,
				PublicKey:     &privateKey.PublicKey,
				KeyID:         "test-key",
				Issuer:        "test-issuer",
				AccessExpiry:  15 * time.Minute,
				RefreshExpiry: 7 * 24 * time.Hour,
			})
			ctx := context.Background()

			// 生成刷新令牌
			claims := &TokenClaims{UserID: userID}
			oldRefreshToken, err := svc.GenerateRefreshToken(ctx, claims)
			if err != nil {
				return true
			}

			// 验证旧令牌有效
			_, err = svc.ValidateToken(ctx, oldRefreshToken)
			if err != nil {
				t.Logf("旧刷新令牌应该有效: %v", err)
				return false
			}

			// 模拟轮换：撤销旧令牌，生成新令牌
			svc.RevokeToken(ctx, oldRefreshToken)
			newRefreshToken, err := svc.GenerateRefreshToken(ctx, claims)
			if err != nil {
				return true
			}

			// 验证旧令牌失效
			_, err = svc.ValidateToken(ctx, oldRefreshToken)
			if err == nil {
				t.Log("旧刷新令牌应该失效")
				return false
			}

			// 验证新令牌有效
			_, err = svc.ValidateToken(ctx, newRefreshToken)
			if err != nil {
				t.Logf("新刷新令牌应该有效: %v", err)
				return false
			}

			return true
		},
		userIDGen,
	))

	properties.TestingRun(t)
}
