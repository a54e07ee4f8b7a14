package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PermissionCache 权限缓存接口
// 对载荷形状无感知，只负责按键限时存取；过期由 Redis TTL 保证，
// 读取时过期条目等同不存在。无跨进程持久化承诺。
type PermissionCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, payload interface{}, ttl time.Duration) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context, keys ...string) error
	ClearBatch(ctx context.Context, keys []string) error

	// UserSetTTL 与 DictTTL 返回两类载荷各自的默认有效期，机制共用
	UserSetTTL() time.Duration
	DictTTL() time.Duration
}

// PermissionCacheConfig 权限缓存配置
type PermissionCacheConfig struct {
	UserSetTTL time.Duration // 用户权限集合有效期，默认 30 分钟
	DictTTL    time.Duration // 字典类参考数据有效期，默认 1 小时
	KeyPrefix  string        // 键前缀，默认 authz:
}

type permissionCache struct {
	redis  *redis.Client
	config *PermissionCacheConfig
	logger *zap.Logger
}

// NewPermissionCache 创建 Redis 权限缓存
func NewPermissionCache(redisClient *redis.Client, config *PermissionCacheConfig, logger *zap.Logger) PermissionCache {
	if config == nil {
		config = &PermissionCacheConfig{}
	}
	if config.UserSetTTL == 0 {
		config.UserSetTTL = 30 * time.Minute
	}
	if config.DictTTL == 0 {
		config.DictTTL = time.Hour
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "authz:"
	}
	return &permissionCache{
		redis:  redisClient,
		config: config,
		logger: logger,
	}
}

// 缓存键前缀
const (
	userPermKeyPrefix = "perm:user:" // 用户权限集合
	dictKeyPrefix     = "dict:"      // 字典参考数据
)

// UserPermKey 用户权限集合缓存键
func UserPermKey(userID string) string {
	return userPermKeyPrefix + userID
}

// DictKey 字典缓存键
func DictKey(typeCode string) string {
	return dictKeyPrefix + typeCode
}

func (c *permissionCache) fullKey(key string) string {
	return c.config.KeyPrefix + key
}

// Get 读取缓存并反序列化到 dest，返回是否命中
// 反序列化失败视为未命中并删除损坏条目，不向调用方传播
func (c *permissionCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("读取缓存失败: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		if c.logger != nil {
			c.logger.Warn("缓存数据损坏，按未命中处理", zap.String("key", key), zap.Error(err))
		}
		c.redis.Del(ctx, c.fullKey(key))
		return false, nil
	}
	return true, nil
}

// Set 写入缓存，总是覆盖同键旧值并重置过期时间
// ttl 为 0 时使用用户权限集合默认 TTL
func (c *permissionCache) Set(ctx context.Context, key string, payload interface{}, ttl time.Duration) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化缓存载荷失败: %w", err)
	}
	if ttl <= 0 {
		ttl = c.config.UserSetTTL
	}
	if err := c.redis.Set(ctx, c.fullKey(key), data, ttl).Err(); err != nil {
		return fmt.Errorf("写入缓存失败: %w", err)
	}
	return nil
}

// Has 检查键是否存在且未过期
func (c *permissionCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.redis.Exists(ctx, c.fullKey(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear 删除指定条目；不带键时清空全部用户权限集合条目，
// 字典参考数据不受影响，按各自的键或 TTL 失效
func (c *permissionCache) Clear(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return c.clearAll(ctx)
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	return c.redis.Del(ctx, full...).Err()
}

// ClearBatch 批量删除条目，用于按字典类型等前缀组合键的失效
func (c *permissionCache) ClearBatch(ctx context.Context, keys []string) error {
	return c.Clear(ctx, keys...)
}

// clearAll 按前缀扫描删除全部用户权限集合键
func (c *permissionCache) clearAll(ctx context.Context) error {
	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+userPermKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("扫描缓存键失败: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.redis.Del(ctx, keys...).Err()
}

// UserSetTTL 用户权限集合的默认有效期
func (c *permissionCache) UserSetTTL() time.Duration {
	return c.config.UserSetTTL
}

// DictTTL 字典参考数据的默认有效期
func (c *permissionCache) DictTTL() time.Duration {
	return c.config.DictTTL
}
