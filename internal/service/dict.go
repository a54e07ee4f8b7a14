package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
)

// 字典相关错误
var (
	ErrDictTypeCodeEmpty = errors.New("字典类型代码不能为空")
)

// DictService 数据字典服务接口
// 条目查询经过权限缓存的字典档位（默认 1 小时 TTL），类型级变更批量失效
type DictService interface {
	CreateType(ctx context.Context, dt *model.DictType) error
	ListTypes(ctx context.Context) ([]*model.DictType, error)
	DeleteType(ctx context.Context, code string) error

	CreateEntry(ctx context.Context, entry *model.DictEntry) error
	GetEntry(ctx context.Context, id string) (*model.DictEntry, error)
	UpdateEntry(ctx context.Context, entry *model.DictEntry) error
	DeleteEntry(ctx context.Context, id string, typeCode string) error
	// GetEntries 返回指定字典类型的启用条目，优先读缓存
	GetEntries(ctx context.Context, typeCode string) ([]*model.DictEntry, error)
	// InvalidateType 失效指定字典类型的缓存
	InvalidateType(ctx context.Context, typeCodes ...string) error
}

type dictService struct {
	dictRepo repository.DictRepository
	cache    PermissionCache
	logger   *zap.Logger
}

// NewDictService 创建数据字典服务
func NewDictService(dictRepo repository.DictRepository, cache PermissionCache, logger *zap.Logger) DictService {
	return &dictService{
		dictRepo: dictRepo,
		cache:    cache,
		logger:   logger,
	}
}

func (s *dictService) CreateType(ctx context.Context, dt *model.DictType) error {
	if dt.Code == "" {
		return ErrDictTypeCodeEmpty
	}
	if dt.Status == "" {
		dt.Status = model.StatusActive
	}
	return s.dictRepo.CreateType(ctx, dt)
}

func (s *dictService) ListTypes(ctx context.Context) ([]*model.DictType, error) {
	return s.dictRepo.ListTypes(ctx)
}

func (s *dictService) DeleteType(ctx context.Context, code string) error {
	if err := s.dictRepo.DeleteType(ctx, code); err != nil {
		return err
	}
	return s.InvalidateType(ctx, code)
}

func (s *dictService) CreateEntry(ctx context.Context, entry *model.DictEntry) error {
	if entry.TypeCode == "" {
		return ErrDictTypeCodeEmpty
	}
	if _, err := s.dictRepo.GetTypeByCode(ctx, entry.TypeCode); err != nil {
		return err
	}
	if entry.Status == "" {
		entry.Status = model.StatusActive
	}
	if err := s.dictRepo.CreateEntry(ctx, entry); err != nil {
		return err
	}
	return s.InvalidateType(ctx, entry.TypeCode)
}

func (s *dictService) GetEntry(ctx context.Context, id string) (*model.DictEntry, error) {
	return s.dictRepo.GetEntryByID(ctx, id)
}

func (s *dictService) UpdateEntry(ctx context.Context, entry *model.DictEntry) error {
	if err := s.dictRepo.UpdateEntry(ctx, entry); err != nil {
		return err
	}
	return s.InvalidateType(ctx, entry.TypeCode)
}

func (s *dictService) DeleteEntry(ctx context.Context, id string, typeCode string) error {
	if typeCode == "" {
		if entry, err := s.dictRepo.GetEntryByID(ctx, id); err == nil {
			typeCode = entry.TypeCode
		}
	}
	if err := s.dictRepo.DeleteEntry(ctx, id); err != nil {
		return err
	}
	if typeCode == "" {
		return nil
	}
	return s.InvalidateType(ctx, typeCode)
}

func (s *dictService) GetEntries(ctx context.Context, typeCode string) ([]*model.DictEntry, error) {
	if typeCode == "" {
		return nil, ErrDictTypeCodeEmpty
	}

	key := DictKey(typeCode)
	var cached []*model.DictEntry
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil && s.logger != nil {
		s.logger.Warn("字典缓存读取失败，回退查库", zap.String("type_code", typeCode), zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	entries, err := s.dictRepo.ListEntries(ctx, typeCode)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, entries, s.cache.DictTTL()); err != nil && s.logger != nil {
		s.logger.Warn("字典缓存写入失败", zap.String("type_code", typeCode), zap.Error(err))
	}
	return entries, nil
}

func (s *dictService) InvalidateType(ctx context.Context, typeCodes ...string) error {
	keys := make([]string, len(typeCodes))
	for i, code := range typeCodes {
		keys[i] = DictKey(code)
	}
	return s.cache.ClearBatch(ctx, keys)
}
