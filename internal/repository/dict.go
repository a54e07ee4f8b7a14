package repository

import (
	"context"
	"errors"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrDictTypeNotFound   = errors.New("字典类型不存在")
	ErrDictTypeCodeExists = errors.New("字典类型代码已存在")
	ErrDictEntryNotFound  = errors.New("字典条目不存在")
)

// DictRepository 数据字典数据访问接口
type DictRepository interface {
	CreateType(ctx context.Context, dt *model.DictType) error
	GetTypeByCode(ctx context.Context, code string) (*model.DictType, error)
	ListTypes(ctx context.Context) ([]*model.DictType, error)
	DeleteType(ctx context.Context, code string) error

	CreateEntry(ctx context.Context, entry *model.DictEntry) error
	GetEntryByID(ctx context.Context, id string) (*model.DictEntry, error)
	UpdateEntry(ctx context.Context, entry *model.DictEntry) error
	DeleteEntry(ctx context.Context, id string) error
	// ListEntries 返回指定字典类型下启用的条目，按排序升序
	ListEntries(ctx context.Context, typeCode string) ([]*model.DictEntry, error)
}

// dictRepository 数据字典数据访问实现
type dictRepository struct {
	db *gorm.DB
}

// NewDictRepository 创建数据字典数据访问实例
func NewDictRepository(db *gorm.DB) DictRepository {
	return &dictRepository{db: db}
}

func (r *dictRepository) CreateType(ctx context.Context, dt *model.DictType) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.DictType{}).Where("code = ?", dt.Code).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDictTypeCodeExists
	}
	return r.db.WithContext(ctx).Create(dt).Error
}

func (r *dictRepository) GetTypeByCode(ctx context.Context, code string) (*model.DictType, error) {
	var dt model.DictType
	if err := r.db.WithContext(ctx).First(&dt, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDictTypeNotFound
		}
		return nil, err
	}
	return &dt, nil
}

func (r *dictRepository) ListTypes(ctx context.Context) ([]*model.DictType, error) {
	var types []*model.DictType
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

func (r *dictRepository) DeleteType(ctx context.Context, code string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.DictEntry{}, "type_code = ?", code).Error; err != nil {
			return err
		}
		return tx.Delete(&model.DictType{}, "code = ?", code).Error
	})
}

func (r *dictRepository) CreateEntry(ctx context.Context, entry *model.DictEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *dictRepository) GetEntryByID(ctx context.Context, id string) (*model.DictEntry, error) {
	var entry model.DictEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDictEntryNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *dictRepository) UpdateEntry(ctx context.Context, entry *model.DictEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *dictRepository) DeleteEntry(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.DictEntry{}, "id = ?", id).Error
}

func (r *dictRepository) ListEntries(ctx context.Context, typeCode string) ([]*model.DictEntry, error) {
	var entries []*model.DictEntry
	if err := r.db.WithContext(ctx).
		Where("type_code = ? AND status = ?", typeCode, model.StatusActive).
		Order("sort_order ASC, created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
