package repository

import (
	"context"
	"errors"

	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"gorm.io/gorm"
)

// 错误定义
var (
	ErrDeptNotFound    = errors.New("部门不存在")
	ErrDeptCodeExists  = errors.New("部门代码已存在")
	ErrDeptHasChildren = errors.New("部门下存在子部门，无法删除")
)

// DepartmentRepository 部门数据访问接口
type DepartmentRepository interface {
	Create(ctx context.Context, dept *model.Department) error
	GetByID(ctx context.Context, id string) (*model.Department, error)
	GetByCode(ctx context.Context, code string) (*model.Department, error)
	Update(ctx context.Context, dept *model.Department) error
	Delete(ctx context.Context, id string) error
	// List 返回全部部门的平铺列表，树结构由服务层组装
	List(ctx context.Context, status string) ([]*model.Department, error)
	ListChildren(ctx context.Context, parentID string) ([]*model.Department, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// Pagination 分页参数
type Pagination struct {
	Page     int // 页码，从 1 开始
	PageSize int // 每页数量
}

// departmentRepository 部门数据访问实现
type departmentRepository struct {
	db *gorm.DB
}

// NewDepartmentRepository 创建部门数据访问实例
func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) Create(ctx context.Context, dept *model.Department) error {
	exists, _ := r.ExistsByCode(ctx, dept.Code)
	if exists {
		return ErrDeptCodeExists
	}
	return r.db.WithContext(ctx).Create(dept).Error
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	if err := r.db.WithContext(ctx).First(&dept, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeptNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) GetByCode(ctx context.Context, code string) (*model.Department, error) {
	var dept model.Department
	if err := r.db.WithContext(ctx).First(&dept, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeptNotFound
		}
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) Update(ctx context.Context, dept *model.Department) error {
	return r.db.WithContext(ctx).Save(dept).Error
}

func (r *departmentRepository) Delete(ctx context.Context, id string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Department{}).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrDeptHasChildren
	}
	return r.db.WithContext(ctx).Delete(&model.Department{}, "id = ?", id).Error
}

func (r *departmentRepository) List(ctx context.Context, status string) ([]*model.Department, error) {
	var depts []*model.Department
	query := r.db.WithContext(ctx).Model(&model.Department{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Order("sort_order ASC, created_at ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *departmentRepository) ListChildren(ctx context.Context, parentID string) ([]*model.Department, error) {
	var depts []*model.Department
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).
		Order("sort_order ASC, created_at ASC").Find(&depts).Error; err != nil {
		return nil, err
	}
	return depts, nil
}

func (r *departmentRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Department{}).Where("code = ?", code).Count(&count).Error
	return count > 0, err
}
